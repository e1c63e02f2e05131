// Package ir holds the read-only intermediate representation consumed by the
// route generator.
//
// # Overview
//
// An IR snapshot is produced upstream from raw routing resources and is taken
// here as already normalized input. It contains:
//
//   - Mapping groups, already in priority order
//   - The global module (CORS and retry-policy defaults)
//   - The rate-limit service, when one is configured
//
// # Loading
//
// Snapshots are read from YAML or JSON. YAML is converted to JSON first, then
// decoded strictly so a typo in a field name is reported instead of being
// silently ignored. Pre-built CORS and retry policies are the exception: they
// are kept as opaque ordered objects and passed through as written.
//
// # Validation
//
// Validate reports contract violations (negative weights, forward mappings
// without a cluster, SNI groups without a TLS context) as a field.ErrorList.
// Optional fields that are missing are never violations.
package ir
