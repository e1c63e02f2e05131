// Package routegen translates IR mapping groups into data-plane route entries.
//
// # Overview
//
// The Generator walks the mapping groups of one IR snapshot in the order the
// upstream builder produced them and emits one route per mapping:
//
//   - A group with a host redirect and no mappings yields one redirect route
//   - Every other group yields one route per mapping, in mapping order
//   - Routes of SNI-qualified groups go to a separate list with their TLS hosts
//
// The output order is observable: the data plane picks the first matching
// route, so routes are never re-sorted.
//
// # Route Assembly
//
// Each route is assembled from independent parts, each resolved to present or
// absent before the route is built:
//
//   - Match: prefix (or regex), case sensitivity, weighted traffic fraction, headers
//   - Header mutations and the per-filter authentication bypass
//   - Route action: timeouts, rewrites, hash policy, CORS, retry, mirror, rate limits
//
// A host redirect on the group or on the mapping replaces the route action
// with a redirect and skips everything but the match.
//
// # Precedence
//
// CORS and retry policies set on a group win over the global module. CORS is
// duplicated per route and stamped with the group ID.
//
// # Dropped Input
//
// Rate-limit labels for domains other than the configured one, shadow targets
// beyond the first and rate-limit labels the action builder rejects are left
// out of the output. Each is reported as a Notice in the Result so an
// operator-facing layer can warn about it; none of them is an error.
//
// # Contract Violations
//
// The snapshot is validated before the walk starts. Any violation aborts the
// pass with an error marked ir.ErrContractViolation and no partial output.
package routegen
