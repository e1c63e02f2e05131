// Package envoy defines the route-configuration records consumed by the
// reverse-proxy data plane.
//
// Field names and value formats are a wire contract with the data plane and
// must not change:
//
//   - Durations render as "<seconds>.<3-digit-ms>s" (3000 ms is "3.000s")
//   - Weighted fractions always use the HUNDRED denominator
//   - A route carries either "route" or "redirect", never both
//
// Route models the redirect/forward duality as a sealed Action interface with
// two implementations, RouteAction and RedirectAction.
package envoy
