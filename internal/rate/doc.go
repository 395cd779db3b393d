// Package rate provides the Redis-backed fixed-window counters that throttle
// login attempts before the credential store is consulted.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - sl:  — login per-username
//   - sli: — login per-IP
//
// # What this package must NOT do
//
//   - Decide when to throttle (the Engine owns that policy).
//   - Store session state in Redis; the token scheme is stateless by design.
//   - Be imported outside this module.
package rate
