// Package middleware exposes HTTP middleware adapters for cookie-based
// session enforcement built on top of wsession.Engine verification.
//
// # Guards
//
//   - [Guard] — rejects unauthenticated requests with 401.
//   - [RedirectGuard] — redirects unauthenticated browsers to a login page.
//
// Each guard reads the session cookie, calls Engine.SessionFromRequest, and
// injects the verified payload into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement verification logic itself — all decisions are delegated to
// Engine.SessionFromRequest.
//
// # What this package must NOT do
//
//   - Parse or verify tokens directly (delegates to Engine).
//   - Issue or clear cookies (the application owns login and logout flows).
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
