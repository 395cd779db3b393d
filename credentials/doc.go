// Package credentials defines the credential-store adapters consulted at
// login before a session token is minted.
//
// # Variants
//
//   - [Static] — fixed username/password table, typically parsed from the
//     AUTH_CREDENTIALS environment variable ("user:pass,user:pass"). Entries
//     may be plaintext or Argon2id PHC hashes.
//   - [Remote] — HTTP client for the legacy authentication endpoint, whose
//     response carries the connection id, display name, and account class
//     that fold into the extended session payload.
//
// # Architecture boundaries
//
// This package only answers "is this username/password pair valid, and for
// whom". It does NOT mint tokens, set cookies, or rate-limit — those
// responsibilities belong to the Engine.
package credentials
