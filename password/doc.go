// Package password implements Argon2id hashing and verification for stored
// login credentials in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The credential store accepts either PHC hashes or plaintext entries;
// [IsPHC] tells the two apart. Verification reads its parameters from the
// stored hash, so no [Hasher] configuration is needed to check a password.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Mint or verify session tokens (that is the token package's job).
package password
