// Package repositories implements SQLite persistence.
//
// The only persisted record is the pending login: a PKCE verifier and its state token, kept between "auth begin"
// and the invocation that receives the redirect. [PendingAuthRepository] implements [auth.VerifierStore] over a
// single-row table keyed by [auth.VerifierKey], with a TTL standing in for the end of a browser session.
//
// [Open] connects, applies pool limits and runs the embedded migrations.
package repositories
