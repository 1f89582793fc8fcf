// Package auth implements the OAuth2 authorization code flow with PKCE for a public client.
//
// # Crypto challenge
//
// [GenerateVerifier] draws a high-entropy verifier from crypto/rand and [DeriveChallenge] computes its S256 challenge.
//
// # Pending login
//
// The verifier is the secret half of the round-trip: it is written to a [VerifierStore] before the user leaves for the
// provider and read back, unchanged, when the redirect returns. [MemoryStore] serves single-process logins; the
// repositories package provides a SQLite store for logins split across two invocations.
//
// # Flow
//
// [Flow] walks Idle → AwaitingRedirect → ExchangingCode → Authenticated, with Failed reachable from any step and
// left again by a new [Flow.BeginLogin]. A successful exchange puts the access token in the injected
// [models.Session]. There is no refresh: an expired token means logging in again.
package auth
