// Package adminauth implements the admin-account authentication core of the
// moviebox booking platform: registration with email verification,
// credential login, and a dual-token session model with JWT access tokens
// and Redis-custodied rotating refresh tokens.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// adminauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [AccountProvider] and mail sender contracts, and value types
// ([Account], [TokenPair], [MetricsSnapshot]). Token encoding lives in the
// jwt subpackage, password hashing in password, and the Redis refresh-token
// slot under internal/. Persistent account storage and outbound mail are
// capabilities supplied by the caller; pgstore and mail ship default
// implementations but the engine never depends on them.
//
// # Token custody
//
// The Redis slot written by the engine is the sole source of truth for "is
// this refresh token still current". A refresh token's own exp claim is a
// secondary, cryptographically verifiable bound; rotation replaces the slot
// atomically, so a superseded refresh token fails reissue even while its
// signature is still valid. That failure is the replay signal.
package adminauth
