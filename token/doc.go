// Package token encodes and verifies the signed JWTs issued by the auth API.
//
// Every token carries a kind (access, refresh or email). Each kind is signed
// with its own secret and has its own lifetime, and a token is only accepted
// when the kind in its signed payload matches the kind the caller asked for.
// Verification failures are reported through distinct errors so callers can
// tell an expired token from a forged, malformed or misused one.
package token
