// Package httpserver exposes the dapp registry over HTTP.
//
// The server splits its surface in two. Everything under /api/public is
// read-only and unauthenticated: entry lookups, index traversal, metadata
// reads, the current fee and administrator, and advisory domain
// verification. Everything under /api/signed mutates registry state and
// requires a secp256k1 signature in the X-Registry-Signature header; the
// recovered signer is the caller identity passed to the registry, which
// enforces owner and administrator checks itself.
//
// Operational endpoints (/livez, /readyz, /drain, /undrain) follow the
// usual load-balancer contract, and an optional pprof handler can be
// mounted under /debug.
package httpserver
