// Package api defines the HTTP wire format of the dapp registry service:
// request and response types, the caller-authentication scheme, and the
// mapping from registry errors to HTTP status codes.
//
// # Caller authentication
//
// Mutating endpoints establish the caller identity cryptographically: the
// client signs a digest of the request (method, path, and body) with a
// secp256k1 key and sends the 65-byte signature hex-encoded in the
// X-Registry-Signature header. The server recovers the public key from the
// signature and derives the caller's 20-byte identity from it, exactly as
// Ethereum derives addresses. There are no server-side accounts: whoever
// holds the key for an identity is that identity.
//
// Read-only endpoints require no authentication.
package api
