package api

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// ErrMissingSignature is returned when a mutating request carries no
// signature header.
var ErrMissingSignature = errors.New("missing request signature")

// SigningDigest computes the digest a client signs for a request:
// keccak256 over a fixed prefix, the method, the path, and the body.
// Binding method and path prevents replaying a signature against a
// different endpoint.
func SigningDigest(method, path string, body []byte) []byte {
	return crypto.Keccak256(
		[]byte("dapp-registry-v1:"),
		[]byte(method),
		[]byte("\n"),
		[]byte(path),
		[]byte("\n"),
		body,
	)
}

// SignRequest signs the digest for a request with the given key and
// returns the hex-encoded signature for the SignatureHeader.
func SignRequest(key *ecdsa.PrivateKey, method, path string, body []byte) (string, error) {
	sig, err := crypto.Sign(SigningDigest(method, path, body), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// RecoverCaller recovers the caller identity from a request signature.
func RecoverCaller(sigHex, method, path string, body []byte) (interfaces.Identity, error) {
	if sigHex == "" {
		return interfaces.Identity{}, ErrMissingSignature
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return interfaces.Identity{}, fmt.Errorf("invalid signature length %d", len(sig))
	}

	pubkey, err := crypto.SigToPub(SigningDigest(method, path, body), sig)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("failed to recover signer: %w", err)
	}

	return IdentityForKey(pubkey), nil
}

// IdentityForKey derives the 20-byte identity for a public key, the same
// way Ethereum derives an address.
func IdentityForKey(pubkey *ecdsa.PublicKey) interfaces.Identity {
	return interfaces.Identity(crypto.PubkeyToAddress(*pubkey))
}
