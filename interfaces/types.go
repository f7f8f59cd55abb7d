package interfaces

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// DappID is the 32-byte identifier naming a registered dapp.
// The all-zero value is reserved and can never be registered.
type DappID [32]byte

// NewDappIDFromBytes creates a dapp ID from a raw 32-byte slice.
func NewDappIDFromBytes(source []byte) (DappID, error) {
	if len(source) != 32 {
		return DappID{}, errors.New("invalid dapp ID length: must be 32 bytes")
	}

	var id DappID
	copy(id[:], source)
	return id, nil
}

// NewDappIDFromHex creates a dapp ID from a 64-character hex string,
// with or without a 0x prefix.
func NewDappIDFromHex(source string) (DappID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return DappID{}, errors.New("invalid dapp ID length: hex string must be 64 characters")
	}

	idBytes, err := hex.DecodeString(clean)
	if err != nil {
		return DappID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewDappIDFromBytes(idBytes)
}

// ComputeDappID derives a dapp ID from a human-readable label as the
// Keccak-256 hash of its bytes.
func ComputeDappID(label string) DappID {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(label))

	var id DappID
	copy(id[:], h.Sum(nil))
	return id
}

// String returns the hex representation of the dapp ID.
func (id DappID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 32-byte identifier.
func (id DappID) Bytes() []byte {
	return id[:]
}

// Equal compares two dapp IDs for equality.
func (id DappID) Equal(other DappID) bool {
	return bytes.Equal(id[:], other[:])
}

// IsZero reports whether the ID is the reserved all-zero value.
func (id DappID) IsZero() bool {
	return id == DappID{}
}

// MarshalText implements encoding.TextMarshaler, hex-encoding the ID.
func (id DappID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *DappID) UnmarshalText(text []byte) error {
	parsed, err := NewDappIDFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Identity is the 20-byte caller address used for authorization checks.
// The execution environment supplies it for every call.
type Identity [20]byte

// NewIdentityFromBytes creates an identity from a raw 20-byte slice.
func NewIdentityFromBytes(source []byte) (Identity, error) {
	if len(source) != 20 {
		return Identity{}, errors.New("invalid identity length: must be 20 bytes")
	}

	var res Identity
	copy(res[:], source)
	return res, nil
}

// NewIdentityFromHex creates an identity from a 40-character hex string,
// with or without a 0x prefix.
func NewIdentityFromHex(source string) (Identity, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 40 {
		return Identity{}, errors.New("invalid identity length: hex string must be 40 characters")
	}

	addrBytes, err := hex.DecodeString(clean)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewIdentityFromBytes(addrBytes)
}

// String returns the hex representation of the identity.
func (i Identity) String() string {
	return hex.EncodeToString(i[:])
}

// Bytes returns the raw 20-byte identity.
func (i Identity) Bytes() []byte {
	return i[:]
}

// Equal compares two identities for equality.
func (i Identity) Equal(other Identity) bool {
	return i == other
}

// IsZero reports whether the identity is the zero value.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

// MarshalText implements encoding.TextMarshaler, hex-encoding the identity.
func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Identity) UnmarshalText(text []byte) error {
	parsed, err := NewIdentityFromHex(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Entry is the registered record for one dapp: its identifier and the
// identity that currently owns it. An Entry exists for exactly the set of
// currently registered IDs, and its owner is never the zero identity.
type Entry struct {
	ID    DappID
	Owner Identity
}
