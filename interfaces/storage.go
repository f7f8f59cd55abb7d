package interfaces

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Storage errors shared by all backends.
var (
	// ErrContentNotFound indicates the requested content does not exist
	// in the backend.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable indicates the backend cannot be reached.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI indicates a malformed backend location URI.
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// ContentID is a 32-byte SHA-256 hash uniquely identifying stored content.
type ContentID [32]byte

// NewContentIDFromBytes creates a content ID from a raw 32-byte slice.
func NewContentIDFromBytes(source []byte) (ContentID, error) {
	if len(source) != 32 {
		return ContentID{}, errors.New("invalid content ID length: must be 32 bytes")
	}

	var id ContentID
	copy(id[:], source)
	return id, nil
}

// NewContentIDFromHex creates a content ID from a 64-character hex string,
// with or without a 0x prefix.
func NewContentIDFromHex(source string) (ContentID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ContentID{}, errors.New("invalid content ID length: hex string must be 64 characters")
	}

	idBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewContentIDFromBytes(idBytes)
}

// ComputeContentID calculates the content ID for data.
func ComputeContentID(data []byte) ContentID {
	return ContentID(sha256.Sum256(data))
}

// String returns the hex representation of the content ID.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 32-byte hash.
func (id ContentID) Bytes() []byte {
	return id[:]
}

// Equal compares two content IDs.
func (id ContentID) Equal(other ContentID) bool {
	return bytes.Equal(id[:], other[:])
}

// ContentType indicates the storage namespace a piece of content belongs to.
type ContentType int

const (
	// SnapshotType for full registry state snapshots.
	SnapshotType ContentType = iota
	// EventArchiveType for archived notification logs.
	EventArchiveType
)

// String returns the namespace name.
func (ct ContentType) String() string {
	switch ct {
	case SnapshotType:
		return "snapshot"
	case EventArchiveType:
		return "events"
	default:
		return "unknown"
	}
}

// StorageBackendLocation is a URI describing a storage backend, e.g.
// file:///var/lib/registry or s3://bucket/prefix?region=us-east-1.
type StorageBackendLocation string

// StorageBackend stores and retrieves content-addressed registry data.
// Implementations must return ErrContentNotFound for missing content and
// ErrBackendUnavailable when the backing service cannot be reached.
type StorageBackend interface {
	// Fetch retrieves content by its identifier and type.
	Fetch(ctx context.Context, id ContentID, contentType ContentType) ([]byte, error)

	// Store saves data and returns its content identifier.
	Store(ctx context.Context, data []byte, contentType ContentType) (ContentID, error)

	// Available reports whether the backend is currently reachable.
	Available(ctx context.Context) bool

	// Name returns a short identifier for logging.
	Name() string

	// LocationURI returns the URI this backend was created from.
	LocationURI() string
}
