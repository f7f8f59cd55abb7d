package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// IPFSBackend stores content on an IPFS node. IPFS addresses content by its
// own CID, so the backend keeps a mapping from our SHA-256 content IDs to
// the IPFS CIDs it received on store. The mapping is pinned on the node as
// well, under the registry's MFS path, so a restarted process can resolve
// previously stored content.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string

	mu   sync.RWMutex
	cids map[interfaces.ContentID]string
}

// NewIPFSBackend creates an IPFS storage backend connected to the node API
// at host:port.
func NewIPFSBackend(host, port string, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSBackend{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/", apiURL),
		cids:        make(map[interfaces.ContentID]string),
	}, nil
}

// Fetch retrieves content by its identifier. The content must have been
// stored through this backend (or its CID registered via files copied to
// the MFS path) for the ID to resolve.
func (b *IPFSBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	cid := b.lookupCID(id)
	if cid == "" {
		// Fall back to the MFS path written on store.
		stat, err := b.shell.FilesStat(ctx, b.mfsPath(id, contentType))
		if err != nil {
			return nil, interfaces.ErrContentNotFound
		}
		cid = stat.Hash
	}

	reader, err := b.shell.Cat(cid)
	if err != nil {
		return nil, fmt.Errorf("failed to cat %s: %w", cid, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read IPFS content: %w", err)
	}

	// Content addressing is only as good as the address: verify.
	if interfaces.ComputeContentID(data) != id {
		return nil, fmt.Errorf("content ID mismatch for %s", id)
	}

	b.log.Debug("Fetched content from IPFS",
		slog.String("cid", cid),
		slog.Int("size", len(data)))

	return data, nil
}

// Store saves data to the node, pins it under the registry MFS path, and
// returns its content identifier.
func (b *IPFSBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeContentID(data)

	if !b.shell.IsUp() {
		return id, interfaces.ErrBackendUnavailable
	}

	cid, err := b.shell.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return id, fmt.Errorf("failed to add content to IPFS: %w", err)
	}

	path := b.mfsPath(id, contentType)
	if err := b.shell.FilesCp(ctx, "/ipfs/"+cid, path); err != nil {
		// Non-fatal: the in-memory mapping still resolves the ID.
		b.log.Warn("Failed to record IPFS CID in MFS",
			"err", err,
			slog.String("path", path))
	}

	b.mu.Lock()
	b.cids[id] = cid
	b.mu.Unlock()

	b.log.Debug("Stored content in IPFS",
		slog.String("cid", cid),
		slog.String("contentID", id.String()))

	return id, nil
}

// Available checks whether the IPFS node answers.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a short identifier for this backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s", b.host)
}

// LocationURI returns the URI this backend was created from.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

func (b *IPFSBackend) lookupCID(id interfaces.ContentID) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cids[id]
}

func (b *IPFSBackend) mfsPath(id interfaces.ContentID, contentType interfaces.ContentType) string {
	return fmt.Sprintf("/dapp-registry/%s/%s", contentType, id)
}
