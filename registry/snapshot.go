package registry

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ruteri/dapp-registry-backend/events"
	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// Snapshot is a point-in-time copy of the full registry state, suitable for
// JSON encoding and content-addressed persistence. Identifiers and
// identities encode as hex strings.
type Snapshot struct {
	Administrator interfaces.Identity                     `json:"administrator"`
	Fee           *big.Int                                `json:"fee"`
	Balance       *big.Int                                `json:"balance"`
	Index         []interfaces.DappID                     `json:"index"`
	Entries       []interfaces.Entry                      `json:"entries"`
	Metadata      map[interfaces.DappID]map[string][]byte `json:"metadata,omitempty"`
}

// Snapshot captures the current registry state. The copy is deep: mutating
// the registry afterwards does not affect the snapshot.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := &Snapshot{
		Administrator: r.access.administrator(),
		Fee:           r.fees.currentFee(),
		Balance:       r.fees.currentBalance(),
		Index:         make([]interfaces.DappID, len(r.index)),
		Entries:       make([]interfaces.Entry, 0, len(r.entries)),
	}
	copy(snap.Index, r.index)

	// Entries in registration order so snapshots of equal state are equal.
	for _, id := range r.index {
		if entry, ok := r.entries[id]; ok {
			snap.Entries = append(snap.Entries, entry)
		}
	}

	if len(r.meta.values) > 0 {
		snap.Metadata = make(map[interfaces.DappID]map[string][]byte, len(r.meta.values))
		for id, keys := range r.meta.values {
			copied := make(map[string][]byte, len(keys))
			for key, value := range keys {
				stored := make([]byte, len(value))
				copy(stored, value)
				copied[key] = stored
			}
			snap.Metadata[id] = copied
		}
	}

	return snap
}

// Restore builds a registry from a snapshot, validating its invariants:
// a non-zero administrator, a non-negative fee and balance, entry IDs
// present in the index, non-zero entry owners, and metadata only for live
// entries. A nil sink selects a fresh in-memory events.Log; restoring
// emits no notifications.
func Restore(snap *Snapshot, sink events.Sink) (*Registry, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	if snap.Administrator.IsZero() {
		return nil, fmt.Errorf("snapshot administrator: %w", interfaces.ErrInvalidIdentity)
	}
	if snap.Fee == nil || snap.Fee.Sign() < 0 {
		return nil, errors.New("snapshot fee must be non-negative")
	}
	if snap.Balance == nil || snap.Balance.Sign() < 0 {
		return nil, errors.New("snapshot balance must be non-negative")
	}
	if sink == nil {
		sink = events.NewLog()
	}

	indexed := make(map[interfaces.DappID]bool, len(snap.Index))
	for _, id := range snap.Index {
		if id.IsZero() {
			return nil, fmt.Errorf("snapshot index: %w", interfaces.ErrInvalidId)
		}
		indexed[id] = true
	}

	entries := make(map[interfaces.DappID]interfaces.Entry, len(snap.Entries))
	for _, entry := range snap.Entries {
		if !indexed[entry.ID] {
			return nil, fmt.Errorf("snapshot entry %s missing from index", entry.ID)
		}
		if entry.Owner.IsZero() {
			return nil, fmt.Errorf("snapshot entry %s: %w", entry.ID, interfaces.ErrInvalidIdentity)
		}
		if _, dup := entries[entry.ID]; dup {
			return nil, fmt.Errorf("snapshot entry %s duplicated", entry.ID)
		}
		entries[entry.ID] = entry
	}

	meta := newMetadataStore()
	for id, keys := range snap.Metadata {
		if _, ok := entries[id]; !ok {
			return nil, fmt.Errorf("snapshot metadata for unregistered dapp %s", id)
		}
		for key, value := range keys {
			meta.set(id, key, value)
		}
	}

	fees := newFeeGate(big.NewInt(1))
	fees.setFee(snap.Fee)
	fees.accumulate(snap.Balance)

	index := make([]interfaces.DappID, len(snap.Index))
	copy(index, snap.Index)

	return &Registry{
		entries: entries,
		index:   index,
		meta:    meta,
		access:  &accessControl{admin: snap.Administrator},
		fees:    fees,
		sink:    sink,
	}, nil
}
