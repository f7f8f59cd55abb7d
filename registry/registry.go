package registry

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ruteri/dapp-registry-backend/events"
	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// DefaultRegistrationFee is the fee a freshly constructed registry charges
// when no explicit fee is configured. The fee is always positive at
// initialization; the administrator may lower it (including to zero) later.
var DefaultRegistrationFee = big.NewInt(1_000_000)

// ErrInvalidFee is returned by SetFee for a negative fee.
var ErrInvalidFee = errors.New("fee must be non-negative")

var _ interfaces.DappRegistry = (*Registry)(nil)

// Registry is the in-process implementation of interfaces.DappRegistry.
//
// A single mutex guards the entry table, the registration index, the
// metadata table, the administrator, the fee, and the collected balance.
// Several operations mutate these jointly (Register touches index, table,
// and balance together), so they form one mutual-exclusion domain.
type Registry struct {
	mu sync.RWMutex

	entries map[interfaces.DappID]interfaces.Entry
	index   []interfaces.DappID
	meta    *metadataStore
	access  *accessControl
	fees    *feeGate
	sink    events.Sink
}

// New creates a registry administered by admin. A nil fee selects
// DefaultRegistrationFee; an explicit fee must be positive. A nil sink
// selects a fresh in-memory events.Log.
func New(admin interfaces.Identity, fee *big.Int, sink events.Sink) (*Registry, error) {
	if admin.IsZero() {
		return nil, interfaces.ErrInvalidIdentity
	}
	if fee == nil {
		fee = DefaultRegistrationFee
	}
	if fee.Sign() <= 0 {
		return nil, errors.New("initial fee must be positive")
	}
	if sink == nil {
		sink = events.NewLog()
	}

	return &Registry{
		entries: make(map[interfaces.DappID]interfaces.Entry),
		index:   nil,
		meta:    newMetadataStore(),
		access:  &accessControl{admin: admin},
		fees:    newFeeGate(fee),
		sink:    sink,
	}, nil
}

// Count returns the number of positions in the registration index,
// including positions whose dapp has since been unregistered.
func (r *Registry) Count() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return uint64(len(r.index))
}

// At returns the entry registered at the given index position.
func (r *Registry) At(index uint64) (interfaces.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= uint64(len(r.index)) {
		return interfaces.Entry{}, interfaces.ErrIndexOutOfRange
	}

	// The index is never compacted: a position may name an id that was
	// unregistered since. Reject it instead of returning zeroed data.
	entry, ok := r.entries[r.index[index]]
	if !ok {
		return interfaces.Entry{}, interfaces.ErrNotRegistered
	}
	return entry, nil
}

// Get returns the entry for id.
func (r *Registry) Get(id interfaces.DappID) (interfaces.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return interfaces.Entry{}, interfaces.ErrNotRegistered
	}
	return entry, nil
}

// Register creates an entry for id owned by caller, collecting paid into
// the registry balance. The fee guard and the uniqueness guard are
// evaluated before any state changes.
func (r *Registry) Register(id interfaces.DappID, paid *big.Int, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id.IsZero() {
		return interfaces.ErrInvalidId
	}
	if caller.IsZero() {
		return interfaces.ErrInvalidIdentity
	}
	if paid == nil {
		paid = new(big.Int)
	}
	if err := r.fees.checkPayment(paid); err != nil {
		return err
	}
	if _, taken := r.entries[id]; taken {
		return interfaces.ErrIdTaken
	}

	r.index = append(r.index, id)
	r.entries[id] = interfaces.Entry{ID: id, Owner: caller}
	r.fees.accumulate(paid)

	r.sink.Emit(events.Registered(id, caller))
	return nil
}

// Unregister removes the entry for id and clears its metadata. The entry's
// owner or the administrator may unregister; the registration index keeps
// its (now stale) position.
func (r *Registry) Unregister(id interfaces.DappID, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return interfaces.ErrNotRegistered
	}
	if err := r.access.ownerOrAdministrator(entry, caller); err != nil {
		return err
	}

	delete(r.entries, id)
	r.meta.clear(id)

	r.sink.Emit(events.Unregistered(id))
	return nil
}

// Meta returns the metadata value stored under key for id. A missing key
// yields an empty value; a missing id is an error.
func (r *Registry) Meta(id interfaces.DappID, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.entries[id]; !ok {
		return nil, interfaces.ErrNotRegistered
	}
	return r.meta.get(id, key), nil
}

// SetMeta stores a metadata value for id. Owner only.
func (r *Registry) SetMeta(id interfaces.DappID, key string, value []byte, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return interfaces.ErrNotRegistered
	}
	if err := onlyOwner(entry, caller); err != nil {
		return err
	}

	r.meta.set(id, key, value)

	r.sink.Emit(events.MetaChanged(id, key, value))
	return nil
}

// SetDappOwner transfers ownership of id to newOwner. Owner only; the new
// owner must not be the zero identity.
func (r *Registry) SetDappOwner(id interfaces.DappID, newOwner interfaces.Identity, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return interfaces.ErrNotRegistered
	}
	if err := onlyOwner(entry, caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return interfaces.ErrInvalidIdentity
	}

	entry.Owner = newOwner
	r.entries[id] = entry

	r.sink.Emit(events.OwnerChanged(id, newOwner))
	return nil
}

// Fee returns the current registration fee.
func (r *Registry) Fee() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.fees.currentFee()
}

// SetFee updates the registration fee. Administrator only. A nil fee
// counts as zero; negative fees are rejected. No notification is emitted.
func (r *Registry) SetFee(newFee *big.Int, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.access.onlyAdministrator(caller); err != nil {
		return err
	}
	if newFee == nil {
		newFee = new(big.Int)
	}
	if newFee.Sign() < 0 {
		return ErrInvalidFee
	}

	r.fees.setFee(newFee)
	return nil
}

// Balance returns the accumulated, not yet drained, registration fees.
func (r *Registry) Balance() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.fees.currentBalance()
}

// Drain authorizes transfer of the entire collected balance to destination
// and zeroes it, returning the amount owed. Administrator only.
func (r *Registry) Drain(destination interfaces.Identity, caller interfaces.Identity) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.access.onlyAdministrator(caller); err != nil {
		return nil, err
	}

	return r.fees.drain(), nil
}

// Administrator returns the current registry administrator.
func (r *Registry) Administrator() interfaces.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.access.administrator()
}

// TransferAdministrator hands the registry over to newAdmin. Administrator
// only; the new administrator must not be the zero identity.
func (r *Registry) TransferAdministrator(newAdmin interfaces.Identity, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.access.onlyAdministrator(caller); err != nil {
		return err
	}
	if newAdmin.IsZero() {
		return interfaces.ErrInvalidIdentity
	}

	oldAdmin := r.access.administrator()
	r.access.transfer(newAdmin)

	r.sink.Emit(events.AdministratorChanged(oldAdmin, newAdmin))
	return nil
}
