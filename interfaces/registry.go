package interfaces

import "math/big"

// DappRegistry is the permissioned registry of dapp identifiers.
//
// Every mutating operation takes the caller identity as its last argument;
// the hosting environment (HTTP handler, CLI, test) is responsible for
// establishing it. Each mutating operation is atomic: on failure no state
// changes and no notification is emitted, on success exactly one
// notification describing the change is emitted.
type DappRegistry interface {
	// Count returns the number of positions in the registration index.
	// Positions of since-unregistered dapps are included; At rejects them.
	Count() uint64

	// At returns the entry at the given registration index. It fails with
	// ErrIndexOutOfRange beyond the index length and with ErrNotRegistered
	// when the ID recorded at that position has been unregistered since.
	At(index uint64) (Entry, error)

	// Get returns the entry for id, or ErrNotRegistered.
	Get(id DappID) (Entry, error)

	// Register creates an entry owned by caller. It fails with ErrInvalidId
	// for the zero ID, ErrInsufficientPayment when paid is below the current
	// fee, and ErrIdTaken when id is already registered. On success the paid
	// amount is added to the collected balance.
	Register(id DappID, paid *big.Int, caller Identity) error

	// Unregister removes the entry for id and clears its metadata. Only the
	// entry's owner or the administrator may unregister. The registration
	// index is not compacted.
	Unregister(id DappID, caller Identity) error

	// Meta returns the metadata value stored under key for id. A missing
	// key yields an empty value; a missing id fails with ErrNotRegistered.
	Meta(id DappID, key string) ([]byte, error)

	// SetMeta stores a metadata value for id. Only the entry's owner may
	// write metadata.
	SetMeta(id DappID, key string, value []byte, caller Identity) error

	// SetDappOwner transfers ownership of id to newOwner. Only the entry's
	// current owner may transfer it.
	SetDappOwner(id DappID, newOwner Identity, caller Identity) error

	// Fee returns the current registration fee.
	Fee() *big.Int

	// SetFee updates the registration fee. Administrator only.
	SetFee(newFee *big.Int, caller Identity) error

	// Balance returns the accumulated, not yet drained, registration fees.
	Balance() *big.Int

	// Drain authorizes transfer of the entire collected balance to
	// destination and zeroes it, returning the amount owed. Administrator
	// only. Actually moving funds is the caller's collaborator's concern.
	Drain(destination Identity, caller Identity) (*big.Int, error)

	// Administrator returns the current registry administrator.
	Administrator() Identity

	// TransferAdministrator hands the registry over to newAdmin.
	// Administrator only.
	TransferAdministrator(newAdmin Identity, caller Identity) error
}
