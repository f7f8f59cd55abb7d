package interfaces

import "errors"

// Registry error taxonomy. All are terminal for the single operation that
// raised them: a failed operation leaves the registry unchanged and emits
// no notification. The registry performs no retries and no logging of its
// own; callers are expected to handle every one of these as an ordinary
// outcome.
var (
	// ErrUnauthorized indicates the caller lacks the required privilege:
	// not the administrator, not the dapp's owner, or neither.
	ErrUnauthorized = errors.New("caller is not authorized")

	// ErrNotRegistered indicates the referenced dapp ID has no current entry.
	ErrNotRegistered = errors.New("dapp is not registered")

	// ErrIdTaken indicates a registration attempt against an ID that is
	// already present. Registration never overwrites.
	ErrIdTaken = errors.New("dapp ID is already registered")

	// ErrInvalidId indicates the reserved all-zero dapp ID was supplied.
	ErrInvalidId = errors.New("dapp ID is invalid")

	// ErrInvalidIdentity indicates the zero identity was supplied where a
	// real identity is required: as a registering caller, a new dapp owner,
	// or a new administrator. Live entries never have a zero owner.
	ErrInvalidIdentity = errors.New("identity is invalid")

	// ErrInsufficientPayment indicates the attached payment is below the
	// current registration fee.
	ErrInsufficientPayment = errors.New("payment is below the registration fee")

	// ErrIndexOutOfRange indicates a positional lookup beyond the length
	// of the registration index.
	ErrIndexOutOfRange = errors.New("index is out of range")
)
