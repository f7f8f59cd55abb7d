package api

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// SignatureHeader carries the hex-encoded 65-byte secp256k1 signature that
// authenticates a mutating request.
const SignatureHeader = "X-Registry-Signature"

// EntryResponse is the JSON form of a registry entry.
type EntryResponse struct {
	ID    interfaces.DappID   `json:"id"`
	Owner interfaces.Identity `json:"owner"`
}

// CountResponse reports the registration index length.
type CountResponse struct {
	Count uint64 `json:"count"`
}

// FeeResponse reports the current registration fee as a decimal string.
type FeeResponse struct {
	Fee string `json:"fee"`
}

// AdministratorResponse reports the current registry administrator.
type AdministratorResponse struct {
	Administrator interfaces.Identity `json:"administrator"`
}

// MetaResponse is the JSON form of one metadata value.
type MetaResponse struct {
	ID    interfaces.DappID `json:"id"`
	Key   string            `json:"key"`
	Value []byte            `json:"value"`
}

// RegisterRequest registers a dapp ID. Paid is the attached payment as a
// decimal string; the hosting environment, not this service, settles it.
type RegisterRequest struct {
	Paid string `json:"paid"`
}

// UnregisterRequest removes a dapp registration. It has no parameters
// beyond the ID in the URL; the body exists so the signature covers a
// request-specific payload.
type UnregisterRequest struct {
	ID interfaces.DappID `json:"id"`
}

// SetMetaRequest writes one metadata value.
type SetMetaRequest struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// SetOwnerRequest transfers a dapp to a new owner.
type SetOwnerRequest struct {
	NewOwner interfaces.Identity `json:"new_owner"`
}

// SetFeeRequest updates the registration fee, as a decimal string.
type SetFeeRequest struct {
	Fee string `json:"fee"`
}

// TransferAdministratorRequest hands the registry over.
type TransferAdministratorRequest struct {
	NewAdministrator interfaces.Identity `json:"new_administrator"`
}

// DrainRequest authorizes transfer of the collected balance.
type DrainRequest struct {
	Destination interfaces.Identity `json:"destination"`
}

// DrainResponse reports the amount owed to the destination.
type DrainResponse struct {
	Destination interfaces.Identity `json:"destination"`
	Amount      string              `json:"amount"`
}

// DomainVerificationResponse reports the outcome of a DNS domain-ownership
// check for a dapp's "domain" metadata key.
type DomainVerificationResponse struct {
	ID       interfaces.DappID   `json:"id"`
	Domain   string              `json:"domain"`
	Owner    interfaces.Identity `json:"owner"`
	Verified bool                `json:"verified"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseAmount parses a non-negative decimal amount string.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	return amount, nil
}

// StatusForError maps registry errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrIdTaken):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrInvalidId), errors.Is(err, interfaces.ErrInvalidIdentity):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, interfaces.ErrIndexOutOfRange):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
