package registry

import "github.com/ruteri/dapp-registry-backend/interfaces"

// accessControl holds the registry administrator identity and evaluates
// the administrator guard. It carries no lock of its own: all access goes
// through the Registry's mutex, which covers the whole state domain.
type accessControl struct {
	admin interfaces.Identity
}

func (a *accessControl) administrator() interfaces.Identity {
	return a.admin
}

// onlyAdministrator is the guard for administrator-gated operations.
func (a *accessControl) onlyAdministrator(caller interfaces.Identity) error {
	if !caller.Equal(a.admin) {
		return interfaces.ErrUnauthorized
	}
	return nil
}

// transfer hands the registry over. The caller must already have passed
// the onlyAdministrator guard.
func (a *accessControl) transfer(newAdmin interfaces.Identity) {
	a.admin = newAdmin
}

// onlyOwner is the guard for owner-gated entry mutations.
func onlyOwner(entry interfaces.Entry, caller interfaces.Identity) error {
	if !caller.Equal(entry.Owner) {
		return interfaces.ErrUnauthorized
	}
	return nil
}

// ownerOrAdministrator is the guard for operations either the entry owner
// or the registry administrator may perform.
func (a *accessControl) ownerOrAdministrator(entry interfaces.Entry, caller interfaces.Identity) error {
	if !caller.Equal(entry.Owner) && !caller.Equal(a.admin) {
		return interfaces.ErrUnauthorized
	}
	return nil
}
