package events

import (
	"sync"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

// Kind identifies the registry mutation an event describes.
type Kind string

const (
	// KindRegistered is emitted when a new dapp entry is created.
	KindRegistered Kind = "Registered"
	// KindUnregistered is emitted when a dapp entry is removed.
	KindUnregistered Kind = "Unregistered"
	// KindMetaChanged is emitted when a dapp metadata value is written.
	KindMetaChanged Kind = "MetaChanged"
	// KindOwnerChanged is emitted when a dapp's ownership is transferred.
	KindOwnerChanged Kind = "OwnerChanged"
	// KindAdministratorChanged is emitted when the registry administrator
	// hands the registry over.
	KindAdministratorChanged Kind = "AdministratorChanged"
)

// Event is a single registry notification. Only the fields relevant to the
// event's kind are populated:
//
//   - Registered: ID, Owner
//   - Unregistered: ID
//   - MetaChanged: ID, Key, Value
//   - OwnerChanged: ID, NewOwner
//   - AdministratorChanged: OldAdmin, NewAdmin
type Event struct {
	Kind     Kind                 `json:"kind"`
	ID       interfaces.DappID    `json:"id,omitempty"`
	Owner    interfaces.Identity  `json:"owner,omitempty"`
	NewOwner interfaces.Identity  `json:"new_owner,omitempty"`
	Key      string               `json:"key,omitempty"`
	Value    []byte               `json:"value,omitempty"`
	OldAdmin interfaces.Identity  `json:"old_admin,omitempty"`
	NewAdmin interfaces.Identity  `json:"new_admin,omitempty"`
}

// Registered builds the notification for a successful registration.
func Registered(id interfaces.DappID, owner interfaces.Identity) Event {
	return Event{Kind: KindRegistered, ID: id, Owner: owner}
}

// Unregistered builds the notification for a successful unregistration.
func Unregistered(id interfaces.DappID) Event {
	return Event{Kind: KindUnregistered, ID: id}
}

// MetaChanged builds the notification for a metadata write.
func MetaChanged(id interfaces.DappID, key string, value []byte) Event {
	return Event{Kind: KindMetaChanged, ID: id, Key: key, Value: value}
}

// OwnerChanged builds the notification for a dapp ownership transfer.
func OwnerChanged(id interfaces.DappID, newOwner interfaces.Identity) Event {
	return Event{Kind: KindOwnerChanged, ID: id, NewOwner: newOwner}
}

// AdministratorChanged builds the notification for a registry handover.
func AdministratorChanged(oldAdmin, newAdmin interfaces.Identity) Event {
	return Event{Kind: KindAdministratorChanged, OldAdmin: oldAdmin, NewAdmin: newAdmin}
}

// Sink receives registry notifications in emission order. Emit must not
// fail the emitting operation; sinks that can lose events (network
// publishers) log and drop instead.
type Sink interface {
	Emit(event Event)
}

// Fanout delivers every event to each of the given sinks in order.
func Fanout(sinks ...Sink) Sink {
	return fanout(sinks)
}

type fanout []Sink

func (f fanout) Emit(event Event) {
	for _, s := range f {
		s.Emit(event)
	}
}

// Log is an in-memory, append-only event sink. Events are observable in
// exactly the order they were emitted.
type Log struct {
	mu     sync.RWMutex
	events []Event
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{}
}

// Emit appends the event to the log.
func (l *Log) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
}

// Events returns a copy of all recorded events in emission order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.events)
}
