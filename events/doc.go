// Package events defines the notifications emitted by the dapp registry and
// the sinks that deliver them.
//
// The registry emits exactly one event per successful mutating operation, in
// call order. Delivery is a collaborator concern: the registry only hands
// each event to a configured Sink. The package ships two sinks, an in-memory
// append-only Log (the default, also used by tests to observe emission
// order) and a NATS publisher for external consumers.
package events
