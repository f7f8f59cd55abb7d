// Package registry implements the dapp registry core: the state-transition
// and access-control logic behind the interfaces.DappRegistry contract.
//
// The registry maps unique 32-byte dapp identifiers to an owning identity
// and a per-dapp key/value metadata namespace. Registering a new identifier
// is gated by payment of a configurable fee, mutating an identifier's
// ownership or metadata is gated by proof that the caller is its current
// owner, and registry-wide operations (fee changes, handover, draining
// collected fees) are gated by the registry administrator.
//
// # Consistency
//
// All registry state - the entry table, the append-only registration index,
// the metadata table, the administrator, the fee, and the collected
// balance - lives in a single mutual-exclusion domain guarded by one lock.
// Every mutating operation validates its guards first and only then
// mutates, so a failed operation leaves all structures unchanged and emits
// no notification. A successful mutating operation emits exactly one
// notification, and notifications are observed in call order.
//
// # Index semantics
//
// The registration index is append-only and is not compacted when an entry
// is unregistered. Count reports index positions including stale ones; At
// on a stale position fails with interfaces.ErrNotRegistered rather than
// returning zeroed data.
package registry
