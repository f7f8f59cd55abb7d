// Package interfaces defines the core types, errors, and interfaces for the
// dapp registry system. It provides the contract between components without
// implementation details.
//
// The central abstraction is the DappRegistry interface: a permissioned
// mapping from 32-byte dapp identifiers to an owning identity plus an
// open-ended per-dapp metadata namespace. Registration is gated by a fee,
// mutation by ownership, and registry-wide administration by a single
// administrator identity.
//
// The package also defines the content-addressed storage contract used for
// registry snapshot persistence (see the storage package for backends).
package interfaces
