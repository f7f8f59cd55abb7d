// Package storage provides content-addressed persistence for registry
// snapshots and event archives.
//
// Backends are created from location URIs by StorageBackendFactory:
//
//   - file:///var/lib/dapp-registry - local filesystem
//   - s3://[KEY:SECRET@]bucket/prefix?region=us-east-1 - Amazon S3 or compatible
//   - ipfs://host:port/ - IPFS node
//   - vault://host:port/mount/path?token=... - HashiCorp Vault KV store
//
// Multiple backends can be aggregated into a MultiBackend for redundancy:
// stores go to every available backend, fetches return the first hit.
//
// Content is addressed by its SHA-256 hash (interfaces.ContentID), so the
// registry server can log the snapshot ID at shutdown and restore from it
// on the next boot regardless of which backend serves the fetch.
package storage
