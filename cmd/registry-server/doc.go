// The registry-server binary serves the dapp registry API.
//
// It starts a fresh registry or restores one from a content-addressed
// snapshot, optionally publishes notifications to NATS, and persists a
// snapshot plus event archive to the configured storage backends on
// shutdown.
package main
