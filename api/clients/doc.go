/*
Package clients provides a client library for the dapp registry API.

RegistryClient covers the full HTTP surface: the read-only endpoints need
no credentials, while mutating calls are signed with the client's ECDSA
private key so the server can recover the caller identity. A client
without a key can still perform every read.

Typical usage:

	key, _ := crypto.GenerateKey()
	client := clients.NewRegistryClient("http://localhost:8080", key)

	id := interfaces.ComputeDappID("my-dapp")
	fee, _ := client.Fee(ctx)
	entry, err := client.Register(ctx, id, fee)
*/
package clients
