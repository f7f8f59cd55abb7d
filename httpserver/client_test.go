package httpserver

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/dapp-registry-backend/api/clients"
	"github.com/ruteri/dapp-registry-backend/interfaces"
)

func TestRegistryClientRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ownerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	owner := clients.NewRegistryClient(env.server.URL, ownerKey)
	admin := clients.NewRegistryClient(env.server.URL, env.adminKey)
	reader := clients.NewRegistryClient(env.server.URL, nil)

	fee, err := reader.Fee(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", fee.String())

	id := interfaces.ComputeDappID("client-dapp")
	entry, err := owner.Register(ctx, id, fee)
	require.NoError(t, err)
	ownerIdentity, err := owner.Identity()
	require.NoError(t, err)
	assert.Equal(t, ownerIdentity, entry.Owner)

	count, err := reader.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	atEntry, err := reader.At(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, id, atEntry.ID)

	require.NoError(t, owner.SetMeta(ctx, id, "homepage", []byte("https://example.org")))
	value, err := reader.Meta(ctx, id, "homepage")
	require.NoError(t, err)
	assert.Equal(t, []byte("https://example.org"), value)

	// Reads need no key, mutations do.
	err = reader.SetMeta(ctx, id, "homepage", []byte("x"))
	assert.ErrorIs(t, err, clients.ErrNoSigningKey)

	newOwnerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	newOwner := clients.NewRegistryClient(env.server.URL, newOwnerKey)
	newOwnerIdentity, err := newOwner.Identity()
	require.NoError(t, err)

	require.NoError(t, owner.SetDappOwner(ctx, id, newOwnerIdentity))
	entry, err = reader.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, newOwnerIdentity, entry.Owner)

	// The previous owner lost control.
	err = owner.Unregister(ctx, id)
	assert.Error(t, err)

	drained, err := admin.Drain(ctx, env.admin)
	require.NoError(t, err)
	assert.Equal(t, "100", drained.String())

	require.NoError(t, admin.SetFee(ctx, big.NewInt(0)))
	fee, err = reader.Fee(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fee.Sign())

	require.NoError(t, newOwner.Unregister(ctx, id))
	_, err = reader.Get(ctx, id)
	assert.Error(t, err)
}
