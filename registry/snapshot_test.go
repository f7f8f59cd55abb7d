package registry

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/dapp-registry-backend/interfaces"
)

func TestSnapshotRoundTrip(t *testing.T) {
	reg, _ := newTestRegistry(t, 10)
	first := interfaces.ComputeDappID("first")
	second := interfaces.ComputeDappID("second")
	gone := interfaces.ComputeDappID("gone")

	require.NoError(t, reg.Register(first, big.NewInt(10), alice))
	require.NoError(t, reg.Register(gone, big.NewInt(10), alice))
	require.NoError(t, reg.Register(second, big.NewInt(12), bob))
	require.NoError(t, reg.SetMeta(first, "url", []byte("https://example.org"), alice))
	require.NoError(t, reg.Unregister(gone, alice))

	snap := reg.Snapshot()

	// Snapshots survive JSON encoding, the form the storage backends keep.
	encoded, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	restored, err := Restore(&decoded, nil)
	require.NoError(t, err)

	assert.Equal(t, reg.Count(), restored.Count())
	assert.Equal(t, reg.Fee(), restored.Fee())
	assert.Equal(t, reg.Balance(), restored.Balance())
	assert.Equal(t, reg.Administrator(), restored.Administrator())

	entry, err := restored.Get(first)
	require.NoError(t, err)
	assert.Equal(t, alice, entry.Owner)

	value, err := restored.Meta(first, "url")
	require.NoError(t, err)
	assert.Equal(t, []byte("https://example.org"), value)

	// The stale index position survives the round trip too.
	_, err = restored.At(1)
	assert.ErrorIs(t, err, interfaces.ErrNotRegistered)
	_, err = restored.Get(gone)
	assert.ErrorIs(t, err, interfaces.ErrNotRegistered)

	// The restored registry is fully operational.
	require.NoError(t, restored.Register(gone, big.NewInt(10), bob))
	assert.Equal(t, big.NewInt(42), restored.Balance())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	reg, _ := newTestRegistry(t, 1)
	id := interfaces.ComputeDappID("awesome")
	require.NoError(t, reg.Register(id, big.NewInt(1), alice))

	snap := reg.Snapshot()
	require.NoError(t, reg.SetDappOwner(id, bob, alice))
	require.NoError(t, reg.Register(interfaces.ComputeDappID("later"), big.NewInt(1), bob))

	assert.Len(t, snap.Index, 1)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, alice, snap.Entries[0].Owner)
}

func TestRestore_RejectsCorruptSnapshots(t *testing.T) {
	id := interfaces.ComputeDappID("awesome")

	base := func() *Snapshot {
		return &Snapshot{
			Administrator: admin,
			Fee:           big.NewInt(1),
			Balance:       big.NewInt(1),
			Index:         []interfaces.DappID{id},
			Entries:       []interfaces.Entry{{ID: id, Owner: alice}},
		}
	}

	snap := base()
	snap.Administrator = interfaces.Identity{}
	_, err := Restore(snap, nil)
	assert.ErrorIs(t, err, interfaces.ErrInvalidIdentity)

	snap = base()
	snap.Entries[0].Owner = interfaces.Identity{}
	_, err = Restore(snap, nil)
	assert.ErrorIs(t, err, interfaces.ErrInvalidIdentity)

	snap = base()
	snap.Index = nil
	_, err = Restore(snap, nil)
	assert.Error(t, err)

	snap = base()
	snap.Fee = big.NewInt(-1)
	_, err = Restore(snap, nil)
	assert.Error(t, err)

	snap = base()
	snap.Metadata = map[interfaces.DappID]map[string][]byte{
		interfaces.ComputeDappID("other"): {"k": []byte("v")},
	}
	_, err = Restore(snap, nil)
	assert.Error(t, err)

	_, err = Restore(nil, nil)
	assert.Error(t, err)
}
