package store

import (
	"context"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/shieldnet/shield-node/chainparams"
	"github.com/shieldnet/shield-node/ids"
)

func testIdentity(b byte) ids.IdentityKey {
	return ids.IdentityKey{Type: ids.Schemes.Ed25519, Raw: common.LeftPadBytes([]byte{b}, 32)}
}

func TestMemoryCommitGenesis(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := NewMemory()

	appState := &chainparams.AppState{
		Rules: chainparams.FakeRules(),
		Allocations: []chainparams.Allocation{
			{Address: ids.Address{1}, Amount: 1_000_000},
		},
		InitialValidators: []chainparams.ValidatorPower{
			{IdentityKey: testIdentity(1), Power: 100},
		},
	}

	require.NoError(m.CommitGenesis(ctx, appState))

	asset, err := m.AssetLookup(ctx, ids.StakingAssetID)
	require.NoError(err)
	require.NotNil(asset)
	// Allocation amounts are credited by the genesis block at CommitBlock,
	// not by CommitGenesis itself.
	require.EqualValues(0, asset.TotalSupply)

	validators, err := m.ValidatorInfo(ctx, false)
	require.NoError(err)
	require.Len(validators, 1)
}

func TestMemoryQuarantineQueueAndRead(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := NewMemory()
	id := testIdentity(1)
	m.QueueQuarantine(id, ids.NoteCommitment{0xaa}, ids.Nullifier{0xbb}, 5)

	h := idx.Block(10)
	notes, err := m.QuarantinedNotes(ctx, &h, []ids.IdentityKey{id})
	require.NoError(err)
	require.True(notes.Next())
	require.False(notes.Next())
}
