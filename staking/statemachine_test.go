package staking

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/shieldnet/shield-node/ids"
)

func idFromByte(b byte) ids.IdentityKey {
	return ids.IdentityKey{Type: ids.Schemes.Ed25519, Raw: common.LeftPadBytes([]byte{b}, 32)}
}

func TestStateMachineRegisterAndIterationOrder(t *testing.T) {
	require := require.New(t)
	m := NewStateMachine()
	m.Register(idFromByte(3), Active, DefaultRateData(0), 0)
	m.Register(idFromByte(1), Active, DefaultRateData(0), 0)
	m.Register(idFromByte(2), Active, DefaultRateData(0), 0)

	got := m.Validators()
	require.Len(got, 3)
	require.True(got[0].Less(got[1]))
	require.True(got[1].Less(got[2]))
}

func TestStateMachineSlashBeatsUnbonding(t *testing.T) {
	require := require.New(t)
	m := NewStateMachine()
	id := idFromByte(1)
	m.Register(id, Unbonding(5), DefaultRateData(0), 0)

	ok, err := m.Slash(id, 500)
	require.NoError(err)
	require.True(ok)

	state, known := m.GetState(id)
	require.True(known)
	require.Equal(StateSlashed, state.Kind)
}

func TestStateMachineSlashAppliesPenaltyToRate(t *testing.T) {
	require := require.New(t)
	m := NewStateMachine()
	id := idFromByte(1)
	m.Register(id, Active, DefaultRateData(0), 0)

	ok, err := m.Slash(id, 500) // 5%
	require.NoError(err)
	require.True(ok)

	rate, known := m.GetRate(id)
	require.True(known)
	require.Equal(uint64(950_000_000), rate.ExchangeRate) // 1.0 * 0.95
}

func TestStateMachineSlashUnknownValidator(t *testing.T) {
	require := require.New(t)
	m := NewStateMachine()
	ok, err := m.Slash(idFromByte(9), 500)
	require.NoError(err)
	require.False(ok)
}

func TestStateMachineUnslashedAndSlashedPartition(t *testing.T) {
	require := require.New(t)
	m := NewStateMachine()
	a, b, c := idFromByte(1), idFromByte(2), idFromByte(3)
	m.Register(a, Active, DefaultRateData(0), 0)
	m.Register(b, Active, DefaultRateData(0), 0)
	m.Register(c, Active, DefaultRateData(0), 0)
	_, err := m.Slash(b, 500)
	require.NoError(err)

	require.ElementsMatch([]ids.IdentityKey{a, c}, m.UnslashedValidators())
	require.ElementsMatch([]ids.IdentityKey{b}, m.SlashedValidators())
}

func TestStateMachineCopyIsIndependent(t *testing.T) {
	require := require.New(t)
	m := NewStateMachine()
	id := idFromByte(1)
	m.Register(id, Active, DefaultRateData(0), 0)

	cp := m.Copy()
	_, err := cp.Slash(id, 500)
	require.NoError(err)

	orig, _ := m.GetState(id)
	copied, _ := cp.GetState(id)
	require.Equal(StateActive, orig.Kind)
	require.Equal(StateSlashed, copied.Kind)
}
