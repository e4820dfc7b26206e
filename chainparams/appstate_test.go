package chainparams

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeAppState(t *testing.T) {
	require := require.New(t)

	raw := []byte(`{
		"rules": {
			"Name": "fake",
			"NetworkID": 4003,
			"EpochDuration": 10,
			"UnbondingEpochs": 2,
			"ValidatorLimit": 4,
			"SlashingPenaltyBps": 500,
			"BaseRewardRateBps": 300
		},
		"allocations": [
			{"address": "0x0000000000000000000000000000000000000001", "amount": 1000}
		],
		"initial_validators": []
	}`)

	st, err := DecodeAppState(raw)
	require.NoError(err)
	require.Equal("fake", st.Rules.Name)
	require.Len(st.Allocations, 1)
	require.EqualValues(1000, st.Allocations[0].Amount)
}

func TestDecodeAppStateRejectsZeroValidatorLimit(t *testing.T) {
	require := require.New(t)
	raw := []byte(`{"rules": {"Name": "x"}}`)
	_, err := DecodeAppState(raw)
	require.Error(err)
}
