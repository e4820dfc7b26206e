// Package chainparams defines the network rules and genesis configuration
// the consensus worker is parameterized by: epoch timing, validator-set
// sizing, slashing and reward parameters, and the genesis allocation
// schema.
package chainparams

import (
	"encoding/json"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// NetworkID identifies which deployment a Rules value belongs to.
const (
	MainNetworkID uint64 = 0xfa
	TestNetworkID uint64 = 0xfa2
	FakeNetworkID uint64 = 0xfa3
)

// RulesRLP is the wire-serializable view of Rules, kept separate from Rules
// itself so that adding a non-serializable convenience field later does not
// change the encoding.
type RulesRLP struct {
	Name      string
	NetworkID uint64

	// EpochDuration is the number of blocks an epoch spans before end_epoch runs.
	EpochDuration idx.Block

	// UnbondingEpochs is the number of epochs an unbonding note/nullifier
	// must sit in quarantine before it can be revealed.
	UnbondingEpochs idx.Epoch

	// ValidatorLimit caps the size of the active validator set; rotation
	// keeps only the top ValidatorLimit candidates by voting power.
	ValidatorLimit int

	// SlashingPenaltyBps is the fraction (in basis points of 10_000) of a
	// slashed validator's delegation pool that is burned.
	SlashingPenaltyBps uint32

	// BaseRewardRateBps is the chain-wide per-epoch reward rate, in basis
	// points, that seeds every validator's exchange-rate growth. Promoted
	// here from a hardcoded constant so it can vary per deployment.
	BaseRewardRateBps uint64
}

// Rules is the complete set of consensus-critical parameters for a network
// deployment.
type Rules RulesRLP

// Copy returns a deep copy. Rules currently holds no pointer or slice
// fields, so this is a plain value copy, kept as a method (rather than
// relying on assignment at call sites) so that a future pointer field does
// not silently turn every caller into a shallow-copy bug.
func (r Rules) Copy() Rules {
	return r
}

// String returns Rules as JSON, for logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}

// DefaultRules returns conservative production parameters.
func DefaultRules() Rules {
	return Rules{
		Name:               "main",
		NetworkID:          MainNetworkID,
		EpochDuration:      4_000,
		UnbondingEpochs:    21,
		ValidatorLimit:     100,
		SlashingPenaltyBps: 500,
		BaseRewardRateBps:  300,
	}
}

// FakeRules returns accelerated parameters for tests: short epochs, a tiny
// validator set and a short unbonding period, so seed scenarios don't need
// thousands of blocks to observe an epoch boundary.
func FakeRules() Rules {
	return Rules{
		Name:               "fake",
		NetworkID:          FakeNetworkID,
		EpochDuration:      10,
		UnbondingEpochs:    2,
		ValidatorLimit:     4,
		SlashingPenaltyBps: 500,
		BaseRewardRateBps:  300,
	}
}
