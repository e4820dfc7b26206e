// Package staking implements the per-validator bookkeeping the consensus
// worker needs: validator identity/weight records (adapted from the
// teacher's inter/drivertype package), exchange-rate computation
// (RateData/BaseRate) and the validator state machine driving Active /
// Inactive / Unbonding / Slashed transitions.
package staking

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/shieldnet/shield-node/ids"
)

// ConsensusKey is the short-lived key the replication engine uses to
// attribute byzantine evidence to a validator, distinct from the
// long-lived IdentityKey used everywhere else in the chain's own state.
type ConsensusKey []byte

// FundingStream is a payout rule attaching a fraction (in basis points) of
// a validator's rewards to a fixed address; the validator's commission is
// the sum of its streams' rates.
type FundingStream struct {
	Address    ids.Address
	RateBps    uint32 // fraction of the validator's gross rewards routed to Address, in bps of 10_000
}

// RewardAmount computes this stream's share of the commission a validator
// earns for the epoch transitioning from currentBase to nextBase, scaled
// by the validator's delegation-token supply.
func (f FundingStream) RewardAmount(delegationSupply uint64, nextBase, currentBase BaseRate) (uint64, error) {
	if nextBase.ExchangeRate < currentBase.ExchangeRate {
		// Rates never decrease in this design; a regression indicates a
		// caller bug rather than a legitimate economic event.
		return 0, nil
	}
	rateDelta := nextBase.ExchangeRate - currentBase.ExchangeRate
	gross := mulDiv(delegationSupply, rateDelta, rateScale)
	return mulDiv(gross, uint64(f.RateBps), 10_000), nil
}

// ValidatorInfo is the node-side representation the worker receives from
// store.Reader.ValidatorInfo: a validator's index, identity key, consensus
// key and funding streams.
type ValidatorInfo struct {
	ValidatorIdx   idx.ValidatorID
	IdentityKey    ids.IdentityKey
	ConsensusKey   ConsensusKey
	FundingStreams []FundingStream
}
