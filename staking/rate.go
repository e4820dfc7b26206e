package staking

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/shieldnet/shield-node/internal/checked"
)

// rateScale is the fixed-point scale every exchange rate in this package is
// carried at: a rate of rateScale means "1 staking token per delegation
// token". Using an integer scale (rather than a float) keeps the exchange
// rate arithmetic bit-identical across replicas.
const rateScale = 1_000_000_000

// BaseRate is the chain-wide reward rate for a given epoch, the seed every
// validator's own RateData grows from.
type BaseRate struct {
	EpochIndex   idx.Epoch
	ExchangeRate uint64 // scaled by rateScale; starts at rateScale (1.0)
}

// DefaultBaseRate returns the base rate for epoch 0: exchange rate 1.0.
func DefaultBaseRate() BaseRate {
	return BaseRate{EpochIndex: 0, ExchangeRate: rateScale}
}

// Next computes the following epoch's base rate, growing the exchange rate
// by rewardRateBps (basis points of the current rate).
func (b BaseRate) Next(rewardRateBps uint64) (BaseRate, error) {
	growth, err := mulDivChecked(b.ExchangeRate, rewardRateBps, 10_000)
	if err != nil {
		return BaseRate{}, err
	}
	next, err := checked.Add(b.ExchangeRate, growth)
	if err != nil {
		return BaseRate{}, err
	}
	return BaseRate{EpochIndex: b.EpochIndex + 1, ExchangeRate: next}, nil
}

// RateData is a single validator's exchange rate for a given epoch: the
// ratio between its delegation token and the chain's staking token.
type RateData struct {
	EpochIndex   idx.Epoch
	ExchangeRate uint64 // scaled by rateScale
}

// DefaultRateData returns the 1:1 starting rate for a newly registered
// validator at the given epoch.
func DefaultRateData(epoch idx.Epoch) RateData {
	return RateData{EpochIndex: epoch, ExchangeRate: rateScale}
}

// UnbondedAmount returns the staking-token amount implied by burning
// delegationAmount delegation tokens at this rate.
func (r RateData) UnbondedAmount(delegationAmount uint64) (uint64, error) {
	return mulDivChecked(delegationAmount, r.ExchangeRate, rateScale)
}

// VotingPower converts a delegation-token supply into staking-token
// equivalent voting power at this rate. baseRate is accepted to mirror the
// source's signature (so validator_statuses computed for a given base rate
// are directly comparable across validators), though the current formula
// does not need to read it beyond the caller's epoch bookkeeping.
func (r RateData) VotingPower(delegationSupply uint64, _ BaseRate) (uint64, error) {
	return mulDivChecked(delegationSupply, r.ExchangeRate, rateScale)
}

// Next derives the validator's exchange rate for the following epoch from
// the chain-wide nextBaseRate, net of the commission its funding streams
// take. Validators with no funding streams simply track the base rate.
func (r RateData) Next(nextBaseRate BaseRate, currentBaseRate BaseRate, streams []FundingStream) (RateData, error) {
	if nextBaseRate.ExchangeRate < currentBaseRate.ExchangeRate {
		return RateData{EpochIndex: nextBaseRate.EpochIndex, ExchangeRate: r.ExchangeRate}, nil
	}
	growth, err := checked.Sub(nextBaseRate.ExchangeRate, currentBaseRate.ExchangeRate)
	if err != nil {
		return RateData{}, err
	}

	var commissionBps uint64
	for _, s := range streams {
		commissionBps += uint64(s.RateBps)
	}
	if commissionBps > 10_000 {
		commissionBps = 10_000
	}

	netGrowthFactor, err := mulDivChecked(growth, 10_000-commissionBps, 10_000)
	if err != nil {
		return RateData{}, err
	}
	scaledGrowth, err := mulDivChecked(r.ExchangeRate, netGrowthFactor, currentBaseRate.ExchangeRate)
	if err != nil {
		return RateData{}, err
	}
	next, err := checked.Add(r.ExchangeRate, scaledGrowth)
	if err != nil {
		return RateData{}, err
	}
	return RateData{EpochIndex: nextBaseRate.EpochIndex, ExchangeRate: next}, nil
}

// mulDiv is the non-erroring convenience form used where overflow has
// already been ruled out by the caller (e.g. bps fractions of a value that
// cannot itself overflow uint64).
func mulDiv(a, b, d uint64) uint64 {
	v, err := mulDivChecked(a, b, d)
	if err != nil {
		panic(err)
	}
	return v
}

// mulDivChecked computes a*b/d using a 128-bit intermediate (via big words)
// so that a*b can exceed uint64 range without wrapping before the division
// narrows it back down; it still reports overflow if the final result
// itself cannot fit in uint64.
func mulDivChecked(a, b, d uint64) (uint64, error) {
	hi, lo := bitsMul64(a, b)
	q, _, err := bitsDiv64(hi, lo, d)
	return q, err
}
