package staking

import "testing"

func TestBaseRateNext(t *testing.T) {
	tests := []struct {
		name         string
		start        BaseRate
		rewardBps    uint64
		wantExchange uint64
	}{
		{"zero reward rate holds flat", BaseRate{0, rateScale}, 0, rateScale},
		{"3% growth", BaseRate{0, rateScale}, 300, rateScale + rateScale*300/10_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.start.Next(tt.rewardBps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if next.ExchangeRate != tt.wantExchange {
				t.Errorf("got %d, want %d", next.ExchangeRate, tt.wantExchange)
			}
			if next.EpochIndex != tt.start.EpochIndex+1 {
				t.Errorf("epoch not advanced: got %d", next.EpochIndex)
			}
		})
	}
}

func TestRateDataUnbondedAmount(t *testing.T) {
	r := RateData{EpochIndex: 1, ExchangeRate: rateScale * 2}
	got, err := r.UnbondedAmount(1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2000 {
		t.Errorf("got %d, want 2000", got)
	}
}

func TestRateDataNextNoStreamsTracksBase(t *testing.T) {
	cur := DefaultRateData(0)
	curBase := DefaultBaseRate()
	nextBase, err := curBase.Next(1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next, err := cur.Next(nextBase, curBase, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.ExchangeRate != nextBase.ExchangeRate {
		t.Errorf("validator with no funding streams should track the base rate exactly: got %d, want %d", next.ExchangeRate, nextBase.ExchangeRate)
	}
}

func TestRateDataNextWithCommissionIsBelowBase(t *testing.T) {
	cur := DefaultRateData(0)
	curBase := DefaultBaseRate()
	nextBase, err := curBase.Next(1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	streams := []FundingStream{{RateBps: 500}}
	next, err := cur.Next(nextBase, curBase, streams)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.ExchangeRate >= nextBase.ExchangeRate {
		t.Errorf("commission should leave the validator's own rate below the uncommissioned base rate")
	}
}
