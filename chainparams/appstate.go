package chainparams

import (
	"encoding/json"
	"fmt"

	"github.com/shieldnet/shield-node/ids"
)

// Allocation is one genesis-time credit of a token denomination to an
// address: an explicit per-address ledger entry rather than a chain-wide
// minimum, since init_chain needs to credit specific balances rather than
// enforce bounds. Denom selects which asset is credited: ids.NativeDenom
// (or an absent/empty denom, for genesis files predating this field)
// resolves to ids.StakingAssetID; any other denom gets its own asset,
// derived deterministically from the denom string.
type Allocation struct {
	Address ids.Address `json:"address"`
	Denom   string      `json:"denom"`
	Amount  uint64      `json:"amount"`
}

// ValidatorPower is a genesis validator's identity and initial voting
// power, the seed entry init_chain registers into the validator state
// machine before any block has run.
type ValidatorPower struct {
	IdentityKey ids.IdentityKey `json:"identity_key"`
	Power       uint64          `json:"power"`
}

// AppState is the complete genesis payload the worker's init_chain handler
// consumes: the chain rules plus the initial token allocation and
// validator set, bundled together the way a genesis file for any
// Tendermint-style chain bundles rules and initial state.
type AppState struct {
	Rules             Rules            `json:"rules"`
	Allocations       []Allocation     `json:"allocations"`
	InitialValidators []ValidatorPower `json:"initial_validators"`
}

// DecodeAppState parses a genesis file. It is the only place genesis JSON
// is trusted: a malformed genesis is a startup-time fatal error, never a
// handler-time one — crash-on-corruption applies to the running worker's
// own state, not to operator-supplied config.
func DecodeAppState(raw []byte) (AppState, error) {
	var st AppState
	if err := json.Unmarshal(raw, &st); err != nil {
		return AppState{}, fmt.Errorf("chainparams: decode app state: %w", err)
	}
	if st.Rules.ValidatorLimit <= 0 {
		return AppState{}, fmt.Errorf("chainparams: validator_limit must be positive")
	}
	return st, nil
}
