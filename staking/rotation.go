package staking

import (
	"sort"

	"github.com/shieldnet/shield-node/ids"
)

// RankedValidator is one entry in a validator-set rotation decision: an
// identity key together with the voting power it carries into the next
// epoch.
type RankedValidator struct {
	IdentityKey ids.IdentityKey
	VotingPower uint64
}

// SelectValidatorSet ranks candidates by voting power descending, breaking
// ties ascending by identity key, and returns at most limit of them: sort
// the full candidate set once, then take the head of it, so the same
// candidate list always produces the same validator set across replicas.
func SelectValidatorSet(candidates []RankedValidator, limit int) []RankedValidator {
	ranked := make([]RankedValidator, len(candidates))
	copy(ranked, candidates)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].VotingPower != ranked[j].VotingPower {
			return ranked[i].VotingPower > ranked[j].VotingPower
		}
		return ranked[i].IdentityKey.Less(ranked[j].IdentityKey)
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
