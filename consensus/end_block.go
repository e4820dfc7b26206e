package consensus

import (
	"context"
	"encoding/binary"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/shieldnet/shield-node/chainparams"
	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/internal/checked"
	"github.com/shieldnet/shield-node/inter/iblockproc"
	"github.com/shieldnet/shield-node/staking"
)

// handleEndBlock finalizes the height's pending block: it immediately
// reverts any quarantine belonging to a validator slashed this block, and
// if this height closes an epoch, runs end_epoch.
func (w *Worker) handleEndBlock(ctx context.Context, req Request) interface{} {
	r := req.(EndBlockRequest)

	if w.pending == nil {
		w.fatal(errNoPendingBlock, logrus.Fields{"height": r.Height})
		return EndBlockResponse{}
	}

	reader := w.writer.PrivateReader()
	rules := reader.ChainParams()

	w.pending.Ctx.Height = r.Height
	w.pending.Ctx.Epoch = idxEpochForHeight(r.Height, rules.EpochDuration)

	slashed := w.pending.ValidatorState.SlashedValidators()
	if len(slashed) > 0 {
		notes, err := reader.QuarantinedNotes(ctx, nil, slashed)
		if err != nil {
			w.fatal(err, logrus.Fields{"stage": "end_block.quarantined_notes"})
			return EndBlockResponse{}
		}
		for notes.Next() {
			w.pending.RevertQuarantinedNote(notes.Item())
		}
		if err := notes.Err(); err != nil {
			w.fatal(err, logrus.Fields{"stage": "end_block.quarantined_notes"})
			return EndBlockResponse{}
		}

		nullifiers, err := reader.QuarantinedNullifiers(ctx, nil, slashed)
		if err != nil {
			w.fatal(err, logrus.Fields{"stage": "end_block.quarantined_nullifiers"})
			return EndBlockResponse{}
		}
		for nullifiers.Next() {
			w.pending.RevertQuarantined(nullifiers.Item())
		}
		if err := nullifiers.Err(); err != nil {
			w.fatal(err, logrus.Fields{"stage": "end_block.quarantined_nullifiers"})
			return EndBlockResponse{}
		}
	}

	if r.Height == epochEnd(w.pending.Ctx.Epoch, rules.EpochDuration) {
		if err := w.endEpoch(ctx); err != nil {
			w.fatal(err, logrus.Fields{"stage": "end_epoch", "epoch": w.pending.Ctx.Epoch})
			return EndBlockResponse{}
		}
	}

	// Writing validator_updates back to the replication engine is left
	// deferred, matching the Open Questions decision in DESIGN.md.
	return EndBlockResponse{ValidatorUpdates: nil}
}

// stagedStatus is one validator's rotation input, computed in the
// per-validator loop and consumed by the rotation pass immediately after.
type stagedStatus struct {
	identity    ids.IdentityKey
	votingPower uint64
	state       staking.State
}

// endEpoch is the densest algorithm in the worker: it rolls every
// validator's exchange rate forward, reconciles delegation changes into
// the staking-token supply with checked arithmetic, emits commission
// reward notes, and rotates the active validator set.
func (w *Worker) endEpoch(ctx context.Context) error {
	reader := w.writer.PrivateReader()
	rules := reader.ChainParams()

	prevEpoch := w.pending.Ctx.Epoch
	currentEpoch := prevEpoch + 1

	// Step 1: reveal unbondings for unslashed validators.
	unslashed := w.pending.ValidatorState.UnslashedValidators()
	if len(unslashed) > 0 {
		height := w.pending.Ctx.Height
		notes, err := reader.QuarantinedNotes(ctx, &height, unslashed)
		if err != nil {
			return err
		}
		for notes.Next() {
			w.pending.AddOutputNote(notes.Item())
		}
		if err := notes.Err(); err != nil {
			return err
		}

		nullifiers, err := reader.QuarantinedNullifiers(ctx, &height, unslashed)
		if err != nil {
			return err
		}
		for nullifiers.Next() {
			w.pending.UnbondingNullifiers = append(w.pending.UnbondingNullifiers, nullifiers.Item())
		}
		if err := nullifiers.Err(); err != nil {
			return err
		}
	}

	// Step 2: current base rate, i.e. the rate the ending epoch (prevEpoch)
	// was running at; Next() below advances it to currentEpoch.
	currentBaseRate, err := reader.BaseRateData(ctx, prevEpoch)
	if err != nil {
		return err
	}

	// Step 3: staking-token supply.
	stakingAsset, err := reader.AssetLookup(ctx, ids.StakingAssetID)
	if err != nil {
		return err
	}
	if stakingAsset == nil {
		return errMissingStakingAsset
	}
	initialStakingSupply := stakingAsset.TotalSupply
	stakingSupply := initialStakingSupply

	// Step 4: merge delegation changes.
	delegationChanges, err := reader.DelegationChanges(ctx, prevEpoch)
	if err != nil {
		return err
	}
	if delegationChanges == nil {
		delegationChanges = make(map[ids.IdentityKey]int64)
	}
	for _, dc := range w.pending.DelegationChanges {
		delta := int64(dc.Amount)
		if !dc.Increase {
			delta = -delta
		}
		delegationChanges[dc.Validator] += delta
	}

	// Step 5: next base rate.
	nextBaseRate, err := currentBaseRate.Next(rules.BaseRewardRateBps)
	if err != nil {
		return err
	}

	// Step 6: per-validator loop, deterministic order. Slashed and Inactive
	// validators are both held entirely outside this epoch's accounting:
	// their exchange rate stays flat, they accrue no delegation changes and
	// earn no commission. An Inactive validator's voting power staged for
	// rotation (step 7) is whatever was last persisted for it, not a fresh
	// computation; a Slashed validator is staged with zero and is never
	// ranked. A validator can still be promoted back to Active from
	// Inactive, since that persisted voting power may still rank in the top
	// ValidatorLimit.
	validators := w.pending.ValidatorState.Validators()
	staged := make([]stagedStatus, 0, len(validators))
	for _, id := range validators {
		state, _ := w.pending.ValidatorState.GetState(id)

		if state.Kind == staking.StateSlashed {
			staged = append(staged, stagedStatus{identity: id, votingPower: 0, state: state})
			continue
		}

		if state.Kind == staking.StateInactive {
			prevPower, _ := w.pending.ValidatorState.GetVotingPower(id)
			staged = append(staged, stagedStatus{identity: id, votingPower: prevPower, state: state})
			continue
		}

		currentRate, _ := w.pending.ValidatorState.GetRate(id)

		streams, err := reader.FundingStreams(ctx, id)
		if err != nil {
			return err
		}
		nextRate, err := currentRate.Next(nextBaseRate, currentBaseRate, streams)
		if err != nil {
			return err
		}

		delegationAsset := id.DelegationAssetID()
		assetInfo, err := reader.AssetLookup(ctx, delegationAsset)
		if err != nil {
			return err
		}
		var currentDelegationSupply uint64
		if assetInfo != nil {
			currentDelegationSupply = assetInfo.TotalSupply
		}

		delta := delegationChanges[id]
		var newDelegationSupply uint64
		if delta >= 0 {
			newDelegationSupply, err = checked.Add(currentDelegationSupply, uint64(delta))
		} else {
			newDelegationSupply, err = checked.Sub(currentDelegationSupply, uint64(-delta))
		}
		if err != nil {
			return err
		}

		if delta != 0 {
			magnitude := uint64(delta)
			if delta < 0 {
				magnitude = uint64(-delta)
			}
			unbonded, err := currentRate.UnbondedAmount(magnitude)
			if err != nil {
				return err
			}
			if delta > 0 {
				stakingSupply, err = checked.Sub(stakingSupply, unbonded)
			} else {
				stakingSupply, err = checked.Add(stakingSupply, unbonded)
			}
			if err != nil {
				return err
			}
			w.pending.AddSupplyUpdate(delegationAsset, delta)
		}

		votingPower, err := nextRate.VotingPower(newDelegationSupply, nextBaseRate)
		if err != nil {
			return err
		}

		for _, stream := range streams {
			amount, err := stream.RewardAmount(newDelegationSupply, nextBaseRate, currentBaseRate)
			if err != nil {
				return err
			}
			if amount > 0 {
				w.pending.AddRewardNote(stream.Address, ids.StakingAssetID, amount)
			}
		}

		w.pending.ValidatorState.SetRate(id, nextRate)
		w.pending.ValidatorState.SetVotingPower(id, votingPower)
		staged = append(staged, stagedStatus{identity: id, votingPower: votingPower, state: state})
	}

	if stakingSupply != initialStakingSupply {
		w.pending.AddSupplyUpdate(ids.StakingAssetID, int64(stakingSupply)-int64(initialStakingSupply))
	}

	// Step 7: validator-set rotation.
	w.rotateValidatorSet(staged, rules, currentEpoch)

	w.pending.NextBaseRate = &nextBaseRate
	w.pending.NextRateEpoch = currentEpoch

	for _, rn := range w.pending.RewardNotes {
		w.pending.AddOutputNote(syntheticRewardCommitment(rn))
	}

	return nil
}

// rotateValidatorSet ranks every non-slashed staged validator by voting
// power (ties broken ascending by identity key) and applies the
// transition table: the top rules.ValidatorLimit become or stay Active,
// the rest leave Active into Unbonding, expired Unbonding validators fall
// to Inactive, and Slashed validators never move again.
func (w *Worker) rotateValidatorSet(staged []stagedStatus, rules chainparams.Rules, currentEpoch idx.Epoch) {
	candidates := make([]staking.RankedValidator, 0, len(staged))
	for _, s := range staged {
		if s.state.Kind == staking.StateSlashed {
			continue
		}
		candidates = append(candidates, staking.RankedValidator{IdentityKey: s.identity, VotingPower: s.votingPower})
	}
	top := staking.SelectValidatorSet(candidates, rules.ValidatorLimit)

	inTop := make(map[string]bool, len(top))
	for _, rv := range top {
		inTop[string(rv.IdentityKey.Bytes())] = true
	}

	for _, s := range staged {
		id := s.identity
		switch {
		case s.state.Kind == staking.StateSlashed:
			// Terminal: slashing always wins, no further transition.
		case (s.state.Kind == staking.StateInactive || s.state.Kind == staking.StateUnbonding) && inTop[string(id.Bytes())]:
			w.pending.ValidatorState.SetState(id, staking.Active)
		case s.state.Kind == staking.StateActive && !inTop[string(id.Bytes())]:
			w.pending.ValidatorState.SetState(id, staking.Unbonding(currentEpoch+rules.UnbondingEpochs))
		case s.state.Kind == staking.StateUnbonding && s.state.UnbondingEpoch <= currentEpoch:
			w.pending.ValidatorState.SetState(id, staking.Inactive)
		}
	}
}

// syntheticRewardCommitment derives a deterministic note commitment for a
// funding-stream reward note, the same public-fields-hash stand-in used
// for genesis allocations (see syntheticAllocationCommitment).
func syntheticRewardCommitment(rn iblockproc.RewardNote) ids.NoteCommitment {
	var amountBytes [8]byte
	binary.BigEndian.PutUint64(amountBytes[:], rn.Amount)
	return ids.NoteCommitment(hash.Of(rn.Recipient.Bytes(), rn.Asset.Bytes(), amountBytes[:]))
}
