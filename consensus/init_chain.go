package consensus

import (
	"context"
	"encoding/binary"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/sirupsen/logrus"

	"github.com/shieldnet/shield-node/chainparams"
	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/inter/iblockproc"
)

// handleInitChain materializes a genesis app-state into the store and
// stages a synthetic genesis transaction, then immediately commits it to
// produce the genesis app hash.
func (w *Worker) handleInitChain(ctx context.Context, req Request) interface{} {
	r := req.(InitChainRequest)

	appState, err := chainparams.DecodeAppState(r.AppStateBytes)
	if err != nil {
		w.fatal(err, logrus.Fields{"stage": "init_chain.decode"})
		return InitChainResponse{}
	}

	if err := w.writer.CommitGenesis(ctx, &appState); err != nil {
		w.fatal(err, logrus.Fields{"stage": "init_chain.commit_genesis"})
		return InitChainResponse{}
	}

	reader := w.writer.PrivateReader()
	tree, err := reader.NoteCommitmentTree(ctx)
	if err != nil {
		w.fatal(err, logrus.Fields{"stage": "init_chain.tree"})
		return InitChainResponse{}
	}
	validatorState, err := reader.ValidatorStateMachine(ctx)
	if err != nil {
		w.fatal(err, logrus.Fields{"stage": "init_chain.validator_state"})
		return InitChainResponse{}
	}

	w.pending = iblockproc.New(iblockproc.BlockCtx{Height: 0, Epoch: 0}, tree, validatorState)

	for _, alloc := range appState.Allocations {
		w.pending.AddOutputNote(syntheticAllocationCommitment(alloc))
		w.pending.AddSupplyUpdate(ids.AssetIDForDenom(alloc.Denom), int64(alloc.Amount))
	}

	for _, v := range appState.InitialValidators {
		w.pending.AddSupplyUpdate(v.IdentityKey.DelegationAssetID(), 0)
	}

	resp := w.handleCommit(ctx, CommitRequest{}).(CommitResponse)

	validatorUpdates := make([]ValidatorUpdate, 0, len(appState.InitialValidators))
	for _, v := range appState.InitialValidators {
		validatorUpdates = append(validatorUpdates, ValidatorUpdate{IdentityKey: v.IdentityKey, Power: v.Power})
	}

	return InitChainResponse{
		ConsensusParams: appState.Rules,
		Validators:      validatorUpdates,
		AppHash:         resp.Data,
	}
}

// syntheticAllocationCommitment derives a deterministic note commitment for
// a genesis allocation. The real commitment scheme (hiding amount and
// recipient behind a note's randomness) belongs to a key-management/proof
// subsystem this worker does not implement; genesis allocations are public
// by construction, so a deterministic hash of their public fields stands in
// for it.
func syntheticAllocationCommitment(alloc chainparams.Allocation) ids.NoteCommitment {
	var amountBytes [8]byte
	binary.BigEndian.PutUint64(amountBytes[:], alloc.Amount)
	return ids.NoteCommitment(hash.Of(alloc.Address.Bytes(), []byte(alloc.Denom), amountBytes[:]))
}
