package consensus

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/inter/iblockproc"
)

// handleBeginBlock creates the block's PendingBlock and applies any
// byzantine-evidence slashing reported for this height.
func (w *Worker) handleBeginBlock(ctx context.Context, req Request) interface{} {
	r := req.(BeginBlockRequest)

	if w.pending != nil {
		w.fatal(errPendingBlockAlreadyExists, logrus.Fields{"height": r.Height})
		return BeginBlockResponse{}
	}

	reader := w.writer.PrivateReader()

	if metrics, err := reader.Metrics(ctx); err != nil {
		w.log.WithError(err).Warn("begin_block: metrics read failed")
	} else {
		w.spentNullifiersCounter.Clear()
		w.spentNullifiersCounter.Inc(int64(metrics.SpentNullifiers))
		w.notesCounter.Clear()
		w.notesCounter.Inc(int64(metrics.Notes))
	}

	tree, err := reader.NoteCommitmentTree(ctx)
	if err != nil {
		w.fatal(err, logrus.Fields{"stage": "begin_block.tree"})
		return BeginBlockResponse{}
	}
	validatorState, err := reader.ValidatorStateMachine(ctx)
	if err != nil {
		w.fatal(err, logrus.Fields{"stage": "begin_block.validator_state"})
		return BeginBlockResponse{}
	}

	rules := reader.ChainParams()
	epoch := idxEpochForHeight(r.Height, rules.EpochDuration)
	w.pending = iblockproc.New(iblockproc.BlockCtx{Height: r.Height, Epoch: epoch}, tree, validatorState)

	for _, evidence := range r.ByzantineValidators {
		id, err := ids.FromBytes(evidence.ConsensusAddress)
		if err != nil {
			w.log.WithError(err).Warn("begin_block: malformed byzantine-evidence identity, skipping")
			continue
		}
		if _, err := w.pending.SlashValidator(id, rules.SlashingPenaltyBps); err != nil {
			w.fatal(err, logrus.Fields{"stage": "begin_block.slash", "validator": id.String()})
			return BeginBlockResponse{}
		}
	}

	return BeginBlockResponse{}
}
