package consensus

import (
	"context"

	"github.com/sirupsen/logrus"
)

// handleCommit moves the pending block out of the worker, hands it to the
// store writer for atomic persistence, and publishes a best-effort commit
// event. It is called both from the replication engine's Commit request
// and directly by handleInitChain to seal genesis.
func (w *Worker) handleCommit(ctx context.Context, req Request) interface{} {
	if w.pending == nil {
		w.fatal(errNoPendingBlock, logrus.Fields{"stage": "commit"})
		return CommitResponse{}
	}

	pb := w.pending
	w.pending = nil

	appHash, err := w.writer.CommitBlock(ctx, pb)
	if err != nil {
		w.fatal(err, logrus.Fields{"stage": "commit.write", "height": pb.Ctx.Height})
		return CommitResponse{}
	}

	w.spentNullifiersCounter.Inc(int64(len(pb.SpentNullifiers)))
	w.notesCounter.Inc(int64(len(pb.RewardNotes)))

	w.commitFeed.Send(CommitEvent{
		Height:  uint64(pb.Ctx.Height),
		Epoch:   uint64(pb.Ctx.Epoch),
		AppHash: appHash,
	})

	// Height-based pruning is out of scope (persistent storage layout is a
	// non-goal); RetainHeight=0 tells the replication engine to keep
	// everything.
	return CommitResponse{Data: appHash, RetainHeight: 0}
}
