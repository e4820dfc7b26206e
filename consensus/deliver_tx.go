package consensus

import (
	"context"
	"fmt"

	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/txcodec"
)

// handleDeliverTx runs a transaction through decode, stateless and
// stateful verification, checks it does not double-spend within this
// block, and stages its effects into the pending block. A missing pending
// block is fatal; every other error here is per-transaction: it never
// mutates the pending block and never crashes the worker.
func (w *Worker) handleDeliverTx(ctx context.Context, req Request) interface{} {
	r := req.(DeliverTxRequest)

	if w.pending == nil {
		w.fatal(errNoPendingBlock, nil)
		return DeliverTxResponse{Code: 1, Log: errNoPendingBlock.Error()}
	}

	tx, err := txcodec.Decode(r.TxBytes)
	if err != nil {
		return rejectedTx(err)
	}

	verified, err := w.stateless.VerifyStateless(ctx, tx)
	if err != nil {
		return rejectedTx(fmt.Errorf("stateless verification: %w", err))
	}

	if err := w.stateful.VerifyStateful(ctx, w.writer.PrivateReader(), verified); err != nil {
		return rejectedTx(fmt.Errorf("stateful verification: %w", err))
	}

	if conflict, found := w.firstConflictingNullifier(verified.Nullifiers); found {
		return rejectedTx(fmt.Errorf("double-spend within block: nullifier %s already spent", conflict))
	}

	for _, n := range verified.Nullifiers {
		w.pending.SpendNullifier(n)
	}
	for _, out := range verified.Outputs {
		w.pending.AddOutputNote(out.Commitment)
	}
	for _, dc := range verified.DelegationChanges {
		w.pending.AddDelegationChange(dc.Validator, dc.Amount, dc.Increase)
	}
	for _, su := range verified.SupplyUpdates {
		w.pending.AddSupplyUpdate(su.Asset, su.Delta)
	}

	return DeliverTxResponse{Code: 0}
}

func rejectedTx(err error) DeliverTxResponse {
	return DeliverTxResponse{Code: 1, Log: err.Error()}
}

func (w *Worker) firstConflictingNullifier(nullifiers []ids.Nullifier) (ids.Nullifier, bool) {
	spent := make(map[string]struct{}, len(w.pending.SpentNullifiers))
	for _, n := range w.pending.SpentNullifiers {
		spent[string(n.Bytes())] = struct{}{}
	}
	for _, n := range nullifiers {
		if _, ok := spent[string(n.Bytes())]; ok {
			return n, true
		}
	}
	return ids.Nullifier{}, false
}
