// Package verify defines the two verification stages deliver_tx runs a
// transaction through. Both the stateless checks (proofs, signatures,
// balance) and the stateful checks (conflicts with committed state, current
// validator set) belong to a cryptographic subsystem this package only
// defines the interface seam for. PassThrough is a test double that accepts
// every transaction unconditionally, standing in for the real verifier in
// worker tests.
package verify

import (
	"context"

	"github.com/shieldnet/shield-node/store"
	"github.com/shieldnet/shield-node/txcodec"
)

// StatelessVerifier checks a transaction's internal consistency without
// touching chain state.
type StatelessVerifier interface {
	VerifyStateless(ctx context.Context, tx *txcodec.Transaction) (*txcodec.VerifiedTransaction, error)
}

// StatefulVerifier checks a stateless-verified transaction against
// committed state and the current validator set.
type StatefulVerifier interface {
	VerifyStateful(ctx context.Context, reader store.Reader, tx *txcodec.VerifiedTransaction) error
}

// PassThrough accepts every transaction, copying a Transaction's fields
// into a VerifiedTransaction unchanged and never rejecting anything at the
// stateful stage. It exists so the consensus package can be exercised
// without a real proof system.
type PassThrough struct{}

func (PassThrough) VerifyStateless(_ context.Context, tx *txcodec.Transaction) (*txcodec.VerifiedTransaction, error) {
	return &txcodec.VerifiedTransaction{
		Nullifiers:        tx.Nullifiers,
		Outputs:           tx.Outputs,
		DelegationChanges: tx.DelegationChanges,
		SupplyUpdates:     tx.SupplyUpdates,
	}, nil
}

func (PassThrough) VerifyStateful(context.Context, store.Reader, *txcodec.VerifiedTransaction) error {
	return nil
}
