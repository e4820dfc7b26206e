// Package txcodec models the wire transaction format at the boundary the
// consensus worker actually touches: decoding bytes into a Transaction, and
// the VerifiedTransaction shape a verifier hands back once it has checked
// proofs and signatures. The real wire format and its zero-knowledge proof
// system belong to a separate subsystem; Decode here is a minimal JSON test
// double standing in for that codec.
package txcodec

import (
	"encoding/json"
	"fmt"

	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/inter/iblockproc"
)

// Output is one note a transaction creates.
type Output struct {
	Commitment ids.NoteCommitment `json:"commitment"`
	Recipient  ids.Address        `json:"recipient"`
	Asset      ids.AssetID        `json:"asset"`
	Amount     uint64             `json:"amount"`
}

// Transaction is the decoded-but-unverified wire transaction.
type Transaction struct {
	Nullifiers        []ids.Nullifier               `json:"nullifiers"`
	Outputs           []Output                      `json:"outputs"`
	DelegationChanges []iblockproc.DelegationChange `json:"delegation_changes"`
	SupplyUpdates     []iblockproc.SupplyUpdate     `json:"supply_updates"`
}

// VerifiedTransaction is what a verifier returns once a Transaction has
// passed both the stateless and stateful checks: the exact set of effects
// deliver_tx is allowed to stage into a PendingBlock.
type VerifiedTransaction struct {
	Nullifiers        []ids.Nullifier
	Outputs           []Output
	DelegationChanges []iblockproc.DelegationChange
	SupplyUpdates     []iblockproc.SupplyUpdate
}

// Decode parses wire bytes into a Transaction. Any malformed input is a
// per-transaction error, never fatal.
func Decode(raw []byte) (*Transaction, error) {
	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("txcodec: decode: %w", err)
	}
	return &tx, nil
}
