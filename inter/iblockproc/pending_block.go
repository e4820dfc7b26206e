// Package iblockproc defines PendingBlock, the single mutation accumulator
// the consensus worker threads through begin_block/deliver_tx/end_block:
// every side effect a block produces is recorded here first and only
// applied to the store at commit. It is a single structure rather than a
// decided/finalized pair because this chain has no DAG/event layer sitting
// between the two.
package iblockproc

import (
	"crypto/sha256"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/shieldnet/shield-node/accumulator"
	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/staking"
)

// SupplyUpdate is a signed delta applied to one asset's total supply.
// Negative deltas (burns) and positive deltas (mints, e.g. block rewards)
// both flow through the same checked-arithmetic path at commit.
type SupplyUpdate struct {
	Asset ids.AssetID
	Delta int64
}

// DelegationChange records a delegate/undelegate observed in a transaction:
// Amount delegation tokens of Validator's delegation asset were minted
// (Increase) or burned (!Increase) this block.
type DelegationChange struct {
	Validator ids.IdentityKey
	Amount    uint64
	Increase  bool
}

// RewardNote is a funding-stream payout the worker must write as an output
// note at commit.
type RewardNote struct {
	Recipient ids.Address
	Asset     ids.AssetID
	Amount    uint64
}

// BlockCtx carries the metadata a block is decided under.
type BlockCtx struct {
	Height idx.Block
	Epoch  idx.Epoch
}

// PendingBlock is the mutation accumulator for one block under
// construction. A fresh PendingBlock is created in begin_block by cloning
// the live validator-set state and note-commitment tree; deliver_tx and
// end_block/end_epoch append to its slices and mutate its cloned
// ValidatorState; commit is the only place its contents are written back to
// the store and the clones are promoted to "live".
type PendingBlock struct {
	Ctx BlockCtx

	NoteTree accumulator.Tree

	SpentNullifiers     []ids.Nullifier
	RevertingNotes      []ids.NoteCommitment
	RevertingNullifiers []ids.Nullifier
	UnbondingNullifiers []ids.Nullifier

	SupplyUpdates     []SupplyUpdate
	DelegationChanges []DelegationChange
	RewardNotes       []RewardNote

	ValidatorState *staking.StateMachine

	// NextBaseRate and NextRateEpoch are only set once end_epoch has run
	// for this block; they are nil/zero on every other block.
	NextBaseRate  *staking.BaseRate
	NextRateEpoch idx.Epoch
}

// New returns a PendingBlock seeded from the live validator-set state and
// note-commitment tree, cloning both so that handler mutations never touch
// live state before commit.
func New(ctx BlockCtx, liveTree accumulator.Tree, liveValidators *staking.StateMachine) *PendingBlock {
	return &PendingBlock{
		Ctx:            ctx,
		NoteTree:       liveTree.Clone(),
		ValidatorState: liveValidators.Copy(),
	}
}

// AddOutputNote appends a commitment to the cloned note tree.
func (pb *PendingBlock) AddOutputNote(commitment ids.NoteCommitment) {
	pb.NoteTree.Append(commitment)
}

// SpendNullifier records a spent nullifier. Callers are responsible for
// checking it is not already present in this block or in the store so a
// nullifier is never spent twice; PendingBlock itself only accumulates.
func (pb *PendingBlock) SpendNullifier(n ids.Nullifier) {
	pb.SpentNullifiers = append(pb.SpentNullifiers, n)
}

// QueueUnbonding records a quarantined nullifier being released this block.
func (pb *PendingBlock) QueueUnbonding(n ids.Nullifier) {
	pb.UnbondingNullifiers = append(pb.UnbondingNullifiers, n)
}

// RevertQuarantined records a quarantined nullifier being reverted because
// the validator backing it was slashed before the unbonding period expired
// ("revert beats reveal").
func (pb *PendingBlock) RevertQuarantined(n ids.Nullifier) {
	pb.RevertingNullifiers = append(pb.RevertingNullifiers, n)
}

// RevertQuarantinedNote records a quarantined note being reverted for the
// same reason; it is never added to the output-note buffer or the
// accumulator.
func (pb *PendingBlock) RevertQuarantinedNote(c ids.NoteCommitment) {
	pb.RevertingNotes = append(pb.RevertingNotes, c)
}

// AddSupplyUpdate records a signed delta to an asset's total supply.
func (pb *PendingBlock) AddSupplyUpdate(asset ids.AssetID, delta int64) {
	pb.SupplyUpdates = append(pb.SupplyUpdates, SupplyUpdate{Asset: asset, Delta: delta})
}

// AddDelegationChange records a delegate/undelegate.
func (pb *PendingBlock) AddDelegationChange(validator ids.IdentityKey, amount uint64, increase bool) {
	pb.DelegationChanges = append(pb.DelegationChanges, DelegationChange{
		Validator: validator,
		Amount:    amount,
		Increase:  increase,
	})
}

// AddRewardNote records a funding-stream payout to write at commit.
func (pb *PendingBlock) AddRewardNote(recipient ids.Address, asset ids.AssetID, amount uint64) {
	pb.RewardNotes = append(pb.RewardNotes, RewardNote{Recipient: recipient, Asset: asset, Amount: amount})
}

// SlashValidator moves a validator straight to Slashed in the cloned state
// machine, applying the chain's slashing penalty to its exchange rate,
// independent of whatever state it was previously in.
func (pb *PendingBlock) SlashValidator(id ids.IdentityKey, penaltyBps uint32) (bool, error) {
	return pb.ValidatorState.Slash(id, penaltyBps)
}

// snapshotSupplyUpdate is SupplyUpdate with its signed delta split into a
// sign flag and a magnitude, since RLP has no signed integer encoding.
type snapshotSupplyUpdate struct {
	Asset    ids.AssetID
	Negative bool
	Amount   uint64
}

// snapshot is the canonical, RLP-encodable view of a PendingBlock used only
// for Hash(): it sorts the nullifier and note-commitment collections, so the
// app hash does not depend on the order those were accumulated in. Supply
// updates, delegation changes and reward notes keep their accumulation order.
type snapshot struct {
	Height idx.Block
	Epoch  idx.Epoch
	Root   hash.Hash

	SpentNullifiers     [][]byte
	RevertingNotes      [][]byte
	RevertingNullifiers [][]byte
	UnbondingNullifiers [][]byte
	SupplyUpdates       []snapshotSupplyUpdate
	DelegationChanges   []DelegationChange
	RewardNotes         []RewardNote
	SlashedValidators   [][]byte
}

// Hash computes the SHA256 hash of the RLP-encoded block snapshot: the app
// hash every replica must agree on after commit.
func (pb *PendingBlock) Hash() hash.Hash {
	snap := snapshot{
		Height:            pb.Ctx.Height,
		Epoch:             pb.Ctx.Epoch,
		Root:              pb.NoteTree.Root(),
		DelegationChanges: append([]DelegationChange(nil), pb.DelegationChanges...),
		RewardNotes:       append([]RewardNote(nil), pb.RewardNotes...),
	}
	for _, su := range pb.SupplyUpdates {
		amount := uint64(su.Delta)
		if su.Delta < 0 {
			amount = uint64(-su.Delta)
		}
		snap.SupplyUpdates = append(snap.SupplyUpdates, snapshotSupplyUpdate{Asset: su.Asset, Negative: su.Delta < 0, Amount: amount})
	}
	for _, n := range pb.SpentNullifiers {
		snap.SpentNullifiers = append(snap.SpentNullifiers, n.Bytes())
	}
	for _, c := range pb.RevertingNotes {
		snap.RevertingNotes = append(snap.RevertingNotes, c.Bytes())
	}
	for _, n := range pb.RevertingNullifiers {
		snap.RevertingNullifiers = append(snap.RevertingNullifiers, n.Bytes())
	}
	for _, n := range pb.UnbondingNullifiers {
		snap.UnbondingNullifiers = append(snap.UnbondingNullifiers, n.Bytes())
	}
	for _, id := range pb.ValidatorState.SlashedValidators() {
		snap.SlashedValidators = append(snap.SlashedValidators, id.Bytes())
	}
	sortBytes(snap.SpentNullifiers)
	sortBytes(snap.RevertingNotes)
	sortBytes(snap.RevertingNullifiers)
	sortBytes(snap.UnbondingNullifiers)

	hasher := sha256.New()
	if err := rlp.Encode(hasher, &snap); err != nil {
		panic("iblockproc: can't hash pending block: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}

func sortBytes(bs [][]byte) {
	sort.Slice(bs, func(i, j int) bool {
		return string(bs[i]) < string(bs[j])
	})
}
