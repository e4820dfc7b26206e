// Package store defines the narrow reader/writer contracts the consensus
// worker programs against, plus an in-memory implementation good enough to
// drive the worker's own tests. The real store's persistence layer,
// key/value layout and indexing strategy are out of scope: only the shape
// of the boundary the worker depends on is specified here.
package store

import (
	"context"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/shieldnet/shield-node/accumulator"
	"github.com/shieldnet/shield-node/chainparams"
	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/inter/iblockproc"
	"github.com/shieldnet/shield-node/staking"
)

// AppHash is the deterministic digest of committed state at a height.
type AppHash = hash.Hash

// BlockMetrics is the block-level counter snapshot begin_block reports
// through go-ethereum's metrics package.
type BlockMetrics struct {
	SpentNullifiers uint64
	Notes           uint64
}

// AssetInfo describes a known asset denomination and its current total
// supply.
type AssetInfo struct {
	Asset       ids.AssetID
	Denom       string
	TotalSupply uint64
}

// NoteStream is a cursor over quarantined output notes, in the idiom of
// database/sql.Rows: callers loop `for s.Next() { ... s.Item() ... }` and
// check s.Err() once the loop ends.
type NoteStream interface {
	Next() bool
	Item() ids.NoteCommitment
	Err() error
}

// NullifierStream is the nullifier-side counterpart to NoteStream.
type NullifierStream interface {
	Next() bool
	Item() ids.Nullifier
	Err() error
}

// Reader is the worker's read-only view of committed state.
type Reader interface {
	NoteCommitmentTree(ctx context.Context) (accumulator.Tree, error)
	ValidatorInfo(ctx context.Context, includeInactive bool) ([]staking.ValidatorInfo, error)
	ValidatorStateMachine(ctx context.Context) (*staking.StateMachine, error)
	Metrics(ctx context.Context) (BlockMetrics, error)
	ChainParams() chainparams.Rules
	QuarantinedNotes(ctx context.Context, height *idx.Block, validators []ids.IdentityKey) (NoteStream, error)
	QuarantinedNullifiers(ctx context.Context, height *idx.Block, validators []ids.IdentityKey) (NullifierStream, error)
	BaseRateData(ctx context.Context, epoch idx.Epoch) (staking.BaseRate, error)
	AssetLookup(ctx context.Context, asset ids.AssetID) (*AssetInfo, error)
	FundingStreams(ctx context.Context, id ids.IdentityKey) ([]staking.FundingStream, error)
	DelegationChanges(ctx context.Context, epoch idx.Epoch) (map[ids.IdentityKey]int64, error)
}

// Writer is the worker's exclusive mutation path into committed state.
type Writer interface {
	CommitGenesis(ctx context.Context, appState *chainparams.AppState) error
	CommitBlock(ctx context.Context, pb *iblockproc.PendingBlock) (AppHash, error)
	PrivateReader() Reader
}
