// Package consensus implements the worker: the single dispatch loop that
// turns a stream of replication-engine requests into deterministic state
// transitions over a store.Writer, draining a channel of requests and
// dispatching each to one of the five ABCI-style handlers this chain's
// replication engine drives.
package consensus

import (
	"context"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/shieldnet/shield-node/chainparams"
	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/store"
)

// Request is the closed set of messages the replication engine can send.
// Worker.Run type-switches on it to pick a handler.
type Request interface {
	isRequest()
}

// Evidence names a validator the replication engine observed behaving
// byzantinely, identified by its short-lived consensus key.
type Evidence struct {
	ConsensusAddress []byte
}

type InitChainRequest struct {
	AppStateBytes   []byte
	ChainID         string
	ConsensusParams chainparams.Rules
}

func (InitChainRequest) isRequest() {}

type InitChainResponse struct {
	ConsensusParams chainparams.Rules
	Validators      []ValidatorUpdate
	AppHash         store.AppHash
}

type BeginBlockRequest struct {
	Height              idx.Block
	ByzantineValidators []Evidence
}

func (BeginBlockRequest) isRequest() {}

type BeginBlockResponse struct{}

type DeliverTxRequest struct {
	TxBytes []byte
}

func (DeliverTxRequest) isRequest() {}

type DeliverTxResponse struct {
	Code uint32
	Log  string
}

type EndBlockRequest struct {
	Height idx.Block
}

func (EndBlockRequest) isRequest() {}

// ValidatorUpdate is a change to a validator's voting power the worker
// reports back to the replication engine. End-of-block updates are
// deliberately left empty (see DESIGN.md's Open Questions); InitChain
// reports the full genesis set.
type ValidatorUpdate struct {
	IdentityKey ids.IdentityKey
	Power       uint64
}

// Event is an application-level event the worker wants attached to a
// block's response (e.g. for indexing); unused by any handler yet, kept so
// EndBlockResponse's shape matches what a replication engine expects.
type Event struct {
	Type       string
	Attributes map[string]string
}

type EndBlockResponse struct {
	ValidatorUpdates []ValidatorUpdate
	Events           []Event
}

type CommitRequest struct{}

func (CommitRequest) isRequest() {}

type CommitResponse struct {
	Data         store.AppHash
	RetainHeight idx.Block
}

// Message is one request flowing through the dispatch loop: the request
// itself, a context carrying the caller's tracing span, and a channel the
// worker replies on. Replies are always sent, even on handler error (see
// DESIGN.md's error-class notes).
type Message struct {
	Ctx      context.Context
	Request  Request
	Response chan<- interface{}
}
