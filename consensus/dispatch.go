package consensus

import (
	"context"
	"fmt"

	"go.opencensus.io/trace"
)

// handlerFunc is the shape every per-request handler implements.
type handlerFunc func(ctx context.Context, req Request) interface{}

// Run drains the request queue until it is closed, dispatching each
// message to its handler and always sending a response before moving to
// the next message. It is the only goroutine that may touch w's pending
// block or the live validator/accumulator state the handlers reach through
// w.writer.
func (w *Worker) Run() error {
	for msg := range w.queue {
		resp := w.dispatch(msg)
		msg.Response <- resp
	}
	return nil
}

func (w *Worker) dispatch(msg Message) interface{} {
	name, handler := w.route(msg.Request)
	ctx, span := trace.StartSpan(msg.Ctx, name)
	defer span.End()

	return handler(ctx, msg.Request)
}

func (w *Worker) route(req Request) (string, handlerFunc) {
	switch req.(type) {
	case InitChainRequest:
		return "consensus.init_chain", w.handleInitChain
	case BeginBlockRequest:
		return "consensus.begin_block", w.handleBeginBlock
	case DeliverTxRequest:
		return "consensus.deliver_tx", w.handleDeliverTx
	case EndBlockRequest:
		return "consensus.end_block", w.handleEndBlock
	case CommitRequest:
		return "consensus.commit", w.handleCommit
	default:
		panic(fmt.Sprintf("consensus: unknown request type %T", req))
	}
}
