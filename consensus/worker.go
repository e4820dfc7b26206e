package consensus

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/sirupsen/logrus"

	"github.com/shieldnet/shield-node/inter/iblockproc"
	"github.com/shieldnet/shield-node/store"
	"github.com/shieldnet/shield-node/verify"
)

// CommitEvent is published on the worker's commit feed after every
// successful commit: a best-effort hook for a wallet-sync tool or a metrics
// scraper, never required for correctness.
type CommitEvent struct {
	Height  uint64
	Epoch   uint64
	AppHash store.AppHash
}

// Worker is the consensus worker: a single-goroutine state machine that
// drains a request queue and applies requests to a store.Writer. Nothing
// outside Worker.Run ever touches pending or live; that confinement is the
// entire source of the single-threaded guarantee the design relies on.
type Worker struct {
	log *logrus.Entry

	writer    store.Writer
	stateless verify.StatelessVerifier
	stateful  verify.StatefulVerifier

	queue chan Message

	pending *iblockproc.PendingBlock

	commitFeed event.Feed

	spentNullifiersCounter metrics.Counter
	notesCounter           metrics.Counter
}

// New returns a Worker reading from a queue of the given capacity. Pass 0
// for an unbuffered queue (every Enqueue call blocks until Run picks it
// up); production deployments want enough headroom that Enqueue never
// blocks the replication engine's own loop.
func New(writer store.Writer, stateless verify.StatelessVerifier, stateful verify.StatefulVerifier, log *logrus.Entry, queueSize int) *Worker {
	return &Worker{
		log:                    log,
		writer:                 writer,
		stateless:              stateless,
		stateful:               stateful,
		queue:                  make(chan Message, queueSize),
		spentNullifiersCounter: metrics.NewCounter(),
		notesCounter:           metrics.NewCounter(),
	}
}

// Enqueue submits a message; its response arrives on msg.Response. Callers
// own that channel; Run always sends exactly one value on it before moving
// to the next message.
func (w *Worker) Enqueue(msg Message) {
	w.queue <- msg
}

// Queue exposes the request channel itself for a transport adapter that
// wants to send directly rather than go through Enqueue.
func (w *Worker) Queue() chan<- Message {
	return w.queue
}

// Close closes the request queue; Run drains whatever is already queued,
// then returns.
func (w *Worker) Close() {
	close(w.queue)
}

// SubscribeCommitEvents registers ch to receive a CommitEvent after every
// successful commit. Backed by go-ethereum's event.Feed: with no
// subscribers the commit's Send returns immediately, but Send waits until
// every subscribed channel has accepted the event, so a subscriber whose
// channel is full holds up the commit until it reads or unsubscribes.
func (w *Worker) SubscribeCommitEvents(ch chan<- CommitEvent) event.Subscription {
	return w.commitFeed.Subscribe(ch)
}

func (w *Worker) fatal(err error, fields logrus.Fields) {
	entry := w.log
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Fatal(err)
}
