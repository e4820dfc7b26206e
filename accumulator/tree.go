// Package accumulator models the note-commitment accumulator as a narrow
// interface. A production-grade append-only Merkle tree over output note
// commitments is a separate concern from the worker's own logic; InMemoryTree
// is a reference implementation good enough to make the consensus worker
// independently testable, not a production Merkle tree.
package accumulator

import (
	"github.com/Fantom-foundation/lachesis-base/hash"

	"github.com/shieldnet/shield-node/ids"
)

// Tree is the worker's view of the note-commitment accumulator. A
// PendingBlock clones the live Tree at block start (via Clone) and mutates
// only the clone; commit replaces the live tree with the mutated clone.
type Tree interface {
	// Append inserts a new leaf, growing the tree. The accumulator only
	// grows; there is no corresponding remove.
	Append(commitment ids.NoteCommitment)
	// Root returns the current Merkle root.
	Root() hash.Hash
	// Position returns the number of leaves appended so far.
	Position() uint64
	// Clone returns an independent copy whose mutations do not affect the
	// receiver.
	Clone() Tree
}

// InMemoryTree is a minimal reference Tree: it folds each new commitment
// into a running hash rather than maintaining real Merkle sibling paths. Its
// root only ever changes by appending, and it is deterministic, which is all
// the consensus worker depends on; anything wanting inclusion proofs needs
// the real accumulator the store owns.
type InMemoryTree struct {
	root     hash.Hash
	position uint64
}

// NewInMemoryTree returns a Tree positioned at 0 with the empty root.
func NewInMemoryTree() *InMemoryTree {
	return &InMemoryTree{root: hash.Hash{}}
}

func (t *InMemoryTree) Append(commitment ids.NoteCommitment) {
	t.root = hash.Of(t.root.Bytes(), commitment.Bytes())
	t.position++
}

func (t *InMemoryTree) Root() hash.Hash { return t.root }

func (t *InMemoryTree) Position() uint64 { return t.position }

func (t *InMemoryTree) Clone() Tree {
	cp := *t
	return &cp
}
