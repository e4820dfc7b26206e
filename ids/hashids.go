package ids

import (
	"encoding/hex"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"
)

// Nullifier is the opaque identifier revealed when a note is spent. Its
// uniqueness across the whole chain history prevents double-spends; within
// a single block, uniqueness is enforced by PendingBlock.SpentNullifiers.
type Nullifier hash.Hash

// NoteCommitment is the Merkle leaf committed to the note-commitment
// accumulator when an output note is created.
type NoteCommitment hash.Hash

// AssetID identifies a token denomination (the staking token, or one
// validator's delegation token).
type AssetID hash.Hash

// StakingAssetID is the well-known id of the chain-native staking token,
// the zero AssetID by convention (every other asset id is derived from a
// hash and so cannot collide with it).
var StakingAssetID = AssetID{}

// NativeDenom is the denom string that resolves to StakingAssetID. A
// genesis allocation naming any other denom is credited to a derived,
// denom-specific asset instead.
const NativeDenom = "ushield"

// AssetIDForDenom derives the asset id a genesis allocation's denom string
// is credited to. The native denom (and the empty string, so genesis files
// predating the per-allocation denom field keep crediting the staking
// asset) resolves to StakingAssetID; every other denom gets a
// deterministic derived id so two allocations naming the same denom always
// land on the same asset.
func AssetIDForDenom(denom string) AssetID {
	if denom == "" || denom == NativeDenom {
		return StakingAssetID
	}
	return AssetID(hash.Of([]byte("denom"), []byte(denom)))
}

// Address is a note's payout destination. The wire encoding and privacy
// properties of addresses are out of scope here (they belong to the key
// management / shielded-address subsystem); only the 20-byte routing form
// the worker needs to write reward and allocation notes is modeled.
type Address [20]byte

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// MarshalText renders the address as 0x-prefixed hex, for genesis JSON.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a 0x-prefixed (or bare) hex address.
func (a *Address) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("ids: invalid address %q: %w", text, err)
	}
	if len(b) != len(a) {
		return fmt.Errorf("ids: address %q has wrong length", text)
	}
	copy(a[:], b)
	return nil
}

// Bytes returns the 32-byte encoding.
func (n Nullifier) Bytes() []byte      { return hash.Hash(n).Bytes() }
func (c NoteCommitment) Bytes() []byte { return hash.Hash(c).Bytes() }
func (a AssetID) Bytes() []byte        { return hash.Hash(a).Bytes() }

func (n Nullifier) String() string      { return hash.Hash(n).String() }
func (c NoteCommitment) String() string { return hash.Hash(c).String() }
func (a AssetID) String() string        { return hash.Hash(a).String() }
