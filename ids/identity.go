// Package ids defines the identifier types that flow through the consensus
// worker: validator identity keys, payout addresses, nullifiers, note
// commitments and asset ids. Nullifiers, note commitments and asset ids are
// thin wrappers around the 32-byte hash type already used across the
// lachesis-base dependency tree, so that the worker never has to reason
// about more than one hash representation; an identity key is a scheme
// byte plus raw key bytes, and an address is 20 raw bytes.
package ids

import (
	"errors"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/common"
)

// IdentityKeyType identifies the signature scheme backing an IdentityKey.
// Modeled after validatorpk.PubKey's Type byte, generalized to the single
// scheme this chain cares about.
type IdentityKeyType uint8

// Schemes is the set of supported identity-key signature schemes.
var Schemes = struct {
	Ed25519 IdentityKeyType
}{
	Ed25519: 0xed,
}

// IdentityKey is a validator's long-lived consensus identity, independent of
// the short-lived consensus (block-signing) key tracked alongside it in
// staking.ValidatorInfo. It decouples the key type from its raw bytes so
// that future schemes can be added without changing call sites.
type IdentityKey struct {
	Type IdentityKeyType
	Raw  []byte
}

// Empty reports whether the key is the zero value.
func (k IdentityKey) Empty() bool {
	return len(k.Raw) == 0 && k.Type == 0
}

// Bytes returns the flat encoding [Type byte] + [Raw bytes...].
func (k IdentityKey) Bytes() []byte {
	return append([]byte{byte(k.Type)}, k.Raw...)
}

// String returns the "0x"-prefixed hex encoding of Bytes.
func (k IdentityKey) String() string {
	return "0x" + common.Bytes2Hex(k.Bytes())
}

// Copy returns a deep copy; Raw is a slice and would otherwise alias the
// receiver's backing array.
func (k IdentityKey) Copy() IdentityKey {
	return IdentityKey{Type: k.Type, Raw: common.CopyBytes(k.Raw)}
}

// Less defines the ascending order used everywhere the spec requires
// deterministic iteration over identity keys (ranking ties, validator
// iteration order).
func (k IdentityKey) Less(other IdentityKey) bool {
	if k.Type != other.Type {
		return k.Type < other.Type
	}
	return string(k.Raw) < string(other.Raw)
}

// FromBytes reconstructs an IdentityKey from its flat encoding.
func FromBytes(b []byte) (IdentityKey, error) {
	if len(b) == 0 {
		return IdentityKey{}, errors.New("ids: empty identity key")
	}
	return IdentityKey{Type: IdentityKeyType(b[0]), Raw: b[1:]}, nil
}

// FromString parses a hex string (with or without "0x" prefix).
func FromString(s string) (IdentityKey, error) {
	return FromBytes(common.FromHex(s))
}

// MarshalText implements encoding.TextMarshaler so IdentityKey round-trips
// through JSON (genesis validator lists) as a hex string.
func (k IdentityKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *IdentityKey) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DelegationDenom is the ticker for this validator's delegation token.
// Every validator mints exactly one such denom; its asset id is derived
// deterministically from the identity key so stores never need a separate
// registry entry to look it up.
func (k IdentityKey) DelegationDenom() string {
	return "udelegation_" + common.Bytes2Hex(k.Raw)[:16]
}

// DelegationAssetID derives the asset id of this validator's delegation
// token deterministically from the identity key.
func (k IdentityKey) DelegationAssetID() AssetID {
	return AssetID(hash.Of([]byte("delegation"), k.Bytes()))
}

// SortIdentityKeys returns a new, ascending-sorted copy of keys. Used
// wherever a defined iteration order over a set of validators is needed so
// every replica agrees on it.
func SortIdentityKeys(keys []IdentityKey) []IdentityKey {
	out := make([]IdentityKey, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
