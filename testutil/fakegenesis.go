// Package testutil builds deterministic fixtures for exercising the
// consensus worker without a real key-management or genesis-ceremony
// subsystem: a seeded ECDSA key stands in for a real keypair, so the same
// seed always reproduces the same identity across a test run or between
// runs.
package testutil

import (
	"crypto/ecdsa"
	"math/rand"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/shieldnet/shield-node/chainparams"
	"github.com/shieldnet/shield-node/ids"
)

// fakeKey generates a deterministic secp256k1 key from a seeded reader:
// given the same n it always returns the same key.
func fakeKey(n int) *ecdsa.PrivateKey {
	reader := rand.New(rand.NewSource(int64(n)))
	key, err := ecdsa.GenerateKey(crypto.S256(), reader)
	if err != nil {
		panic(err)
	}
	return key
}

// FakeIdentity deterministically derives the n'th test validator identity.
// A privacy-preserving identity scheme has no account-derivation path to
// reuse, so the key's role here is only to produce 32 deterministic,
// collision-free bytes, not to stand in for a real Ed25519 keypair.
func FakeIdentity(n int) ids.IdentityKey {
	raw := crypto.Keccak256(crypto.FromECDSAPub(&fakeKey(n).PublicKey))
	return ids.IdentityKey{Type: ids.Schemes.Ed25519, Raw: raw}
}

// FakeAddress deterministically derives the n'th test payout address.
func FakeAddress(n int) ids.Address {
	pub := fakeKey(n + 1<<16).PublicKey
	var addr ids.Address
	copy(addr[:], crypto.PubkeyToAddress(pub).Bytes())
	return addr
}

// FakeGenesisOpt mutates an AppState under construction.
type FakeGenesisOpt func(*chainparams.AppState)

// WithValidators seeds count deterministic validators with equal power.
func WithValidators(count int, power uint64) FakeGenesisOpt {
	return func(st *chainparams.AppState) {
		for i := 0; i < count; i++ {
			st.InitialValidators = append(st.InitialValidators, chainparams.ValidatorPower{
				IdentityKey: FakeIdentity(i),
				Power:       power,
			})
		}
	}
}

// WithAllocation credits a single deterministic address with amount of the
// native staking token.
func WithAllocation(n int, amount uint64) FakeGenesisOpt {
	return WithDenomAllocation(n, ids.NativeDenom, amount)
}

// WithDenomAllocation credits a single deterministic address with amount of
// an arbitrary denom, exercising the genesis allocation path for assets
// other than the native staking token.
func WithDenomAllocation(n int, denom string, amount uint64) FakeGenesisOpt {
	return func(st *chainparams.AppState) {
		st.Allocations = append(st.Allocations, chainparams.Allocation{
			Address: FakeAddress(n),
			Denom:   denom,
			Amount:  amount,
		})
	}
}

// FakeGenesis builds a chainparams.AppState over FakeRules, applying opts in
// order. It is the fixture every seed-scenario test builds on instead of
// hand-writing a genesis JSON blob.
func FakeGenesis(opts ...FakeGenesisOpt) chainparams.AppState {
	st := chainparams.AppState{Rules: chainparams.FakeRules()}
	for _, opt := range opts {
		opt(&st)
	}
	return st
}
