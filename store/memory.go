package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/shieldnet/shield-node/accumulator"
	"github.com/shieldnet/shield-node/chainparams"
	"github.com/shieldnet/shield-node/ids"
	"github.com/shieldnet/shield-node/inter/iblockproc"
	"github.com/shieldnet/shield-node/internal/checked"
	"github.com/shieldnet/shield-node/staking"
)

type quarantinedNote struct {
	commitment    ids.NoteCommitment
	releaseHeight idx.Block
}

type quarantinedNullifier struct {
	nullifier     ids.Nullifier
	releaseHeight idx.Block
}

// Memory is an in-memory Reader+Writer, a test double standing in for the
// real persistence layer: enough state to drive the worker's own tests,
// nothing resembling a production storage engine.
type Memory struct {
	mu sync.Mutex

	rules chainparams.Rules
	tree  accumulator.Tree

	validators *staking.StateMachine
	infos      map[string]staking.ValidatorInfo

	assets map[ids.AssetID]*AssetInfo

	quarantinedNotes       map[string][]quarantinedNote
	quarantinedNullifiers  map[string][]quarantinedNullifier
	delegationChangesByEp  map[idx.Epoch]map[ids.IdentityKey]int64
	baseRates              map[idx.Epoch]staking.BaseRate
	fundingStreamsByValKey map[string][]staking.FundingStream

	spentNullifiers map[string]struct{}

	metrics BlockMetrics
}

// NewMemory returns an empty, uninitialized store; CommitGenesis populates
// it.
func NewMemory() *Memory {
	return &Memory{
		validators:             staking.NewStateMachine(),
		infos:                  make(map[string]staking.ValidatorInfo),
		assets:                 make(map[ids.AssetID]*AssetInfo),
		quarantinedNotes:       make(map[string][]quarantinedNote),
		quarantinedNullifiers:  make(map[string][]quarantinedNullifier),
		delegationChangesByEp:  make(map[idx.Epoch]map[ids.IdentityKey]int64),
		baseRates:              make(map[idx.Epoch]staking.BaseRate),
		fundingStreamsByValKey: make(map[string][]staking.FundingStream),
		spentNullifiers:        make(map[string]struct{}),
	}
}

func valKey(id ids.IdentityKey) string { return string(id.Bytes()) }

// CommitGenesis initializes the store from a decoded genesis app-state: the
// chain parameters, the initial validator set (all Active, rate 1:1), and
// an asset entry at zero supply for every allocation's denom. Allocation
// amounts are credited by the genesis block's supply updates at CommitBlock.
func (m *Memory) CommitGenesis(_ context.Context, appState *chainparams.AppState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = appState.Rules
	m.tree = accumulator.NewInMemoryTree()
	m.baseRates[0] = staking.DefaultBaseRate()

	for _, v := range appState.InitialValidators {
		m.validators.Register(v.IdentityKey, staking.Active, staking.DefaultRateData(0), v.Power)
		m.infos[valKey(v.IdentityKey)] = staking.ValidatorInfo{IdentityKey: v.IdentityKey}
		m.assets[v.IdentityKey.DelegationAssetID()] = &AssetInfo{
			Asset: v.IdentityKey.DelegationAssetID(),
			Denom: v.IdentityKey.DelegationDenom(),
		}
	}

	m.assets[ids.StakingAssetID] = &AssetInfo{Asset: ids.StakingAssetID, Denom: ids.NativeDenom}
	for _, a := range appState.Allocations {
		asset := ids.AssetIDForDenom(a.Denom)
		if _, ok := m.assets[asset]; !ok {
			denom := a.Denom
			if denom == "" {
				denom = ids.NativeDenom
			}
			m.assets[asset] = &AssetInfo{Asset: asset, Denom: denom}
		}
	}
	return nil
}

// CommitBlock applies every staged mutation in pb atomically (from the
// worker's point of view: Memory holds a single mutex for the whole
// operation) and returns the resulting app hash.
func (m *Memory) CommitBlock(_ context.Context, pb *iblockproc.PendingBlock) (AppHash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appHash := pb.Hash()

	m.tree = pb.NoteTree
	m.validators = pb.ValidatorState

	for _, n := range pb.SpentNullifiers {
		m.spentNullifiers[string(n.Bytes())] = struct{}{}
	}
	for _, su := range pb.SupplyUpdates {
		info, ok := m.assets[su.Asset]
		if !ok {
			info = &AssetInfo{Asset: su.Asset}
			m.assets[su.Asset] = info
		}
		if su.Delta >= 0 {
			total, err := checked.Add(info.TotalSupply, uint64(su.Delta))
			if err != nil {
				return AppHash{}, fmt.Errorf("store: supply update overflows asset %s: %w", su.Asset, err)
			}
			info.TotalSupply = total
		} else {
			d := uint64(-su.Delta)
			if d > info.TotalSupply {
				return AppHash{}, fmt.Errorf("store: supply update underflows asset %s", su.Asset)
			}
			info.TotalSupply -= d
		}
	}

	if len(pb.DelegationChanges) > 0 {
		changes := m.delegationChangesByEp[pb.Ctx.Epoch]
		if changes == nil {
			changes = make(map[ids.IdentityKey]int64)
			m.delegationChangesByEp[pb.Ctx.Epoch] = changes
		}
		for _, dc := range pb.DelegationChanges {
			delta := int64(dc.Amount)
			if !dc.Increase {
				delta = -delta
			}
			changes[dc.Validator] += delta
		}
	}

	if pb.NextBaseRate != nil {
		m.baseRates[pb.NextRateEpoch] = *pb.NextBaseRate
	}

	m.metrics.SpentNullifiers += uint64(len(pb.SpentNullifiers))
	m.metrics.Notes += uint64(len(pb.RewardNotes))

	return appHash, nil
}

// PrivateReader returns the Reader view of this store, so the worker never
// needs a second handle to the same backing data.
func (m *Memory) PrivateReader() Reader { return m }

func (m *Memory) NoteCommitmentTree(context.Context) (accumulator.Tree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tree == nil {
		return nil, fmt.Errorf("store: note commitment tree not initialized")
	}
	return m.tree.Clone(), nil
}

func (m *Memory) ValidatorInfo(_ context.Context, includeInactive bool) ([]staking.ValidatorInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []staking.ValidatorInfo
	for _, id := range m.validators.Validators() {
		state, _ := m.validators.GetState(id)
		if !includeInactive && state.Kind != staking.StateActive {
			continue
		}
		info := m.infos[valKey(id)]
		info.IdentityKey = id
		out = append(out, info)
	}
	return out, nil
}

func (m *Memory) ValidatorStateMachine(context.Context) (*staking.StateMachine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.validators == nil {
		return nil, fmt.Errorf("store: validator state machine not initialized")
	}
	return m.validators.Copy(), nil
}

func (m *Memory) Metrics(context.Context) (BlockMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics, nil
}

func (m *Memory) ChainParams() chainparams.Rules {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules.Copy()
}

func (m *Memory) QuarantinedNotes(_ context.Context, height *idx.Block, validators []ids.IdentityKey) (NoteStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []ids.NoteCommitment
	for _, id := range validators {
		for _, q := range m.quarantinedNotes[valKey(id)] {
			if height == nil || q.releaseHeight <= *height {
				items = append(items, q.commitment)
			}
		}
	}
	return &noteStream{items: items, idx: -1}, nil
}

func (m *Memory) QuarantinedNullifiers(_ context.Context, height *idx.Block, validators []ids.IdentityKey) (NullifierStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []ids.Nullifier
	for _, id := range validators {
		for _, q := range m.quarantinedNullifiers[valKey(id)] {
			if height == nil || q.releaseHeight <= *height {
				items = append(items, q.nullifier)
			}
		}
	}
	return &nullifierStream{items: items, idx: -1}, nil
}

// QueueQuarantine is a store-specific setup helper (not part of the Reader
// interface) tests use to seed quarantined notes/nullifiers for a
// validator ahead of a slashing or unbonding-expiry scenario.
func (m *Memory) QueueQuarantine(validator ids.IdentityKey, note ids.NoteCommitment, nullifier ids.Nullifier, releaseHeight idx.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := valKey(validator)
	m.quarantinedNotes[k] = append(m.quarantinedNotes[k], quarantinedNote{commitment: note, releaseHeight: releaseHeight})
	m.quarantinedNullifiers[k] = append(m.quarantinedNullifiers[k], quarantinedNullifier{nullifier: nullifier, releaseHeight: releaseHeight})
}

func (m *Memory) BaseRateData(_ context.Context, epoch idx.Epoch) (staking.BaseRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.baseRates[epoch]
	if !ok {
		return staking.BaseRate{}, fmt.Errorf("store: no base rate for epoch %d", epoch)
	}
	return r, nil
}

func (m *Memory) AssetLookup(_ context.Context, asset ids.AssetID) (*AssetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.assets[asset]
	if !ok {
		return nil, nil
	}
	cp := *info
	return &cp, nil
}

func (m *Memory) FundingStreams(_ context.Context, id ids.IdentityKey) ([]staking.FundingStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]staking.FundingStream(nil), m.fundingStreamsByValKey[valKey(id)]...), nil
}

// SetFundingStreams is a test-setup helper.
func (m *Memory) SetFundingStreams(id ids.IdentityKey, streams []staking.FundingStream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fundingStreamsByValKey[valKey(id)] = streams
}

func (m *Memory) DelegationChanges(_ context.Context, epoch idx.Epoch) (map[ids.IdentityKey]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[ids.IdentityKey]int64, len(m.delegationChangesByEp[epoch]))
	for k, v := range m.delegationChangesByEp[epoch] {
		out[k] = v
	}
	return out, nil
}

type noteStream struct {
	items []ids.NoteCommitment
	idx   int
	err   error
}

func (s *noteStream) Next() bool {
	if s.idx+1 >= len(s.items) {
		return false
	}
	s.idx++
	return true
}
func (s *noteStream) Item() ids.NoteCommitment { return s.items[s.idx] }
func (s *noteStream) Err() error               { return s.err }

type nullifierStream struct {
	items []ids.Nullifier
	idx   int
	err   error
}

func (s *nullifierStream) Next() bool {
	if s.idx+1 >= len(s.items) {
		return false
	}
	s.idx++
	return true
}
func (s *nullifierStream) Item() ids.Nullifier { return s.items[s.idx] }
func (s *nullifierStream) Err() error          { return s.err }
