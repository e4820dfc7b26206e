package staking

import (
	"fmt"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/shieldnet/shield-node/ids"
)

// StateKind enumerates the validator lifecycle states. At an epoch
// boundary, Inactive and Unbonding validators that rank in the top of the
// validator set become Active, Active validators that drop out of it
// become Unbonding, and Unbonding validators whose unbonding epoch has been
// reached become Inactive. Any state can be pushed directly to Slashed:
// slashing always wins over a concurrent unbonding reveal.
type StateKind uint8

const (
	StateActive StateKind = iota
	StateInactive
	StateUnbonding
	StateSlashed
)

func (k StateKind) String() string {
	switch k {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateUnbonding:
		return "unbonding"
	case StateSlashed:
		return "slashed"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// State is a validator's lifecycle state. UnbondingEpoch is only meaningful
// when Kind == StateUnbonding: it names the epoch at which the validator's
// notes finish quarantine and become spendable.
type State struct {
	Kind           StateKind
	UnbondingEpoch idx.Epoch
}

var (
	Active   = State{Kind: StateActive}
	Inactive = State{Kind: StateInactive}
	Slashed  = State{Kind: StateSlashed}
)

// Unbonding returns the Unbonding state that expires at the given epoch.
func Unbonding(epoch idx.Epoch) State {
	return State{Kind: StateUnbonding, UnbondingEpoch: epoch}
}

// entry is one validator's row in the state machine: its lifecycle state,
// its current exchange rate, and its last-staged voting power, kept
// together because end_epoch always advances them in lockstep. Voting
// power persists across epochs so a validator held at Inactive or Slashed
// (neither of which recomputes it) still carries a well-defined value into
// the next ranking pass instead of reading as zero.
type entry struct {
	state       State
	rate        RateData
	votingPower uint64
}

// StateMachine is the authoritative record of every validator's lifecycle
// state and exchange rate for the epoch under construction. Callers mutate
// this single structure and read it back directly, rather than staging
// changes into a parallel "next status" list that would need reconciling
// back into it later.
//
// Iteration is always in ascending IdentityKey order, so every replica
// applying the same set of mutations reaches the same state; StateMachine
// enforces this by keeping a sorted index alongside the arena map.
type StateMachine struct {
	arena map[string]*entry
	order []ids.IdentityKey
}

// NewStateMachine returns an empty state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{arena: make(map[string]*entry)}
}

func key(id ids.IdentityKey) string { return string(id.Bytes()) }

// Register adds a validator in the given initial state, rate and voting
// power. It is a no-op if the validator is already present.
func (m *StateMachine) Register(id ids.IdentityKey, state State, rate RateData, votingPower uint64) {
	k := key(id)
	if _, ok := m.arena[k]; ok {
		return
	}
	m.arena[k] = &entry{state: state, rate: rate, votingPower: votingPower}
	m.order = append(m.order, id.Copy())
	sort.Slice(m.order, func(i, j int) bool { return m.order[i].Less(m.order[j]) })
}

// GetState returns the validator's current state and whether it is known.
func (m *StateMachine) GetState(id ids.IdentityKey) (State, bool) {
	e, ok := m.arena[key(id)]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// SetState overwrites the validator's state. Registering then setting state
// is how a validator moves between lifecycle phases; SetState does nothing
// for an unknown validator, since a validator must be Register-ed before it
// can transition.
func (m *StateMachine) SetState(id ids.IdentityKey, state State) {
	if e, ok := m.arena[key(id)]; ok {
		e.state = state
	}
}

// GetRate returns the validator's current exchange rate and whether it is
// known.
func (m *StateMachine) GetRate(id ids.IdentityKey) (RateData, bool) {
	e, ok := m.arena[key(id)]
	if !ok {
		return RateData{}, false
	}
	return e.rate, true
}

// GetVotingPower returns the validator's last-staged voting power and
// whether it is known. For a validator currently held at Inactive or
// Slashed, this is the value carried forward from the last epoch that
// actually recomputed it.
func (m *StateMachine) GetVotingPower(id ids.IdentityKey) (uint64, bool) {
	e, ok := m.arena[key(id)]
	if !ok {
		return 0, false
	}
	return e.votingPower, true
}

// SetVotingPower overwrites the validator's staged voting power.
func (m *StateMachine) SetVotingPower(id ids.IdentityKey, power uint64) {
	if e, ok := m.arena[key(id)]; ok {
		e.votingPower = power
	}
}

// SetRate overwrites the validator's exchange rate.
func (m *StateMachine) SetRate(id ids.IdentityKey, rate RateData) {
	if e, ok := m.arena[key(id)]; ok {
		e.rate = rate
	}
}

// Slash moves a validator directly to Slashed regardless of its current
// state, including Unbonding: slashing always takes precedence over a note
// reveal in flight. It also burns penaltyBps basis points off the
// validator's current exchange rate, so delegators absorb the penalty
// immediately rather than at the next epoch rollover. It returns false if
// the validator is unknown.
func (m *StateMachine) Slash(id ids.IdentityKey, penaltyBps uint32) (bool, error) {
	e, ok := m.arena[key(id)]
	if !ok {
		return false, nil
	}
	bps := uint64(penaltyBps)
	if bps > 10_000 {
		bps = 10_000
	}
	penalized, err := mulDivChecked(e.rate.ExchangeRate, 10_000-bps, 10_000)
	if err != nil {
		return false, err
	}
	e.rate.ExchangeRate = penalized
	e.state = Slashed
	return true, nil
}

// Validators returns every known identity key in ascending order.
func (m *StateMachine) Validators() []ids.IdentityKey {
	out := make([]ids.IdentityKey, len(m.order))
	copy(out, m.order)
	return out
}

// UnslashedValidators returns identity keys, in ascending order, for
// validators whose state is not Slashed.
func (m *StateMachine) UnslashedValidators() []ids.IdentityKey {
	var out []ids.IdentityKey
	for _, id := range m.order {
		if e := m.arena[key(id)]; e.state.Kind != StateSlashed {
			out = append(out, id)
		}
	}
	return out
}

// SlashedValidators returns identity keys, in ascending order, for
// validators whose state is Slashed.
func (m *StateMachine) SlashedValidators() []ids.IdentityKey {
	var out []ids.IdentityKey
	for _, id := range m.order {
		if e := m.arena[key(id)]; e.state.Kind == StateSlashed {
			out = append(out, id)
		}
	}
	return out
}

// Copy returns a deep copy, used when a PendingBlock clones the live
// validator-set state at block start and mutates only the clone.
func (m *StateMachine) Copy() *StateMachine {
	cp := NewStateMachine()
	cp.order = make([]ids.IdentityKey, len(m.order))
	for i, id := range m.order {
		cp.order[i] = id.Copy()
	}
	for k, e := range m.arena {
		eCopy := *e
		cp.arena[k] = &eCopy
	}
	return cp
}
