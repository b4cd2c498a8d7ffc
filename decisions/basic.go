// Package decisions is the library of built-in decision kinds. Every kind
// is an immutable config whose NewDecision builds the per-machine runtime.
package decisions

import (
	"math"

	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/fsm"
)

// Const always returns Value.
type Const struct {
	Value bool
}

func (c Const) NewDecision() fsm.Decision {
	v := c.Value
	return fsm.DecisionFunc(func(*fsm.StateMachine) bool { return v })
}

// HasTarget is true while the slot holds a present entity.
type HasTarget struct {
	Slot int
}

func (c HasTarget) Slots() []int { return []int{c.Slot} }

func (c HasTarget) NewDecision() fsm.Decision {
	slot := c.Slot
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool { return m.HasTarget(slot) })
}

// TargetDead is true when the slot holds an entity that reports itself dead.
// An empty slot or a target without vitals is not dead.
type TargetDead struct {
	Slot int
}

func (c TargetDead) Slots() []int { return []int{c.Slot} }

func (c TargetDead) NewDecision() fsm.Decision {
	slot := c.Slot
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		v := m.GetTargetContext(slot)
		return v != nil && v.IsDead()
	})
}

// OwnerDead is true once the machine's owner is dead.
type OwnerDead struct{}

func (OwnerDead) NewDecision() fsm.Decision {
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		o := m.Owner()
		return o != nil && o.IsDead()
	})
}

// Chance passes with probability P on each evaluation.
type Chance struct {
	P float64
}

func (c Chance) NewDecision() fsm.Decision {
	p := c.P
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		if p <= 0 {
			return false
		}
		return m.Rand().Float64() < p
	})
}

// AbilityReady is true when the owner has an ability module and the named
// ability is ready. A missing module or ability reads as not ready.
type AbilityReady struct {
	Ability string
}

func (c AbilityReady) NewDecision() fsm.Decision {
	name := c.Ability
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		abilities, ok := fsm.Abilities(m.Owner())
		if !ok {
			return false
		}
		a := abilities.Ability(name)
		return a != nil && a.Ready()
	})
}

// TimeInState compares the time spent in the current state against a
// duration drawn from [Min, Max] each time the owning state is entered.
type TimeInState struct {
	Min, Max float64
	Mode     Comparison
}

func (c TimeInState) NewDecision() fsm.Decision {
	return &timeInState{cfg: c, duration: math.NaN()}
}

type timeInState struct {
	cfg      TimeInState
	duration float64
}

func (d *timeInState) Decide(m *fsm.StateMachine) bool {
	if math.IsNaN(d.duration) {
		d.sample(m)
	}
	return d.cfg.Mode.Floats(m.TimeInCurrentState(), d.duration, 0)
}

func (d *timeInState) OnEnterState(m *fsm.StateMachine) { d.sample(m) }

func (d *timeInState) OnExitState(*fsm.StateMachine) { d.duration = math.NaN() }

// Duration is the currently sampled wait, NaN outside the owning state.
func (d *timeInState) Duration() float64 { return d.duration }

func (d *timeInState) sample(m *fsm.StateMachine) {
	if d.cfg.Max <= d.cfg.Min {
		d.duration = d.cfg.Min
		return
	}
	d.duration = common.RandRange(m.Rand(), d.cfg.Min, d.cfg.Max)
}
