package asset

import (
	"math/rand"

	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
)

// Blueprint is a compiled asset. It is immutable and safe to share: each
// Build creates fresh decision and action runtime values.
type Blueprint struct {
	Name        string
	Initial     string
	TargetSlots int
	Interval    fsm.Interval
	Keys        *blackboard.KeySet

	states []stateBlueprint
}

type stateBlueprint struct {
	name        string
	enter       []fsm.ActionConfig
	update      []fsm.ActionConfig
	exit        []fsm.ActionConfig
	transitions []transitionBlueprint
}

type transitionBlueprint struct {
	when       []fsm.DecisionConfig
	next       string
	candidates []string
	weights    []float64
}

// Deps are the per-machine collaborators a blueprint cannot own.
type Deps struct {
	Sensor        *perception.Sensor
	Rand          *rand.Rand
	Logger        logrus.FieldLogger
	Blackboard    *blackboard.Blackboard
	OnStateChange func(m *fsm.StateMachine, from, to *fsm.State)
}

// StateNames lists the states in declaration order.
func (b *Blueprint) StateNames() []string {
	out := make([]string, len(b.states))
	for i, s := range b.states {
		out[i] = s.name
	}
	return out
}

// Build creates an unstarted machine for owner.
func (b *Blueprint) Build(owner fsm.Owner, deps Deps) *fsm.StateMachine {
	states := make([]*fsm.State, 0, len(b.states))
	for _, sb := range b.states {
		st := &fsm.State{
			Name:     sb.name,
			OnEnter:  newActions(sb.enter),
			OnUpdate: newActions(sb.update),
			OnExit:   newActions(sb.exit),
		}
		for _, tb := range sb.transitions {
			t := &fsm.Transition{
				Next:       tb.next,
				Candidates: tb.candidates,
				Weights:    tb.weights,
				Decisions:  make([]fsm.Decision, 0, len(tb.when)),
			}
			for _, cfg := range tb.when {
				t.Decisions = append(t.Decisions, cfg.NewDecision())
			}
			st.Transitions = append(st.Transitions, t)
		}
		states = append(states, st)
	}

	return fsm.New(owner, states, fsm.Options{
		Name:          b.Name,
		TargetSlots:   b.TargetSlots,
		Interval:      b.Interval,
		Blackboard:    deps.Blackboard,
		Keys:          b.Keys,
		Sensor:        deps.Sensor,
		Rand:          deps.Rand,
		Logger:        deps.Logger,
		OnStateChange: deps.OnStateChange,
	})
}

// Instantiate builds a machine and enters the initial state.
func (b *Blueprint) Instantiate(owner fsm.Owner, deps Deps) (*fsm.StateMachine, error) {
	m := b.Build(owner, deps)
	if err := m.Start(b.Initial); err != nil {
		return nil, err
	}
	return m, nil
}

func newActions(cfgs []fsm.ActionConfig) []fsm.Action {
	out := make([]fsm.Action, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, cfg.NewAction())
	}
	return out
}
