package fsm

import (
	"math/rand"

	"github.com/milk9111/npcbrain/common"
)

// Transition fires when all of its decisions pass. It leads either to Next
// or to one of Candidates, picked again on every NextState call.
type Transition struct {
	Decisions  []Decision
	Next       string
	Candidates []string
	// Weights parallels Candidates. Missing, negative or all-zero weights
	// fall back to a uniform pick.
	Weights []float64
}

// CanTransition evaluates the decisions in order and stops at the first
// failure. Nil entries are skipped; an empty list passes.
func (t *Transition) CanTransition(m *StateMachine) bool {
	if t == nil {
		return false
	}
	for _, d := range t.Decisions {
		if d == nil {
			continue
		}
		if !d.Decide(m) {
			return false
		}
	}
	return true
}

// NextState resolves the destination, rolling r for random candidates.
func (t *Transition) NextState(r *rand.Rand) string {
	if t == nil {
		return ""
	}
	if len(t.Candidates) == 0 {
		return t.Next
	}
	if len(t.Candidates) == 1 {
		return t.Candidates[0]
	}
	if total := t.totalWeight(); total > 0 {
		roll := common.RandRange(r, 0, total)
		for i, c := range t.Candidates {
			w := t.weight(i)
			if roll < w {
				return c
			}
			roll -= w
		}
		for i := len(t.Candidates) - 1; i >= 0; i-- {
			if t.weight(i) > 0 {
				return t.Candidates[i]
			}
		}
	}
	idx := int(common.RandRange(r, 0, float64(len(t.Candidates))))
	if idx >= len(t.Candidates) {
		idx = len(t.Candidates) - 1
	}
	return t.Candidates[idx]
}

func (t *Transition) weight(i int) float64 {
	if i >= len(t.Weights) || t.Weights[i] < 0 {
		return 0
	}
	return t.Weights[i]
}

func (t *Transition) totalWeight() float64 {
	if len(t.Weights) != len(t.Candidates) {
		return 0
	}
	var total float64
	for i := range t.Candidates {
		total += t.weight(i)
	}
	return total
}

// State bundles ordered transitions with enter, update and exit actions.
type State struct {
	Name        string
	Transitions []*Transition
	OnEnter     []Action
	OnUpdate    []Action
	OnExit      []Action
}

func (s *State) enter(m *StateMachine) {
	s.eachAction(func(a Action) { enter(a, m) })
	s.eachDecision(func(d Decision) { enter(d, m) })
	perform(s.OnEnter, m)
}

func (s *State) exit(m *StateMachine) {
	perform(s.OnExit, m)
	s.eachAction(func(a Action) { exit(a, m) })
	s.eachDecision(func(d Decision) { exit(d, m) })
}

func (s *State) update(m *StateMachine) {
	perform(s.OnUpdate, m)
}

func (s *State) eachAction(fn func(Action)) {
	for _, list := range [][]Action{s.OnEnter, s.OnUpdate, s.OnExit} {
		for _, a := range list {
			if a != nil {
				fn(a)
			}
		}
	}
}

func (s *State) eachDecision(fn func(Decision)) {
	for _, t := range s.Transitions {
		if t == nil {
			continue
		}
		for _, d := range t.Decisions {
			if d != nil {
				fn(d)
			}
		}
	}
}

func perform(actions []Action, m *StateMachine) {
	for _, a := range actions {
		if a == nil {
			continue
		}
		a.Perform(m)
	}
}
