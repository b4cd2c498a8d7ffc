package decisions

import (
	"github.com/milk9111/npcbrain/fsm"
)

// Or passes when any child passes. An empty list is false.
type Or struct {
	Children []fsm.DecisionConfig
}

func (c Or) NewDecision() fsm.Decision {
	return &anyOf{group: build(c.Children)}
}

// And passes when every child passes. An empty list is true, matching a
// transition with no conditions.
type And struct {
	Children []fsm.DecisionConfig
}

func (c And) NewDecision() fsm.Decision {
	return &allOf{group: build(c.Children)}
}

// Not inverts its child. A missing child is false.
type Not struct {
	Child fsm.DecisionConfig
}

func (c Not) NewDecision() fsm.Decision {
	var g group
	if c.Child != nil {
		g = build([]fsm.DecisionConfig{c.Child})
	}
	return &not{group: g}
}

// Slots collects the slots of every child.
func (c Or) Slots() []int { return childSlots(c.Children...) }

func (c And) Slots() []int { return childSlots(c.Children...) }

func (c Not) Slots() []int { return childSlots(c.Child) }

func childSlots(children ...fsm.DecisionConfig) []int {
	var out []int
	for _, ch := range children {
		if u, ok := ch.(fsm.SlotUser); ok {
			out = append(out, u.Slots()...)
		}
	}
	return out
}

// group forwards state hooks to children so nested runtime values are
// sampled and reset with the owning state.
type group []fsm.Decision

func build(configs []fsm.DecisionConfig) group {
	g := make(group, 0, len(configs))
	for _, c := range configs {
		if c == nil {
			continue
		}
		if d := c.NewDecision(); d != nil {
			g = append(g, d)
		}
	}
	return g
}

func (g group) OnEnterState(m *fsm.StateMachine) {
	for _, d := range g {
		if h, ok := d.(fsm.Hooks); ok {
			h.OnEnterState(m)
		}
	}
}

func (g group) OnExitState(m *fsm.StateMachine) {
	for _, d := range g {
		if h, ok := d.(fsm.Hooks); ok {
			h.OnExitState(m)
		}
	}
}

type anyOf struct{ group }

func (d *anyOf) Decide(m *fsm.StateMachine) bool {
	for _, ch := range d.group {
		if ch.Decide(m) {
			return true
		}
	}
	return false
}

type allOf struct{ group }

func (d *allOf) Decide(m *fsm.StateMachine) bool {
	for _, ch := range d.group {
		if !ch.Decide(m) {
			return false
		}
	}
	return true
}

type not struct{ group }

func (d *not) Decide(m *fsm.StateMachine) bool {
	if len(d.group) == 0 {
		return false
	}
	return !d.group[0].Decide(m)
}
