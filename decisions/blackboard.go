package decisions

import (
	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/fsm"
)

// BlackboardBool is true when the key holds Value. A missing key is false.
type BlackboardBool struct {
	Key   *blackboard.Key
	Value bool
}

func (c BlackboardBool) NewDecision() fsm.Decision {
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		v, ok := m.Blackboard().Value(c.Key)
		if !ok {
			return false
		}
		b, ok := v.(bool)
		return ok && b == c.Value
	})
}

// BlackboardFloat compares a stored float against Value with an absolute
// tolerance. A missing key is false.
type BlackboardFloat struct {
	Key       *blackboard.Key
	Mode      Comparison
	Value     float64
	Tolerance float64
}

func (c BlackboardFloat) NewDecision() fsm.Decision {
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		v, ok := m.Blackboard().Value(c.Key)
		if !ok {
			return false
		}
		f, ok := v.(float64)
		if !ok {
			return false
		}
		return c.Mode.Floats(f, c.Value, c.Tolerance)
	})
}

// BlackboardInt compares a stored int against Value. A missing key is false.
type BlackboardInt struct {
	Key   *blackboard.Key
	Mode  Comparison
	Value int
}

func (c BlackboardInt) NewDecision() fsm.Decision {
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		v, ok := m.Blackboard().Value(c.Key)
		if !ok {
			return false
		}
		i, ok := v.(int)
		if !ok {
			return false
		}
		return c.Mode.Ints(i, c.Value)
	})
}

// BlackboardString is true when the key holds Value, or differs from it
// when Negate is set. A missing key is false either way.
type BlackboardString struct {
	Key    *blackboard.Key
	Value  string
	Negate bool
}

func (c BlackboardString) NewDecision() fsm.Decision {
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		v, ok := m.Blackboard().Value(c.Key)
		if !ok {
			return false
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		return (s == c.Value) != c.Negate
	})
}

// BlackboardHas is true when the key holds a value of any kind.
type BlackboardHas struct {
	Key *blackboard.Key
}

func (c BlackboardHas) NewDecision() fsm.Decision {
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		return m.Blackboard().Has(c.Key)
	})
}
