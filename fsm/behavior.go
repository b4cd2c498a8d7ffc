package fsm

// Decision is a boolean predicate evaluated against a running machine.
type Decision interface {
	Decide(m *StateMachine) bool
}

// Action is a behavior performed while its state is active.
type Action interface {
	Perform(m *StateMachine)
}

// Hooks is implemented by decisions and actions that keep per-state runtime
// values. OnEnterState runs when the state owning them is entered, and
// OnExitState when it is left.
type Hooks interface {
	OnEnterState(m *StateMachine)
	OnExitState(m *StateMachine)
}

// DecisionConfig is immutable configuration that builds fresh runtime
// decisions. Each machine gets its own instance.
type DecisionConfig interface {
	NewDecision() Decision
}

// ActionConfig is the action counterpart of DecisionConfig.
type ActionConfig interface {
	NewAction() Action
}

// SlotUser is implemented by configs that address target slots, so loaders
// can reject indices outside the machine's slot count.
type SlotUser interface {
	Slots() []int
}

// DecisionFunc adapts a function to Decision.
type DecisionFunc func(m *StateMachine) bool

func (f DecisionFunc) Decide(m *StateMachine) bool { return f(m) }

// ActionFunc adapts a function to Action.
type ActionFunc func(m *StateMachine)

func (f ActionFunc) Perform(m *StateMachine) { f(m) }

func enter(v any, m *StateMachine) {
	if h, ok := v.(Hooks); ok {
		h.OnEnterState(m)
	}
}

func exit(v any, m *StateMachine) {
	if h, ok := v.(Hooks); ok {
		h.OnExitState(m)
	}
}
