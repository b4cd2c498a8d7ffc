package script

import (
	"github.com/milk9111/npcbrain/fsm"
)

// DecisionConfig runs a program's decide hook as a decision.
type DecisionConfig struct {
	Program *Program
	Params  map[string]any
}

func (c DecisionConfig) NewDecision() fsm.Decision {
	return &decision{inst: c.Program.Instance(c.Params)}
}

type decision struct {
	inst *Instance
}

func (d *decision) Decide(m *fsm.StateMachine) bool {
	ok, err := d.inst.Decide(m)
	if err != nil {
		m.Log().WithError(err).Warn("script decision failed")
		return false
	}
	return ok
}

func (d *decision) OnEnterState(m *fsm.StateMachine) { hook(m, d.inst.Enter) }

func (d *decision) OnExitState(m *fsm.StateMachine) { hook(m, d.inst.Exit) }

// ActionConfig runs a program's perform hook as an action.
type ActionConfig struct {
	Program *Program
	Params  map[string]any
}

func (c ActionConfig) NewAction() fsm.Action {
	return &action{inst: c.Program.Instance(c.Params)}
}

type action struct {
	inst *Instance
}

func (a *action) Perform(m *fsm.StateMachine) {
	if err := a.inst.Perform(m); err != nil {
		m.Log().WithError(err).Warn("script action failed")
	}
}

func (a *action) OnEnterState(m *fsm.StateMachine) { hook(m, a.inst.Enter) }

func (a *action) OnExitState(m *fsm.StateMachine) { hook(m, a.inst.Exit) }

func hook(m *fsm.StateMachine, run func(*fsm.StateMachine) error) {
	if err := run(m); err != nil {
		m.Log().WithError(err).Warn("script hook failed")
	}
}
