package actions

import (
	"github.com/milk9111/npcbrain/fsm"
)

// AnimatorParam sets one animator parameter. Kind picks which setter runs;
// the matching value field is used.
type AnimatorParam struct {
	Kind  ParamKind
	Param string
	Bool  bool
	Float float64
	Int   int
}

type ParamKind int

const (
	ParamTrigger ParamKind = iota
	ParamBool
	ParamFloat
	ParamInt
)

func (c AnimatorParam) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		anim, ok := fsm.AnimatorOf(m.Owner())
		if !ok {
			return
		}
		switch c.Kind {
		case ParamTrigger:
			anim.SetTrigger(c.Param)
		case ParamBool:
			anim.SetBool(c.Param, c.Bool)
		case ParamFloat:
			anim.SetFloat(c.Param, c.Float)
		case ParamInt:
			anim.SetInt(c.Param, c.Int)
		}
	})
}

// AnimatorOverride swaps the animator controller while its state is active
// and puts the previous one back on exit.
type AnimatorOverride struct {
	Controller string
}

func (c AnimatorOverride) NewAction() fsm.Action {
	return &animatorOverride{cfg: c}
}

type animatorOverride struct {
	cfg     AnimatorOverride
	backup  string
	swapped bool
}

func (a *animatorOverride) OnEnterState(m *fsm.StateMachine) {
	anim, ok := fsm.AnimatorOf(m.Owner())
	if !ok || a.swapped {
		return
	}
	a.backup = anim.Controller()
	anim.SetController(a.cfg.Controller)
	a.swapped = true
}

func (a *animatorOverride) OnExitState(m *fsm.StateMachine) {
	if !a.swapped {
		return
	}
	a.swapped = false
	if anim, ok := fsm.AnimatorOf(m.Owner()); ok {
		anim.SetController(a.backup)
	}
}

func (a *animatorOverride) Perform(*fsm.StateMachine) {}
