package actions

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/sirupsen/logrus"
)

// FieldOfView shows the owner's vision indicator while the state is active.
type FieldOfView struct {
	ViewAngle    float64
	ViewDistance float64
}

func (c FieldOfView) NewAction() fsm.Action {
	return &fieldOfView{cfg: c}
}

type fieldOfView struct {
	cfg FieldOfView
}

func (f *fieldOfView) OnEnterState(m *fsm.StateMachine) {
	if v, ok := fsm.VisionOf(m.Owner()); ok {
		v.Show(f.cfg.ViewAngle, f.cfg.ViewDistance)
	}
}

func (f *fieldOfView) OnExitState(m *fsm.StateMachine) {
	if v, ok := fsm.VisionOf(m.Owner()); ok {
		v.Hide()
	}
}

func (f *fieldOfView) Perform(*fsm.StateMachine) {}

// Value is a typed blackboard value.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Float  float64
	Int    int
	String string
	Vector cp.Vector
	Vec3   common.Vec3
}

type ValueKind int

const (
	KindBool ValueKind = iota
	KindFloat
	KindInt
	KindString
	KindVector
	KindVector3
	// KindRemove deletes the key.
	KindRemove
)

// Store writes v under key.
func (v Value) Store(bb *blackboard.Blackboard, key *blackboard.Key) {
	switch v.Kind {
	case KindBool:
		bb.SetBool(key, v.Bool)
	case KindFloat:
		bb.SetFloat(key, v.Float)
	case KindInt:
		bb.SetInt(key, v.Int)
	case KindString:
		bb.SetString(key, v.String)
	case KindVector:
		bb.SetVector(key, v.Vector)
	case KindVector3:
		bb.SetVector3(key, v.Vec3)
	case KindRemove:
		bb.Remove(key)
	}
}

// SetBlackboard writes a constant into the blackboard.
type SetBlackboard struct {
	Key   *blackboard.Key
	Value Value
}

func (c SetBlackboard) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		c.Value.Store(m.Blackboard(), c.Key)
	})
}

// ClearTarget empties a target slot.
type ClearTarget struct {
	Slot int
}

func (c ClearTarget) Slots() []int { return []int{c.Slot} }

func (c ClearTarget) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) { m.ClearTarget(c.Slot) })
}

// RememberTargetPosition stores the slot occupant's position under Key.
// Nothing is written while the slot is empty.
type RememberTargetPosition struct {
	Slot int
	Key  *blackboard.Key
}

func (c RememberTargetPosition) Slots() []int { return []int{c.Slot} }

func (c RememberTargetPosition) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		if t := m.GetTarget(c.Slot); t != nil {
			m.Blackboard().SetVector(c.Key, t.Position())
		}
	})
}

// Log writes Message through the machine logger, which carries the actor
// and state fields.
type Log struct {
	Message string
	Level   logrus.Level
	Fields  logrus.Fields
}

func (c Log) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		entry := m.Log()
		if len(c.Fields) > 0 {
			entry = entry.WithFields(c.Fields)
		}
		switch c.Level {
		case logrus.TraceLevel, logrus.DebugLevel:
			entry.Debug(c.Message)
		case logrus.WarnLevel:
			entry.Warn(c.Message)
		case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
			entry.Error(c.Message)
		default:
			entry.Info(c.Message)
		}
	})
}
