// Package actions is the library of built-in action kinds. Actions only
// touch the world through the owner, its modules and the blackboard.
package actions

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/perception"
)

// DefaultArriveDistance is how close a mover must get to a point to count
// as arrived.
const DefaultArriveDistance = 0.25

// speed resolves the movement speed: an explicit override, then the owner's
// movement module, then 1.
func speed(o fsm.Owner, override float64) float64 {
	if override > 0 {
		return override
	}
	if mv, ok := fsm.MovementOf(o); ok && mv.Speed() > 0 {
		return mv.Speed()
	}
	return 1
}

// steer moves o toward point and reports whether it is within arrive.
func steer(o fsm.Owner, point cp.Vector, arrive, override float64) bool {
	delta := point.Sub(o.Position())
	if delta.LengthSq() <= arrive*arrive {
		o.Move(cp.Vector{})
		return true
	}
	dir := common.NormalizeOrZero(delta)
	o.Face(dir)
	o.Move(dir.Mult(speed(o, override)))
	return false
}

// MoveToTarget walks toward the slot occupant and stops within StopDistance.
type MoveToTarget struct {
	Slot         int
	StopDistance float64
	Speed        float64
}

func (c MoveToTarget) Slots() []int { return []int{c.Slot} }

func (c MoveToTarget) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		o := m.Owner()
		t := m.GetTarget(c.Slot)
		if o == nil || t == nil {
			return
		}
		steer(o, t.Position(), c.StopDistance, c.Speed)
	})
}

// Flee runs directly away from the slot occupant.
type Flee struct {
	Slot  int
	Speed float64
}

func (c Flee) Slots() []int { return []int{c.Slot} }

func (c Flee) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		o := m.Owner()
		t := m.GetTarget(c.Slot)
		if o == nil || t == nil {
			return
		}
		away := common.NormalizeOrZero(o.Position().Sub(t.Position()))
		if away == (cp.Vector{}) {
			away = o.Forward()
		}
		o.Face(away)
		o.Move(away.Mult(speed(o, c.Speed)))
	})
}

// FaceTarget turns toward the slot occupant without moving.
type FaceTarget struct {
	Slot int
}

func (c FaceTarget) Slots() []int { return []int{c.Slot} }

func (c FaceTarget) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		if o := m.Owner(); o != nil && m.HasTarget(c.Slot) {
			o.Face(m.DirectionToTarget(c.Slot))
		}
	})
}

// Stop clears the movement intent.
type Stop struct{}

func (Stop) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		if o := m.Owner(); o != nil {
			o.Move(cp.Vector{})
		}
	})
}

// Wander walks to random points around the position the state was entered
// at, picking a new point on arrival. Points are drawn with the sensor's
// obstacle-aware sampler, so a boxed-in owner keeps its home point.
type Wander struct {
	Radius       float64
	ObstacleMask perception.Layer
	Arrive       float64
	Speed        float64
	Attempts     int
}

func (c Wander) NewAction() fsm.Action {
	return &wander{cfg: c}
}

type wander struct {
	cfg    Wander
	home   cp.Vector
	point  cp.Vector
	picked bool
}

func (w *wander) OnEnterState(m *fsm.StateMachine) {
	if o := m.Owner(); o != nil {
		w.home = o.Position()
	}
	w.picked = false
}

func (w *wander) OnExitState(*fsm.StateMachine) { w.picked = false }

// Point is the current destination.
func (w *wander) Point() cp.Vector { return w.point }

func (w *wander) Perform(m *fsm.StateMachine) {
	o := m.Owner()
	if o == nil {
		return
	}
	if !w.picked {
		w.pick(m)
	}
	if steer(o, w.point, w.cfg.Arrive, w.cfg.Speed) {
		w.pick(m)
	}
}

func (w *wander) pick(m *fsm.StateMachine) {
	w.point = m.Sensor().RandomPointInCircle(w.home, w.cfg.Radius, w.cfg.ObstacleMask, w.cfg.Attempts)
	w.picked = true
}

// Patrol visits Points in order. At the end it wraps around when Loop is
// set and walks back otherwise.
type Patrol struct {
	Points []cp.Vector
	Arrive float64
	Speed  float64
	Loop   bool
}

func (c Patrol) NewAction() fsm.Action {
	return &patrol{cfg: c, step: 1}
}

type patrol struct {
	cfg  Patrol
	next int
	step int
}

// Next is the index of the waypoint being approached.
func (p *patrol) Next() int { return p.next }

func (p *patrol) OnEnterState(m *fsm.StateMachine) {
	o := m.Owner()
	if o == nil || len(p.cfg.Points) == 0 {
		return
	}
	// resume at the closest waypoint
	best := 0
	for i, pt := range p.cfg.Points {
		if pt.DistanceSq(o.Position()) < p.cfg.Points[best].DistanceSq(o.Position()) {
			best = i
		}
	}
	p.next, p.step = best, 1
}

func (p *patrol) OnExitState(*fsm.StateMachine) {}

func (p *patrol) Perform(m *fsm.StateMachine) {
	o := m.Owner()
	n := len(p.cfg.Points)
	if o == nil || n == 0 {
		return
	}
	if !steer(o, p.cfg.Points[p.next], p.cfg.Arrive, p.cfg.Speed) || n == 1 {
		return
	}
	switch {
	case p.cfg.Loop:
		p.next = (p.next + 1) % n
	case p.next+p.step < 0 || p.next+p.step >= n:
		p.step = -p.step
		p.next += p.step
	default:
		p.next += p.step
	}
}
