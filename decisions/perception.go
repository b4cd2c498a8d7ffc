package decisions

import (
	"math"

	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/perception"
)

// DefaultTolerance is the distance equality band as a fraction of the
// threshold.
const DefaultTolerance = 0.01

// Distance compares the distance to the slot occupant against Threshold.
// Squared values are compared. The band edges are the squared relative
// edges Threshold*(1-Tolerance) and Threshold*(1+Tolerance), each widened
// by Tolerance in squared units, so Equal with threshold 5 accepts
// [4.9499, 5.0501]. An empty slot is false.
type Distance struct {
	Slot      int
	Threshold float64
	Mode      Comparison
	Tolerance float64
}

func (c Distance) Slots() []int { return []int{c.Slot} }

// Compare applies the mode to a squared distance.
func (c Distance) Compare(distSq float64) bool {
	tol := math.Abs(c.Tolerance)
	lo := c.Threshold * (1 - tol)
	hi := c.Threshold * (1 + tol)
	if lo < 0 {
		lo = 0
	}
	return c.Mode.Band(distSq, math.Max(lo*lo-tol, 0), hi*hi+tol)
}

func (c Distance) NewDecision() fsm.Decision {
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		t := m.GetTarget(c.Slot)
		o := m.Owner()
		if t == nil || o == nil {
			return false
		}
		return c.Compare(t.Position().DistanceSq(o.Position()))
	})
}

// DetectInRadius stores the first qualifying entity found within Radius into
// the slot and, when Key is set, the blackboard. "First" follows the spatial
// query order, which is not necessarily the nearest.
type DetectInRadius struct {
	Slot   int
	Radius float64
	Mask   perception.Layer
	Tag    string
	Key    *blackboard.Key
}

func (c DetectInRadius) Slots() []int { return []int{c.Slot} }

func (c DetectInRadius) NewDecision() fsm.Decision {
	return &detectInRadius{cfg: c}
}

type detectInRadius struct {
	cfg     DetectInRadius
	scratch []perception.Entity
}

func (d *detectInRadius) Decide(m *fsm.StateMachine) bool {
	o := m.Owner()
	if o == nil {
		return false
	}
	var n int
	d.scratch, n = m.Sensor().FindAllTargets(o.Position(), d.cfg.Radius, d.cfg.Mask, d.scratch[:0])
	if n == 0 {
		return false
	}
	for _, e := range d.scratch {
		if isSelf(o, e) {
			continue
		}
		if d.cfg.Tag != "" && e.Tag() != d.cfg.Tag {
			continue
		}
		if !perception.Alive(e) {
			continue
		}
		m.SetTarget(d.cfg.Slot, e)
		if d.cfg.Key != nil {
			m.Blackboard().SetObject(d.cfg.Key, e)
		}
		clear(d.scratch)
		return true
	}
	clear(d.scratch)
	return false
}

// ConeDetect acquires or revalidates a target inside a vision cone. When
// AllowRefresh is set or the slot is empty, the nearest living sighted
// entity on TargetMask becomes the target; otherwise the current occupant is
// tested again. The slot is cleared whenever no sighted target remains.
type ConeDetect struct {
	Slot         int
	ViewDistance float64
	ViewAngle    float64
	TargetMask   perception.Layer
	ObstacleMask perception.Layer
	AllowRefresh bool
	Tag          string
	Key          *blackboard.Key
}

func (c ConeDetect) Slots() []int { return []int{c.Slot} }

func (c ConeDetect) NewDecision() fsm.Decision {
	return &coneDetect{cfg: c}
}

type coneDetect struct {
	cfg     ConeDetect
	scratch []perception.Entity
}

func (d *coneDetect) Decide(m *fsm.StateMachine) bool {
	o := m.Owner()
	if o == nil {
		return false
	}
	if d.cfg.AllowRefresh || !m.HasTarget(d.cfg.Slot) {
		return d.refresh(m, o)
	}
	t := m.GetTarget(d.cfg.Slot)
	if perception.Alive(t) && d.sees(m, o, t) {
		return true
	}
	m.ClearTarget(d.cfg.Slot)
	return false
}

func (d *coneDetect) refresh(m *fsm.StateMachine, o fsm.Owner) bool {
	origin := o.Position()
	d.scratch, _ = m.Sensor().FindAllTargets(origin, d.cfg.ViewDistance, d.cfg.TargetMask, d.scratch[:0])
	defer clear(d.scratch)

	var best perception.Entity
	bestSq := math.Inf(1)
	for _, e := range d.scratch {
		if isSelf(o, e) || !perception.Alive(e) {
			continue
		}
		if d.cfg.Tag != "" && e.Tag() != d.cfg.Tag {
			continue
		}
		dsq := e.Position().DistanceSq(origin)
		if dsq >= bestSq || !d.sees(m, o, e) {
			continue
		}
		best, bestSq = e, dsq
	}
	if best == nil {
		m.ClearTarget(d.cfg.Slot)
		return false
	}
	m.SetTarget(d.cfg.Slot, best)
	if d.cfg.Key != nil {
		m.Blackboard().SetObject(d.cfg.Key, best)
	}
	return true
}

func (d *coneDetect) sees(m *fsm.StateMachine, o fsm.Owner, t perception.Entity) bool {
	return m.Sensor().IsTargetInSight(o, t, d.cfg.ViewAngle, d.cfg.ViewDistance, d.cfg.ObstacleMask)
}

// LineOfSight tests the current slot occupant against a vision cone without
// acquiring or clearing targets.
type LineOfSight struct {
	Slot         int
	ViewDistance float64
	ViewAngle    float64
	ObstacleMask perception.Layer
}

func (c LineOfSight) Slots() []int { return []int{c.Slot} }

func (c LineOfSight) NewDecision() fsm.Decision {
	return fsm.DecisionFunc(func(m *fsm.StateMachine) bool {
		o := m.Owner()
		t := m.GetTarget(c.Slot)
		if o == nil || t == nil {
			return false
		}
		return m.Sensor().IsTargetInSight(o, t, c.ViewAngle, c.ViewDistance, c.ObstacleMask)
	})
}

func isSelf(o fsm.Owner, e perception.Entity) bool {
	return perception.Entity(o) == e
}
