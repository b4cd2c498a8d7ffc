package fsm

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
)

const DefaultTargetSlots = 4

// TargetSlots is a fixed array of perceived entities. Slot 0 is the primary
// target. Destroyed occupants read as empty but are not cleared.
type TargetSlots struct {
	slots []perception.Entity
	log   logrus.FieldLogger
}

func NewTargetSlots(n int, log logrus.FieldLogger) *TargetSlots {
	if n <= 0 {
		n = DefaultTargetSlots
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TargetSlots{slots: make([]perception.Entity, n), log: log}
}

func (t *TargetSlots) Len() int {
	if t == nil {
		return 0
	}
	return len(t.slots)
}

func (t *TargetSlots) inRange(i int, op string) bool {
	if t == nil {
		return false
	}
	if i < 0 || i >= len(t.slots) {
		t.log.WithFields(logrus.Fields{"slot": i, "slots": len(t.slots), "op": op}).
			Warn("target slot out of range")
		return false
	}
	return true
}

// Set stores e (nil clears) and reports whether i was in range.
func (t *TargetSlots) Set(i int, e perception.Entity) bool {
	if !t.inRange(i, "set") {
		return false
	}
	t.slots[i] = e
	return true
}

func (t *TargetSlots) Clear(i int) bool {
	return t.Set(i, nil)
}

// Get returns the occupant of slot i, or nil when the slot is empty, out of
// range or holds a destroyed entity.
func (t *TargetSlots) Get(i int) perception.Entity {
	if !t.inRange(i, "get") {
		return nil
	}
	e := t.slots[i]
	if !perception.Present(e) {
		return nil
	}
	return e
}

func (t *TargetSlots) Has(i int) bool {
	return t.Get(i) != nil
}

// Context returns the aliveness capability of slot i, or nil.
func (t *TargetSlots) Context(i int) perception.Vitals {
	e := t.Get(i)
	if e == nil {
		return nil
	}
	v, _ := e.(perception.Vitals)
	return v
}

// Distance from origin to slot i, or +Inf when the slot is empty.
func (t *TargetSlots) Distance(i int, origin cp.Vector) float64 {
	e := t.Get(i)
	if e == nil {
		return math.Inf(1)
	}
	return e.Position().Distance(origin)
}

// Direction from origin to slot i, normalized, or the zero vector.
func (t *TargetSlots) Direction(i int, origin cp.Vector) cp.Vector {
	e := t.Get(i)
	if e == nil {
		return cp.Vector{}
	}
	return common.NormalizeOrZero(e.Position().Sub(origin))
}
