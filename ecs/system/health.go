package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/ecs/component"
)

// HealthSystem marks actors whose health ran out as dead, stops them and
// switches their brain off.
type HealthSystem struct{}

func NewHealthSystem() *HealthSystem {
	return &HealthSystem{}
}

func (s *HealthSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.HealthComponent.Kind(), func(e ecs.Entity, h *component.Health) {
		if h.Dead || h.HP > 0 {
			return
		}
		h.HP = 0
		h.Dead = true
		if m, ok := ecs.Get(w, e, component.MotionComponent.Kind()); ok {
			m.Intent = cp.Vector{}
		}
		if b, ok := ecs.Get(w, e, component.BrainComponent.Kind()); ok && b.Machine != nil {
			b.Machine.SetEnabled(false)
		}
		w.Events().Push(ecs.Event{Type: ecs.EventDied, Entity: e, Time: w.Clock()})
	})
}
