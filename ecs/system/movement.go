package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/ecs/component"
	"github.com/milk9111/npcbrain/perception"
)

// MovementSystem integrates move intents and keeps the perception space in
// step with actor positions.
type MovementSystem struct {
	space  *perception.Space
	actors map[ecs.Entity]*Actor
}

func NewMovementSystem(space *perception.Space, actors map[ecs.Entity]*Actor) *MovementSystem {
	return &MovementSystem{space: space, actors: actors}
}

func (s *MovementSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Delta()
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.MotionComponent.Kind(), func(e ecs.Entity, t *component.Transform, m *component.Motion) {
		if m.Intent == (cp.Vector{}) || dt <= 0 {
			return
		}
		t.Position = t.Position.Add(m.Intent.Mult(dt))
		if a, ok := s.actors[e]; ok {
			s.space.Sync(a)
		}
	})
}
