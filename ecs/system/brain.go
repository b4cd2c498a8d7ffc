package system

import (
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/fsm"
)

// BrainSystem ticks every registered machine by the frame delta.
type BrainSystem struct {
	brains *fsm.Scheduler
}

func NewBrainSystem(brains *fsm.Scheduler) *BrainSystem {
	return &BrainSystem{brains: brains}
}

func (s *BrainSystem) Update(w *ecs.World) {
	if w == nil || s.brains == nil {
		return
	}
	s.brains.Tick(w.Delta())
}
