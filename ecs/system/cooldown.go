package system

import (
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/ecs/component"
)

// CooldownSystem recharges ability cooldowns.
type CooldownSystem struct{}

func NewCooldownSystem() *CooldownSystem {
	return &CooldownSystem{}
}

func (s *CooldownSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.Delta()
	ecs.ForEach(w, component.AbilitiesComponent.Kind(), func(e ecs.Entity, abilities *component.Abilities) {
		for _, ab := range abilities.List {
			ab.Cooldown.Advance(dt)
		}
	})
}
