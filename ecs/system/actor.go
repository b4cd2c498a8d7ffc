// Package system holds the systems and the Host that run NPC brains inside
// an ecs.World.
package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/ecs/component"
	"github.com/milk9111/npcbrain/fsm"
)

// Actor is the fsm.Owner and perception.Entity view of one entity. The
// Host keeps one Actor per entity so identity comparisons hold.
type Actor struct {
	w *ecs.World
	e ecs.Entity
}

func (a *Actor) Entity() ecs.Entity { return a.e }

func (a *Actor) Name() string {
	if b, ok := ecs.Get(a.w, a.e, component.BodyComponent.Kind()); ok {
		return b.Name
	}
	return a.e.String()
}

func (a *Actor) Tag() string {
	if b, ok := ecs.Get(a.w, a.e, component.BodyComponent.Kind()); ok {
		return b.Tag
	}
	return ""
}

func (a *Actor) Position() cp.Vector {
	if t, ok := ecs.Get(a.w, a.e, component.TransformComponent.Kind()); ok {
		return t.Position
	}
	return cp.Vector{}
}

func (a *Actor) Forward() cp.Vector {
	if t, ok := ecs.Get(a.w, a.e, component.TransformComponent.Kind()); ok && t.Facing != (cp.Vector{}) {
		return t.Facing
	}
	return cp.Vector{X: 1}
}

func (a *Actor) Valid() bool {
	return ecs.IsAlive(a.w, a.e)
}

func (a *Actor) IsDead() bool {
	h, ok := ecs.Get(a.w, a.e, component.HealthComponent.Kind())
	return ok && h.Dead
}

// Move sets the velocity intent, clamped to MaxSpeed when set.
func (a *Actor) Move(velocity cp.Vector) {
	m, ok := ecs.Get(a.w, a.e, component.MotionComponent.Kind())
	if !ok {
		return
	}
	if m.MaxSpeed > 0 {
		velocity = velocity.Clamp(m.MaxSpeed)
	}
	m.Intent = velocity
}

func (a *Actor) Face(direction cp.Vector) {
	t, ok := ecs.Get(a.w, a.e, component.TransformComponent.Kind())
	if !ok {
		return
	}
	if dir := common.NormalizeOrZero(direction); dir != (cp.Vector{}) {
		t.Facing = dir
	}
}

func (a *Actor) Module(kind fsm.ModuleKind) any {
	switch kind {
	case fsm.ModuleAbilities:
		if ecs.Has(a.w, a.e, component.AbilitiesComponent.Kind()) {
			return abilityModule{a}
		}
	case fsm.ModuleWeapons:
		if w, ok := ecs.Get(a.w, a.e, component.WeaponsComponent.Kind()); ok {
			return weaponModule{w}
		}
	case fsm.ModuleAnimator:
		if an, ok := ecs.Get(a.w, a.e, component.AnimatorComponent.Kind()); ok {
			return animatorModule{an}
		}
	case fsm.ModuleVision:
		if v, ok := ecs.Get(a.w, a.e, component.VisionComponent.Kind()); ok {
			return visionModule{v}
		}
	case fsm.ModuleMovement:
		if m, ok := ecs.Get(a.w, a.e, component.MotionComponent.Kind()); ok {
			return movementModule{m}
		}
	}
	return nil
}
