package fsm

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/perception"
)

// Owner is the actor a machine drives. Every side effect an action has goes
// through it, its modules or the blackboard.
type Owner interface {
	perception.Entity

	// Move sets the desired planar velocity. A zero vector stops.
	Move(velocity cp.Vector)
	// Face turns the owner toward direction. A zero vector keeps the facing.
	Face(direction cp.Vector)
	IsDead() bool
	// Module returns the optional capability of the given kind, or nil.
	Module(kind ModuleKind) any
}

type ModuleKind string

const (
	ModuleAbilities ModuleKind = "abilities"
	ModuleWeapons   ModuleKind = "weapons"
	ModuleAnimator  ModuleKind = "animator"
	ModuleVision    ModuleKind = "vision"
	ModuleMovement  ModuleKind = "movement"
)

type Ability interface {
	Name() string
	Ready() bool
	// Trigger fires the ability at target (which may be nil) and reports
	// whether it fired.
	Trigger(target perception.Entity) bool
}

type AbilityModule interface {
	Ability(name string) Ability
}

type WeaponModule interface {
	Current() string
	Equip(name string) bool
	Weapons() []string
}

type Animator interface {
	SetTrigger(param string)
	SetBool(param string, v bool)
	SetFloat(param string, v float64)
	SetInt(param string, v int)
	Controller() string
	SetController(name string)
}

type VisionIndicator interface {
	Show(angleDeg, distance float64)
	Hide()
}

// MovementModule exposes the owner's speed so movement actions can scale
// their intents.
type MovementModule interface {
	Speed() float64
}

func module[T any](o Owner, kind ModuleKind) (T, bool) {
	var zero T
	if o == nil {
		return zero, false
	}
	v, ok := o.Module(kind).(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func Abilities(o Owner) (AbilityModule, bool) { return module[AbilityModule](o, ModuleAbilities) }

func Weapons(o Owner) (WeaponModule, bool) { return module[WeaponModule](o, ModuleWeapons) }

func AnimatorOf(o Owner) (Animator, bool) { return module[Animator](o, ModuleAnimator) }

func VisionOf(o Owner) (VisionIndicator, bool) { return module[VisionIndicator](o, ModuleVision) }

func MovementOf(o Owner) (MovementModule, bool) { return module[MovementModule](o, ModuleMovement) }
