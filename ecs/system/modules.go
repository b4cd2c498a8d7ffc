package system

import (
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/ecs/component"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/perception"
)

type abilityModule struct{ owner *Actor }

func (m abilityModule) Ability(name string) fsm.Ability {
	abilities, ok := ecs.Get(m.owner.w, m.owner.e, component.AbilitiesComponent.Kind())
	if !ok {
		return nil
	}
	ab := abilities.Find(name)
	if ab == nil {
		return nil
	}
	return ability{owner: m.owner, ab: ab}
}

// ability fires by queueing events; damage is applied here so the target's
// HealthSystem sees it on the same frame.
type ability struct {
	owner *Actor
	ab    *component.Ability
}

func (a ability) Name() string { return a.ab.Name }

func (a ability) Ready() bool { return a.ab.Cooldown.Ready() && !a.owner.IsDead() }

func (a ability) Trigger(target perception.Entity) bool {
	if !a.Ready() {
		return false
	}
	if a.ab.Range > 0 && target != nil {
		if target.Position().DistanceSq(a.owner.Position()) > a.ab.Range*a.ab.Range {
			return false
		}
	}
	a.ab.Cooldown.Start()

	w := a.owner.w
	name := ""
	if target != nil {
		name = target.Name()
	}
	w.Events().Push(ecs.Event{
		Type:   ecs.EventAbilityTriggered,
		Entity: a.owner.e,
		Time:   w.Clock(),
		Data:   ecs.AbilityTrigger{Ability: a.ab.Name, Target: name},
	})

	victim, ok := target.(*Actor)
	if !ok || a.ab.Damage <= 0 || victim.w != w {
		return true
	}
	if h, ok := ecs.Get(w, victim.e, component.HealthComponent.Kind()); ok && !h.Dead {
		h.HP -= a.ab.Damage
		w.Events().Push(ecs.Event{
			Type:   ecs.EventDamaged,
			Entity: victim.e,
			Time:   w.Clock(),
			Data:   ecs.Damage{Amount: a.ab.Damage, Source: a.owner.Name()},
		})
	}
	return true
}

type weaponModule struct{ w *component.Weapons }

func (m weaponModule) Current() string { return m.w.Current }

func (m weaponModule) Equip(name string) bool {
	for _, n := range m.w.List {
		if n == name {
			m.w.Current = name
			return true
		}
	}
	return false
}

func (m weaponModule) Weapons() []string { return m.w.List }

type animatorModule struct{ a *component.Animator }

func (m animatorModule) SetTrigger(param string) {
	m.a.Triggers = append(m.a.Triggers, param)
}

func (m animatorModule) SetBool(param string, v bool) {
	if m.a.Bools == nil {
		m.a.Bools = map[string]bool{}
	}
	m.a.Bools[param] = v
}

func (m animatorModule) SetFloat(param string, v float64) {
	if m.a.Floats == nil {
		m.a.Floats = map[string]float64{}
	}
	m.a.Floats[param] = v
}

func (m animatorModule) SetInt(param string, v int) {
	if m.a.Ints == nil {
		m.a.Ints = map[string]int{}
	}
	m.a.Ints[param] = v
}

func (m animatorModule) Controller() string { return m.a.Controller }

func (m animatorModule) SetController(name string) { m.a.Controller = name }

type visionModule struct{ v *component.Vision }

func (m visionModule) Show(angleDeg, distance float64) {
	m.v.Visible, m.v.Angle, m.v.Distance = true, angleDeg, distance
}

func (m visionModule) Hide() { m.v.Visible = false }

type movementModule struct{ m *component.Motion }

func (m movementModule) Speed() float64 { return m.m.Speed }
