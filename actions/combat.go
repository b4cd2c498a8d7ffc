package actions

import (
	"slices"

	"github.com/milk9111/npcbrain/fsm"
)

// Attack triggers a named ability at the slot occupant whenever it is ready.
// The ability is looked up once when the state is entered.
type Attack struct {
	Ability string
	Slot    int
	Face    bool
}

func (c Attack) Slots() []int { return []int{c.Slot} }

func (c Attack) NewAction() fsm.Action {
	return &attack{cfg: c}
}

type attack struct {
	cfg     Attack
	ability fsm.Ability
}

func (a *attack) OnEnterState(m *fsm.StateMachine) {
	a.ability = nil
	abilities, ok := fsm.Abilities(m.Owner())
	if !ok {
		m.Log().WithField("ability", a.cfg.Ability).Debug("owner has no ability module")
		return
	}
	a.ability = abilities.Ability(a.cfg.Ability)
}

func (a *attack) OnExitState(*fsm.StateMachine) { a.ability = nil }

func (a *attack) Perform(m *fsm.StateMachine) {
	t := m.GetTarget(a.cfg.Slot)
	if a.ability == nil || t == nil {
		return
	}
	if o := m.Owner(); a.cfg.Face && o != nil {
		o.Face(m.DirectionToTarget(a.cfg.Slot))
	}
	if !a.ability.Ready() {
		return
	}
	if a.ability.Trigger(t) {
		m.Log().WithField("ability", a.cfg.Ability).Debug("ability triggered")
	}
}

// ChangeWeapon equips Weapon, or the next weapon in the module's list when
// Weapon is empty.
type ChangeWeapon struct {
	Weapon string
}

func (c ChangeWeapon) NewAction() fsm.Action {
	return fsm.ActionFunc(func(m *fsm.StateMachine) {
		weapons, ok := fsm.Weapons(m.Owner())
		if !ok {
			return
		}
		if c.Weapon != "" {
			if weapons.Current() != c.Weapon && !weapons.Equip(c.Weapon) {
				m.Log().WithField("weapon", c.Weapon).Warn("weapon not available")
			}
			return
		}
		all := weapons.Weapons()
		if len(all) == 0 {
			return
		}
		i := slices.Index(all, weapons.Current())
		weapons.Equip(all[(i+1)%len(all)])
	})
}
