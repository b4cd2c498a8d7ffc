// Package ecs is a small sparse-set entity component system used to host
// NPC brains: generational entity handles, typed component stores and an
// ordered system scheduler.
package ecs

import "github.com/milk9111/npcbrain/ecs/component"

// World owns entities, their component stores and the event queue.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]store
	events   EventQueue
	delta    float64
	clock    float64
}

func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]store)}
}

func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity drops every component of e and frees its slot. It reports
// false for a handle that is not alive.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e.id())
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities lists the live entities in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	w.entities.each(func(e Entity) { out = append(out, e) })
	return out
}

func (w *World) entity(id entityID) (Entity, bool) {
	if id == 0 || int(id) > len(w.entities.gen) || !w.entities.alive[id-1] {
		return 0, false
	}
	return makeEntity(id, w.entities.gen[id-1]), true
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Advance sets the frame delta systems read through Delta.
func (w *World) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	w.delta = dt
	w.clock += dt
}

func (w *World) Delta() float64 { return w.delta }

// Clock is the total simulated time.
func (w *World) Clock() float64 { return w.clock }
