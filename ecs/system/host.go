package system

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/config"
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/ecs/component"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/library"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Point is a plane position written as [x, y] or {x, y}.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p *Point) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var xy []float64
		if err := value.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: point needs 2 numbers, got %d", value.Line, len(xy))
		}
		p.X, p.Y = xy[0], xy[1]
		return nil
	}
	type plain Point
	var v plain
	if err := value.Decode(&v); err != nil {
		return err
	}
	*p = Point(v)
	return nil
}

func (p Point) Vector() cp.Vector { return cp.Vector{X: p.X, Y: p.Y} }

type AbilitySpec struct {
	Name     string  `yaml:"name"`
	Damage   float64 `yaml:"damage"`
	Range    float64 `yaml:"range"`
	Cooldown float64 `yaml:"cooldown"`
}

// ActorSpec describes one actor to spawn. An empty Asset spawns an actor
// without a brain, such as a scripted player.
type ActorSpec struct {
	Name       string         `yaml:"name"`
	Tag        string         `yaml:"tag"`
	Asset      string         `yaml:"asset"`
	Layer      string         `yaml:"layer"`
	Player     bool           `yaml:"player"`
	Position   Point          `yaml:"position"`
	Facing     Point          `yaml:"facing"`
	Radius     float64        `yaml:"radius"`
	Speed      float64        `yaml:"speed"`
	MaxSpeed   float64        `yaml:"max_speed"`
	HP         float64        `yaml:"hp"`
	Velocity   Point          `yaml:"velocity"`
	Abilities  []AbilitySpec  `yaml:"abilities"`
	Weapons    []string       `yaml:"weapons"`
	Controller string         `yaml:"controller"`
	Blackboard map[string]any `yaml:"blackboard"`
}

// WallSpec is a static obstacle box.
type WallSpec struct {
	Min   Point  `yaml:"min"`
	Max   Point  `yaml:"max"`
	Layer string `yaml:"layer"`
}

type HostOptions struct {
	Seed   int64
	Logger logrus.FieldLogger
}

// Host runs brains over an ecs.World: it spawns actors, owns the
// perception space and steps the systems.
type Host struct {
	World   *ecs.World
	Space   *perception.Space
	Brains  *fsm.Scheduler
	Systems *ecs.Scheduler

	lib    *library.Library
	actors map[ecs.Entity]*Actor
	rng    *rand.Rand
	log    logrus.FieldLogger
}

func NewHost(cfg config.Engine, lib *library.Library, opts HostOptions) *Host {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	space := perception.NewSpace(log)
	brains := fsm.NewScheduler(space, cfg.SchedulerOptions(log))
	actors := make(map[ecs.Entity]*Actor)
	return &Host{
		World:  ecs.NewWorld(),
		Space:  space,
		Brains: brains,
		Systems: ecs.NewScheduler(
			NewBrainSystem(brains),
			NewMovementSystem(space, actors),
			NewCooldownSystem(),
			NewHealthSystem(),
		),
		lib:    lib,
		actors: actors,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		log:    log.WithField("component", "host"),
	}
}

// Actor returns the owner view of e, nil if e was not spawned here.
func (h *Host) Actor(e ecs.Entity) *Actor {
	return h.actors[e]
}

// Find returns the first live actor with the given name.
func (h *Host) Find(name string) (*Actor, bool) {
	for _, e := range ecs.Entities(h.World) {
		if a, ok := h.actors[e]; ok && a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// Machine returns e's brain, nil for actors without one.
func (h *Host) Machine(e ecs.Entity) *fsm.StateMachine {
	if b, ok := ecs.Get(h.World, e, component.BrainComponent.Kind()); ok {
		return b.Machine
	}
	return nil
}

func (h *Host) layer(name string) (perception.Layer, error) {
	if name == "" {
		return perception.LayerNone, nil
	}
	return h.lib.Layers().Mask(name)
}

// AddWall adds a static obstacle box.
func (h *Host) AddWall(spec WallSpec) error {
	name := spec.Layer
	if name == "" {
		name = "walls"
	}
	layer, err := h.layer(name)
	if err != nil {
		return err
	}
	h.Space.AddBox(cp.BB{
		L: min(spec.Min.X, spec.Max.X),
		B: min(spec.Min.Y, spec.Max.Y),
		R: max(spec.Min.X, spec.Max.X),
		T: max(spec.Min.Y, spec.Max.Y),
	}, layer)
	return nil
}

// Spawn creates the actor and, when spec names an asset, its brain. The
// brain enters its initial state before Spawn returns.
func (h *Host) Spawn(spec ActorSpec) (ecs.Entity, error) {
	layer, err := h.layer(spec.Layer)
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", spec.Name, err)
	}
	var bp *asset.Blueprint
	if spec.Asset != "" {
		if bp, err = h.lib.Blueprint(spec.Asset); err != nil {
			return 0, fmt.Errorf("spawn %s: %w", spec.Name, err)
		}
	}

	w := h.World
	e := ecs.CreateEntity(w)
	if err := addBody(w, e, spec, layer); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("spawn %s: %w", spec.Name, err)
	}

	actor := &Actor{w: w, e: e}
	h.actors[e] = actor
	if err := h.Space.Add(actor, spec.Radius, layer); err != nil {
		h.log.WithField("actor", spec.Name).WithError(err).Warn("actor not added to perception space")
	}
	w.Events().Push(ecs.Event{Type: ecs.EventSpawned, Entity: e, Time: w.Clock()})

	if bp != nil {
		err := errors.Join(
			ecs.Add(w, e, component.AnimatorComponent.Kind(), &component.Animator{Controller: spec.Controller}),
			ecs.Add(w, e, component.VisionComponent.Kind(), &component.Vision{}),
		)
		if err == nil {
			err = h.attach(e, spec.Asset, bp, spec.Blackboard)
		}
		if err != nil {
			h.Despawn(e)
			return 0, fmt.Errorf("spawn %s: %w", spec.Name, err)
		}
	}
	return e, nil
}

// addBody attaches the components every actor carries plus the optional
// ones spec asks for.
func addBody(w *ecs.World, e ecs.Entity, spec ActorSpec, layer perception.Layer) error {
	errs := []error{
		ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
			Position: spec.Position.Vector(),
			Facing:   common.NormalizeOrZero(spec.Facing.Vector()),
		}),
		ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{
			Name:   spec.Name,
			Tag:    spec.Tag,
			Radius: spec.Radius,
			Layer:  layer,
		}),
		ecs.Add(w, e, component.MotionComponent.Kind(), &component.Motion{
			Intent:   spec.Velocity.Vector(),
			Speed:    spec.Speed,
			MaxSpeed: spec.MaxSpeed,
		}),
	}
	if spec.HP > 0 {
		errs = append(errs, ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{HP: spec.HP, Max: spec.HP}))
	}
	if len(spec.Abilities) > 0 {
		abilities := &component.Abilities{}
		for _, a := range spec.Abilities {
			abilities.List = append(abilities.List, &component.Ability{
				Name:     a.Name,
				Damage:   a.Damage,
				Range:    a.Range,
				Cooldown: component.Cooldown{Seconds: a.Cooldown},
			})
		}
		errs = append(errs, ecs.Add(w, e, component.AbilitiesComponent.Kind(), abilities))
	}
	if len(spec.Weapons) > 0 {
		errs = append(errs, ecs.Add(w, e, component.WeaponsComponent.Kind(), &component.Weapons{
			List:    spec.Weapons,
			Current: spec.Weapons[0],
		}))
	}
	if spec.Player {
		errs = append(errs, ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}))
	}
	return errors.Join(errs...)
}

func (h *Host) attach(e ecs.Entity, name string, bp *asset.Blueprint, values map[string]any) error {
	actor := h.actors[e]
	rng := rand.New(rand.NewSource(h.rng.Int63()))
	m := bp.Build(actor, asset.Deps{
		Sensor:        h.Brains.NewSensor(rng),
		Rand:          rng,
		Logger:        h.log,
		OnStateChange: h.stateChanged(e),
	})
	for k, v := range values {
		key, ok := m.Keys().Lookup(k)
		if !ok {
			h.log.WithFields(logrus.Fields{"actor": actor.Name(), "key": k}).Warn("initial blackboard value for undeclared key ignored")
			continue
		}
		setValue(m, key, v)
	}
	if err := m.Start(bp.Initial); err != nil {
		return err
	}
	handle := h.Brains.Register(m)
	return ecs.Add(h.World, e, component.BrainComponent.Kind(), &component.Brain{Asset: asset.AssetName(name), Machine: m, Handle: handle})
}

func (h *Host) stateChanged(e ecs.Entity) func(m *fsm.StateMachine, from, to *fsm.State) {
	return func(m *fsm.StateMachine, from, to *fsm.State) {
		change := ecs.StateChange{Machine: m.Name(), To: to.Name}
		if from != nil {
			change.From = from.Name
		}
		h.World.Events().Push(ecs.Event{Type: ecs.EventStateChanged, Entity: e, Time: h.World.Clock(), Data: change})
	}
}

// Rebuild gives every actor running the named asset a fresh machine from
// bp. Blackboard contents do not carry over since keys belong to the
// blueprint they were compiled with.
func (h *Host) Rebuild(name string, bp *asset.Blueprint) int {
	n := 0
	ecs.ForEach(h.World, component.BrainComponent.Kind(), func(e ecs.Entity, b *component.Brain) {
		if b.Asset != name {
			return
		}
		h.Brains.Unregister(b.Handle)
		if err := h.attach(e, name, bp, nil); err != nil {
			h.log.WithFields(logrus.Fields{"actor": h.actors[e].Name(), "asset": name}).WithError(err).Error("rebuild failed")
			return
		}
		n++
	})
	return n
}

// Despawn removes e, its brain and its perception shape.
func (h *Host) Despawn(e ecs.Entity) bool {
	if b, ok := ecs.Get(h.World, e, component.BrainComponent.Kind()); ok {
		h.Brains.Unregister(b.Handle)
	}
	if a, ok := h.actors[e]; ok {
		h.Space.Remove(a)
		delete(h.actors, e)
	}
	return ecs.DestroyEntity(h.World, e)
}

// Step advances the world by dt and returns the events it produced.
func (h *Host) Step(dt float64) []ecs.Event {
	h.Systems.Step(h.World, dt)
	return h.World.Events().Drain()
}

func setValue(m *fsm.StateMachine, key *blackboard.Key, v any) {
	bb := m.Blackboard()
	switch val := v.(type) {
	case bool:
		bb.SetBool(key, val)
	case int:
		bb.SetInt(key, val)
	case float64:
		bb.SetFloat(key, val)
	case string:
		bb.SetString(key, val)
	case []any:
		if len(val) == 2 {
			x, okx := number(val[0])
			y, oky := number(val[1])
			if okx && oky {
				bb.SetVector(key, cp.Vector{X: x, Y: y})
				return
			}
		}
		bb.SetObject(key, val)
	default:
		bb.SetObject(key, val)
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
