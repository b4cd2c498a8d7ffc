package main

import (
	"fmt"
	"sort"

	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/config"
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/ecs/component"
	"github.com/milk9111/npcbrain/ecs/system"
	"github.com/milk9111/npcbrain/levels"
	"github.com/milk9111/npcbrain/library"
	"github.com/sirupsen/logrus"
)

// Stats counts what happened during a run.
type Stats struct {
	Frames  int
	Events  map[ecs.EventType]int
	Died    []string
	Reloads int
	// PlayerDead reports whether the actor tagged as player is dead.
	PlayerDead bool
}

type Game struct {
	frames int

	host  *system.Host
	lib   *library.Library
	level *levels.Level
	watch bool
	stats Stats
	log   logrus.FieldLogger
}

// NewGame loads the level's walls and actors into a fresh host. The
// library is closed again when loading fails.
func NewGame(cfg config.Engine, lvl *levels.Level, seed int64, log logrus.FieldLogger) (_ *Game, err error) {
	g := &Game{
		level: lvl,
		watch: cfg.Watch,
		stats: Stats{Events: map[ecs.EventType]int{}},
		log:   log,
	}
	lib, err := library.New(cfg, library.Options{Logger: log, OnReload: g.reloaded})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if cerr := lib.Close(); cerr != nil {
				log.WithError(cerr).Warn("close library")
			}
		}
	}()
	g.lib = lib
	g.host = system.NewHost(cfg, lib, system.HostOptions{Seed: seed, Logger: log})

	if g.watch {
		if err := lib.Watch(); err != nil {
			return nil, err
		}
	}
	for i, w := range lvl.Walls {
		if err := g.host.AddWall(w); err != nil {
			return nil, fmt.Errorf("level %s: wall %d: %w", lvl.Name, i, err)
		}
	}
	for _, a := range lvl.Actors {
		if _, err := g.host.Spawn(a); err != nil {
			return nil, fmt.Errorf("level %s: %w", lvl.Name, err)
		}
	}
	g.record(g.host.World.Events().Drain())
	return g, nil
}

func (g *Game) reloaded(name string, bp *asset.Blueprint) {
	n := g.host.Rebuild(name, bp)
	g.stats.Reloads++
	g.log.WithFields(logrus.Fields{"asset": name, "machines": n}).Info("machines rebuilt")
}

// Update advances the level by one frame.
func (g *Game) Update() error {
	g.frames++
	if g.watch {
		g.lib.Poll()
	}
	g.record(g.host.Step(g.level.Dt))
	return nil
}

// Run updates until ticks frames have run. Zero uses the level's count.
func (g *Game) Run(ticks int) error {
	if ticks <= 0 {
		ticks = g.level.Ticks
	}
	for i := 0; i < ticks; i++ {
		if err := g.Update(); err != nil {
			return err
		}
	}
	g.summary()
	return nil
}

func (g *Game) Stats() Stats {
	s := g.stats
	s.Frames = g.frames
	if e, ok := ecs.First(g.host.World, component.PlayerTagComponent.Kind()); ok {
		s.PlayerDead = g.host.Actor(e).IsDead()
	}
	return s
}

func (g *Game) Close() error {
	return g.lib.Close()
}

func (g *Game) record(events []ecs.Event) {
	for _, ev := range events {
		g.stats.Events[ev.Type]++
		entry := g.log.WithFields(logrus.Fields{
			"t":     fmt.Sprintf("%.2f", ev.Time),
			"actor": g.name(ev.Entity),
		})
		switch data := ev.Data.(type) {
		case ecs.StateChange:
			entry.WithFields(logrus.Fields{"machine": data.Machine, "from": data.From, "to": data.To}).Info("state")
		case ecs.AbilityTrigger:
			entry.WithFields(logrus.Fields{"ability": data.Ability, "target": data.Target}).Info("ability")
		case ecs.Damage:
			entry.WithFields(logrus.Fields{"amount": data.Amount, "source": data.Source}).Info("damaged")
		default:
			if ev.Type == ecs.EventDied {
				g.stats.Died = append(g.stats.Died, g.name(ev.Entity))
			}
			entry.Debug(string(ev.Type))
		}
	}
}

func (g *Game) name(e ecs.Entity) string {
	if a := g.host.Actor(e); a != nil {
		return a.Name()
	}
	return e.String()
}

func (g *Game) summary() {
	var names []string
	for _, e := range ecs.Entities(g.host.World) {
		names = append(names, g.name(e))
	}
	sort.Strings(names)
	for _, n := range names {
		a, _ := g.host.Find(n)
		fields := logrus.Fields{"actor": n, "x": a.Position().X, "y": a.Position().Y, "dead": a.IsDead()}
		if m := g.host.Machine(a.Entity()); m != nil {
			fields["state"] = m.CurrentStateName()
		}
		g.log.WithFields(fields).Info("final")
	}
}
