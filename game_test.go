package main

import (
	"testing"

	"github.com/milk9111/npcbrain/config"
	"github.com/milk9111/npcbrain/ecs"
	"github.com/milk9111/npcbrain/ecs/system"
	"github.com/milk9111/npcbrain/levels"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorridorGuardShootsIntruder(t *testing.T) {
	lvl, err := levels.Load("corridor")
	require.NoError(t, err)
	log, _ := test.NewNullLogger()

	game, err := NewGame(config.Default(), lvl, 7, log)
	require.NoError(t, err)
	defer game.Close()
	require.NoError(t, game.Run(0))

	stats := game.Stats()
	assert.Equal(t, lvl.Ticks, stats.Frames)
	assert.Equal(t, 2, stats.Events[ecs.EventSpawned])
	assert.Contains(t, stats.Died, "player")
	assert.True(t, stats.PlayerDead)
	assert.GreaterOrEqual(t, stats.Events[ecs.EventAbilityTriggered], 4)
	assert.Zero(t, stats.Reloads)
}

func TestArenaRuns(t *testing.T) {
	lvl, err := levels.Load("arena")
	require.NoError(t, err)
	log, hook := test.NewNullLogger()

	game, err := NewGame(config.Default(), lvl, 3, log)
	require.NoError(t, err)
	defer game.Close()
	require.NoError(t, game.Run(50))

	stats := game.Stats()
	assert.Equal(t, 50, stats.Frames)
	assert.Equal(t, 4, stats.Events[ecs.EventSpawned])
	assert.GreaterOrEqual(t, stats.Events[ecs.EventStateChanged], 3, "every brain enters its initial state")
	assert.Equal(t, "final", hook.LastEntry().Message)
}

func TestBadLevelFails(t *testing.T) {
	log, _ := test.NewNullLogger()
	lvl := &levels.Level{Name: "bad", Dt: 0.1, Ticks: 1, Actors: []system.ActorSpec{{Name: "x", Asset: "nope"}}}
	_, err := NewGame(config.Default(), lvl, 1, log)
	assert.Error(t, err)
}

func TestBadLevelStopsWatcher(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	cfg := config.Default()
	cfg.AssetDir = t.TempDir()
	cfg.Watch = true

	lvl := &levels.Level{Name: "bad", Dt: 0.1, Ticks: 1, Actors: []system.ActorSpec{{Name: "x", Asset: "nope"}}}
	_, err := NewGame(cfg, lvl, 1, log)
	require.Error(t, err)

	var stopped bool
	for _, e := range hook.AllEntries() {
		stopped = stopped || e.Message == "watcher stopped"
	}
	assert.True(t, stopped)
}
