package library

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const custom = `
name: custom
initial: idle
keys: [mood]
states:
  - name: idle
    on_enter:
      - {set_blackboard: {key: mood, value: calm}}
`

func newLibrary(t *testing.T, dir string) (*Library, *test.Hook) {
	t.Helper()
	cfg := config.Default()
	cfg.AssetDir = dir
	log, hook := test.NewNullLogger()
	lib, err := New(cfg, Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	return lib, hook
}

func writeAsset(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fsm"), 0o755))
	path := filepath.Join(dir, "fsm", name+".yaml")
	require.NoError(t, os.WriteFile(path+".tmp", []byte(src), 0o644))
	require.NoError(t, os.Rename(path+".tmp", path))
}

func TestRegistryHasEveryKind(t *testing.T) {
	r := NewRegistry()
	for _, kind := range []string{"distance", "cone_detect", "time_in_state", "or", "script"} {
		_, ok := r.Decision(kind)
		assert.True(t, ok, kind)
	}
	for _, kind := range []string{"move_to_target", "wander", "patrol", "attack", "set_blackboard", "script"} {
		_, ok := r.Action(kind)
		assert.True(t, ok, kind)
	}
}

func TestEmbeddedAssetsCompile(t *testing.T) {
	lib, _ := newLibrary(t, "")
	require.NoError(t, lib.Preload())
	assert.Equal(t, []string{"coward", "grunt", "sentry"}, lib.Cached())

	grunt, err := lib.Blueprint("grunt")
	require.NoError(t, err)
	assert.Equal(t, []string{"patrol", "chase", "attack", "search"}, grunt.StateNames())
	assert.Equal(t, 2, grunt.TargetSlots)

	sentry, err := lib.Blueprint("fsm/sentry.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default().TargetSlots, sentry.TargetSlots)
}

func TestBlueprintIsCached(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "custom", custom)
	lib, _ := newLibrary(t, dir)

	a, err := lib.Blueprint("custom")
	require.NoError(t, err)
	b, err := lib.Blueprint("custom.yaml")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = lib.Blueprint("missing")
	assert.Error(t, err)
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "custom", custom)
	var reloaded []string
	cfg := config.Default()
	cfg.AssetDir = dir
	log, hook := test.NewNullLogger()
	lib, err := New(cfg, Options{Logger: log, OnReload: func(name string, _ *asset.Blueprint) {
		reloaded = append(reloaded, name)
	}})
	require.NoError(t, err)

	before, err := lib.Blueprint("custom")
	require.NoError(t, err)

	writeAsset(t, dir, "custom", "name: custom\ninitial: nowhere\nstates: [{name: idle}]\n")
	_, err = lib.Reload("custom")
	require.ErrorIs(t, err, asset.ErrUnknownState)
	still, err := lib.Blueprint("custom")
	require.NoError(t, err)
	assert.Same(t, before, still)
	assert.Equal(t, "reload failed, keeping previous blueprint", hook.LastEntry().Message)

	writeAsset(t, dir, "custom", "name: custom\ninitial: b\nstates: [{name: a}, {name: b}]\n")
	after, err := lib.Reload("custom")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, after.StateNames())
	assert.Equal(t, []string{"custom"}, reloaded)

	m, err := after.Instantiate(nil, asset.Deps{Logger: log})
	require.NoError(t, err)
	assert.Equal(t, "b", m.CurrentStateName())
}

func TestWatchReloadsChangedAssets(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "custom", custom)
	lib, _ := newLibrary(t, dir)
	_, err := lib.Blueprint("custom")
	require.NoError(t, err)
	require.NoError(t, lib.Watch())

	writeAsset(t, dir, "custom", "name: custom\ninitial: b\nstates: [{name: a}, {name: b}]\n")

	var got []string
	assert.Eventually(t, func() bool {
		got = append(got, lib.Poll()...)
		return slices.Contains(got, "custom")
	}, 3*time.Second, 20*time.Millisecond)

	bp, err := lib.Blueprint("custom")
	require.NoError(t, err)
	assert.Equal(t, "b", bp.Initial)
}

func TestWatchWithoutDirIsNoop(t *testing.T) {
	lib, _ := newLibrary(t, "")
	require.NoError(t, lib.Watch())
	assert.Nil(t, lib.Poll())
	assert.NoError(t, lib.Close())
}
