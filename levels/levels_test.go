package levels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedLevels(t *testing.T) {
	assert.Equal(t, []string{"arena", "corridor"}, Names())

	lvl, err := LoadLevelFromFS("levels/arena")
	require.NoError(t, err)
	assert.Equal(t, "arena", lvl.Name)
	assert.Equal(t, 300, lvl.Ticks)
	require.Len(t, lvl.Actors, 4)
	assert.Equal(t, "grunt", lvl.Actors[1].Asset)
	assert.Equal(t, 9.0, lvl.Actors[0].Position.X)
	assert.Equal(t, 1.6, lvl.Actors[1].Abilities[0].Range)
	assert.Equal(t, false, lvl.Actors[1].Blackboard["alert"])
	assert.Equal(t, 20, lvl.Actors[3].Blackboard["hp"])
	require.Len(t, lvl.Walls, 2)
	assert.Equal(t, 5.0, lvl.Walls[0].Max.X)
}

func TestParseDefaults(t *testing.T) {
	lvl, err := Parse([]byte("actors:\n  - {name: a, position: {x: 1, y: 2}}\n"), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", lvl.Name)
	assert.Equal(t, DefaultTicks, lvl.Ticks)
	assert.Equal(t, DefaultDt, lvl.Dt)
	assert.Equal(t, 2.0, lvl.Actors[0].Position.Y)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no_actors", "name: empty\n"},
		{"bad_point", "actors:\n  - {name: a, position: [1, 2, 3]}\n"},
		{"not_yaml", "actors: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.name)
			assert.Error(t, err)
		})
	}
}

func TestLoadPrefersDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ticks: 5\nactors: [{name: solo}]\n"), 0o644))

	lvl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", lvl.Name)
	assert.Equal(t, 5, lvl.Ticks)

	lvl, err = Load("corridor")
	require.NoError(t, err)
	assert.Equal(t, "corridor", lvl.Name)

	_, err = Load("missing")
	assert.Error(t, err)
}
