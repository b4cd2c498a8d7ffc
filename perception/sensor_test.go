package perception

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummy struct {
	name string
	tag  string
	pos  cp.Vector
	fwd  cp.Vector
	dead bool
	gone bool
}

func (d *dummy) Name() string        { return d.name }
func (d *dummy) Tag() string         { return d.tag }
func (d *dummy) Position() cp.Vector { return d.pos }
func (d *dummy) Forward() cp.Vector  { return d.fwd }
func (d *dummy) Valid() bool         { return !d.gone }
func (d *dummy) IsDead() bool        { return d.dead }

const (
	actors Layer = 1 << iota
	walls
)

func newSensor(t *testing.T) (*Space, *Sensor) {
	t.Helper()
	space := NewSpace(nil)
	return space, NewSensor(space, nil, rand.New(rand.NewSource(7)))
}

func TestRandomPointFallsBackToOrigin(t *testing.T) {
	space, sensor := newSensor(t)
	space.AddBox(cp.BB{L: -10, B: -10, R: 10, T: 10}, walls)

	got := sensor.RandomPointInCircle(cp.Vector{}, 5, walls, 20)
	assert.Equal(t, cp.Vector{}, got)
}

func TestRandomPointStaysInCircle(t *testing.T) {
	space, sensor := newSensor(t)
	space.AddCircle(cp.Vector{X: 100, Y: 100}, 1, walls)

	origin := cp.Vector{X: 3, Y: -2}
	for i := 0; i < 50; i++ {
		p := sensor.RandomPointInCircle(origin, 4, walls, 0)
		assert.LessOrEqual(t, p.Distance(origin), 4.0)
	}
}

func TestRandomPointIgnoresOtherLayers(t *testing.T) {
	space, sensor := newSensor(t)
	space.AddBox(cp.BB{L: -10, B: -10, R: 10, T: 10}, actors)

	got := sensor.RandomPointInCircle(cp.Vector{}, 5, walls, 20)
	assert.NotEqual(t, cp.Vector{}, got)
}

func TestConeOfVisionObstacleGating(t *testing.T) {
	space, sensor := newSensor(t)
	observer := &dummy{name: "guard", fwd: cp.Vector{X: 1}}
	target := &dummy{name: "thief", pos: cp.Vector{X: 3}}
	require.NoError(t, space.Add(observer, 0.5, actors))
	require.NoError(t, space.Add(target, 0.5, actors))

	wall := space.AddBox(cp.BB{L: 1.4, B: -1, R: 1.6, T: 1}, walls)
	assert.False(t, sensor.IsTargetInSight(observer, target, 90, 10, walls))

	require.True(t, space.RemoveObstacle(wall))
	assert.True(t, sensor.IsTargetInSight(observer, target, 90, 10, walls))
}

func TestIsTargetInSightGates(t *testing.T) {
	cases := []struct {
		name     string
		target   cp.Vector
		angle    float64
		distance float64
		want     bool
	}{
		{"ahead", cp.Vector{X: 3}, 90, 10, true},
		{"too_far", cp.Vector{X: 11}, 90, 10, false},
		{"edge_of_range", cp.Vector{X: 10}, 90, 10, true},
		{"behind", cp.Vector{X: -3}, 90, 10, false},
		{"side_outside_cone", cp.Vector{Y: 3}, 90, 10, false},
		{"side_inside_wide_cone", cp.Vector{Y: 3}, 200, 10, true},
		{"same_position", cp.Vector{}, 10, 10, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, sensor := newSensor(t)
			observer := &dummy{fwd: cp.Vector{X: 1}}
			target := &dummy{pos: c.target}
			assert.Equal(t, c.want, sensor.IsTargetInSight(observer, target, c.angle, c.distance, walls))
		})
	}
}

func TestActorsOnObstacleMaskDoNotBlockThemselves(t *testing.T) {
	space, sensor := newSensor(t)
	observer := &dummy{fwd: cp.Vector{X: 1}}
	target := &dummy{pos: cp.Vector{X: 4}}
	blocker := &dummy{pos: cp.Vector{X: 2}}
	require.NoError(t, space.Add(observer, 0.5, actors))
	require.NoError(t, space.Add(target, 0.5, actors))

	assert.True(t, sensor.IsTargetInSight(observer, target, 90, 10, actors))

	require.NoError(t, space.Add(blocker, 0.5, actors))
	assert.False(t, sensor.IsTargetInSight(observer, target, 90, 10, actors))
}

func TestFindClosestTarget(t *testing.T) {
	space, sensor := newSensor(t)
	near := &dummy{name: "near", pos: cp.Vector{X: 2}}
	far := &dummy{name: "far", pos: cp.Vector{X: -4}}
	wall := &dummy{name: "wall", pos: cp.Vector{X: 1}}
	gone := &dummy{name: "gone", pos: cp.Vector{X: 0.5}, gone: true}
	require.NoError(t, space.Add(near, 0.5, actors))
	require.NoError(t, space.Add(far, 0.5, actors))
	require.NoError(t, space.Add(wall, 0.5, walls))
	require.NoError(t, space.Add(gone, 0.5, actors))

	got := sensor.FindClosestTarget(cp.Vector{}, 5, actors)
	require.NotNil(t, got)
	assert.Equal(t, "near", got.Name())

	assert.Nil(t, sensor.FindClosestTarget(cp.Vector{X: 50}, 5, actors))

	near.pos = cp.Vector{X: 40}
	require.True(t, space.Sync(near))
	got = sensor.FindClosestTarget(cp.Vector{}, 5, actors)
	require.NotNil(t, got)
	assert.Equal(t, "far", got.Name())
}

func TestFindAllTargetsAppends(t *testing.T) {
	space, sensor := newSensor(t)
	for i := 0; i < 5; i++ {
		e := &dummy{name: fmt.Sprintf("e%d", i), pos: cp.Vector{X: float64(i)}}
		require.NoError(t, space.Add(e, 0.25, actors))
	}

	prev := &dummy{name: "prev"}
	dst, n := sensor.FindAllTargets(cp.Vector{}, 2, actors, []Entity{prev})
	assert.Equal(t, 3, n)
	require.Len(t, dst, 4)
	assert.Same(t, prev, dst[0])
}

func TestBufferGrowsToLimitAndWarns(t *testing.T) {
	log, hook := test.NewNullLogger()
	space := NewSpace(log)
	buf := NewBuffer(4, 10, log)
	sensor := NewSensor(space, buf, nil)

	for i := 0; i < 7; i++ {
		require.NoError(t, space.Add(&dummy{pos: cp.Vector{X: float64(i) * 0.1}}, 0.1, actors))
	}
	_, n := sensor.FindAllTargets(cp.Vector{}, 5, actors, nil)
	assert.Equal(t, 7, n)
	assert.Equal(t, 8, buf.Size())
	assert.Empty(t, hook.AllEntries())

	for i := 0; i < 8; i++ {
		require.NoError(t, space.Add(&dummy{pos: cp.Vector{Y: float64(i) * 0.1}}, 0.1, actors))
	}
	_, n = sensor.FindAllTargets(cp.Vector{}, 5, actors, nil)
	assert.Equal(t, 10, n)
	assert.Equal(t, 10, buf.Size())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	// never shrinks
	_, n = sensor.FindAllTargets(cp.Vector{X: 100}, 1, actors, nil)
	assert.Zero(t, n)
	assert.Equal(t, 10, buf.Size())
}

func TestLayersMask(t *testing.T) {
	layers, err := NewLayers("actors", "walls", "props")
	require.NoError(t, err)

	m, err := layers.Mask("walls", "props")
	require.NoError(t, err)
	assert.Equal(t, Layer(0b110), m)

	m, err = layers.Mask("all")
	require.NoError(t, err)
	assert.Equal(t, LayerAll, m)

	_, err = layers.Mask("water")
	assert.ErrorIs(t, err, ErrUnknownLayer)
	assert.Equal(t, []string{"actors", "walls", "props"}, layers.Names())
}

func TestSpaceAddRemove(t *testing.T) {
	space, _ := newSensor(t)
	e := &dummy{}
	require.NoError(t, space.Add(e, 0, actors))
	assert.ErrorIs(t, space.Add(e, 1, actors), ErrAlreadyTracked)
	assert.True(t, space.Contains(e))
	assert.Equal(t, 1, space.Len())
	assert.True(t, space.Remove(e))
	assert.False(t, space.Remove(e))
	assert.Zero(t, space.Len())
}

func TestAlive(t *testing.T) {
	assert.False(t, Alive(nil))
	assert.False(t, Alive(&dummy{gone: true}))
	assert.False(t, Alive(&dummy{dead: true}))
	assert.True(t, Alive(&dummy{}))
}
