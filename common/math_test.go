package common

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
)

func TestRandRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		v := RandRange(r, 1, 2)
		if v < 1 || v >= 2 {
			t.Fatalf("sample %v outside [1,2)", v)
		}
	}
	assert.Equal(t, 3.0, RandRange(r, 3, 3))
	assert.Equal(t, 5.0, RandRange(r, 5, 1))
}

func TestAngleDeg(t *testing.T) {
	cases := []struct {
		name string
		a, b cp.Vector
		want float64
	}{
		{"same", cp.Vector{X: 1}, cp.Vector{X: 2}, 0},
		{"right_angle", cp.Vector{X: 1}, cp.Vector{Y: 1}, 90},
		{"opposite", cp.Vector{X: 1}, cp.Vector{X: -1}, 180},
		{"zero_input", cp.Vector{}, cp.Vector{X: 1}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, AngleDeg(c.a, c.b), 1e-9)
		})
	}
}

func TestNormalizeOrZero(t *testing.T) {
	assert.Equal(t, cp.Vector{}, NormalizeOrZero(cp.Vector{}))
	n := NormalizeOrZero(cp.Vector{X: 3, Y: 4})
	assert.InDelta(t, 1, n.Length(), 1e-12)
	f := ForAngleDeg(90)
	assert.InDelta(t, 0, f.X, 1e-12)
	assert.InDelta(t, 1, f.Y, 1e-12)
	assert.False(t, math.IsNaN(AngleDeg(f, n)))
}
