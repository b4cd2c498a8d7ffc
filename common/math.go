package common

import (
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-6

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// RandRange returns a uniform sample in [min, max). A degenerate or inverted
// range returns min. A nil r falls back to the package source.
func RandRange(r *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	if r == nil {
		return Lerp(min, max, rand.Float64())
	}
	return Lerp(min, max, r.Float64())
}

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v
// is too short to have a direction.
func NormalizeOrZero(v cp.Vector) cp.Vector {
	l := v.Length()
	if l < Epsilon {
		return cp.Vector{}
	}
	return v.Mult(1 / l)
}

// AngleDeg returns the unsigned angle between a and b in degrees. Zero-length
// inputs yield 0.
func AngleDeg(a, b cp.Vector) float64 {
	la := a.Length()
	lb := b.Length()
	if la < Epsilon || lb < Epsilon {
		return 0
	}
	cos := cp.Clamp(a.Dot(b)/(la*lb), -1, 1)
	return math.Acos(cos) * 180 / math.Pi
}

// ForAngleDeg returns the unit vector pointing at angle degrees from +X.
func ForAngleDeg(angle float64) cp.Vector {
	return cp.ForAngle(angle * math.Pi / 180)
}

// Vec3 is a plain 3D vector for blackboard values that carry height.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3) XY() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}
