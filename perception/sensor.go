package perception

import (
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/common"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultClearance is the obstacle-free radius a sampled point needs.
	DefaultClearance = 0.5
	// DefaultSampleAttempts bounds RandomPointInCircle.
	DefaultSampleAttempts = 20
)

// Sensor runs perception queries against a Space using a shared Buffer.
// A Sensor with a nil space answers every query conservatively.
type Sensor struct {
	space *Space
	buf   *Buffer
	rng   *rand.Rand

	Clearance float64
}

// NewSensor binds a space and a scratch buffer. A nil buffer gets a private
// default one; a nil rng uses the global source.
func NewSensor(space *Space, buf *Buffer, rng *rand.Rand) *Sensor {
	if buf == nil {
		var log logrus.FieldLogger
		if space != nil {
			log = space.log
		}
		buf = NewBuffer(DefaultBufferSize, DefaultBufferLimit, log)
	}
	return &Sensor{space: space, buf: buf, rng: rng, Clearance: DefaultClearance}
}

func (s *Sensor) Space() *Space {
	if s == nil {
		return nil
	}
	return s.space
}

func (s *Sensor) Buffer() *Buffer {
	if s == nil {
		return nil
	}
	return s.buf
}

// collect fills the scratch buffer with every present entity on mask whose
// shape overlaps the circle.
func (s *Sensor) collect(origin cp.Vector, radius float64, mask Layer) []Entity {
	s.buf.reset()
	s.space.overlap(origin, radius, mask, func(shape *cp.Shape) {
		e, ok := shape.UserData.(Entity)
		if !ok || !Present(e) {
			return
		}
		s.buf.push(e)
	})
	s.buf.finish(origin.String(), radius)
	return s.buf.items
}

// FindClosestTarget returns the entity on mask nearest to origin within
// radius, or nil. Equal distances resolve in query order.
func (s *Sensor) FindClosestTarget(origin cp.Vector, radius float64, mask Layer) Entity {
	if s == nil || s.space == nil {
		return nil
	}
	var best Entity
	bestSq := math.Inf(1)
	for _, e := range s.collect(origin, radius, mask) {
		d := e.Position().DistanceSq(origin)
		if d < bestSq {
			best, bestSq = e, d
		}
	}
	s.buf.reset()
	return best
}

// FindAllTargets appends every entity on mask within radius of origin to dst
// and returns the extended slice with the number appended. Order is
// unspecified.
func (s *Sensor) FindAllTargets(origin cp.Vector, radius float64, mask Layer, dst []Entity) ([]Entity, int) {
	if s == nil || s.space == nil {
		return dst, 0
	}
	found := s.collect(origin, radius, mask)
	dst = append(dst, found...)
	n := len(found)
	s.buf.reset()
	return dst, n
}

// IsTargetInSight requires the target to be within viewDistance, inside the
// cone of viewAngleDeg centred on the observer's Forward axis, and reachable
// by a segment that crosses nothing on obstacles.
func (s *Sensor) IsTargetInSight(observer, target Entity, viewAngleDeg, viewDistance float64, obstacles Layer) bool {
	if !Present(observer) || !Present(target) {
		return false
	}
	from := observer.Position()
	delta := target.Position().Sub(from)
	distSq := delta.LengthSq()
	if distSq > viewDistance*viewDistance {
		return false
	}

	dist := math.Sqrt(distSq)
	if dist > common.Epsilon {
		dir := delta.Mult(1 / dist)
		if common.AngleDeg(observer.Forward(), dir) > viewAngleDeg/2 {
			return false
		}
	}

	if s == nil || s.space == nil {
		return true
	}
	length := math.Min(viewDistance, dist)
	if length <= common.Epsilon {
		return true
	}
	end := from.Add(delta.Mult(length / dist))
	return !s.space.SegmentBlocked(from, end, obstacles, observer, target)
}

// RandomPointInCircle samples a uniform point within radius of origin that
// has no obstacle within the sensor clearance. After maxAttempts failures
// (DefaultSampleAttempts when maxAttempts <= 0) it returns origin.
func (s *Sensor) RandomPointInCircle(origin cp.Vector, radius float64, obstacles Layer, maxAttempts int) cp.Vector {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSampleAttempts
	}
	if radius <= 0 {
		return origin
	}
	clearance := DefaultClearance
	var rng *rand.Rand
	var space *Space
	if s != nil {
		rng, space = s.rng, s.space
		if s.Clearance > 0 {
			clearance = s.Clearance
		}
	}
	for i := 0; i < maxAttempts; i++ {
		r := radius * math.Sqrt(common.RandRange(rng, 0, 1))
		theta := common.RandRange(rng, 0, 2*math.Pi)
		p := origin.Add(cp.ForAngle(theta).Mult(r))
		if space == nil || !space.Blocked(p, clearance, obstacles) {
			return p
		}
	}
	return origin
}
