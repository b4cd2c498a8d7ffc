package perception

import (
	"github.com/jakecoffman/cp"
	"github.com/sirupsen/logrus"
)

// DefaultBodyRadius is used when an entity is added with a non-positive radius.
const DefaultBodyRadius = 0.5

// Space owns the Chipmunk space used for perception queries. Perceivable
// entities are kinematic circles whose filter category is their layer;
// obstacles are static shapes. The space is never stepped: shapes are
// reindexed explicitly when an entity moves.
type Space struct {
	space *cp.Space

	shapes    map[Entity]*cp.Shape
	obstacles map[*cp.Shape]struct{}

	log logrus.FieldLogger
}

// NewSpace creates an empty perception space.
func NewSpace(log logrus.FieldLogger) *Space {
	if log == nil {
		log = logrus.StandardLogger()
	}
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &Space{
		space:     space,
		shapes:    make(map[Entity]*cp.Shape),
		obstacles: make(map[*cp.Shape]struct{}),
		log:       log.WithField("component", "perception"),
	}
}

// CP returns the underlying Chipmunk space.
func (s *Space) CP() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

// Add registers e as a circle of radius on layer.
func (s *Space) Add(e Entity, radius float64, layer Layer) error {
	if s == nil || e == nil {
		return ErrNotComparable
	}
	if _, ok := s.shapes[e]; ok {
		return ErrAlreadyTracked
	}
	if radius <= 0 {
		radius = DefaultBodyRadius
	}

	body := cp.NewKinematicBody()
	body.SetPosition(e.Position())
	s.space.AddBody(body)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.UserData = e
	shape.Filter = cp.NewShapeFilter(cp.NO_GROUP, uint(layer), cp.ALL_CATEGORIES)
	s.space.AddShape(shape)

	s.shapes[e] = shape
	return nil
}

// Sync moves e's shape to e.Position() and reindexes it.
func (s *Space) Sync(e Entity) bool {
	if s == nil || e == nil {
		return false
	}
	shape, ok := s.shapes[e]
	if !ok {
		return false
	}
	body := shape.Body()
	pos := e.Position()
	if body.Position().Equal(pos) {
		return true
	}
	body.SetPosition(pos)
	s.space.RemoveShape(shape)
	s.space.AddShape(shape)
	return true
}

// Remove drops e from the space.
func (s *Space) Remove(e Entity) bool {
	if s == nil || e == nil {
		return false
	}
	shape, ok := s.shapes[e]
	if !ok {
		return false
	}
	body := shape.Body()
	s.space.RemoveShape(shape)
	s.space.RemoveBody(body)
	delete(s.shapes, e)
	return true
}

// Contains reports whether e is tracked.
func (s *Space) Contains(e Entity) bool {
	if s == nil || e == nil {
		return false
	}
	_, ok := s.shapes[e]
	return ok
}

// Len returns the number of tracked entities.
func (s *Space) Len() int {
	if s == nil {
		return 0
	}
	return len(s.shapes)
}

// AddBox adds a static axis-aligned obstacle.
func (s *Space) AddBox(bb cp.BB, layer Layer) *cp.Shape {
	shape := cp.NewBox2(s.space.StaticBody, bb, 0)
	return s.addObstacle(shape, layer)
}

// AddCircle adds a static round obstacle.
func (s *Space) AddCircle(center cp.Vector, radius float64, layer Layer) *cp.Shape {
	shape := cp.NewCircle(s.space.StaticBody, radius, center)
	return s.addObstacle(shape, layer)
}

// AddSegment adds a static wall segment with the given thickness radius.
func (s *Space) AddSegment(a, b cp.Vector, radius float64, layer Layer) *cp.Shape {
	shape := cp.NewSegment(s.space.StaticBody, a, b, radius)
	return s.addObstacle(shape, layer)
}

func (s *Space) addObstacle(shape *cp.Shape, layer Layer) *cp.Shape {
	shape.Filter = cp.NewShapeFilter(cp.NO_GROUP, uint(layer), cp.ALL_CATEGORIES)
	s.space.AddShape(shape)
	s.obstacles[shape] = struct{}{}
	return shape
}

// RemoveObstacle removes a shape returned by one of the Add* obstacle methods.
func (s *Space) RemoveObstacle(shape *cp.Shape) bool {
	if s == nil || shape == nil {
		return false
	}
	if _, ok := s.obstacles[shape]; !ok {
		return false
	}
	s.space.RemoveShape(shape)
	delete(s.obstacles, shape)
	return true
}

func queryFilter(mask Layer) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(mask))
}

// overlap calls visit for every shape on mask that overlaps the circle.
func (s *Space) overlap(origin cp.Vector, radius float64, mask Layer, visit func(shape *cp.Shape)) {
	if s == nil || mask == LayerNone || radius < 0 {
		return
	}
	bb := cp.NewBBForCircle(origin, radius)
	s.space.BBQuery(bb, queryFilter(mask), func(shape *cp.Shape, _ interface{}) {
		if shape.Sensor() {
			return
		}
		if shape.PointQuery(origin).Distance > radius {
			return
		}
		visit(shape)
	}, nil)
}

// Blocked reports whether any non-sensor shape on mask lies within clearance
// of point.
func (s *Space) Blocked(point cp.Vector, clearance float64, mask Layer) bool {
	hit := false
	s.overlap(point, clearance, mask, func(*cp.Shape) { hit = true })
	return hit
}

// SegmentBlocked reports whether the segment a→b crosses a non-sensor shape
// on mask. Shapes owned by the ignored entities never block.
func (s *Space) SegmentBlocked(a, b cp.Vector, mask Layer, ignore ...Entity) bool {
	if s == nil || mask == LayerNone || a.Equal(b) {
		return false
	}
	blocked := false
	s.space.SegmentQuery(a, b, 0, queryFilter(mask), func(shape *cp.Shape, _, _ cp.Vector, _ float64, _ interface{}) {
		if blocked || shape.Sensor() {
			return
		}
		if e, ok := shape.UserData.(Entity); ok {
			for _, ig := range ignore {
				if ig != nil && e == ig {
					return
				}
			}
		}
		blocked = true
	}, nil)
	return blocked
}
