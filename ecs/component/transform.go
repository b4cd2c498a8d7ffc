package component

import "github.com/jakecoffman/cp"

// Transform places an actor on the plane. Facing is a unit vector; the
// zero value means +X.
type Transform struct {
	Position cp.Vector
	Facing   cp.Vector
}

var TransformComponent = NewComponent[Transform]()
