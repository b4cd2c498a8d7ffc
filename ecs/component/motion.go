package component

import "github.com/jakecoffman/cp"

// Motion holds the velocity intent set by the actor's brain. Speed is the
// actor's cruising speed, read by movement actions that have no override.
type Motion struct {
	Intent cp.Vector
	Speed  float64
	// MaxSpeed clamps Intent when positive.
	MaxSpeed float64
}

var MotionComponent = NewComponent[Motion]()
