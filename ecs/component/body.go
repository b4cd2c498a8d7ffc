package component

import "github.com/milk9111/npcbrain/perception"

// Body is how an actor appears to perception queries.
type Body struct {
	Name   string
	Tag    string
	Radius float64
	Layer  perception.Layer
}

var BodyComponent = NewComponent[Body]()
