package component

// Vision is the view cone indicator toggled by field_of_view actions.
type Vision struct {
	Visible  bool
	Angle    float64
	Distance float64
}

var VisionComponent = NewComponent[Vision]()
