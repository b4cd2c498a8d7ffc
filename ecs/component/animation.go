package component

// Animator records the parameters a brain sets. The host has no renderer;
// the values are kept for inspection and logging.
type Animator struct {
	Controller string
	Triggers   []string
	Bools      map[string]bool
	Floats     map[string]float64
	Ints       map[string]int
}

var AnimatorComponent = NewComponent[Animator]()
