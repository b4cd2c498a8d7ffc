package component

type Health struct {
	HP   float64
	Max  float64
	Dead bool
}

var HealthComponent = NewComponent[Health]()
