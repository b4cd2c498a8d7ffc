package component

// Ability is one named attack or skill. Range of zero reaches any target.
type Ability struct {
	Name     string
	Damage   float64
	Range    float64
	Cooldown Cooldown
}

// Abilities lists an actor's abilities in declaration order.
type Abilities struct {
	List []*Ability
}

func (a *Abilities) Find(name string) *Ability {
	for _, ab := range a.List {
		if ab.Name == name {
			return ab
		}
	}
	return nil
}

var AbilitiesComponent = NewComponent[Abilities]()
