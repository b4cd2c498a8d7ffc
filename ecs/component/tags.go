package component

// PlayerTag marks the actor the scenario treats as the player.
type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()
