package component

type Weapons struct {
	List    []string
	Current string
}

var WeaponsComponent = NewComponent[Weapons]()
