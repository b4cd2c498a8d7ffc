package ecs

// EventType identifies what happened.
type EventType string

const (
	EventStateChanged     EventType = "state_changed"
	EventAbilityTriggered EventType = "ability_triggered"
	EventDamaged          EventType = "damaged"
	EventDied             EventType = "died"
	EventSpawned          EventType = "spawned"
)

// Event is one record in the world queue. Data holds the payload type
// matching Type.
type Event struct {
	Type   EventType
	Entity Entity
	Time   float64
	Data   any
}

// StateChange is the payload of EventStateChanged.
type StateChange struct {
	Machine string
	From    string
	To      string
}

// AbilityTrigger is the payload of EventAbilityTriggered.
type AbilityTrigger struct {
	Ability string
	Target  string
}

// Damage is the payload of EventDamaged.
type Damage struct {
	Amount float64
	Source string
}

// EventQueue is a FIFO queue drained by the host between frames.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
