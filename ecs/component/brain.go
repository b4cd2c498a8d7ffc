package component

import "github.com/milk9111/npcbrain/fsm"

// Brain links an actor to the state machine that drives it.
type Brain struct {
	Asset   string
	Machine *fsm.StateMachine
	Handle  fsm.Handle
}

var BrainComponent = NewComponent[Brain]()
