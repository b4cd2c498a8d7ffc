// Package fsm is the NPC state machine: states made of transitions and
// actions, throttled re-evaluation, target slots, and the scheduler that
// ticks machines once per frame.
package fsm

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownState = errors.New("fsm: unknown state")
	ErrReentrant    = errors.New("fsm: state change already in progress")
)

// intervalSlack absorbs float accumulation so 4×0.05 reaches 0.2.
const intervalSlack = 1e-9

type Options struct {
	Name        string
	TargetSlots int
	Interval    Interval
	Blackboard  *blackboard.Blackboard
	Keys        *blackboard.KeySet
	Sensor      *perception.Sensor
	Rand        *rand.Rand
	Logger      logrus.FieldLogger
	// OnStateChange runs after a change completes. from is nil on Start.
	OnStateChange func(m *StateMachine, from, to *State)
}

type StateMachine struct {
	name   string
	owner  Owner
	states map[string]*State
	order  []*State

	current   *State
	enteredAt float64
	clock     float64
	timer     float64
	wait      float64
	interval  Interval
	enabled   bool
	changing  bool

	slots    *TargetSlots
	bb       *blackboard.Blackboard
	keys     *blackboard.KeySet
	sensor   *perception.Sensor
	rng      *rand.Rand
	log      logrus.FieldLogger
	onChange func(m *StateMachine, from, to *State)
}

// New builds an unstarted machine. Call Start to enter the initial state.
func New(owner Owner, states []*State, opts Options) *StateMachine {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	fields := logrus.Fields{"component": "fsm"}
	if opts.Name != "" {
		fields["machine"] = opts.Name
	}
	if owner != nil {
		fields["actor"] = owner.Name()
	}
	log = log.WithFields(fields)

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	bb := opts.Blackboard
	if bb == nil {
		bb = blackboard.New(log)
	}
	keys := opts.Keys
	if keys == nil {
		keys = blackboard.NewKeySet()
	}

	m := &StateMachine{
		name:     opts.Name,
		owner:    owner,
		states:   make(map[string]*State, len(states)),
		interval: opts.Interval,
		enabled:  true,
		slots:    NewTargetSlots(opts.TargetSlots, log),
		bb:       bb,
		keys:     keys,
		sensor:   opts.Sensor,
		rng:      rng,
		log:      log,
		onChange: opts.OnStateChange,
	}
	for _, s := range states {
		m.AddState(s)
	}
	m.wait = m.interval.Sample(m.rng)
	return m
}

// AddState registers s. A duplicate name is ignored with a warning.
func (m *StateMachine) AddState(s *State) bool {
	if s == nil {
		return false
	}
	if _, ok := m.states[s.Name]; ok {
		m.log.WithField("state", s.Name).Warn("duplicate state ignored")
		return false
	}
	m.states[s.Name] = s
	m.order = append(m.order, s)
	return true
}

func (m *StateMachine) State(name string) (*State, bool) {
	s, ok := m.states[name]
	return s, ok
}

// States returns the states in registration order.
func (m *StateMachine) States() []*State {
	return append([]*State(nil), m.order...)
}

// Start forces the initial state. On error the machine stays uninitialized.
func (m *StateMachine) Start(initial string) error {
	return m.ChangeState(initial, true)
}

// ChangeState leaves the current state and enters name. Changing to the
// current state is a no-op unless force is set. An unknown name leaves the
// machine where it was.
func (m *StateMachine) ChangeState(name string, force bool) error {
	next, ok := m.states[name]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownState, name)
		m.log.WithField("state", m.CurrentStateName()).WithError(err).Error("state change aborted")
		return err
	}
	if m.changing {
		m.log.WithField("to", name).Warn("nested state change ignored")
		return ErrReentrant
	}
	if next == m.current && !force {
		return nil
	}

	m.changing = true
	defer func() { m.changing = false }()

	prev := m.current
	if prev != nil {
		prev.exit(m)
	}
	m.current = next
	m.enteredAt = m.clock
	next.enter(m)

	m.log.WithFields(logrus.Fields{"from": stateName(prev), "to": next.Name}).Debug("state changed")
	if m.onChange != nil {
		m.onChange(m, prev, next)
	}
	return nil
}

// Tick advances the machine by dt seconds. Transitions and update actions
// only run once the re-evaluation interval has elapsed.
func (m *StateMachine) Tick(dt float64) {
	if m == nil || !m.enabled || m.current == nil {
		return
	}
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	m.clock += dt
	m.timer += dt
	if m.timer+intervalSlack < m.wait {
		return
	}
	m.timer = 0
	m.wait = m.interval.Sample(m.rng)

	if m.evaluate() {
		return
	}
	m.current.update(m)
}

// evaluate reports whether a transition left the current state.
func (m *StateMachine) evaluate() bool {
	for _, t := range m.current.Transitions {
		if t == nil || !t.CanTransition(m) {
			continue
		}
		to := t.NextState(m.rng)
		if to == m.current.Name {
			return false
		}
		if err := m.ChangeState(to, false); err != nil {
			return false
		}
		return true
	}
	return false
}

func stateName(s *State) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func (m *StateMachine) Name() string { return m.name }

func (m *StateMachine) Owner() Owner { return m.owner }

func (m *StateMachine) Blackboard() *blackboard.Blackboard { return m.bb }

// Keys is the key set declared by the machine's asset.
func (m *StateMachine) Keys() *blackboard.KeySet { return m.keys }

func (m *StateMachine) Sensor() *perception.Sensor { return m.sensor }

func (m *StateMachine) Rand() *rand.Rand { return m.rng }

// Log carries the machine, actor and current state fields.
func (m *StateMachine) Log() logrus.FieldLogger {
	return m.log.WithField("state", m.CurrentStateName())
}

func (m *StateMachine) Started() bool { return m.current != nil }

func (m *StateMachine) Enabled() bool { return m.enabled }

// SetEnabled pauses or resumes ticking. Timers do not advance while paused.
func (m *StateMachine) SetEnabled(on bool) { m.enabled = on }

func (m *StateMachine) CurrentState() *State { return m.current }

func (m *StateMachine) CurrentStateName() string { return stateName(m.current) }

// TimeInCurrentState is machine time since the last state entry.
func (m *StateMachine) TimeInCurrentState() float64 {
	if m.current == nil {
		return 0
	}
	return m.clock - m.enteredAt
}

// Clock is the total time the machine has been ticked.
func (m *StateMachine) Clock() float64 { return m.clock }

func (m *StateMachine) Interval() Interval { return m.interval }

// CurrentWait is the sampled interval the machine is waiting on.
func (m *StateMachine) CurrentWait() float64 { return m.wait }

func (m *StateMachine) Slots() *TargetSlots { return m.slots }

func (m *StateMachine) SetTarget(i int, e perception.Entity) bool { return m.slots.Set(i, e) }

func (m *StateMachine) GetTarget(i int) perception.Entity { return m.slots.Get(i) }

func (m *StateMachine) HasTarget(i int) bool { return m.slots.Has(i) }

func (m *StateMachine) ClearTarget(i int) bool { return m.slots.Clear(i) }

func (m *StateMachine) GetTargetContext(i int) perception.Vitals { return m.slots.Context(i) }

func (m *StateMachine) DistanceToTarget(i int) float64 {
	if m.owner == nil {
		return math.Inf(1)
	}
	return m.slots.Distance(i, m.owner.Position())
}

func (m *StateMachine) DirectionToTarget(i int) cp.Vector {
	if m.owner == nil {
		return cp.Vector{}
	}
	return m.slots.Direction(i, m.owner.Position())
}
