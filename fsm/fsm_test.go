package fsm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOwner struct {
	name    string
	pos     cp.Vector
	fwd     cp.Vector
	vel     cp.Vector
	dead    bool
	gone    bool
	modules map[ModuleKind]any
}

func (o *testOwner) Name() string            { return o.name }
func (o *testOwner) Tag() string             { return "npc" }
func (o *testOwner) Position() cp.Vector     { return o.pos }
func (o *testOwner) Forward() cp.Vector      { return o.fwd }
func (o *testOwner) Valid() bool             { return !o.gone }
func (o *testOwner) Move(v cp.Vector)        { o.vel = v }
func (o *testOwner) Face(d cp.Vector)        { o.fwd = d }
func (o *testOwner) IsDead() bool            { return o.dead }
func (o *testOwner) Module(k ModuleKind) any { return o.modules[k] }

func newOwner(name string) *testOwner {
	return &testOwner{name: name, fwd: cp.Vector{X: 1}}
}

func boolDecision(v bool) Decision {
	return DecisionFunc(func(*StateMachine) bool { return v })
}

func seeded() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func to(next string, ds ...Decision) *Transition {
	return &Transition{Decisions: ds, Next: next}
}

// recorder logs lifecycle calls into a shared journal.
type recorder struct {
	tag     string
	journal *[]string
	result  bool
}

func (r *recorder) note(event string) {
	*r.journal = append(*r.journal, r.tag+":"+event)
}

func (r *recorder) Decide(*StateMachine) bool {
	r.note("decide")
	return r.result
}

func (r *recorder) Perform(*StateMachine)      { r.note("perform") }
func (r *recorder) OnEnterState(*StateMachine) { r.note("enter") }
func (r *recorder) OnExitState(*StateMachine)  { r.note("exit") }

func TestFirstSatisfiedTransitionWins(t *testing.T) {
	idle := &State{
		Name: "idle",
		Transitions: []*Transition{
			to("t1", boolDecision(true)),
			to("t2", boolDecision(false)),
			to("t3", boolDecision(true)),
		},
	}
	m := New(newOwner("a"), []*State{idle, {Name: "t1"}, {Name: "t2"}, {Name: "t3"}}, Options{Rand: seeded()})
	require.NoError(t, m.Start("idle"))

	m.Tick(0.016)
	assert.Equal(t, "t1", m.CurrentStateName())
}

func TestThrottleEvaluatesOncePerInterval(t *testing.T) {
	evaluations := 0
	counting := DecisionFunc(func(*StateMachine) bool { evaluations++; return false })
	updates := 0
	idle := &State{
		Name:        "idle",
		Transitions: []*Transition{to("idle", counting)},
		OnUpdate:    []Action{ActionFunc(func(*StateMachine) { updates++ })},
	}
	m := New(newOwner("a"), []*State{idle}, Options{Interval: FixedInterval(0.2)})
	require.NoError(t, m.Start("idle"))

	for i := 0; i < 3; i++ {
		m.Tick(0.05)
		assert.Zero(t, evaluations, "tick %d", i+1)
		assert.Zero(t, updates)
	}
	m.Tick(0.05)
	assert.Equal(t, 1, evaluations)
	assert.Equal(t, 1, updates)
}

func TestRandomIntervalResampledAfterEvaluation(t *testing.T) {
	m := New(newOwner("a"), []*State{{Name: "idle"}}, Options{Interval: RandomInterval(0.1, 0.3), Rand: seeded()})
	require.NoError(t, m.Start("idle"))

	seen := map[float64]bool{}
	for i := 0; i < 200; i++ {
		w := m.CurrentWait()
		require.GreaterOrEqual(t, w, 0.1)
		require.Less(t, w, 0.3)
		seen[w] = true
		m.Tick(0.3)
	}
	assert.Greater(t, len(seen), 1)
}

func TestRandomTransitionRerolls(t *testing.T) {
	tr := &Transition{Decisions: []Decision{boolDecision(true)}, Candidates: []string{"A", "B"}}
	r := seeded()
	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		require.True(t, tr.CanTransition(nil))
		counts[tr.NextState(r)]++
	}
	assert.NotZero(t, counts["A"])
	assert.NotZero(t, counts["B"])
	assert.Equal(t, 1000, counts["A"]+counts["B"])
}

func TestWeightedTransition(t *testing.T) {
	cases := []struct {
		name    string
		weights []float64
		only    string
	}{
		{"zero_weight_never_picked", []float64{0, 1}, "B"},
		{"negative_counts_as_zero", []float64{3, -1}, "A"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr := &Transition{Candidates: []string{"A", "B"}, Weights: c.weights}
			r := seeded()
			for i := 0; i < 200; i++ {
				require.Equal(t, c.only, tr.NextState(r))
			}
		})
	}

	t.Run("all_zero_is_uniform", func(t *testing.T) {
		tr := &Transition{Candidates: []string{"A", "B"}, Weights: []float64{0, 0}}
		r := seeded()
		counts := map[string]int{}
		for i := 0; i < 500; i++ {
			counts[tr.NextState(r)]++
		}
		assert.NotZero(t, counts["A"])
		assert.NotZero(t, counts["B"])
	})
}

func TestTransitionSkipsNilAndShortCircuits(t *testing.T) {
	var journal []string
	tr := &Transition{Decisions: []Decision{
		nil,
		&recorder{tag: "a", journal: &journal, result: false},
		&recorder{tag: "b", journal: &journal, result: true},
	}}
	assert.False(t, tr.CanTransition(nil))
	assert.Equal(t, []string{"a:decide"}, journal)
	assert.True(t, (&Transition{}).CanTransition(nil))
}

func TestUnknownTargetStaysAndRunsUpdates(t *testing.T) {
	log, hook := test.NewNullLogger()
	updates := 0
	idle := &State{
		Name:        "idle",
		Transitions: []*Transition{to("nowhere")},
		OnUpdate:    []Action{ActionFunc(func(*StateMachine) { updates++ })},
	}
	m := New(newOwner("a"), []*State{idle}, Options{Logger: log})
	require.NoError(t, m.Start("idle"))

	m.Tick(0.1)
	assert.Equal(t, "idle", m.CurrentStateName())
	assert.Equal(t, 1, updates)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestSelfTransitionRunsUpdates(t *testing.T) {
	var journal []string
	rec := &recorder{tag: "act", journal: &journal}
	idle := &State{Name: "idle", Transitions: []*Transition{to("idle")}, OnUpdate: []Action{rec}}
	m := New(newOwner("a"), []*State{idle}, Options{})
	require.NoError(t, m.Start("idle"))
	journal = journal[:0]

	m.Tick(0.1)
	assert.Equal(t, []string{"act:perform"}, journal)
}

func TestTransitionSkipsUpdateActions(t *testing.T) {
	updates := 0
	a := &State{
		Name:        "a",
		Transitions: []*Transition{to("b")},
		OnUpdate:    []Action{ActionFunc(func(*StateMachine) { updates++ })},
	}
	b := &State{Name: "b", OnUpdate: []Action{ActionFunc(func(*StateMachine) { updates += 10 })}}
	m := New(newOwner("a"), []*State{a, b}, Options{})
	require.NoError(t, m.Start("a"))

	m.Tick(0.1)
	assert.Equal(t, "b", m.CurrentStateName())
	assert.Zero(t, updates)
	m.Tick(0.1)
	assert.Equal(t, 10, updates)
}

func TestEnterExitOrdering(t *testing.T) {
	var journal []string
	rec := func(tag string) *recorder { return &recorder{tag: tag, journal: &journal, result: true} }

	a := &State{
		Name:        "a",
		Transitions: []*Transition{to("b", rec("a.dec"))},
		OnEnter:     []Action{rec("a.in")},
		OnExit:      []Action{rec("a.out")},
	}
	b := &State{
		Name:        "b",
		Transitions: []*Transition{to("a", &recorder{tag: "b.dec", journal: &journal})},
		OnEnter:     []Action{rec("b.in")},
		OnUpdate:    []Action{rec("b.up")},
	}
	m := New(newOwner("x"), []*State{a, b}, Options{})
	require.NoError(t, m.Start("a"))
	assert.Equal(t, []string{"a.in:enter", "a.out:enter", "a.dec:enter", "a.in:perform"}, journal)

	journal = journal[:0]
	m.Tick(0.1)
	assert.Equal(t, []string{
		"a.dec:decide",
		"a.out:perform", "a.in:exit", "a.out:exit", "a.dec:exit",
		"b.in:enter", "b.up:enter", "b.dec:enter", "b.in:perform",
	}, journal)
}

func TestStartUnknownState(t *testing.T) {
	log, _ := test.NewNullLogger()
	m := New(newOwner("a"), []*State{{Name: "idle"}}, Options{Logger: log})
	err := m.Start("missing")
	assert.ErrorIs(t, err, ErrUnknownState)
	assert.False(t, m.Started())
	assert.Nil(t, m.CurrentState())

	m.Tick(1)
	assert.Equal(t, "", m.CurrentStateName())
}

func TestChangeStateIdempotentUnlessForced(t *testing.T) {
	enters := 0
	idle := &State{Name: "idle", OnEnter: []Action{ActionFunc(func(*StateMachine) { enters++ })}}
	m := New(newOwner("a"), []*State{idle}, Options{})
	require.NoError(t, m.Start("idle"))
	require.Equal(t, 1, enters)

	require.NoError(t, m.ChangeState("idle", false))
	assert.Equal(t, 1, enters)
	require.NoError(t, m.ChangeState("idle", true))
	assert.Equal(t, 2, enters)
}

func TestNestedChangeStateRejected(t *testing.T) {
	log, _ := test.NewNullLogger()
	var nested error
	a := &State{Name: "a"}
	b := &State{Name: "b"}
	a.OnEnter = []Action{ActionFunc(func(m *StateMachine) { nested = m.ChangeState("b", false) })}
	m := New(newOwner("a"), []*State{a, b}, Options{Logger: log})
	require.NoError(t, m.Start("a"))
	assert.ErrorIs(t, nested, ErrReentrant)
	assert.Equal(t, "a", m.CurrentStateName())
}

func TestDuplicateStateFirstWins(t *testing.T) {
	log, hook := test.NewNullLogger()
	first := &State{Name: "idle"}
	second := &State{Name: "idle"}
	m := New(newOwner("a"), []*State{first, second}, Options{Logger: log})

	got, ok := m.State("idle")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Len(t, m.States(), 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestTimeInCurrentState(t *testing.T) {
	a := &State{Name: "a", Transitions: []*Transition{to("b", DecisionFunc(func(m *StateMachine) bool {
		return m.TimeInCurrentState() >= 1
	}))}}
	m := New(newOwner("a"), []*State{a, {Name: "b"}}, Options{Interval: FixedInterval(0.25)})
	assert.Zero(t, m.TimeInCurrentState())
	require.NoError(t, m.Start("a"))

	for i := 0; i < 3; i++ {
		m.Tick(0.25)
	}
	assert.InDelta(t, 0.75, m.TimeInCurrentState(), 1e-9)
	assert.Equal(t, "a", m.CurrentStateName())
	m.Tick(0.25)
	assert.Equal(t, "b", m.CurrentStateName())
	assert.Zero(t, m.TimeInCurrentState())
	m.Tick(0.5)
	assert.InDelta(t, 0.5, m.TimeInCurrentState(), 1e-9)
}

func TestDisabledMachineDoesNotTick(t *testing.T) {
	updates := 0
	idle := &State{Name: "idle", OnUpdate: []Action{ActionFunc(func(*StateMachine) { updates++ })}}
	m := New(newOwner("a"), []*State{idle}, Options{})
	require.NoError(t, m.Start("idle"))

	m.SetEnabled(false)
	m.Tick(1)
	assert.Zero(t, updates)
	assert.Zero(t, m.Clock())

	m.SetEnabled(true)
	m.Tick(1)
	assert.Equal(t, 1, updates)
}

func TestOnStateChangeCallback(t *testing.T) {
	var changes [][2]string
	a := &State{Name: "a", Transitions: []*Transition{to("b")}}
	m := New(newOwner("a"), []*State{a, {Name: "b"}}, Options{
		OnStateChange: func(_ *StateMachine, from, to *State) {
			changes = append(changes, [2]string{stateName(from), to.Name})
		},
	})
	require.NoError(t, m.Start("a"))
	m.Tick(0.1)
	assert.Equal(t, [][2]string{{"", "a"}, {"a", "b"}}, changes)
}

func TestTargetSlots(t *testing.T) {
	log, hook := test.NewNullLogger()
	owner := newOwner("self")
	m := New(owner, []*State{{Name: "idle"}}, Options{TargetSlots: 2, Logger: log})
	enemy := newOwner("enemy")
	enemy.pos = cp.Vector{X: 3, Y: 4}

	require.True(t, m.SetTarget(0, enemy))
	assert.True(t, m.HasTarget(0))
	assert.Same(t, enemy, m.GetTarget(0))
	assert.InDelta(t, 5, m.DistanceToTarget(0), 1e-9)
	assert.InDelta(t, 0.6, m.DirectionToTarget(0).X, 1e-9)
	require.NotNil(t, m.GetTargetContext(0))
	assert.False(t, m.GetTargetContext(0).IsDead())

	t.Run("out_of_range", func(t *testing.T) {
		for _, i := range []int{-1, 2, 100} {
			assert.NotPanics(t, func() {
				assert.False(t, m.HasTarget(i))
				assert.Nil(t, m.GetTarget(i))
				assert.False(t, m.SetTarget(i, enemy))
				assert.True(t, math.IsInf(m.DistanceToTarget(i), 1))
			})
		}
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})

	t.Run("destroyed_reads_empty", func(t *testing.T) {
		enemy.gone = true
		assert.False(t, m.HasTarget(0))
		assert.Nil(t, m.GetTarget(0))
		assert.Nil(t, m.GetTargetContext(0))
		assert.True(t, math.IsInf(m.DistanceToTarget(0), 1))
		assert.Equal(t, cp.Vector{}, m.DirectionToTarget(0))

		enemy.gone = false
		assert.True(t, m.HasTarget(0), "slot is not auto-cleared")
	})

	t.Run("clear", func(t *testing.T) {
		require.True(t, m.ClearTarget(0))
		assert.False(t, m.HasTarget(0))
	})
}

func TestModuleHelpers(t *testing.T) {
	o := newOwner("a")
	_, ok := Abilities(o)
	assert.False(t, ok)
	_, ok = AnimatorOf(nil)
	assert.False(t, ok)

	o.modules = map[ModuleKind]any{ModuleVision: "not a vision module"}
	_, ok = VisionOf(o)
	assert.False(t, ok)
}
