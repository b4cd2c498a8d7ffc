package fsm

import (
	"testing"

	"github.com/milk9111/npcbrain/perception"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	ticks  int
	onTick func()
}

func (c *counter) Tick(float64) {
	c.ticks++
	if c.onTick != nil {
		c.onTick()
	}
}

func TestSchedulerTicksInOrder(t *testing.T) {
	s := NewScheduler(nil, SchedulerOptions{})
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		s.Register(&counter{onTick: func() { order = append(order, i) }})
	}
	s.Tick(0.1)
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 3, s.Len())
}

func TestSchedulerUnregisterDuringTick(t *testing.T) {
	s := NewScheduler(nil, SchedulerOptions{})
	a, b, c := &counter{}, &counter{}, &counter{}
	ha := s.Register(a)
	hb := s.Register(b)
	s.Register(c)
	require.NotZero(t, ha)
	require.NotEqual(t, ha, hb)

	a.onTick = func() {
		assert.True(t, s.Unregister(hb))
		assert.True(t, s.Unregister(ha))
	}
	s.Tick(0.1)
	assert.Equal(t, 1, a.ticks)
	assert.Zero(t, b.ticks)
	assert.Equal(t, 1, c.ticks)
	assert.Equal(t, 1, s.Len())

	a.onTick = nil
	s.Tick(0.1)
	assert.Equal(t, 1, a.ticks)
	assert.Equal(t, 2, c.ticks)
	assert.False(t, s.Unregister(ha))
}

func TestSchedulerRegisterDuringTickStartsNextFrame(t *testing.T) {
	s := NewScheduler(nil, SchedulerOptions{})
	late := &counter{}
	first := &counter{}
	first.onTick = func() {
		if first.ticks == 1 {
			s.Register(late)
		}
	}
	s.Register(first)

	s.Tick(0.1)
	assert.Zero(t, late.ticks)
	s.Tick(0.1)
	assert.Equal(t, 1, late.ticks)
}

func TestSchedulerSensorsShareBuffer(t *testing.T) {
	space := perception.NewSpace(nil)
	s := NewScheduler(space, SchedulerOptions{BufferSize: 8, BufferLimit: 32})
	a := s.NewSensor(nil)
	b := s.NewSensor(nil)

	assert.Same(t, a.Buffer(), b.Buffer())
	assert.Same(t, s.Buffer(), a.Buffer())
	assert.Same(t, space, a.Space())
	assert.Equal(t, 8, s.Buffer().Size())
	assert.Equal(t, 32, s.Buffer().Limit())
}

func TestSchedulerTicksMachines(t *testing.T) {
	s := NewScheduler(nil, SchedulerOptions{})
	updates := 0
	idle := &State{Name: "idle", OnUpdate: []Action{ActionFunc(func(*StateMachine) { updates++ })}}
	m := New(newOwner("a"), []*State{idle}, Options{Sensor: s.NewSensor(nil)})
	require.NoError(t, m.Start("idle"))
	h := s.Register(m)

	s.Tick(0.1)
	s.Tick(0.1)
	assert.Equal(t, 2, updates)

	s.Unregister(h)
	s.Tick(0.1)
	assert.Equal(t, 2, updates)
}
