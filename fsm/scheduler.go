package fsm

import (
	"math/rand"

	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
)

// Tickable is anything the scheduler advances once per frame.
type Tickable interface {
	Tick(dt float64)
}

// Handle identifies a registration. The zero handle is never issued.
type Handle uint64

type entry struct {
	handle Handle
	item   Tickable
}

// Scheduler ticks registered machines in registration order. It owns the
// perception scratch buffer shared by the sensors it creates, so it must be
// driven from a single goroutine.
type Scheduler struct {
	entries []entry
	index   map[Handle]int
	next    Handle
	ticking bool
	dirty   bool

	space *perception.Space
	buf   *perception.Buffer
	log   logrus.FieldLogger
}

type SchedulerOptions struct {
	BufferSize  int
	BufferLimit int
	Logger      logrus.FieldLogger
}

func NewScheduler(space *perception.Space, opts SchedulerOptions) *Scheduler {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		index: make(map[Handle]int),
		space: space,
		buf:   perception.NewBuffer(opts.BufferSize, opts.BufferLimit, log),
		log:   log.WithField("component", "scheduler"),
	}
}

func (s *Scheduler) Space() *perception.Space { return s.space }

func (s *Scheduler) Buffer() *perception.Buffer { return s.buf }

// NewSensor returns a sensor over the scheduler's space sharing its buffer.
func (s *Scheduler) NewSensor(rng *rand.Rand) *perception.Sensor {
	return perception.NewSensor(s.space, s.buf, rng)
}

// Register adds t and returns its handle. Items registered during a tick
// start ticking on the next one.
func (s *Scheduler) Register(t Tickable) Handle {
	if t == nil {
		return 0
	}
	s.next++
	h := s.next
	s.index[h] = len(s.entries)
	s.entries = append(s.entries, entry{handle: h, item: t})
	return h
}

// Unregister removes h. It is safe to call from inside a tick, including
// for the item being ticked.
func (s *Scheduler) Unregister(h Handle) bool {
	i, ok := s.index[h]
	if !ok {
		return false
	}
	delete(s.index, h)
	if s.ticking {
		s.entries[i].item = nil
		s.dirty = true
		return true
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.reindex()
	return true
}

func (s *Scheduler) Len() int { return len(s.index) }

// Tick advances every registered item by dt.
func (s *Scheduler) Tick(dt float64) {
	s.ticking = true
	n := len(s.entries)
	for i := 0; i < n; i++ {
		if it := s.entries[i].item; it != nil {
			it.Tick(dt)
		}
	}
	s.ticking = false
	if s.dirty {
		s.compact()
	}
}

func (s *Scheduler) compact() {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.item != nil {
			kept = append(kept, e)
		}
	}
	clear(s.entries[len(kept):])
	s.entries = kept
	s.dirty = false
	s.reindex()
}

func (s *Scheduler) reindex() {
	for i, e := range s.entries {
		s.index[e.handle] = i
	}
}
