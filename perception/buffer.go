package perception

import "github.com/sirupsen/logrus"

const (
	DefaultBufferSize  = 16
	DefaultBufferLimit = 1000
)

// Buffer is the scratch storage overlap queries fill. It starts small,
// doubles when a query fills it, never grows past its limit and never
// shrinks. One buffer is shared by every sensor created from the same
// scheduler, so query results are only valid until the next query.
type Buffer struct {
	items     []Entity
	limit     int
	truncated bool

	log logrus.FieldLogger
}

func NewBuffer(size, limit int, log logrus.FieldLogger) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	if size > limit {
		size = limit
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Buffer{
		items: make([]Entity, 0, size),
		limit: limit,
		log:   log.WithField("component", "perception"),
	}
}

// Size is the current capacity.
func (b *Buffer) Size() int { return cap(b.items) }

// Limit is the hard capacity cap.
func (b *Buffer) Limit() int { return b.limit }

func (b *Buffer) reset() {
	clear(b.items)
	b.items = b.items[:0]
	b.truncated = false
}

func (b *Buffer) push(e Entity) {
	if len(b.items) == cap(b.items) {
		if cap(b.items) >= b.limit {
			b.truncated = true
			return
		}
		next := cap(b.items) * 2
		if next == 0 {
			next = DefaultBufferSize
		}
		if next > b.limit {
			next = b.limit
		}
		grown := make([]Entity, len(b.items), next)
		copy(grown, b.items)
		b.items = grown
	}
	b.items = append(b.items, e)
}

func (b *Buffer) finish(origin string, radius float64) {
	if !b.truncated {
		return
	}
	b.log.WithFields(logrus.Fields{
		"limit":  b.limit,
		"query":  origin,
		"radius": radius,
	}).Warn("perception buffer at limit, results truncated")
}
