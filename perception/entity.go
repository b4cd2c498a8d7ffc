package perception

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
)

var (
	ErrUnknownLayer    = errors.New("perception: unknown layer")
	ErrAlreadyTracked  = errors.New("perception: entity already in space")
	ErrNotComparable   = errors.New("perception: nil entity")
	ErrLayerOutOfRange = errors.New("perception: layer bit out of range")
)

// Entity is anything the perception space can report. Implementations must be
// comparable (normally a pointer type).
type Entity interface {
	Name() string
	Tag() string
	Position() cp.Vector
	// Forward is the facing axis. Top-down 2D actors use their local +X axis
	// rotated by their facing angle.
	Forward() cp.Vector
	// Valid turns false once the entity is destroyed. Invalid entities read as
	// absent everywhere.
	Valid() bool
}

// Vitals is the aliveness capability a perceived entity may expose.
type Vitals interface {
	IsDead() bool
}

// Alive reports whether e is present and not dead. Entities without Vitals
// count as alive.
func Alive(e Entity) bool {
	if !Present(e) {
		return false
	}
	if v, ok := e.(Vitals); ok && v.IsDead() {
		return false
	}
	return true
}

// Present reports whether e is a non-nil, non-destroyed entity.
func Present(e Entity) bool {
	return e != nil && e.Valid()
}

// Layer is a bitmask of categories. An entity belongs to the bits of its layer;
// queries match any entity whose layer intersects the query mask.
type Layer uint

const (
	LayerNone Layer = 0
	LayerAll  Layer = Layer(^uint(0))
)

func (l Layer) Has(other Layer) bool {
	return l&other != 0
}

// Layers maps layer names to single bits. The names "all" and "none" are
// always understood.
type Layers map[string]Layer

// NewLayers assigns bits in the order given: the first name is bit 0.
func NewLayers(names ...string) (Layers, error) {
	out := Layers{}
	for i, n := range names {
		if i >= 64 {
			return nil, fmt.Errorf("%w: %q", ErrLayerOutOfRange, n)
		}
		out[strings.ToLower(n)] = Layer(1) << uint(i)
	}
	return out, nil
}

// Mask ORs together the named layers. An empty list is LayerNone.
func (l Layers) Mask(names ...string) (Layer, error) {
	var mask Layer
	var errs []error
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		switch key {
		case "all", "everything":
			mask |= LayerAll
			continue
		case "none", "":
			continue
		}
		bit, ok := l[key]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownLayer, n))
			continue
		}
		mask |= bit
	}
	return mask, errors.Join(errs...)
}

// Names returns the layer names sorted by bit.
func (l Layers) Names() []string {
	out := make([]string, 0, len(l))
	for n := range l {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return l[out[i]] < l[out[j]] })
	return out
}
