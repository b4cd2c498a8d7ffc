// Package blackboard is a per-actor typed scratchpad shared by decisions and
// actions. Keys are identity tokens: two keys with the same name are still
// different keys.
package blackboard

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/common"
	"github.com/sirupsen/logrus"
)

// Key addresses one slot in a Blackboard. Compare keys by pointer.
type Key struct {
	name string
}

// NewKey returns a fresh key. The name is only used for display.
func NewKey(name string) *Key {
	return &Key{name: name}
}

func (k *Key) Name() string {
	if k == nil {
		return ""
	}
	return k.name
}

func (k *Key) String() string {
	return "bb:" + k.Name()
}

// Blackboard stores one map per value kind. It is not safe for concurrent
// use; a blackboard belongs to exactly one state machine.
type Blackboard struct {
	floats   map[*Key]float64
	ints     map[*Key]int
	bools    map[*Key]bool
	strings  map[*Key]string
	vectors  map[*Key]cp.Vector
	vectors3 map[*Key]common.Vec3
	objects  map[*Key]any

	log logrus.FieldLogger
}

// New creates an empty blackboard. A nil logger uses the logrus standard
// logger.
func New(log logrus.FieldLogger) *Blackboard {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Blackboard{
		floats:   map[*Key]float64{},
		ints:     map[*Key]int{},
		bools:    map[*Key]bool{},
		strings:  map[*Key]string{},
		vectors:  map[*Key]cp.Vector{},
		vectors3: map[*Key]common.Vec3{},
		objects:  map[*Key]any{},
		log:      log.WithField("component", "blackboard"),
	}
}

func (b *Blackboard) reject(op string, key *Key) bool {
	if b == nil {
		return true
	}
	if key == nil {
		b.log.WithField("op", op).Warn("nil blackboard key ignored")
		return true
	}
	return false
}

func (b *Blackboard) SetFloat(key *Key, v float64) {
	if b.reject("SetFloat", key) {
		return
	}
	b.floats[key] = v
}

func (b *Blackboard) GetFloat(key *Key, def float64) float64 {
	if b.reject("GetFloat", key) {
		return def
	}
	if v, ok := b.floats[key]; ok {
		return v
	}
	return def
}

func (b *Blackboard) SetInt(key *Key, v int) {
	if b.reject("SetInt", key) {
		return
	}
	b.ints[key] = v
}

func (b *Blackboard) GetInt(key *Key, def int) int {
	if b.reject("GetInt", key) {
		return def
	}
	if v, ok := b.ints[key]; ok {
		return v
	}
	return def
}

func (b *Blackboard) SetBool(key *Key, v bool) {
	if b.reject("SetBool", key) {
		return
	}
	b.bools[key] = v
}

func (b *Blackboard) GetBool(key *Key, def bool) bool {
	if b.reject("GetBool", key) {
		return def
	}
	if v, ok := b.bools[key]; ok {
		return v
	}
	return def
}

func (b *Blackboard) SetString(key *Key, v string) {
	if b.reject("SetString", key) {
		return
	}
	b.strings[key] = v
}

func (b *Blackboard) GetString(key *Key, def string) string {
	if b.reject("GetString", key) {
		return def
	}
	if v, ok := b.strings[key]; ok {
		return v
	}
	return def
}

// SetVector stores a 2D vector.
func (b *Blackboard) SetVector(key *Key, v cp.Vector) {
	if b.reject("SetVector", key) {
		return
	}
	b.vectors[key] = v
}

func (b *Blackboard) GetVector(key *Key, def cp.Vector) cp.Vector {
	if b.reject("GetVector", key) {
		return def
	}
	if v, ok := b.vectors[key]; ok {
		return v
	}
	return def
}

func (b *Blackboard) SetVector3(key *Key, v common.Vec3) {
	if b.reject("SetVector3", key) {
		return
	}
	b.vectors3[key] = v
}

func (b *Blackboard) GetVector3(key *Key, def common.Vec3) common.Vec3 {
	if b.reject("GetVector3", key) {
		return def
	}
	if v, ok := b.vectors3[key]; ok {
		return v
	}
	return def
}

// SetObject stores an arbitrary reference. Storing nil removes the entry.
func (b *Blackboard) SetObject(key *Key, v any) {
	if b.reject("SetObject", key) {
		return
	}
	if v == nil {
		delete(b.objects, key)
		return
	}
	b.objects[key] = v
}

// Object returns the raw reference stored under key.
func (b *Blackboard) Object(key *Key) (any, bool) {
	if b.reject("Object", key) {
		return nil, false
	}
	v, ok := b.objects[key]
	return v, ok
}

// GetObject returns the reference under key if it holds a T. A missing entry
// or a value of another type yields the zero T and false.
func GetObject[T any](b *Blackboard, key *Key) (T, bool) {
	var zero T
	v, ok := b.Object(key)
	if !ok {
		return zero, false
	}
	cast, ok := v.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}

// Value returns whatever key holds, checking kinds in declaration order.
func (b *Blackboard) Value(key *Key) (any, bool) {
	if b == nil || key == nil {
		return nil, false
	}
	if v, ok := b.floats[key]; ok {
		return v, true
	}
	if v, ok := b.ints[key]; ok {
		return v, true
	}
	if v, ok := b.bools[key]; ok {
		return v, true
	}
	if v, ok := b.strings[key]; ok {
		return v, true
	}
	if v, ok := b.vectors[key]; ok {
		return v, true
	}
	if v, ok := b.vectors3[key]; ok {
		return v, true
	}
	v, ok := b.objects[key]
	return v, ok
}

// Has reports whether key holds a value of any kind.
func (b *Blackboard) Has(key *Key) bool {
	_, ok := b.Value(key)
	return ok
}

// Remove deletes key from every kind.
func (b *Blackboard) Remove(key *Key) {
	if b.reject("Remove", key) {
		return
	}
	delete(b.floats, key)
	delete(b.ints, key)
	delete(b.bools, key)
	delete(b.strings, key)
	delete(b.vectors, key)
	delete(b.vectors3, key)
	delete(b.objects, key)
}
