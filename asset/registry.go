// Package asset loads YAML state machine assets, resolves their decision and
// action nodes through a kind registry and compiles them into blueprints
// that build ready-to-run machines.
package asset

import (
	"errors"
	"sort"

	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/perception"
)

var (
	ErrUnknownState   = fsm.ErrUnknownState
	ErrUnknownLayer   = perception.ErrUnknownLayer
	ErrUnknownKind    = errors.New("asset: unknown kind")
	ErrSlotOutOfRange = errors.New("asset: target slot out of range")
	ErrUnknownKey     = errors.New("asset: undeclared blackboard key")
	ErrInvalidArgs    = errors.New("asset: invalid arguments")
	ErrNoStates       = errors.New("asset: no states")
)

// DecisionFactory builds immutable decision configuration from node args.
type DecisionFactory func(a *Args) (fsm.DecisionConfig, error)

// ActionFactory builds immutable action configuration from node args.
type ActionFactory func(a *Args) (fsm.ActionConfig, error)

// Registry maps node kinds to factories. Registering a kind twice replaces
// the earlier factory.
type Registry struct {
	decisions map[string]DecisionFactory
	actions   map[string]ActionFactory
}

func NewRegistry() *Registry {
	return &Registry{
		decisions: make(map[string]DecisionFactory),
		actions:   make(map[string]ActionFactory),
	}
}

func (r *Registry) RegisterDecision(kind string, f DecisionFactory) {
	r.decisions[kind] = f
}

func (r *Registry) RegisterAction(kind string, f ActionFactory) {
	r.actions[kind] = f
}

func (r *Registry) Decision(kind string) (DecisionFactory, bool) {
	f, ok := r.decisions[kind]
	return f, ok
}

func (r *Registry) Action(kind string) (ActionFactory, bool) {
	f, ok := r.actions[kind]
	return f, ok
}

func (r *Registry) DecisionKinds() []string {
	return sortedKeys(r.decisions)
}

func (r *Registry) ActionKinds() []string {
	return sortedKeys(r.actions)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
