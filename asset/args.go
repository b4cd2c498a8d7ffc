package asset

import (
	"fmt"

	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Args is what a factory sees while its node is compiled: the raw arguments
// and resolvers for the names they may contain.
type Args struct {
	Kind string
	Line int

	node *yaml.Node
	c    *compiler
}

// Empty reports whether the node was written as a bare kind.
func (a *Args) Empty() bool {
	return a.node == nil
}

// Node returns the raw argument node, nil for a bare kind.
func (a *Args) Node() *yaml.Node {
	return a.node
}

// Decode unmarshals the arguments into v. A bare kind leaves v untouched.
func (a *Args) Decode(v any) error {
	if a.node == nil {
		return nil
	}
	if err := a.node.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

// Invalid builds an ErrInvalidArgs error for this node.
func (a *Args) Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgs, fmt.Sprintf(format, args...))
}

// Key resolves a blackboard key declared by the asset. An empty name
// resolves to nil without error.
func (a *Args) Key(name string) (*blackboard.Key, error) {
	if name == "" {
		return nil, nil
	}
	k, ok := a.c.keys.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return k, nil
}

// RequireKey is Key with an empty name rejected.
func (a *Args) RequireKey(field, name string) (*blackboard.Key, error) {
	if name == "" {
		return nil, a.Invalid("%s is required", field)
	}
	return a.Key(name)
}

// Mask ORs the named layers.
func (a *Args) Mask(names Names) (perception.Layer, error) {
	return a.c.layers.Mask(names...)
}

// MaskOr is Mask with def used for an empty list.
func (a *Args) MaskOr(names Names, def perception.Layer) (perception.Layer, error) {
	if len(names) == 0 {
		return def, nil
	}
	return a.Mask(names)
}

func (a *Args) TargetSlots() int {
	return a.c.slots
}

// Decision compiles a nested decision node.
func (a *Args) Decision(n Node) (fsm.DecisionConfig, error) {
	return a.c.decision(n)
}

// Decisions compiles nested decision nodes, reporting every failure.
func (a *Args) Decisions(nodes []Node) ([]fsm.DecisionConfig, error) {
	return a.c.decisions(nodes)
}

// Script loads a tengo script by name from the asset source.
func (a *Args) Script(name string) ([]byte, error) {
	return a.c.env.Source.LoadScript(name)
}

func (a *Args) Logger() logrus.FieldLogger {
	return a.c.log.WithFields(logrus.Fields{"kind": a.Kind, "line": a.Line})
}
