package asset

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Spec is the YAML form of one state machine asset. Declaration order of
// states, transitions and actions is preserved.
type Spec struct {
	Name        string       `yaml:"name" jsonschema:"required"`
	Initial     string       `yaml:"initial" jsonschema:"required"`
	TargetSlots int          `yaml:"target_slots,omitempty" jsonschema:"minimum=0"`
	Interval    IntervalSpec `yaml:"interval,omitempty"`
	Keys        []string     `yaml:"keys,omitempty"`
	States      []StateSpec  `yaml:"states" jsonschema:"required,minItems=1"`
}

type StateSpec struct {
	Name        string           `yaml:"name" jsonschema:"required"`
	OnEnter     []Node           `yaml:"on_enter,omitempty"`
	OnUpdate    []Node           `yaml:"on_update,omitempty"`
	OnExit      []Node           `yaml:"on_exit,omitempty"`
	Transitions []TransitionSpec `yaml:"transitions,omitempty"`
}

type TransitionSpec struct {
	When    []Node    `yaml:"when,omitempty"`
	To      string    `yaml:"to,omitempty"`
	ToAny   []string  `yaml:"to_any,omitempty"`
	Weights []float64 `yaml:"weights,omitempty"`
}

// IntervalSpec is written as a number (fixed), {fixed: s} or {min: a, max: b}.
type IntervalSpec struct {
	Fixed *float64 `yaml:"fixed,omitempty"`
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
}

func (iv *IntervalSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var f float64
		if err := value.Decode(&f); err != nil {
			return fmt.Errorf("line %d: interval: %w", value.Line, err)
		}
		iv.Fixed = &f
		return nil
	}
	type plain IntervalSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*iv = IntervalSpec(p)
	return nil
}

func (iv IntervalSpec) IsZero() bool {
	return iv.Fixed == nil && iv.Min == nil && iv.Max == nil
}

// Node is one decision or action entry: a bare kind name, or a single-key
// map from kind to its arguments.
type Node struct {
	Kind string
	Args *yaml.Node
	Line int
}

func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	n.Line = value.Line
	switch value.Kind {
	case yaml.ScalarNode:
		n.Kind = value.Value
		n.Args = nil
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: %w: expected a single kind key, got %d keys",
				value.Line, ErrInvalidArgs, len(value.Content)/2)
		}
		n.Kind = value.Content[0].Value
		n.Args = value.Content[1]
		if n.Args.Tag == "!!null" {
			n.Args = nil
		}
		return nil
	default:
		return fmt.Errorf("line %d: %w: node must be a kind name or a kind: args map", value.Line, ErrInvalidArgs)
	}
}

func (n Node) MarshalYAML() (any, error) {
	if n.Args == nil {
		return n.Kind, nil
	}
	return map[string]*yaml.Node{n.Kind: n.Args}, nil
}

// Names is a list of names that may also be written as a single scalar.
type Names []string

func (n *Names) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Value == "" {
			*n = nil
			return nil
		}
		*n = Names{value.Value}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*n = list
	return nil
}

// ParseSpec decodes one asset document.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("asset: unmarshal: %w", err)
	}
	return &spec, nil
}
