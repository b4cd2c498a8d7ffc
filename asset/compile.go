package asset

import (
	"errors"
	"fmt"

	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
)

// Env is everything Compile needs besides the spec.
type Env struct {
	Registry *Registry
	Layers   perception.Layers
	Source   Source
	Logger   logrus.FieldLogger
	// TargetSlots and Interval apply when the spec leaves them out.
	TargetSlots int
	Interval    fsm.Interval
}

type compiler struct {
	env    Env
	keys   *blackboard.KeySet
	layers perception.Layers
	slots  int
	log    logrus.FieldLogger
}

// Compile validates spec and resolves every node into immutable
// configuration. All problems found are returned together.
func Compile(spec *Spec, env Env) (*Blueprint, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrInvalidArgs)
	}
	if env.Registry == nil {
		env.Registry = NewRegistry()
	}
	log := env.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"component": "asset", "asset": spec.Name})

	var errs []error
	slots := spec.TargetSlots
	switch {
	case slots < 0:
		errs = append(errs, fmt.Errorf("target_slots: %w: %d", ErrInvalidArgs, slots))
		slots = fsm.DefaultTargetSlots
	case slots == 0 && env.TargetSlots > 0:
		slots = env.TargetSlots
	case slots == 0:
		slots = fsm.DefaultTargetSlots
	}

	interval, err := compileInterval(spec.Interval, env.Interval)
	if err != nil {
		errs = append(errs, err)
	}

	layers := env.Layers
	if layers == nil {
		layers = perception.Layers{}
	}
	c := &compiler{
		env:    env,
		keys:   blackboard.NewKeySet(spec.Keys...),
		layers: layers,
		slots:  slots,
		log:    log,
	}

	if len(spec.States) == 0 {
		errs = append(errs, ErrNoStates)
	}

	kept := make([]StateSpec, 0, len(spec.States))
	names := make(map[string]bool, len(spec.States))
	for i, st := range spec.States {
		if st.Name == "" {
			errs = append(errs, fmt.Errorf("state #%d: %w: missing name", i, ErrInvalidArgs))
			continue
		}
		if names[st.Name] {
			log.WithField("state", st.Name).Warn("duplicate state ignored")
			continue
		}
		names[st.Name] = true
		kept = append(kept, st)
	}

	bp := &Blueprint{
		Name:        spec.Name,
		Initial:     spec.Initial,
		TargetSlots: slots,
		Interval:    interval,
		Keys:        c.keys,
	}
	for _, st := range kept {
		sb, err := c.state(st, names)
		if err != nil {
			errs = append(errs, fmt.Errorf("state %q: %w", st.Name, err))
			continue
		}
		bp.states = append(bp.states, sb)
	}

	if spec.Initial == "" {
		errs = append(errs, fmt.Errorf("initial: %w: missing", ErrInvalidArgs))
	} else if !names[spec.Initial] {
		errs = append(errs, fmt.Errorf("initial: %w: %q", ErrUnknownState, spec.Initial))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("asset %s: %w", spec.Name, err)
	}
	return bp, nil
}

func compileInterval(iv IntervalSpec, def fsm.Interval) (fsm.Interval, error) {
	switch {
	case iv.IsZero():
		return def, nil
	case iv.Fixed != nil:
		if iv.Min != nil || iv.Max != nil {
			return def, fmt.Errorf("interval: %w: fixed excludes min/max", ErrInvalidArgs)
		}
		if *iv.Fixed < 0 {
			return def, fmt.Errorf("interval: %w: negative", ErrInvalidArgs)
		}
		return fsm.FixedInterval(*iv.Fixed), nil
	case iv.Min == nil || iv.Max == nil:
		return def, fmt.Errorf("interval: %w: min and max are both required", ErrInvalidArgs)
	case *iv.Min < 0 || *iv.Max < *iv.Min:
		return def, fmt.Errorf("interval: %w: need 0 <= min <= max", ErrInvalidArgs)
	default:
		return fsm.RandomInterval(*iv.Min, *iv.Max), nil
	}
}

func (c *compiler) state(st StateSpec, names map[string]bool) (stateBlueprint, error) {
	sb := stateBlueprint{name: st.Name}
	var errs []error

	var err error
	if sb.enter, err = c.actions(st.OnEnter); err != nil {
		errs = append(errs, fmt.Errorf("on_enter: %w", err))
	}
	if sb.update, err = c.actions(st.OnUpdate); err != nil {
		errs = append(errs, fmt.Errorf("on_update: %w", err))
	}
	if sb.exit, err = c.actions(st.OnExit); err != nil {
		errs = append(errs, fmt.Errorf("on_exit: %w", err))
	}

	for i, ts := range st.Transitions {
		tb, err := c.transition(ts, names)
		if err != nil {
			errs = append(errs, fmt.Errorf("transition #%d: %w", i, err))
			continue
		}
		sb.transitions = append(sb.transitions, tb)
	}
	return sb, errors.Join(errs...)
}

func (c *compiler) transition(ts TransitionSpec, names map[string]bool) (transitionBlueprint, error) {
	tb := transitionBlueprint{next: ts.To, candidates: ts.ToAny, weights: ts.Weights}
	var errs []error

	switch {
	case ts.To != "" && len(ts.ToAny) > 0:
		errs = append(errs, fmt.Errorf("%w: to and to_any are exclusive", ErrInvalidArgs))
	case ts.To == "" && len(ts.ToAny) == 0:
		errs = append(errs, fmt.Errorf("%w: missing to or to_any", ErrInvalidArgs))
	}
	if len(ts.Weights) > 0 && len(ts.Weights) != len(ts.ToAny) {
		errs = append(errs, fmt.Errorf("%w: %d weights for %d candidates", ErrInvalidArgs, len(ts.Weights), len(ts.ToAny)))
	}
	for _, w := range ts.Weights {
		if w < 0 {
			errs = append(errs, fmt.Errorf("%w: negative weight %v", ErrInvalidArgs, w))
			break
		}
	}

	targets := append([]string(nil), ts.ToAny...)
	if ts.To != "" {
		targets = append(targets, ts.To)
	}
	for _, name := range targets {
		if !names[name] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownState, name))
		}
	}

	when, err := c.decisions(ts.When)
	if err != nil {
		errs = append(errs, fmt.Errorf("when: %w", err))
	}
	tb.when = when
	return tb, errors.Join(errs...)
}

func (c *compiler) decisions(nodes []Node) ([]fsm.DecisionConfig, error) {
	out := make([]fsm.DecisionConfig, 0, len(nodes))
	var errs []error
	for _, n := range nodes {
		cfg, err := c.decision(n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, cfg)
	}
	return out, errors.Join(errs...)
}

func (c *compiler) decision(n Node) (fsm.DecisionConfig, error) {
	f, ok := c.env.Registry.Decision(n.Kind)
	if !ok {
		return nil, fmt.Errorf("line %d: %w: decision %q", n.Line, ErrUnknownKind, n.Kind)
	}
	cfg, err := f(&Args{Kind: n.Kind, Line: n.Line, node: n.Args, c: c})
	if err != nil {
		return nil, fmt.Errorf("line %d: %s: %w", n.Line, n.Kind, err)
	}
	if err := c.checkSlots(n, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *compiler) actions(nodes []Node) ([]fsm.ActionConfig, error) {
	out := make([]fsm.ActionConfig, 0, len(nodes))
	var errs []error
	for _, n := range nodes {
		f, ok := c.env.Registry.Action(n.Kind)
		if !ok {
			errs = append(errs, fmt.Errorf("line %d: %w: action %q", n.Line, ErrUnknownKind, n.Kind))
			continue
		}
		cfg, err := f(&Args{Kind: n.Kind, Line: n.Line, node: n.Args, c: c})
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %s: %w", n.Line, n.Kind, err))
			continue
		}
		if err := c.checkSlots(n, cfg); err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, cfg)
	}
	return out, errors.Join(errs...)
}

func (c *compiler) checkSlots(n Node, cfg any) error {
	user, ok := cfg.(fsm.SlotUser)
	if !ok {
		return nil
	}
	for _, i := range user.Slots() {
		if i < 0 || i >= c.slots {
			return fmt.Errorf("line %d: %s: %w: %d not in [0,%d)", n.Line, n.Kind, ErrSlotOutOfRange, i, c.slots)
		}
	}
	return nil
}
