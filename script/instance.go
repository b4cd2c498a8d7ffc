package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/blackboard"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/sirupsen/logrus"
)

// Instance is one machine's copy of a Program. Top-level script code runs
// on every call; values that must survive between calls live in the state
// map passed as the second hook argument.
type Instance struct {
	program  *Program
	compiled *tengo.Compiled
	state    *tengo.Map
	params   map[string]any
}

func (i *Instance) Decide(m *fsm.StateMachine) (bool, error) {
	if !i.program.HasDecide() {
		return false, ErrNoDecide
	}
	if err := i.run(hookDecide, m); err != nil {
		return false, err
	}
	return i.compiled.Get("__result").Bool(), nil
}

func (i *Instance) Perform(m *fsm.StateMachine) error {
	if !i.program.HasPerform() {
		return ErrNoPerform
	}
	return i.run(hookPerform, m)
}

// Enter runs on_enter if the script defines it.
func (i *Instance) Enter(m *fsm.StateMachine) error {
	if !i.program.hooks[hookEnter] {
		return nil
	}
	return i.run(hookEnter, m)
}

func (i *Instance) Exit(m *fsm.StateMachine) error {
	if !i.program.hooks[hookExit] {
		return nil
	}
	return i.run(hookExit, m)
}

// State exposes the persistent script state for inspection.
func (i *Instance) State() map[string]any {
	out := make(map[string]any, len(i.state.Value))
	for k, v := range i.state.Value {
		out[k] = tengo.ToInterface(v)
	}
	return out
}

// run executes one hook. A panic inside the VM comes back as an error.
func (i *Instance) run(phase string, m *fsm.StateMachine) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script %s: %s: panic: %v", i.program.name, phase, r)
		}
	}()
	if err := i.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := i.compiled.Set("__engine", i.engine(m)); err != nil {
		return err
	}
	if err := i.compiled.Set("__state", i.state); err != nil {
		return err
	}
	if err := i.compiled.Set("__result", false); err != nil {
		return err
	}
	if err := i.compiled.Run(); err != nil {
		return fmt.Errorf("script %s: %s: %w", i.program.name, phase, err)
	}
	return nil
}

func (i *Instance) engine(m *fsm.StateMachine) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	params := map[string]tengo.Object{}
	for k, v := range i.params {
		if obj, err := tengo.FromInterface(v); err == nil {
			params[k] = obj
		}
	}
	values["params"] = &tengo.ImmutableMap{Value: params}

	fn := func(name string, f func(args ...tengo.Object) (tengo.Object, error)) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}

	owner := m.Owner()

	fn("position", func(args ...tengo.Object) (tengo.Object, error) {
		if owner == nil {
			return vector(cp.Vector{}), nil
		}
		return vector(owner.Position()), nil
	})

	fn("state", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: m.CurrentStateName()}, nil
	})

	fn("time_in_state", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: m.TimeInCurrentState()}, nil
	})

	fn("has_target", func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(m.HasTarget(slotArg(args))), nil
	})

	fn("target_position", func(args ...tengo.Object) (tengo.Object, error) {
		t := m.GetTarget(slotArg(args))
		if t == nil {
			return tengo.UndefinedValue, nil
		}
		return vector(t.Position()), nil
	})

	fn("distance_to_target", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: m.DistanceToTarget(slotArg(args))}, nil
	})

	fn("bb_get", func(args ...tengo.Object) (tengo.Object, error) {
		var def tengo.Object = tengo.UndefinedValue
		if len(args) > 1 {
			def = args[1]
		}
		key := i.key(m, args)
		if key == nil {
			return def, nil
		}
		v, ok := m.Blackboard().Value(key)
		if !ok {
			return def, nil
		}
		if vec, ok := v.(cp.Vector); ok {
			return vector(vec), nil
		}
		obj, err := tengo.FromInterface(v)
		if err != nil {
			return def, nil
		}
		return obj, nil
	})

	fn("bb_set", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		key := i.key(m, args)
		if key == nil {
			return tengo.FalseValue, nil
		}
		setBlackboard(m.Blackboard(), key, args[1])
		return tengo.TrueValue, nil
	})

	fn("move", func(args ...tengo.Object) (tengo.Object, error) {
		if owner == nil {
			return tengo.FalseValue, nil
		}
		owner.Move(vectorArg(args))
		return tengo.TrueValue, nil
	})

	fn("face", func(args ...tengo.Object) (tengo.Object, error) {
		if owner == nil {
			return tengo.FalseValue, nil
		}
		owner.Face(vectorArg(args))
		return tengo.TrueValue, nil
	})

	fn("trigger", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		abilities, ok := fsm.Abilities(owner)
		if !ok {
			return tengo.FalseValue, nil
		}
		a := abilities.Ability(objectAsString(args[0]))
		if a == nil || !a.Ready() {
			return tengo.FalseValue, nil
		}
		slot := 0
		if len(args) > 1 {
			slot = slotArg(args[1:])
		}
		return boolObject(a.Trigger(m.GetTarget(slot))), nil
	})

	fn("rand", func(args ...tengo.Object) (tengo.Object, error) {
		lo, hi := 0.0, 1.0
		if len(args) >= 2 {
			lo, _ = tengo.ToFloat64(args[0])
			hi, _ = tengo.ToFloat64(args[1])
		}
		return &tengo.Float{Value: common.RandRange(m.Rand(), lo, hi)}, nil
	})

	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		m.Log().WithField("script", i.program.name).Info(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func (i *Instance) key(m *fsm.StateMachine, args []tengo.Object) *blackboard.Key {
	if len(args) < 1 {
		return nil
	}
	name := objectAsString(args[0])
	k, ok := m.Keys().Lookup(name)
	if !ok {
		m.Log().WithFields(logrus.Fields{"script": i.program.name, "key": name}).
			Warn("script used an undeclared blackboard key")
		return nil
	}
	return k
}

func setBlackboard(bb *blackboard.Blackboard, key *blackboard.Key, obj tengo.Object) {
	switch v := obj.(type) {
	case *tengo.Float:
		bb.SetFloat(key, v.Value)
	case *tengo.Int:
		bb.SetInt(key, int(v.Value))
	case *tengo.Bool:
		bb.SetBool(key, !v.IsFalsy())
	case *tengo.String:
		bb.SetString(key, v.Value)
	case *tengo.Array:
		if vec, ok := toVector(v); ok {
			bb.SetVector(key, vec)
			return
		}
		bb.SetObject(key, tengo.ToInterface(v))
	default:
		bb.SetObject(key, tengo.ToInterface(obj))
	}
}

func vector(v cp.Vector) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}

func toVector(a *tengo.Array) (cp.Vector, bool) {
	if len(a.Value) != 2 {
		return cp.Vector{}, false
	}
	x, okx := tengo.ToFloat64(a.Value[0])
	y, oky := tengo.ToFloat64(a.Value[1])
	if !okx || !oky {
		return cp.Vector{}, false
	}
	return cp.Vector{X: x, Y: y}, true
}

// vectorArg accepts (x, y) or a single [x, y] array.
func vectorArg(args []tengo.Object) cp.Vector {
	switch len(args) {
	case 0:
		return cp.Vector{}
	case 1:
		if a, ok := args[0].(*tengo.Array); ok {
			v, _ := toVector(a)
			return v
		}
		return cp.Vector{}
	default:
		x, _ := tengo.ToFloat64(args[0])
		y, _ := tengo.ToFloat64(args[1])
		if math.IsNaN(x) || math.IsNaN(y) {
			return cp.Vector{}
		}
		return cp.Vector{X: x, Y: y}
	}
}

func slotArg(args []tengo.Object) int {
	if len(args) < 1 {
		return 0
	}
	i, ok := tengo.ToInt(args[0])
	if !ok {
		return 0
	}
	return i
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
