package actions

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/script"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Register adds every action kind in this package to r.
func Register(r *asset.Registry) {
	r.RegisterAction("move_to_target", moveToTarget)
	r.RegisterAction("flee", flee)
	r.RegisterAction("face_target", slotOnly(func(s int) fsm.ActionConfig { return FaceTarget{Slot: s} }))
	r.RegisterAction("stop", func(*asset.Args) (fsm.ActionConfig, error) { return Stop{}, nil })
	r.RegisterAction("wander", wanderArgs)
	r.RegisterAction("patrol", patrolArgs)
	r.RegisterAction("attack", attackArgs)
	r.RegisterAction("change_weapon", changeWeapon)
	r.RegisterAction("animator_trigger", animatorParam(ParamTrigger))
	r.RegisterAction("animator_bool", animatorParam(ParamBool))
	r.RegisterAction("animator_float", animatorParam(ParamFloat))
	r.RegisterAction("animator_int", animatorParam(ParamInt))
	r.RegisterAction("animator_override", animatorOverrideArgs)
	r.RegisterAction("field_of_view", fieldOfViewArgs)
	r.RegisterAction("set_blackboard", setBlackboard)
	r.RegisterAction("clear_target", slotOnly(func(s int) fsm.ActionConfig { return ClearTarget{Slot: s} }))
	r.RegisterAction("remember_target_position", rememberTargetPosition)
	r.RegisterAction("log", logArgs)
	r.RegisterAction("script", scriptArgs)
}

func slotOnly(build func(slot int) fsm.ActionConfig) asset.ActionFactory {
	return func(a *asset.Args) (fsm.ActionConfig, error) {
		var args struct {
			Slot int `yaml:"slot"`
		}
		if err := a.Decode(&args); err != nil {
			return nil, err
		}
		return build(args.Slot), nil
	}
}

// scalar decodes a bare scalar argument, as in {attack: slash}, into v. It
// reports false for any other shape.
func scalar(a *asset.Args, v any) (bool, error) {
	n := a.Node()
	if n == nil || n.Kind != yaml.ScalarNode {
		return false, nil
	}
	return true, a.Decode(v)
}

func moveToTarget(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Slot         int      `yaml:"slot"`
		StopDistance *float64 `yaml:"stop_distance"`
		Speed        float64  `yaml:"speed"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	stop := DefaultArriveDistance
	if args.StopDistance != nil {
		stop = *args.StopDistance
	}
	if stop < 0 || args.Speed < 0 {
		return nil, a.Invalid("stop_distance and speed must not be negative")
	}
	return MoveToTarget{Slot: args.Slot, StopDistance: stop, Speed: args.Speed}, nil
}

func flee(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Slot  int     `yaml:"slot"`
		Speed float64 `yaml:"speed"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.Speed < 0 {
		return nil, a.Invalid("speed must not be negative")
	}
	return Flee{Slot: args.Slot, Speed: args.Speed}, nil
}

func wanderArgs(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Radius       float64     `yaml:"radius"`
		ObstacleMask asset.Names `yaml:"obstacle_mask"`
		Arrive       *float64    `yaml:"arrive"`
		Speed        float64     `yaml:"speed"`
		Attempts     int         `yaml:"attempts"`
	}
	if ok, err := scalar(a, &args.Radius); err != nil {
		return nil, err
	} else if !ok {
		if err := a.Decode(&args); err != nil {
			return nil, err
		}
	}
	if args.Radius <= 0 {
		return nil, a.Invalid("radius must be positive")
	}
	mask, err := a.Mask(args.ObstacleMask)
	if err != nil {
		return nil, err
	}
	arrive := DefaultArriveDistance
	if args.Arrive != nil {
		arrive = *args.Arrive
	}
	return Wander{Radius: args.Radius, ObstacleMask: mask, Arrive: arrive, Speed: args.Speed, Attempts: args.Attempts}, nil
}

func patrolArgs(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Points []yaml.Node `yaml:"points"`
		Arrive *float64    `yaml:"arrive"`
		Speed  float64     `yaml:"speed"`
		Loop   bool        `yaml:"loop"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if len(args.Points) == 0 {
		return nil, a.Invalid("points are required")
	}
	pts := make([]cp.Vector, 0, len(args.Points))
	for i := range args.Points {
		v, err := decodeVector(&args.Points[i])
		if err != nil {
			return nil, a.Invalid("points[%d]: %v", i, err)
		}
		pts = append(pts, v)
	}
	arrive := DefaultArriveDistance
	if args.Arrive != nil {
		arrive = *args.Arrive
	}
	return Patrol{Points: pts, Arrive: arrive, Speed: args.Speed, Loop: args.Loop}, nil
}

func attackArgs(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Ability string `yaml:"ability"`
		Slot    int    `yaml:"slot"`
		Face    *bool  `yaml:"face"`
	}
	if ok, err := scalar(a, &args.Ability); err != nil {
		return nil, err
	} else if !ok {
		if err := a.Decode(&args); err != nil {
			return nil, err
		}
	}
	if args.Ability == "" {
		return nil, a.Invalid("ability is required")
	}
	face := true
	if args.Face != nil {
		face = *args.Face
	}
	return Attack{Ability: args.Ability, Slot: args.Slot, Face: face}, nil
}

func changeWeapon(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Weapon string `yaml:"weapon"`
	}
	if ok, err := scalar(a, &args.Weapon); err != nil {
		return nil, err
	} else if !ok {
		if err := a.Decode(&args); err != nil {
			return nil, err
		}
	}
	return ChangeWeapon{Weapon: args.Weapon}, nil
}

func animatorParam(kind ParamKind) asset.ActionFactory {
	return func(a *asset.Args) (fsm.ActionConfig, error) {
		var args struct {
			Param string    `yaml:"param"`
			Value yaml.Node `yaml:"value"`
		}
		if ok, err := scalar(a, &args.Param); err != nil {
			return nil, err
		} else if !ok {
			if err := a.Decode(&args); err != nil {
				return nil, err
			}
		}
		if args.Param == "" {
			return nil, a.Invalid("param is required")
		}
		c := AnimatorParam{Kind: kind, Param: args.Param}
		var err error
		switch {
		case kind == ParamTrigger:
		case args.Value.Kind == 0:
			return nil, a.Invalid("value is required")
		case kind == ParamBool:
			err = args.Value.Decode(&c.Bool)
		case kind == ParamFloat:
			err = args.Value.Decode(&c.Float)
		case kind == ParamInt:
			err = args.Value.Decode(&c.Int)
		}
		if err != nil {
			return nil, a.Invalid("value: %v", err)
		}
		return c, nil
	}
}

func animatorOverrideArgs(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Controller string `yaml:"controller"`
	}
	if ok, err := scalar(a, &args.Controller); err != nil {
		return nil, err
	} else if !ok {
		if err := a.Decode(&args); err != nil {
			return nil, err
		}
	}
	if args.Controller == "" {
		return nil, a.Invalid("controller is required")
	}
	return AnimatorOverride{Controller: args.Controller}, nil
}

func fieldOfViewArgs(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		ViewAngle    float64 `yaml:"view_angle"`
		ViewDistance float64 `yaml:"view_distance"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.ViewAngle <= 0 || args.ViewDistance <= 0 {
		return nil, a.Invalid("view_angle and view_distance must be positive")
	}
	return FieldOfView{ViewAngle: args.ViewAngle, ViewDistance: args.ViewDistance}, nil
}

var valueKinds = map[string]ValueKind{
	"bool": KindBool, "float": KindFloat, "int": KindInt, "string": KindString,
	"vector": KindVector, "vector3": KindVector3, "remove": KindRemove,
}

func setBlackboard(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Key   string    `yaml:"key"`
		Type  string    `yaml:"type"`
		Value yaml.Node `yaml:"value"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	key, err := a.RequireKey("key", args.Key)
	if err != nil {
		return nil, err
	}
	v, err := parseValue(strings.ToLower(args.Type), &args.Value)
	if err != nil {
		return nil, a.Invalid("value: %v", err)
	}
	return SetBlackboard{Key: key, Value: v}, nil
}

// parseValue decodes n as typ, inferring the type from the YAML node when
// typ is empty.
func parseValue(typ string, n *yaml.Node) (Value, error) {
	if typ == "" {
		if n.Kind == 0 {
			return Value{}, fmt.Errorf("missing value")
		}
		typ = inferType(n)
	}
	kind, ok := valueKinds[typ]
	if !ok {
		return Value{}, fmt.Errorf("unknown type %q", typ)
	}
	v := Value{Kind: kind}
	if kind != KindRemove && n.Kind == 0 {
		return v, fmt.Errorf("missing value")
	}
	var err error
	switch kind {
	case KindBool:
		err = n.Decode(&v.Bool)
	case KindFloat:
		err = n.Decode(&v.Float)
	case KindInt:
		err = n.Decode(&v.Int)
	case KindString:
		err = n.Decode(&v.String)
	case KindVector:
		v.Vector, err = decodeVector(n)
	case KindVector3:
		v.Vec3, err = decodeVec3(n)
	}
	return v, err
}

func inferType(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!bool":
			return "bool"
		case "!!int":
			return "int"
		case "!!float":
			return "float"
		default:
			return "string"
		}
	case yaml.SequenceNode:
		if len(n.Content) == 3 {
			return "vector3"
		}
		return "vector"
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == "z" {
				return "vector3"
			}
		}
		return "vector"
	}
	return ""
}

// decodeVector accepts [x, y] or {x: .., y: ..}.
func decodeVector(n *yaml.Node) (cp.Vector, error) {
	if n.Kind == yaml.SequenceNode {
		var xy []float64
		if err := n.Decode(&xy); err != nil {
			return cp.Vector{}, err
		}
		if len(xy) != 2 {
			return cp.Vector{}, fmt.Errorf("line %d: want [x, y], got %d numbers", n.Line, len(xy))
		}
		return cp.Vector{X: xy[0], Y: xy[1]}, nil
	}
	var p struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	}
	if err := n.Decode(&p); err != nil {
		return cp.Vector{}, err
	}
	return cp.Vector{X: p.X, Y: p.Y}, nil
}

func decodeVec3(n *yaml.Node) (common.Vec3, error) {
	if n.Kind == yaml.SequenceNode {
		var xyz []float64
		if err := n.Decode(&xyz); err != nil {
			return common.Vec3{}, err
		}
		if len(xyz) != 3 {
			return common.Vec3{}, fmt.Errorf("line %d: want [x, y, z], got %d numbers", n.Line, len(xyz))
		}
		return common.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
	}
	var v common.Vec3
	err := n.Decode(&v)
	return v, err
}

func rememberTargetPosition(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Slot int    `yaml:"slot"`
		Key  string `yaml:"key"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	key, err := a.RequireKey("key", args.Key)
	if err != nil {
		return nil, err
	}
	return RememberTargetPosition{Slot: args.Slot, Key: key}, nil
}

func logArgs(a *asset.Args) (fsm.ActionConfig, error) {
	var args struct {
		Message string         `yaml:"message"`
		Level   string         `yaml:"level"`
		Fields  map[string]any `yaml:"fields"`
	}
	if ok, err := scalar(a, &args.Message); err != nil {
		return nil, err
	} else if !ok {
		if err := a.Decode(&args); err != nil {
			return nil, err
		}
	}
	level := logrus.InfoLevel
	if args.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(args.Level); err != nil {
			return nil, a.Invalid("%v", err)
		}
	}
	return Log{Message: args.Message, Level: level, Fields: logrus.Fields(args.Fields)}, nil
}

func scriptArgs(a *asset.Args) (fsm.ActionConfig, error) {
	p, params, err := script.Load(a)
	if err != nil {
		return nil, err
	}
	if !p.HasPerform() {
		return nil, a.Invalid("script %s has no perform hook", p.Name())
	}
	return script.ActionConfig{Program: p, Params: params}, nil
}
