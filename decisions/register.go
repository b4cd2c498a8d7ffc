package decisions

import (
	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/script"
)

// Register adds every decision kind in this package to r.
func Register(r *asset.Registry) {
	r.RegisterDecision("always", func(*asset.Args) (fsm.DecisionConfig, error) { return Const{Value: true}, nil })
	r.RegisterDecision("never", func(*asset.Args) (fsm.DecisionConfig, error) { return Const{Value: false}, nil })
	r.RegisterDecision("distance", distance)
	r.RegisterDecision("detect_in_radius", detectInRadiusArgs)
	r.RegisterDecision("cone_detect", coneDetectArgs)
	r.RegisterDecision("line_of_sight", lineOfSight)
	r.RegisterDecision("time_in_state", timeInStateArgs)
	r.RegisterDecision("has_target", slotOnly(func(s int) fsm.DecisionConfig { return HasTarget{Slot: s} }))
	r.RegisterDecision("target_dead", slotOnly(func(s int) fsm.DecisionConfig { return TargetDead{Slot: s} }))
	r.RegisterDecision("owner_dead", func(*asset.Args) (fsm.DecisionConfig, error) { return OwnerDead{}, nil })
	r.RegisterDecision("blackboard_bool", blackboardBool)
	r.RegisterDecision("blackboard_float", blackboardFloat)
	r.RegisterDecision("blackboard_int", blackboardInt)
	r.RegisterDecision("blackboard_string", blackboardString)
	r.RegisterDecision("blackboard_has", blackboardHas)
	r.RegisterDecision("chance", chance)
	r.RegisterDecision("ability_ready", abilityReady)
	r.RegisterDecision("or", orArgs)
	r.RegisterDecision("and", andArgs)
	r.RegisterDecision("not", notArgs)
	r.RegisterDecision("script", scriptArgs)
}

func slotOnly(build func(slot int) fsm.DecisionConfig) asset.DecisionFactory {
	return func(a *asset.Args) (fsm.DecisionConfig, error) {
		var args struct {
			Slot int `yaml:"slot"`
		}
		if err := a.Decode(&args); err != nil {
			return nil, err
		}
		return build(args.Slot), nil
	}
}

func distance(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Slot      int      `yaml:"slot"`
		Distance  float64  `yaml:"distance"`
		Mode      string   `yaml:"mode"`
		Tolerance *float64 `yaml:"tolerance"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.Distance < 0 {
		return nil, a.Invalid("distance must not be negative")
	}
	mode, err := ParseComparison(args.Mode, Less)
	if err != nil {
		return nil, a.Invalid("%v", err)
	}
	tol := DefaultTolerance
	if args.Tolerance != nil {
		tol = *args.Tolerance
	}
	return Distance{Slot: args.Slot, Threshold: args.Distance, Mode: mode, Tolerance: tol}, nil
}

func detectInRadiusArgs(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Slot   int         `yaml:"slot"`
		Radius float64     `yaml:"radius"`
		Mask   asset.Names `yaml:"mask"`
		Tag    string      `yaml:"tag"`
		Key    string      `yaml:"key"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.Radius <= 0 {
		return nil, a.Invalid("radius must be positive")
	}
	mask, err := a.Mask(args.Mask)
	if err != nil {
		return nil, err
	}
	key, err := a.Key(args.Key)
	if err != nil {
		return nil, err
	}
	return DetectInRadius{Slot: args.Slot, Radius: args.Radius, Mask: mask, Tag: args.Tag, Key: key}, nil
}

func coneDetectArgs(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Slot         int         `yaml:"slot"`
		ViewDistance float64     `yaml:"view_distance"`
		ViewAngle    float64     `yaml:"view_angle"`
		TargetMask   asset.Names `yaml:"target_mask"`
		ObstacleMask asset.Names `yaml:"obstacle_mask"`
		AllowRefresh bool        `yaml:"allow_refresh"`
		Tag          string      `yaml:"tag"`
		Key          string      `yaml:"key"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.ViewDistance <= 0 {
		return nil, a.Invalid("view_distance must be positive")
	}
	if args.ViewAngle <= 0 || args.ViewAngle > 360 {
		return nil, a.Invalid("view_angle must be in (0, 360]")
	}
	targets, err := a.Mask(args.TargetMask)
	if err != nil {
		return nil, err
	}
	obstacles, err := a.Mask(args.ObstacleMask)
	if err != nil {
		return nil, err
	}
	key, err := a.Key(args.Key)
	if err != nil {
		return nil, err
	}
	return ConeDetect{
		Slot:         args.Slot,
		ViewDistance: args.ViewDistance,
		ViewAngle:    args.ViewAngle,
		TargetMask:   targets,
		ObstacleMask: obstacles,
		AllowRefresh: args.AllowRefresh,
		Tag:          args.Tag,
		Key:          key,
	}, nil
}

func lineOfSight(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Slot         int         `yaml:"slot"`
		ViewDistance float64     `yaml:"view_distance"`
		ViewAngle    *float64    `yaml:"view_angle"`
		ObstacleMask asset.Names `yaml:"obstacle_mask"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.ViewDistance <= 0 {
		return nil, a.Invalid("view_distance must be positive")
	}
	angle := 360.0
	if args.ViewAngle != nil {
		angle = *args.ViewAngle
	}
	obstacles, err := a.Mask(args.ObstacleMask)
	if err != nil {
		return nil, err
	}
	return LineOfSight{Slot: args.Slot, ViewDistance: args.ViewDistance, ViewAngle: angle, ObstacleMask: obstacles}, nil
}

func timeInStateArgs(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Seconds *float64 `yaml:"seconds"`
		Min     float64  `yaml:"min"`
		Max     float64  `yaml:"max"`
		Mode    string   `yaml:"mode"`
	}
	if n := a.Node(); n != nil && n.Value != "" {
		var s float64
		if err := a.Decode(&s); err != nil {
			return nil, err
		}
		args.Seconds = &s
	} else if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.Seconds != nil {
		args.Min, args.Max = *args.Seconds, *args.Seconds
	}
	if args.Min < 0 || args.Max < args.Min {
		return nil, a.Invalid("need 0 <= min <= max")
	}
	mode, err := ParseComparison(args.Mode, GreaterOrEqual)
	if err != nil {
		return nil, a.Invalid("%v", err)
	}
	return TimeInState{Min: args.Min, Max: args.Max, Mode: mode}, nil
}

func blackboardBool(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Key   string `yaml:"key"`
		Value *bool  `yaml:"value"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	key, err := a.RequireKey("key", args.Key)
	if err != nil {
		return nil, err
	}
	want := true
	if args.Value != nil {
		want = *args.Value
	}
	return BlackboardBool{Key: key, Value: want}, nil
}

func blackboardFloat(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Key       string   `yaml:"key"`
		Mode      string   `yaml:"mode"`
		Value     float64  `yaml:"value"`
		Tolerance *float64 `yaml:"tolerance"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	key, err := a.RequireKey("key", args.Key)
	if err != nil {
		return nil, err
	}
	mode, err := ParseComparison(args.Mode, Equal)
	if err != nil {
		return nil, a.Invalid("%v", err)
	}
	tol := common.Epsilon
	if args.Tolerance != nil {
		tol = *args.Tolerance
	}
	return BlackboardFloat{Key: key, Mode: mode, Value: args.Value, Tolerance: tol}, nil
}

func blackboardInt(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Key   string `yaml:"key"`
		Mode  string `yaml:"mode"`
		Value int    `yaml:"value"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	key, err := a.RequireKey("key", args.Key)
	if err != nil {
		return nil, err
	}
	mode, err := ParseComparison(args.Mode, Equal)
	if err != nil {
		return nil, a.Invalid("%v", err)
	}
	return BlackboardInt{Key: key, Mode: mode, Value: args.Value}, nil
}

func blackboardString(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Key    string `yaml:"key"`
		Value  string `yaml:"value"`
		Negate bool   `yaml:"negate"`
	}
	if err := a.Decode(&args); err != nil {
		return nil, err
	}
	key, err := a.RequireKey("key", args.Key)
	if err != nil {
		return nil, err
	}
	return BlackboardString{Key: key, Value: args.Value, Negate: args.Negate}, nil
}

func blackboardHas(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Key string `yaml:"key"`
	}
	if n := a.Node(); n != nil && n.Value != "" {
		args.Key = n.Value
	} else if err := a.Decode(&args); err != nil {
		return nil, err
	}
	key, err := a.RequireKey("key", args.Key)
	if err != nil {
		return nil, err
	}
	return BlackboardHas{Key: key}, nil
}

func chance(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		P float64 `yaml:"p"`
	}
	if n := a.Node(); n != nil && n.Value != "" {
		if err := a.Decode(&args.P); err != nil {
			return nil, err
		}
	} else if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.P < 0 || args.P > 1 {
		return nil, a.Invalid("p must be in [0, 1]")
	}
	return Chance{P: args.P}, nil
}

func abilityReady(a *asset.Args) (fsm.DecisionConfig, error) {
	var args struct {
		Ability string `yaml:"ability"`
	}
	if n := a.Node(); n != nil && n.Value != "" {
		args.Ability = n.Value
	} else if err := a.Decode(&args); err != nil {
		return nil, err
	}
	if args.Ability == "" {
		return nil, a.Invalid("ability is required")
	}
	return AbilityReady{Ability: args.Ability}, nil
}

func orArgs(a *asset.Args) (fsm.DecisionConfig, error) {
	var nodes []asset.Node
	if err := a.Decode(&nodes); err != nil {
		return nil, err
	}
	children, err := a.Decisions(nodes)
	if err != nil {
		return nil, err
	}
	return Or{Children: children}, nil
}

func andArgs(a *asset.Args) (fsm.DecisionConfig, error) {
	var nodes []asset.Node
	if err := a.Decode(&nodes); err != nil {
		return nil, err
	}
	children, err := a.Decisions(nodes)
	if err != nil {
		return nil, err
	}
	return And{Children: children}, nil
}

func notArgs(a *asset.Args) (fsm.DecisionConfig, error) {
	if a.Empty() {
		return Not{}, nil
	}
	var n asset.Node
	if err := a.Decode(&n); err != nil {
		return nil, err
	}
	child, err := a.Decision(n)
	if err != nil {
		return nil, err
	}
	return Not{Child: child}, nil
}

func scriptArgs(a *asset.Args) (fsm.DecisionConfig, error) {
	p, params, err := script.Load(a)
	if err != nil {
		return nil, err
	}
	if !p.HasDecide() {
		return nil, a.Invalid("script %s has no decide hook", p.Name())
	}
	return script.DecisionConfig{Program: p, Params: params}, nil
}
