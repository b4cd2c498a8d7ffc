package actions

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/common"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func compile(t *testing.T, src string) (*asset.Blueprint, error) {
	t.Helper()
	spec, err := asset.ParseSpec([]byte(src))
	require.NoError(t, err)
	layers, err := perception.NewLayers("actors", "walls")
	require.NoError(t, err)
	r := asset.NewRegistry()
	Register(r)
	log, _ := test.NewNullLogger()
	return asset.Compile(spec, asset.Env{Registry: r, Layers: layers, Logger: log})
}

func TestRegisterCompilesEveryKind(t *testing.T) {
	bp, err := compile(t, `
name: everything
initial: a
keys: [alert, home, last_seen, mood, hp, ammo, spot]
states:
  - name: a
    on_enter:
      - {animator_trigger: walk}
      - {animator_bool: {param: moving, value: true}}
      - {animator_float: {param: speed, value: 1.5}}
      - {animator_int: {param: stance, value: 2}}
      - {animator_override: enraged}
      - {field_of_view: {view_angle: 90, view_distance: 8}}
      - {set_blackboard: {key: alert, value: true}}
      - {set_blackboard: {key: hp, value: 10.5}}
      - {set_blackboard: {key: ammo, value: 3}}
      - {set_blackboard: {key: mood, value: calm}}
      - {set_blackboard: {key: home, value: [1, 2]}}
      - {set_blackboard: {key: spot, value: {x: 1, y: 2, z: 3}}}
      - {set_blackboard: {key: alert, type: remove}}
    on_update:
      - {move_to_target: {slot: 1, stop_distance: 2, speed: 3}}
      - {flee: {slot: 0}}
      - face_target
      - stop
      - {wander: 4}
      - {wander: {radius: 5, obstacle_mask: walls, arrive: 0.5}}
      - {patrol: {points: [[0, 0], {x: 3, y: 0}], loop: true}}
      - {attack: slash}
      - {attack: {ability: bite, slot: 2, face: false}}
      - change_weapon
      - {change_weapon: bow}
      - {remember_target_position: {slot: 0, key: last_seen}}
      - {log: hello}
      - {log: {message: warn me, level: warn, fields: {n: 1}}}
      - {script: {source: "perform := func(e, s) { e.move(1, 0) }"}}
    on_exit:
      - clear_target
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, bp.StateNames())
}

func TestRegisterRejectsBadArgs(t *testing.T) {
	tests := []struct {
		name string
		node string
		want error
	}{
		{"slot out of range", `{move_to_target: {slot: 4}}`, asset.ErrSlotOutOfRange},
		{"remember out of range", `{remember_target_position: {slot: 9, key: hp}}`, asset.ErrSlotOutOfRange},
		{"unknown layer", `{wander: {radius: 2, obstacle_mask: lava}}`, asset.ErrUnknownLayer},
		{"undeclared key", `{set_blackboard: {key: nope, value: 1}}`, asset.ErrUnknownKey},
		{"missing value", `{set_blackboard: {key: hp}}`, asset.ErrInvalidArgs},
		{"bad type", `{set_blackboard: {key: hp, type: color, value: red}}`, asset.ErrInvalidArgs},
		{"no radius", `wander`, asset.ErrInvalidArgs},
		{"no points", `{patrol: {loop: true}}`, asset.ErrInvalidArgs},
		{"bad point", `{patrol: {points: [[1, 2, 3]]}}`, asset.ErrInvalidArgs},
		{"animator without value", `{animator_bool: {param: moving}}`, asset.ErrInvalidArgs},
		{"bad level", `{log: {message: x, level: loud}}`, asset.ErrInvalidArgs},
		{"script without perform", `{script: {source: "decide := func(e, s) { return true }"}}`, asset.ErrInvalidArgs},
		{"missing script", `{script: {name: nowhere}}`, asset.ErrInvalidArgs},
		{"unknown kind", `dance`, asset.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, `
name: bad
initial: a
keys: [hp]
states:
  - name: a
    on_update: [`+tt.node+`]
`)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseValueInfersType(t *testing.T) {
	tests := []struct {
		src  string
		want Value
	}{
		{`true`, Value{Kind: KindBool, Bool: true}},
		{`3`, Value{Kind: KindInt, Int: 3}},
		{`2.5`, Value{Kind: KindFloat, Float: 2.5}},
		{`hello`, Value{Kind: KindString, String: "hello"}},
		{`[1, 2]`, Value{Kind: KindVector, Vector: cp.Vector{X: 1, Y: 2}}},
		{`{x: 1, y: 2}`, Value{Kind: KindVector, Vector: cp.Vector{X: 1, Y: 2}}},
		{`[1, 2, 3]`, Value{Kind: KindVector3, Vec3: common.Vec3{X: 1, Y: 2, Z: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			var doc yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(tt.src), &doc))
			got, err := parseValue("", doc.Content[0])
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`4`), &doc))
	got, err := parseValue("float", doc.Content[0])
	require.NoError(t, err)
	assert.Equal(t, Value{Kind: KindFloat, Float: 4}, got)
}
