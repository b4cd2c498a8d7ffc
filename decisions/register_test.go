package decisions

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
target_slots: 2
keys: [seen, alert, hp, ammo, mood]
states:
  - name: a
    transitions:
      - when:
          - always
          - {distance: {slot: 1, distance: 3, mode: "<="}}
          - {detect_in_radius: {radius: 4, mask: actors, tag: player, key: seen}}
          - {cone_detect: {view_distance: 8, view_angle: 90, target_mask: [actors], obstacle_mask: walls}}
          - {line_of_sight: {slot: 0, view_distance: 8}}
          - {time_in_state: {min: 1, max: 2}}
          - {time_in_state: {seconds: 3, mode: "<"}}
          - has_target
          - {target_dead: {slot: 1}}
          - owner_dead
          - {blackboard_bool: {key: alert}}
          - {blackboard_float: {key: hp, mode: lt, value: 20}}
          - {blackboard_int: {key: ammo, value: 0}}
          - {blackboard_string: {key: mood, value: calm, negate: true}}
          - {blackboard_has: seen}
          - {chance: 0.25}
          - {ability_ready: slash}
          - {or: [never, {not: owner_dead}]}
          - {and: [always, always]}
          - {script: {source: "decide := func(e, s) { return true }"}}
        to: b
  - name: b
    transitions:
      - when: [never]
        to: a
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, bp.StateNames())
}

func TestRegisterRejectsBadArgs(t *testing.T) {
	tests := []struct {
		name string
		node string
		want error
	}{
		{"slot out of range", `{has_target: {slot: 4}}`, asset.ErrSlotOutOfRange},
		{"nested slot out of range", `{or: [{has_target: {slot: 7}}]}`, asset.ErrSlotOutOfRange},
		{"unknown layer", `{detect_in_radius: {radius: 2, mask: [water]}}`, asset.ErrUnknownLayer},
		{"undeclared key", `{blackboard_bool: {key: nope}}`, asset.ErrUnknownKey},
		{"missing key", `{blackboard_int: {value: 1}}`, asset.ErrInvalidArgs},
		{"bad mode", `{distance: {distance: 1, mode: about}}`, asset.ErrInvalidArgs},
		{"negative radius", `{detect_in_radius: {radius: -1}}`, asset.ErrInvalidArgs},
		{"bad probability", `{chance: 2}`, asset.ErrInvalidArgs},
		{"inverted range", `{time_in_state: {min: 3, max: 1}}`, asset.ErrInvalidArgs},
		{"script without decide", `{script: {source: "perform := func(e, s) {}"}}`, asset.ErrInvalidArgs},
		{"unknown kind", `teleport`, asset.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, `
name: bad
initial: a
keys: [hp]
states:
  - name: a
    transitions:
      - when: [`+tt.node+`]
        to: a
`)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWaitResampledOnStateReentry(t *testing.T) {
	bp, err := compile(t, `
name: pacer
initial: wait
interval: 0.1
states:
  - name: wait
    transitions:
      - when: [{time_in_state: {min: 0.2, max: 2}}]
        to: go
  - name: go
    transitions:
      - when: [always]
        to: wait
`)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	owner := &actor{name: "pacer", fwd: cp.Vector{X: 1}}
	m, err := bp.Instantiate(owner, asset.Deps{Rand: rand.New(rand.NewSource(5)), Logger: log})
	require.NoError(t, err)

	st, ok := m.State("wait")
	require.True(t, ok)
	wait := st.Transitions[0].Decisions[0].(*timeInState)

	var durations []float64
	entered := true
	for i := 0; i < 400 && len(durations) < 4; i++ {
		if entered {
			require.False(t, math.IsNaN(wait.Duration()))
			durations = append(durations, wait.Duration())
			entered = false
		}
		m.Tick(0.1)
		if m.CurrentStateName() == "go" {
			assert.True(t, math.IsNaN(wait.Duration()), "reset on exit")
			m.Tick(0.1)
			require.Equal(t, "wait", m.CurrentStateName())
			entered = true
		}
	}
	require.Len(t, durations, 4)
	for _, d := range durations {
		assert.GreaterOrEqual(t, d, 0.2)
		assert.Less(t, d, 2.0)
	}
	assert.NotEqual(t, durations[0], durations[1])
	assert.NotEqual(t, durations[1], durations[2])
}

func TestScriptDecisionFromSource(t *testing.T) {
	bp, err := compile(t, `
name: scripted
initial: a
interval: 0.1
states:
  - name: a
    transitions:
      - when:
          - script:
              source: |
                decide := func(engine, state) {
                  return engine.time_in_state() > engine.params.after
                }
              params: {after: 0.25}
        to: b
  - name: b
`)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	m, err := bp.Instantiate(&actor{name: "s", fwd: cp.Vector{X: 1}}, asset.Deps{Logger: log})
	require.NoError(t, err)
	m.Tick(0.1)
	m.Tick(0.1)
	assert.Equal(t, "a", m.CurrentStateName())
	m.Tick(0.1)
	assert.Equal(t, "b", m.CurrentStateName())
}
