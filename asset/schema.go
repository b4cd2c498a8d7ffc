package asset

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

func (Node) JSONSchema() *jsonschema.Schema {
	return nodeSchema(nil)
}

func (IntervalSpec) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "Re-evaluation interval in seconds: a number, {fixed: s} or {min: a, max: b}.",
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{Type: "object"},
		},
	}
}

func (Names) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

func nodeSchema(kinds []string) *jsonschema.Schema {
	name := &jsonschema.Schema{Type: "string"}
	object := &jsonschema.Schema{Type: "object"}
	if len(kinds) > 0 {
		enum := make([]any, len(kinds))
		quoted := make([]string, len(kinds))
		for i, k := range kinds {
			enum[i] = k
			quoted[i] = regexp.QuoteMeta(k)
		}
		name.Enum = enum
		object.PatternProperties = map[string]*jsonschema.Schema{
			"^(" + strings.Join(quoted, "|") + ")$": {},
		}
		object.AdditionalProperties = jsonschema.FalseSchema
	}
	return &jsonschema.Schema{
		Description: "A decision or action: a bare kind name or a single-key map of kind to arguments.",
		OneOf:       []*jsonschema.Schema{name, object},
	}
}

// Schema describes the asset format. Node kinds are restricted to those
// registered in r when r is non-nil.
func Schema(r *Registry) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		FieldNameTag:               "yaml",
		RequiredFromJSONSchemaTags: true,
	}
	s := reflector.Reflect(new(Spec))
	s.Title = "NPC state machine asset"
	s.Description = "States, transitions and the decisions and actions they run."

	if r != nil {
		kinds := append(r.DecisionKinds(), r.ActionKinds()...)
		sort.Strings(kinds)
		kinds = slices.Compact(kinds)
		if _, ok := s.Definitions["Node"]; ok {
			s.Definitions["Node"] = nodeSchema(kinds)
		}
	}
	return s
}
