package script

import (
	"github.com/milk9111/npcbrain/asset"
)

// Args names a script from the asset source, or carries it inline.
type Args struct {
	Name   string         `yaml:"name"`
	Source string         `yaml:"source"`
	Params map[string]any `yaml:"params"`
}

// Load compiles the script a node refers to, returning it with its params.
func Load(a *asset.Args) (*Program, map[string]any, error) {
	var args Args
	if n := a.Node(); n != nil && n.Value != "" {
		args.Name = n.Value
	} else if err := a.Decode(&args); err != nil {
		return nil, nil, err
	}
	src := []byte(args.Source)
	label := args.Name
	switch {
	case args.Name != "" && args.Source != "":
		return nil, nil, a.Invalid("name and source are exclusive")
	case args.Name != "":
		var err error
		if src, err = a.Script(args.Name); err != nil {
			return nil, nil, a.Invalid("%v", err)
		}
	case args.Source != "":
		label = "inline"
	default:
		return nil, nil, a.Invalid("name or source is required")
	}
	p, err := Compile(label, src)
	if err != nil {
		return nil, nil, a.Invalid("%v", err)
	}
	return p, args.Params, nil
}

