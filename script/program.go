// Package script runs tengo scripts as decisions and actions. A script
// defines any of decide, perform, on_enter and on_exit; each is called with
// an engine map bound to the running machine and a per-instance state map.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

var (
	ErrNoDecide  = errors.New("script: decide is not defined")
	ErrNoPerform = errors.New("script: perform is not defined")
)

// Modules are the stdlib modules scripts may import. os is left out.
var Modules = []string{"math", "text", "times", "rand", "fmt", "json", "base64", "hex", "enum"}

const (
	hookDecide  = "decide"
	hookPerform = "perform"
	hookEnter   = "on_enter"
	hookExit    = "on_exit"
)

// Program is a compiled script. Instances clone it so every machine keeps
// its own globals.
type Program struct {
	name     string
	compiled *tengo.Compiled
	hooks    map[string]bool
}

// Compile checks which hooks src defines and appends the dispatch that
// routes each phase to its hook.
func Compile(name string, src []byte) (*Program, error) {
	scan := tengo.NewScript(src)
	scan.SetImports(stdlib.GetModuleMap(Modules...))
	scanned, err := scan.Compile()
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	if err := runTopLevel(scanned); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	hooks := map[string]bool{}
	var dispatch strings.Builder
	for _, h := range []string{hookDecide, hookPerform, hookEnter, hookExit} {
		if !scanned.IsDefined(h) {
			continue
		}
		hooks[h] = true
		if dispatch.Len() > 0 {
			dispatch.WriteString(" else ")
		}
		if h == hookDecide {
			fmt.Fprintf(&dispatch, "if __phase == %q {\n\t__result = %s(__engine, __state)\n}", h, h)
		} else {
			fmt.Fprintf(&dispatch, "if __phase == %q {\n\t%s(__engine, __state)\n}", h, h)
		}
	}

	full := string(src) + "\n" + dispatch.String() + "\n"
	s := tengo.NewScript([]byte(full))
	for _, g := range []struct {
		name  string
		value any
	}{
		{"__phase", ""},
		{"__engine", map[string]any{}},
		{"__state", map[string]any{}},
		{"__result", false},
	} {
		if err := s.Add(g.name, g.value); err != nil {
			return nil, fmt.Errorf("script %s: global %s: %w", name, g.name, err)
		}
	}
	s.SetImports(stdlib.GetModuleMap(Modules...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	return &Program{name: name, compiled: compiled, hooks: hooks}, nil
}

func (p *Program) Name() string { return p.name }

func (p *Program) HasDecide() bool { return p.hooks[hookDecide] }

func (p *Program) HasPerform() bool { return p.hooks[hookPerform] }

// Instance returns a runtime with its own globals and state map.
func (p *Program) Instance(params map[string]any) *Instance {
	return &Instance{
		program:  p,
		compiled: p.compiled.Clone(),
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		params:   params,
	}
}

func runTopLevel(c *tengo.Compiled) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Run()
}
