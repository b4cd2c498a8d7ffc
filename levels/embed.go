// Package levels holds the scenarios the simulator runs: static walls, the
// actors to spawn and how long to run them.
package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/milk9111/npcbrain/ecs/system"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

const (
	DefaultTicks = 200
	DefaultDt    = 1.0 / 30
)

type Level struct {
	Name   string             `yaml:"name"`
	Ticks  int                `yaml:"ticks"`
	Dt     float64            `yaml:"dt"`
	Walls  []system.WallSpec  `yaml:"walls"`
	Actors []system.ActorSpec `yaml:"actors"`
}

// Load reads name from disk when it is an existing file and from the
// embedded levels otherwise. The .yaml extension is optional.
func Load(name string) (*Level, error) {
	if data, err := os.ReadFile(name); err == nil {
		return Parse(data, strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	}
	return LoadLevelFromFS(name)
}

func LoadLevelFromFS(name string) (*Level, error) {
	clean := cleanLevelPath(name)
	data, err := fs.ReadFile(LevelsFS, clean)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data, strings.TrimSuffix(clean, ".yaml"))
}

// Parse decodes a level and fills in defaults. fallback names the level
// when the document does not.
func Parse(data []byte, fallback string) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if lvl.Name == "" {
		lvl.Name = fallback
	}
	if lvl.Ticks <= 0 {
		lvl.Ticks = DefaultTicks
	}
	if lvl.Dt <= 0 {
		lvl.Dt = DefaultDt
	}
	if len(lvl.Actors) == 0 {
		return nil, fmt.Errorf("level %s: no actors", lvl.Name)
	}
	return &lvl, nil
}

// Names lists the embedded levels.
func Names() []string {
	entries, err := fs.Glob(LevelsFS, "*.yaml")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e, ".yaml"))
	}
	sort.Strings(out)
	return out
}

func cleanLevelPath(name string) string {
	s := strings.TrimPrefix(path.Clean(strings.ReplaceAll(name, "\\", "/")), "levels/")
	if !strings.HasSuffix(s, ".yaml") {
		s += ".yaml"
	}
	return s
}
