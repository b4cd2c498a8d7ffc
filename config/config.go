// Package config holds the engine settings shared by every machine a host
// runs: the perception layer table, slot and buffer sizes, the default
// re-evaluation interval and where assets are read from.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/milk9111/npcbrain/fsm"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid")

const (
	DefaultBufferSize  = 32
	DefaultBufferLimit = 1024
	DefaultInterval    = 0.2
)

// DefaultLayers is the layer table used when the file names none.
var DefaultLayers = []string{"actors", "player", "walls"}

type Engine struct {
	Layers      []string `yaml:"layers"`
	TargetSlots int      `yaml:"target_slots"`
	Buffer      Buffer   `yaml:"buffer"`
	Interval    Interval `yaml:"interval"`
	AssetDir    string   `yaml:"asset_dir"`
	Watch       bool     `yaml:"watch"`
	LogLevel    string   `yaml:"log_level"`
}

// Buffer sizes the shared perception scratch buffer.
type Buffer struct {
	Size  int `yaml:"size"`
	Limit int `yaml:"limit"`
}

// Interval is the fallback for assets that leave interval out. Max of zero
// means a fixed interval of Min.
type Interval struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (iv *Interval) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		*iv = Interval{Min: f}
		return nil
	}
	type plain Interval
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*iv = Interval(p)
	return nil
}

func (iv Interval) FSM() fsm.Interval {
	if iv.Max <= iv.Min {
		return fsm.FixedInterval(iv.Min)
	}
	return fsm.RandomInterval(iv.Min, iv.Max)
}

// Default returns the settings used for anything a file leaves out.
func Default() Engine {
	return Engine{
		Layers:      append([]string(nil), DefaultLayers...),
		TargetSlots: fsm.DefaultTargetSlots,
		Buffer:      Buffer{Size: DefaultBufferSize, Limit: DefaultBufferLimit},
		Interval:    Interval{Min: DefaultInterval},
		LogLevel:    "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Engine, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Engine{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (Engine, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Engine{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if len(cfg.Layers) == 0 {
		cfg.Layers = append([]string(nil), DefaultLayers...)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting together.
func (e Engine) Validate() error {
	var errs []error
	if _, err := perception.NewLayers(e.Layers...); err != nil {
		errs = append(errs, fmt.Errorf("%w: layers: %w", ErrInvalid, err))
	}
	seen := map[string]bool{}
	for _, l := range e.Layers {
		key := strings.ToLower(strings.TrimSpace(l))
		if key == "" || seen[key] {
			errs = append(errs, fmt.Errorf("%w: layers: empty or duplicate name %q", ErrInvalid, l))
		}
		seen[key] = true
	}
	if e.TargetSlots < 0 {
		errs = append(errs, fmt.Errorf("%w: target_slots: %d", ErrInvalid, e.TargetSlots))
	}
	if e.Buffer.Size <= 0 {
		errs = append(errs, fmt.Errorf("%w: buffer.size must be positive", ErrInvalid))
	}
	if e.Buffer.Limit < e.Buffer.Size {
		errs = append(errs, fmt.Errorf("%w: buffer.limit %d below size %d", ErrInvalid, e.Buffer.Limit, e.Buffer.Size))
	}
	if e.Interval.Min < 0 || (e.Interval.Max != 0 && e.Interval.Max < e.Interval.Min) {
		errs = append(errs, fmt.Errorf("%w: interval: need 0 <= min <= max", ErrInvalid))
	}
	if e.Watch && e.AssetDir == "" {
		errs = append(errs, fmt.Errorf("%w: watch needs asset_dir", ErrInvalid))
	}
	if _, err := logrus.ParseLevel(e.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: log_level: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// LayerTable builds the perception layer table. Bits follow list order.
func (e Engine) LayerTable() (perception.Layers, error) {
	return perception.NewLayers(e.Layers...)
}

// Level parses LogLevel, falling back to info.
func (e Engine) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(e.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// SchedulerOptions sizes the scheduler's perception buffer.
func (e Engine) SchedulerOptions(log logrus.FieldLogger) fsm.SchedulerOptions {
	return fsm.SchedulerOptions{BufferSize: e.Buffer.Size, BufferLimit: e.Buffer.Limit, Logger: log}
}
