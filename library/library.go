// Package library ties the asset compiler to the built-in decision and
// action kinds and keeps compiled blueprints cached by asset name.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/milk9111/npcbrain/actions"
	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/config"
	"github.com/milk9111/npcbrain/decisions"
	"github.com/milk9111/npcbrain/perception"
	"github.com/sirupsen/logrus"
)

// NewRegistry returns a registry holding every built-in kind.
func NewRegistry() *asset.Registry {
	r := asset.NewRegistry()
	decisions.Register(r)
	actions.Register(r)
	return r
}

// Library compiles assets on first use and serves the cached blueprint
// afterwards. It is not safe for concurrent use; hosts call it from the
// goroutine that ticks their machines.
type Library struct {
	env      asset.Env
	cache    map[string]*asset.Blueprint
	watcher  *asset.Watcher
	log      logrus.FieldLogger
	onReload func(name string, bp *asset.Blueprint)
}

type Options struct {
	Registry *asset.Registry
	Logger   logrus.FieldLogger
	// OnReload runs after a watched asset compiled again.
	OnReload func(name string, bp *asset.Blueprint)
}

// New builds a library from the engine settings. A nil registry means
// NewRegistry.
func New(cfg config.Engine, opts Options) (*Library, error) {
	layers, err := cfg.LayerTable()
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	return NewWithLayers(layers, cfg, opts), nil
}

// NewWithLayers is New with an already built layer table.
func NewWithLayers(layers perception.Layers, cfg config.Engine, opts Options) *Library {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := opts.Registry
	if r == nil {
		r = NewRegistry()
	}
	return &Library{
		env: asset.Env{
			Registry:    r,
			Layers:      layers,
			Source:      asset.Source{Dir: cfg.AssetDir},
			Logger:      log,
			TargetSlots: cfg.TargetSlots,
			Interval:    cfg.Interval.FSM(),
		},
		cache:    make(map[string]*asset.Blueprint),
		log:      log.WithField("component", "library"),
		onReload: opts.OnReload,
	}
}

func (l *Library) Registry() *asset.Registry { return l.env.Registry }

func (l *Library) Layers() perception.Layers { return l.env.Layers }

func (l *Library) Source() asset.Source { return l.env.Source }

// Blueprint returns the compiled asset, compiling it on first use.
func (l *Library) Blueprint(name string) (*asset.Blueprint, error) {
	key := asset.AssetName(name)
	if bp, ok := l.cache[key]; ok {
		return bp, nil
	}
	bp, err := l.compile(key)
	if err != nil {
		return nil, err
	}
	l.cache[key] = bp
	return bp, nil
}

// Preload compiles every available asset and reports all failures.
func (l *Library) Preload() error {
	names, err := l.env.Source.List()
	if err != nil {
		return err
	}
	var errs []error
	for _, n := range names {
		if _, err := l.Blueprint(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cached lists the names of compiled blueprints.
func (l *Library) Cached() []string {
	out := make([]string, 0, len(l.cache))
	for n := range l.cache {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Reload recompiles name. On failure the previous blueprint stays cached.
func (l *Library) Reload(name string) (*asset.Blueprint, error) {
	key := asset.AssetName(name)
	bp, err := l.compile(key)
	if err != nil {
		l.log.WithField("asset", key).WithError(err).Warn("reload failed, keeping previous blueprint")
		return nil, err
	}
	l.cache[key] = bp
	l.log.WithField("asset", key).Info("asset reloaded")
	if l.onReload != nil {
		l.onReload(key, bp)
	}
	return bp, nil
}

func (l *Library) compile(name string) (*asset.Blueprint, error) {
	spec, err := l.env.Source.LoadSpec(name)
	if err != nil {
		return nil, err
	}
	return asset.Compile(spec, l.env)
}

// Watch starts watching the asset directory. It is a no-op without one.
func (l *Library) Watch() error {
	dirs := l.env.Source.Dirs()
	if len(dirs) == 0 || l.watcher != nil {
		return nil
	}
	var existing []string
	for _, d := range dirs {
		if isDir(d) {
			existing = append(existing, d)
		}
	}
	w, err := asset.NewWatcher(existing...)
	if err != nil {
		return fmt.Errorf("library: watch: %w", err)
	}
	l.watcher = w
	return nil
}

// Poll applies pending file changes without blocking and returns the names
// of the assets that reloaded. Script changes recompile every cached asset
// since scripts are compiled into blueprints.
func (l *Library) Poll() []string {
	if l.watcher == nil {
		return nil
	}
	changed := map[string]bool{}
	scripts := false
	for drained := false; !drained; {
		select {
		case path, ok := <-l.watcher.Events:
			if !ok {
				drained = true
				break
			}
			if isScript(path) {
				scripts = true
				continue
			}
			changed[asset.AssetName(path)] = true
		case err, ok := <-l.watcher.Errors:
			if !ok {
				drained = true
				break
			}
			l.log.WithError(err).Warn("watcher error")
		default:
			drained = true
		}
	}
	if scripts {
		for n := range l.cache {
			changed[n] = true
		}
	}

	names := make([]string, 0, len(changed))
	for n := range changed {
		names = append(names, n)
	}
	sort.Strings(names)
	var reloaded []string
	for _, n := range names {
		if _, err := l.Reload(n); err == nil {
			reloaded = append(reloaded, n)
		}
	}
	return reloaded
}

func (l *Library) Close() error {
	if l.watcher == nil {
		return nil
	}
	err := l.watcher.Close()
	l.watcher = nil
	l.log.Debug("watcher stopped")
	return err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tengo")
}
