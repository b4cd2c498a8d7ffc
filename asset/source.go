package asset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//go:embed fsm/*.yaml
var defaultAssets embed.FS

//go:embed scripts/*.tengo
var defaultScripts embed.FS

const (
	assetDir  = "fsm"
	scriptDir = "scripts"
)

// Source reads assets from Dir first and falls back to the embedded
// defaults. Dir mirrors the embedded layout: fsm/<name>.yaml and
// scripts/<name>.tengo. An empty Dir only serves the embedded files.
type Source struct {
	Dir string
}

// Load returns the bytes of the named asset.
func (s Source) Load(name string) ([]byte, error) {
	clean := cleanAssetPath(name)
	if data, err := s.readDisk(clean); err == nil {
		return data, nil
	}
	data, err := defaultAssets.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("asset: load %s: %w", name, err)
	}
	return data, nil
}

// LoadSpec loads and parses the named asset.
func (s Source) LoadSpec(name string) (*Spec, error) {
	data, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, fmt.Errorf("asset: %s: %w", name, err)
	}
	return spec, nil
}

// LoadScript returns the source of the named tengo script.
func (s Source) LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := s.readDisk(clean); err == nil {
		return data, nil
	}
	data, err := defaultScripts.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("asset: load script %s: %w", name, err)
	}
	return data, nil
}

// ModTime reports the disk modification time of the named asset.
func (s Source) ModTime(name string) (time.Time, bool) {
	if s.Dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(s.diskPath(cleanAssetPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// List returns every asset name available on disk or embedded, sorted.
func (s Source) List() ([]string, error) {
	seen := map[string]bool{}
	entries, err := fs.ReadDir(defaultAssets, assetDir)
	if err != nil {
		return nil, fmt.Errorf("asset: list embedded: %w", err)
	}
	for _, e := range entries {
		if isSpecFile(e.Name()) {
			seen[AssetName(e.Name())] = true
		}
	}
	if s.Dir != "" {
		disk, err := os.ReadDir(filepath.Join(s.Dir, assetDir))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("asset: list %s: %w", s.Dir, err)
		}
		for _, e := range disk {
			if !e.IsDir() && isSpecFile(e.Name()) {
				seen[AssetName(e.Name())] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// Dirs returns the disk directories a Watcher should observe.
func (s Source) Dirs() []string {
	if s.Dir == "" {
		return nil
	}
	return []string{filepath.Join(s.Dir, assetDir), filepath.Join(s.Dir, scriptDir)}
}

func (s Source) readDisk(clean string) ([]byte, error) {
	if s.Dir == "" {
		return nil, fs.ErrNotExist
	}
	return os.ReadFile(s.diskPath(clean))
}

func (s Source) diskPath(clean string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(clean))
}

// AssetName turns a file name or path into the asset name used by caches:
// "fsm/grunt.yaml" and "/tmp/x/grunt.yml" are both "grunt".
func AssetName(p string) string {
	base := path.Base(filepath.ToSlash(p))
	return strings.TrimSuffix(base, path.Ext(base))
}

func cleanAssetPath(name string) string {
	if name == "" {
		return ""
	}
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, assetDir+"/"); ok {
		s = after
	}
	if !isSpecFile(s) {
		s += ".yaml"
	}
	return assetDir + "/" + s
}

func cleanScriptPath(name string) string {
	if name == "" {
		return ""
	}
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, scriptDir+"/"); ok {
		s = after
	}
	if !isScriptFile(s) {
		s += ".tengo"
	}
	return scriptDir + "/" + s
}
