package variant

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest declares every variant the build model contributes. The host may
// hand groups to the coordinator in several calls (main variants, test
// variants, unit-test variants); one manifest document can hold them all.
type Manifest struct {
	Version  int       `yaml:"version"`
	Variants []Variant `yaml:"variants"`
}

// Validate checks every variant and rejects duplicate names, since the
// derived analysis task name must be unique per variant.
func (m Manifest) Validate() error {
	if len(m.Variants) == 0 {
		return fmt.Errorf("variant: manifest declares no variants")
	}
	seen := map[string]struct{}{}
	for idx, v := range m.Variants {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("variant: manifest entry[%d]: %w", idx, err)
		}
		if _, exists := seen[v.Name]; exists {
			return fmt.Errorf("variant: duplicate variant name %s", v.Name)
		}
		seen[v.Name] = struct{}{}
	}
	return nil
}

// LoadManifest reads and validates a manifest document. Relative source roots
// and output directories are resolved against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("variant: read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("variant: parse manifest %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range m.Variants {
		m.Variants[i].SourceRoots = resolvePaths(base, m.Variants[i].SourceRoots)
		m.Variants[i].OutputDirs = resolvePaths(base, m.Variants[i].OutputDirs)
		m.Variants[i].Classpath = resolvePaths(base, m.Variants[i].Classpath)
		if p := m.Variants[i].Platform; p != nil {
			if p.Home != "" && !filepath.IsAbs(p.Home) {
				p.Home = filepath.Join(base, p.Home)
			}
			if p.BaseArchive != "" && !filepath.IsAbs(p.BaseArchive) {
				p.BaseArchive = filepath.Join(base, p.BaseArchive)
			}
		}
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func resolvePaths(base string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
