// Package variant models the buildable units an analysis run is scheduled
// over. Each variant owns its source roots, compiled output directories, and
// the compile task the analysis must wait on. Variants come from the build
// model and are read-only to the orchestrator.
package variant

import "fmt"

// Platform carries the SDK information a platform build flavor needs on its
// auxiliary classpath. Plain source-set variants leave it nil.
type Platform struct {
	// Home is the SDK installation root used to probe for the base archive.
	Home string `yaml:"home,omitempty"`
	// BaseArchive points directly at the platform's base library archive.
	// When set it takes precedence over probing Home.
	BaseArchive string `yaml:"baseArchive,omitempty"`
}

// Variant describes one source set or build flavor requiring its own analysis
// run.
type Variant struct {
	Name        string    `yaml:"name"`
	SourceRoots []string  `yaml:"sourceRoots"`
	OutputDirs  []string  `yaml:"outputDirs"`
	Classpath   []string  `yaml:"classpath,omitempty"`
	CompileTask string    `yaml:"compileTask"`
	Platform    *Platform `yaml:"platform,omitempty"`
}

// IsPlatform reports whether this variant is a platform build flavor and
// therefore needs the base archive on its auxiliary classpath.
func (v Variant) IsPlatform() bool {
	return v.Platform != nil
}

// Validate ensures the variant is self-consistent.
func (v Variant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("variant: name is required")
	}
	if len(v.SourceRoots) == 0 {
		return fmt.Errorf("variant %s: at least one source root is required", v.Name)
	}
	if len(v.OutputDirs) == 0 {
		return fmt.Errorf("variant %s: at least one output directory is required", v.Name)
	}
	if v.CompileTask == "" {
		return fmt.Errorf("variant %s: compile task is required", v.Name)
	}
	if v.Platform != nil && v.Platform.Home == "" && v.Platform.BaseArchive == "" {
		return fmt.Errorf("variant %s: platform block needs home or baseArchive", v.Name)
	}
	return nil
}

// Clone returns a deep copy of the variant.
func (v Variant) Clone() Variant {
	clone := v
	clone.SourceRoots = cloneStrings(v.SourceRoots)
	clone.OutputDirs = cloneStrings(v.OutputDirs)
	clone.Classpath = cloneStrings(v.Classpath)
	if v.Platform != nil {
		p := *v.Platform
		clone.Platform = &p
	}
	return clone
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
