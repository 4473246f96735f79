// Package analysis configures one analysis run per build variant: the task
// factory narrows each run to the artifacts its matched sources produced, the
// report pipeline turns native XML reports into collected violations, and the
// coordinator wires everything into the build graph exactly once.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kderr/varlint/internal/artifact"
	"github.com/kderr/varlint/internal/config"
	"github.com/kderr/varlint/internal/graph"
	"github.com/kderr/varlint/internal/logging"
	"github.com/kderr/varlint/internal/pattern"
	"github.com/kderr/varlint/internal/sdk"
	"github.com/kderr/varlint/internal/variant"
	"github.com/kderr/varlint/internal/violation"
)

// AnalysisTask is one variant's configured analysis run plus the bindings the
// report pipeline needs.
type AnalysisTask struct {
	Task         *graph.Task
	Variant      variant.Variant
	XMLReport    string
	Classpath    []string
	AuxClasspath []string
	Artifacts    *artifact.Provider
}

// Name returns the derived task name (tool + camel-cased variant).
func (a *AnalysisTask) Name() string {
	return a.Task.Name()
}

// TaskFactory creates one analysis task per variant. The derived task name is
// the idempotency key: asking for the same variant again returns the existing
// task instead of registering a duplicate.
type TaskFactory struct {
	registry *graph.Registry
	cfg      *config.Config
	invoker  ToolInvoker
	filter   func(rel string) bool
	log      *logging.Logger
	created  map[string]*AnalysisTask
}

// FactoryOption customizes a TaskFactory.
type FactoryOption func(*TaskFactory)

// WithInvoker replaces the default subprocess invoker.
func WithInvoker(invoker ToolInvoker) FactoryOption {
	return func(f *TaskFactory) {
		if invoker != nil {
			f.invoker = invoker
		}
	}
}

// WithFactoryLogger attaches a logger for task-configuration diagnostics.
func WithFactoryLogger(log *logging.Logger) FactoryOption {
	return func(f *TaskFactory) {
		f.log = log
	}
}

// NewTaskFactory wires a factory to the build graph registry.
func NewTaskFactory(registry *graph.Registry, cfg *config.Config, opts ...FactoryOption) (*TaskFactory, error) {
	if registry == nil {
		return nil, fmt.Errorf("analysis: task factory requires a registry")
	}
	if cfg == nil {
		return nil, fmt.Errorf("analysis: task factory requires a configuration")
	}
	factory := &TaskFactory{
		registry: registry,
		cfg:      cfg,
		invoker:  &ExecInvoker{Command: cfg.Tool.Command},
		filter:   cfg.SourceMatcher(),
		created:  map[string]*AnalysisTask{},
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory, nil
}

// CreateOrGet returns the variant's analysis task, creating and registering
// it on first request. A platform variant whose base archive cannot be
// resolved fails here, at configuration time: classpath correctness for the
// analysis run cannot be guaranteed without it.
func (f *TaskFactory) CreateOrGet(v variant.Variant) (*AnalysisTask, error) {
	name := TaskName(f.cfg.Tool.Name, v.Name)
	if existing, ok := f.created[name]; ok {
		return existing, nil
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	var aux []string
	if v.IsPlatform() {
		archive, err := sdk.Locate(v)
		if err != nil {
			return nil, err
		}
		aux = []string{archive}
	}

	v = v.Clone()
	xmlReport := filepath.Join(f.cfg.ReportDir, ReportFileName(name))

	// Artifact selection is deferred until the task executes, after the
	// compile task has produced its output directories.
	provider := artifact.NewProvider(func() (artifact.Set, error) {
		matched, err := matchedSources(v.SourceRoots, f.filter)
		if err != nil {
			return artifact.Set{}, err
		}
		patterns := pattern.Resolve(matched, v.SourceRoots)
		return artifact.Select(v.OutputDirs, patterns)
	})

	at := &AnalysisTask{
		Variant:      v,
		XMLReport:    xmlReport,
		Classpath:    v.Classpath,
		AuxClasspath: aux,
		Artifacts:    provider,
	}
	task, err := f.registry.Register(name, fmt.Sprintf("runs %s on variant %s", f.cfg.Tool.Name, v.Name), f.analysisAction(at))
	if err != nil {
		return nil, err
	}
	task.DependsOn(v.CompileTask)
	at.Task = task
	f.created[name] = at
	return at, nil
}

func (f *TaskFactory) analysisAction(at *AnalysisTask) graph.Action {
	return func(ctx context.Context) error {
		set, err := at.Artifacts.Get()
		if err != nil {
			return fmt.Errorf("analysis: select artifacts for %s: %w", at.Name(), err)
		}
		if err := os.MkdirAll(filepath.Dir(at.XMLReport), 0o755); err != nil {
			return fmt.Errorf("analysis: ensure report dir: %w", err)
		}
		if set.Empty() {
			// No matching sources is a legitimate state; emit a clean report
			// so the collection task still has something to parse.
			f.log.Printf("%s: no matching artifacts, writing empty report", at.Name())
			return violation.WriteEmptyReport(ctx, at.XMLReport)
		}
		f.log.Printf("%s: analyzing %d artifact(s), fingerprint %s", at.Name(), set.Len(), set.Fingerprint())
		return f.invoker.Invoke(ctx, Invocation{
			Tool:         f.cfg.Tool.Name,
			Variant:      at.Variant.Name,
			Artifacts:    set.Files,
			SourceDirs:   at.Variant.SourceRoots,
			Classpath:    at.Classpath,
			AuxClasspath: at.AuxClasspath,
			OutputXML:    at.XMLReport,
		})
	}
}

// matchedSources walks the variant's source roots and returns the files the
// configured source filter admits. Roots that do not exist contribute
// nothing.
func matchedSources(roots []string, filter func(rel string) bool) ([]string, error) {
	var matched []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			if filter == nil || filter(filepath.ToSlash(rel)) {
				matched = append(matched, p)
			}
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("analysis: scan sources under %s: %w", root, err)
		}
	}
	sort.Strings(matched)
	return matched, nil
}
