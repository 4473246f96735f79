package analysis

import (
	"context"
	"fmt"

	"github.com/kderr/varlint/internal/config"
	"github.com/kderr/varlint/internal/graph"
	"github.com/kderr/varlint/internal/render"
	"github.com/kderr/varlint/internal/violation"
)

// Pipeline wires report handling behind an analysis task: an optional HTML
// rendering task plus the mandatory violation-collection task feeding the
// shared sink.
type Pipeline struct {
	registry      *graph.Registry
	renderer      *render.Renderer
	parser        *violation.Parser
	tool          string
	toolClasspath []string
}

// NewPipeline wires a pipeline to the build graph registry.
func NewPipeline(registry *graph.Registry, cfg *config.Config) (*Pipeline, error) {
	if registry == nil {
		return nil, fmt.Errorf("analysis: pipeline requires a registry")
	}
	if cfg == nil {
		return nil, fmt.Errorf("analysis: pipeline requires a configuration")
	}
	return &Pipeline{
		registry:      registry,
		renderer:      render.NewRenderer(),
		parser:        violation.NewParser(),
		tool:          cfg.Tool.Name,
		toolClasspath: cfg.Tool.Classpath,
	}, nil
}

// Wire registers the report tasks for one analysis task and returns the
// collection task. With HTML enabled the chain is analysis -> html -> collect,
// which keeps the collection task from reading the XML report while the
// renderer still depends on it. With HTML disabled, collect depends on the
// analysis task directly. The collection task produces no artifact of its
// own; its contract is "ran to completion, sink updated".
func (p *Pipeline) Wire(at *AnalysisTask, htmlEnabled bool, sink *violation.Sink) (*graph.Task, error) {
	if at == nil || at.Task == nil {
		return nil, fmt.Errorf("analysis: pipeline requires a configured analysis task")
	}
	if sink == nil {
		return nil, fmt.Errorf("analysis: pipeline requires a violation sink")
	}

	collectDep := at.Task.Name()
	if htmlEnabled {
		htmlPath := render.HTMLPath(at.XMLReport)
		htmlTask, err := p.registry.Register(
			HTMLTaskName(at.Name()),
			fmt.Sprintf("renders the HTML report for %s", at.Name()),
			func(ctx context.Context) error {
				return p.renderer.Render(ctx, at.XMLReport, htmlPath, p.toolClasspath)
			},
		)
		if err != nil {
			return nil, err
		}
		htmlTask.DependsOn(at.Task.Name())
		collectDep = htmlTask.Name()
	}

	variantName := at.Variant.Name
	xmlReport := at.XMLReport
	collectTask, err := p.registry.Register(
		CollectTaskName(at.Name()),
		fmt.Sprintf("collects violations from %s", at.Name()),
		func(ctx context.Context) error {
			records, err := p.parser.Parse(ctx, xmlReport, p.tool, variantName)
			if err != nil {
				return err
			}
			sink.Append(records...)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	collectTask.DependsOn(collectDep)
	return collectTask, nil
}
