package analysis

import (
	"context"
	"fmt"

	"github.com/kderr/varlint/internal/config"
	"github.com/kderr/varlint/internal/graph"
	"github.com/kderr/varlint/internal/logging"
	"github.com/kderr/varlint/internal/variant"
	"github.com/kderr/varlint/internal/violation"
)

// State tracks whether a coordinator instance has configured its variants.
// The machine only moves forward: UNCONFIGURED -> CONFIGURING -> CONFIGURED.
type State string

const (
	StateUnconfigured State = "unconfigured"
	StateConfiguring  State = "configuring"
	StateConfigured   State = "configured"
)

// Coordinator configures the per-variant analysis pipeline exactly once per
// instance and fans every collection task into the shared evaluation task.
// The host build lifecycle may invoke configuration hooks repeatedly; the
// state guard makes every call after the first a no-op.
type Coordinator struct {
	state      State
	factory    *TaskFactory
	pipeline   *Pipeline
	cfg        *config.Config
	sink       *violation.Sink
	evaluation *graph.Task
	log        *logging.Logger
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger attaches a logger for configuration diagnostics. The logger is
// also handed to the task factory.
func WithLogger(log *logging.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithCoordinatorInvoker overrides the tool invoker used by the factory.
func WithCoordinatorInvoker(invoker ToolInvoker) CoordinatorOption {
	return func(c *Coordinator) {
		if invoker != nil && c.factory != nil {
			c.factory.invoker = invoker
		}
	}
}

// NewCoordinator builds a coordinator over the shared registry and sink. The
// evaluation fan-in task is registered immediately so collection tasks have a
// stable anchor to attach to.
func NewCoordinator(registry *graph.Registry, cfg *config.Config, sink *violation.Sink, opts ...CoordinatorOption) (*Coordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("analysis: coordinator requires a configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("analysis: coordinator requires a violation sink")
	}
	factory, err := NewTaskFactory(registry, cfg)
	if err != nil {
		return nil, err
	}
	pipeline, err := NewPipeline(registry, cfg)
	if err != nil {
		return nil, err
	}
	evaluator := NewEvaluator(cfg.Tool.Name, cfg.Evaluation, sink)
	evaluation, err := registry.Register(
		EvaluateTaskName(cfg.Tool.Name),
		fmt.Sprintf("evaluates collected %s violations", cfg.Tool.Name),
		func(context.Context) error { return evaluator.Evaluate() },
	)
	if err != nil {
		return nil, err
	}
	coordinator := &Coordinator{
		state:      StateUnconfigured,
		factory:    factory,
		pipeline:   pipeline,
		cfg:        cfg,
		sink:       sink,
		evaluation: evaluation,
	}
	for _, opt := range opts {
		opt(coordinator)
	}
	coordinator.factory.log = coordinator.log
	return coordinator, nil
}

// State returns the coordinator's configuration state.
func (c *Coordinator) State() State {
	return c.state
}

// EvaluationTaskName returns the name of the shared fan-in task.
func (c *Coordinator) EvaluationTaskName() string {
	return c.evaluation.Name()
}

// ConfigureAll runs the per-variant configuration path for every variant:
// create the analysis task, wire the report pipeline, and register the
// collection task as a dependency of the evaluation task. The first call does
// the work; any later call is a no-op, whatever variants it carries. An error
// leaves the coordinator in CONFIGURING so a retry cannot register duplicate
// tasks.
func (c *Coordinator) ConfigureAll(variants []variant.Variant) error {
	if c.state != StateUnconfigured {
		return nil
	}
	c.state = StateConfiguring
	htmlEnabled := c.cfg.HTMLEnabled()
	for _, v := range variants {
		at, err := c.factory.CreateOrGet(v)
		if err != nil {
			return fmt.Errorf("analysis: configure variant %s: %w", v.Name, err)
		}
		collect, err := c.pipeline.Wire(at, htmlEnabled, c.sink)
		if err != nil {
			return fmt.Errorf("analysis: wire reports for variant %s: %w", v.Name, err)
		}
		c.evaluation.DependsOn(collect.Name())
		c.log.Printf("configured %s (html=%v, collect=%s)", at.Name(), htmlEnabled, collect.Name())
	}
	c.state = StateConfigured
	return nil
}
