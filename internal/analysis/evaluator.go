package analysis

import (
	"fmt"

	"github.com/kderr/varlint/internal/config"
	"github.com/kderr/varlint/internal/violation"
)

// Evaluator is the final pass/fail step over the shared sink. It runs as a
// single fan-in task after every variant's collection task has completed.
type Evaluator struct {
	tool       string
	thresholds config.EvaluationConfig
	sink       *violation.Sink
}

// NewEvaluator builds an evaluator over the shared sink.
func NewEvaluator(tool string, thresholds config.EvaluationConfig, sink *violation.Sink) *Evaluator {
	return &Evaluator{tool: tool, thresholds: thresholds, sink: sink}
}

// Evaluate checks the collected violations against the configured thresholds.
func (e *Evaluator) Evaluate() error {
	count := e.sink.Len()
	scope := "total"
	if e.thresholds.FailPriority > 0 {
		count = e.sink.CountAtOrAbove(e.thresholds.FailPriority)
		scope = fmt.Sprintf("priority <= %d", e.thresholds.FailPriority)
	}
	if count > e.thresholds.MaxViolations {
		return fmt.Errorf("analysis: %d %s violation(s) (%s) exceed the limit of %d",
			count, e.tool, scope, e.thresholds.MaxViolations)
	}
	return nil
}
