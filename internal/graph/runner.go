package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Status enumerates the lifecycle of a task within one run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Event reports a task state change to observers.
type Event struct {
	RunID   string
	Task    string
	Status  Status
	Err     error
	Elapsed time.Duration
	Time    time.Time
}

// Observer receives run events. Observers are invoked from the scheduling
// goroutine, never concurrently.
type Observer func(Event)

// TaskResult records the outcome of one task in a run.
type TaskResult struct {
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Result summarizes a completed run.
type Result struct {
	RunID string
	Tasks map[string]TaskResult
}

// Failed returns the names of failed tasks, sorted.
func (r *Result) Failed() []string {
	var failed []string
	for name, tr := range r.Tasks {
		if tr.Status == StatusFailed {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}

// OK reports whether every executed task completed.
func (r *Result) OK() bool {
	return len(r.Failed()) == 0
}

// Runner executes a registry's tasks in dependency order. Independent tasks
// run in parallel up to the configured limit; a failed task causes its
// transitive dependents to be skipped while unrelated branches continue.
type Runner struct {
	registry    *Registry
	maxParallel int
	observers   []Observer
	clock       func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithMaxParallel caps concurrent task execution. Values < 1 keep the default.
func WithMaxParallel(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 1 {
			r.maxParallel = n
		}
	}
}

// WithObserver subscribes an observer to run events.
func WithObserver(obs Observer) RunnerOption {
	return func(r *Runner) {
		if obs != nil {
			r.observers = append(r.observers, obs)
		}
	}
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewRunner wires a runner to a registry.
func NewRunner(registry *Registry, opts ...RunnerOption) (*Runner, error) {
	if registry == nil {
		return nil, fmt.Errorf("graph: runner requires a registry")
	}
	runner := &Runner{
		registry:    registry,
		maxParallel: 4,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

type completion struct {
	name    string
	err     error
	elapsed time.Duration
}

// Run executes the graph. With no targets every registered task runs;
// otherwise only the targets and their transitive dependencies run. The
// returned Result covers every selected task; Run itself errors only on
// graph-shape problems (unknown targets, missing edges, cycles).
func (r *Runner) Run(ctx context.Context, targets ...string) (*Result, error) {
	tasks := r.registry.snapshot()
	if err := validate(tasks); err != nil {
		return nil, err
	}
	selected, err := selectTasks(tasks, targets)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID: uuid.NewString(),
		Tasks: make(map[string]TaskResult, len(selected)),
	}
	if len(selected) == 0 {
		return result, nil
	}

	// unmet counts dependency edges still outstanding for each task.
	unmet := make(map[string]int, len(selected))
	dependents := make(map[string][]string, len(selected))
	for name := range selected {
		count := 0
		for _, dep := range tasks[name].Dependencies() {
			if _, ok := selected[dep]; ok {
				count++
				dependents[dep] = append(dependents[dep], name)
			}
		}
		unmet[name] = count
	}
	var ready []string
	for name, count := range unmet {
		if count == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var group errgroup.Group
	group.SetLimit(r.maxParallel)
	completions := make(chan completion, len(selected))
	remaining := len(selected)

	dispatch := func() {
		for len(ready) > 0 {
			name := ready[0]
			ready = ready[1:]
			task := tasks[name]
			if err := ctx.Err(); err != nil {
				completions <- completion{name: name, err: err}
				continue
			}
			r.emit(Event{RunID: result.RunID, Task: name, Status: StatusRunning, Time: r.clock()})
			group.Go(func() error {
				started := r.clock()
				err := task.action(ctx)
				completions <- completion{name: name, err: err, elapsed: r.clock().Sub(started)}
				return nil
			})
		}
	}

	skip := func(name string, cause error) {
		queue := []string{name}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, dependent := range dependents[current] {
				if _, done := result.Tasks[dependent]; done {
					continue
				}
				result.Tasks[dependent] = TaskResult{Status: StatusSkipped, Err: cause}
				r.emit(Event{RunID: result.RunID, Task: dependent, Status: StatusSkipped, Err: cause, Time: r.clock()})
				remaining--
				queue = append(queue, dependent)
			}
		}
	}

	dispatch()
	for remaining > 0 {
		c := <-completions
		remaining--
		if c.err != nil {
			result.Tasks[c.name] = TaskResult{Status: StatusFailed, Err: c.err, Elapsed: c.elapsed}
			r.emit(Event{RunID: result.RunID, Task: c.name, Status: StatusFailed, Err: c.err, Elapsed: c.elapsed, Time: r.clock()})
			skip(c.name, fmt.Errorf("graph: dependency %s failed: %w", c.name, c.err))
		} else {
			result.Tasks[c.name] = TaskResult{Status: StatusDone, Elapsed: c.elapsed}
			r.emit(Event{RunID: result.RunID, Task: c.name, Status: StatusDone, Elapsed: c.elapsed, Time: r.clock()})
			for _, dependent := range dependents[c.name] {
				if _, done := result.Tasks[dependent]; done {
					continue
				}
				unmet[dependent]--
				if unmet[dependent] == 0 {
					ready = append(ready, dependent)
				}
			}
			sort.Strings(ready)
		}
		dispatch()
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) emit(event Event) {
	for _, obs := range r.observers {
		obs(event)
	}
}

// selectTasks resolves the run scope: all tasks, or the transitive dependency
// closure of the requested targets.
func selectTasks(tasks map[string]*Task, targets []string) (map[string]struct{}, error) {
	selected := make(map[string]struct{}, len(tasks))
	if len(targets) == 0 {
		for name := range tasks {
			selected[name] = struct{}{}
		}
		return selected, nil
	}
	var include func(name string) error
	include = func(name string) error {
		if _, ok := selected[name]; ok {
			return nil
		}
		task, ok := tasks[name]
		if !ok {
			return fmt.Errorf("graph: unknown task %s", name)
		}
		selected[name] = struct{}{}
		for _, dep := range task.Dependencies() {
			if err := include(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, target := range targets {
		if err := include(target); err != nil {
			return nil, err
		}
	}
	return selected, nil
}
