// Package graph is the build graph the orchestrator configures: named tasks
// with explicit dependency edges, registered once during graph construction
// and executed later by the runner. Dependency edges are the only ordering
// mechanism; tasks never synchronize with each other directly.
package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Action is the work a task performs when it executes.
type Action func(ctx context.Context) error

// Task is one schedulable unit in the graph. Tasks are created through the
// registry and identified by name; the name doubles as the idempotency key
// for configurators that must not configure the same unit twice.
type Task struct {
	name        string
	description string
	action      Action

	mu      sync.Mutex
	deps    []string
	depsSet map[string]struct{}
}

// Name returns the task's unique name.
func (t *Task) Name() string {
	return t.name
}

// Description returns the human-readable summary shown by observers.
func (t *Task) Description() string {
	return t.description
}

// DependsOn declares ordering edges: the task must not run before every named
// dependency has completed. Duplicate declarations collapse to one edge.
func (t *Task) DependsOn(names ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range names {
		if name == "" || name == t.name {
			continue
		}
		if _, ok := t.depsSet[name]; ok {
			continue
		}
		t.depsSet[name] = struct{}{}
		t.deps = append(t.deps, name)
	}
}

// Dependencies returns the declared dependency names in declaration order.
func (t *Task) Dependencies() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.deps))
	copy(out, t.deps)
	return out
}

// Registry maintains the tasks of one build graph.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: map[string]*Task{}}
}

// Register installs a task. Registering a name twice is a configuration-logic
// error and fails fast rather than silently reconfiguring the existing task.
func (r *Registry) Register(name, description string, action Action) (*Task, error) {
	if name == "" {
		return nil, fmt.Errorf("graph: task name is required")
	}
	if action == nil {
		return nil, fmt.Errorf("graph: action is required for %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[name]; exists {
		return nil, fmt.Errorf("graph: task %s already registered", name)
	}
	task := &Task{
		name:        name,
		description: description,
		action:      action,
		depsSet:     map[string]struct{}{},
	}
	r.tasks[name] = task
	r.order = append(r.order, name)
	return task, nil
}

// Lookup retrieves a task by name.
func (r *Registry) Lookup(name string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[name]
	return task, ok
}

// Names returns the registered task names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// snapshot copies the current task map for a run.
func (r *Registry) snapshot() map[string]*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Task, len(r.tasks))
	for name, task := range r.tasks {
		out[name] = task
	}
	return out
}

// validate checks that every declared edge targets a registered task and that
// the graph is acyclic.
func validate(tasks map[string]*Task) error {
	for name, task := range tasks {
		for _, dep := range task.Dependencies() {
			if _, ok := tasks[dep]; !ok {
				return fmt.Errorf("graph: task %s depends on unregistered task %s", name, dep)
			}
		}
	}
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(tasks))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("graph: dependency cycle involving %s", name)
		case visited:
			return nil
		}
		state[name] = visiting
		for _, dep := range tasks[name].Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = visited
		return nil
	}
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
