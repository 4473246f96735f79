package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func noop(context.Context) error { return nil }

func TestRegisterDuplicateFailsFast(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register("spotbugsDebug", "analysis", noop); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := reg.Register("spotbugsDebug", "analysis", noop); err == nil {
		t.Fatal("duplicate registration must fail")
	}
}

func TestRegisterRequiresNameAndAction(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register("", "x", noop); err == nil {
		t.Fatal("empty name must fail")
	}
	if _, err := reg.Register("x", "x", nil); err == nil {
		t.Fatal("nil action must fail")
	}
}

func TestDependsOnDeduplicatesAndIgnoresSelf(t *testing.T) {
	reg := NewRegistry()
	task, _ := reg.Register("analyze", "", noop)
	reg.Register("compile", "", noop)
	task.DependsOn("compile", "compile", "analyze", "")
	deps := task.Dependencies()
	if len(deps) != 1 || deps[0] != "compile" {
		t.Fatalf("unexpected deps: %v", deps)
	}
}

func TestRunExecutesInDependencyOrder(t *testing.T) {
	reg := NewRegistry()
	var mu sync.Mutex
	var order []string
	record := func(name string) Action {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}
	compile, _ := reg.Register("compile", "", record("compile"))
	_ = compile
	analyze, _ := reg.Register("analyze", "", record("analyze"))
	analyze.DependsOn("compile")
	collect, _ := reg.Register("collect", "", record("collect"))
	collect.DependsOn("analyze")

	runner, err := NewRunner(reg, WithMaxParallel(1))
	if err != nil {
		t.Fatal(err)
	}
	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.OK() {
		t.Fatalf("unexpected failures: %v", result.Failed())
	}
	want := []string{"compile", "analyze", "collect"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Fatalf("order %v, want %v", order, want)
	}
}

func TestRunFailureSkipsDependentsOnly(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("compile failed")
	reg.Register("compileDebug", "", func(context.Context) error { return boom })
	reg.Register("compileRelease", "", noop)
	debug, _ := reg.Register("spotbugsDebug", "", noop)
	debug.DependsOn("compileDebug")
	collectDebug, _ := reg.Register("collectSpotbugsDebugViolations", "", noop)
	collectDebug.DependsOn("spotbugsDebug")
	release, _ := reg.Register("spotbugsRelease", "", noop)
	release.DependsOn("compileRelease")

	runner, _ := NewRunner(reg)
	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Tasks["compileDebug"].Status; got != StatusFailed {
		t.Fatalf("compileDebug status %s", got)
	}
	if got := result.Tasks["spotbugsDebug"].Status; got != StatusSkipped {
		t.Fatalf("spotbugsDebug status %s", got)
	}
	if got := result.Tasks["collectSpotbugsDebugViolations"].Status; got != StatusSkipped {
		t.Fatalf("collect status %s", got)
	}
	if got := result.Tasks["spotbugsRelease"].Status; got != StatusDone {
		t.Fatalf("independent branch must still run, got %s", got)
	}
}

func TestRunDetectsCycle(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.Register("a", "", noop)
	b, _ := reg.Register("b", "", noop)
	a.DependsOn("b")
	b.DependsOn("a")
	runner, _ := NewRunner(reg)
	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestRunRejectsUnknownDependency(t *testing.T) {
	reg := NewRegistry()
	task, _ := reg.Register("analyze", "", noop)
	task.DependsOn("compileMissing")
	runner, _ := NewRunner(reg)
	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected unknown-dependency error")
	}
}

func TestRunTargetsRestrictToClosure(t *testing.T) {
	reg := NewRegistry()
	var mu sync.Mutex
	ran := map[string]bool{}
	record := func(name string) Action {
		return func(context.Context) error {
			mu.Lock()
			ran[name] = true
			mu.Unlock()
			return nil
		}
	}
	reg.Register("compile", "", record("compile"))
	analyze, _ := reg.Register("analyze", "", record("analyze"))
	analyze.DependsOn("compile")
	reg.Register("unrelated", "", record("unrelated"))

	runner, _ := NewRunner(reg)
	result, err := runner.Run(context.Background(), "analyze")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ran["compile"] || !ran["analyze"] {
		t.Fatal("target closure must include dependencies")
	}
	if ran["unrelated"] {
		t.Fatal("tasks outside the closure must not run")
	}
	if _, ok := result.Tasks["unrelated"]; ok {
		t.Fatal("result must not report unselected tasks")
	}
}

func TestRunEmitsEventsInSchedulerOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register("only", "", noop)
	var events []Event
	runner, _ := NewRunner(reg, WithObserver(func(e Event) { events = append(events, e) }))
	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected running+done events, got %d", len(events))
	}
	if events[0].Status != StatusRunning || events[1].Status != StatusDone {
		t.Fatalf("unexpected event sequence: %v %v", events[0].Status, events[1].Status)
	}
	if events[0].RunID != result.RunID {
		t.Fatal("events must carry the run ID")
	}
}

func TestRunHonorsCancelledContext(t *testing.T) {
	reg := NewRegistry()
	reg.Register("never", "", func(context.Context) error {
		t.Error("action must not run under a cancelled context")
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner, _ := NewRunner(reg)
	result, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Tasks["never"].Status; got != StatusFailed {
		t.Fatalf("expected failed status under cancellation, got %s", got)
	}
}
