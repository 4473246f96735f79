package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/kderr/varlint/internal/analysis"
	"github.com/kderr/varlint/internal/config"
	"github.com/kderr/varlint/internal/graph"
	"github.com/kderr/varlint/internal/logging"
	"github.com/kderr/varlint/internal/tui"
	"github.com/kderr/varlint/internal/variant"
	"github.com/kderr/varlint/internal/violation"
)

const defaultManifestName = "variants.yaml"

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

func main() {
	configPath := flag.String("config", config.DefaultConfigName, "path to the tool configuration")
	manifestPath := flag.String("manifest", defaultManifestName, "path to the variant manifest")
	noTUI := flag.Bool("no-tui", false, "print task events as plain lines instead of the live view")
	parallel := flag.Int("parallel", 0, "max tasks running at once (0 uses the configured value)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		die("load config: %v", err)
	}
	if *parallel > 0 {
		cfg.MaxParallel = *parallel
	}

	manifest, err := variant.LoadManifest(*manifestPath)
	if err != nil {
		die("load manifest: %v", err)
	}

	log, err := logging.New(cfg.ReportDir)
	if err != nil {
		die("open log: %v", err)
	}
	defer log.Close()

	registry := graph.NewRegistry()
	registerCompileTasks(registry, manifest.Variants)

	sink := violation.NewSink()
	coordinator, err := analysis.NewCoordinator(registry, cfg, sink, analysis.WithLogger(log))
	if err != nil {
		die("configure analysis: %v", err)
	}
	if err := coordinator.ConfigureAll(manifest.Variants); err != nil {
		die("configure analysis: %v", err)
	}

	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{coordinator.EvaluationTaskName()}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *graph.Result
	var runErr error
	if *noTUI {
		result, runErr = runPlain(ctx, registry, cfg, log, targets)
	} else {
		result, runErr = runWithMonitor(ctx, registry, cfg, log, targets)
	}
	if runErr != nil {
		die("run: %v", runErr)
	}

	printSummary(result, sink)
	if !result.OK() {
		os.Exit(1)
	}
}

// registerCompileTasks stands in for the host build's compilation steps; each
// task ensures the variant's output directories exist so artifact selection
// has something to walk.
func registerCompileTasks(registry *graph.Registry, variants []variant.Variant) {
	seen := map[string]struct{}{}
	for _, v := range variants {
		if _, ok := seen[v.CompileTask]; ok {
			continue
		}
		seen[v.CompileTask] = struct{}{}
		dirs := append([]string(nil), v.OutputDirs...)
		if _, err := registry.Register(v.CompileTask, fmt.Sprintf("prepares outputs for %s", v.Name), func(context.Context) error {
			for _, dir := range dirs {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("prepare %s: %w", dir, err)
				}
			}
			return nil
		}); err != nil {
			die("register compile task: %v", err)
		}
	}
}

func runPlain(ctx context.Context, registry *graph.Registry, cfg *config.Config, log *logging.Logger, targets []string) (*graph.Result, error) {
	observer := func(event graph.Event) {
		log.Printf("%s %s", event.Task, event.Status)
		switch event.Status {
		case graph.StatusDone:
			fmt.Printf("%s %s %s\n", okStyle.Render("✓"), event.Task, dimStyle.Render(event.Elapsed.String()))
		case graph.StatusFailed:
			fmt.Printf("%s %s: %v\n", failStyle.Render("✗"), event.Task, event.Err)
		case graph.StatusSkipped:
			fmt.Printf("%s %s\n", dimStyle.Render("- skipped"), event.Task)
		}
	}
	runner, err := graph.NewRunner(registry, graph.WithMaxParallel(cfg.MaxParallel), graph.WithObserver(observer))
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx, targets...)
}

func runWithMonitor(ctx context.Context, registry *graph.Registry, cfg *config.Config, log *logging.Logger, targets []string) (*graph.Result, error) {
	events := make(chan graph.Event, 16)
	observer := func(event graph.Event) {
		log.Printf("%s %s", event.Task, event.Status)
		events <- event
	}
	runner, err := graph.NewRunner(registry, graph.WithMaxParallel(cfg.MaxParallel), graph.WithObserver(observer))
	if err != nil {
		return nil, err
	}

	type runOutcome struct {
		result *graph.Result
		err    error
	}
	done := make(chan runOutcome, 1)
	go func() {
		result, err := runner.Run(ctx, targets...)
		close(events)
		done <- runOutcome{result: result, err: err}
	}()

	monitor := tui.NewMonitor(fmt.Sprintf("%s analysis", cfg.Tool.Name), registry.Names(), events)
	viewErr := tui.Run(monitor)
	// The view may exit before the run does; keep draining so the
	// observer never blocks the scheduler.
	for range events {
	}
	outcome := <-done
	if outcome.err != nil {
		return nil, outcome.err
	}
	return outcome.result, viewErr
}

func printSummary(result *graph.Result, sink *violation.Sink) {
	failed := result.Failed()
	if len(failed) == 0 {
		fmt.Println(okStyle.Render(fmt.Sprintf("all tasks passed · %d violation(s) collected", sink.Len())))
		return
	}
	fmt.Println(failStyle.Render(fmt.Sprintf("%d task(s) failed · %d violation(s) collected", len(failed), sink.Len())))
	for _, name := range failed {
		task := result.Tasks[name]
		fmt.Printf("  %s: %v\n", name, task.Err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
