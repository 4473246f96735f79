package analysis

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Invocation carries everything one analysis run needs: the narrowed artifact
// set, the variant's compile classpath, the auxiliary classpath, and where
// the XML report must land. XML output is always requested; the tool's own
// HTML renderer is never enabled.
type Invocation struct {
	Tool         string
	Variant      string
	Artifacts    []string
	SourceDirs   []string
	Classpath    []string
	AuxClasspath []string
	OutputXML    string
}

// ToolInvoker runs the external analysis tool. The algorithm itself belongs
// to the tool; this interface is the orchestrator's only view of it.
type ToolInvoker interface {
	Invoke(ctx context.Context, inv Invocation) error
}

// ExecInvoker launches the tool as a subprocess in its conventional
// command-line form.
type ExecInvoker struct {
	// Command is the tool launcher, e.g. ["spotbugs", "-textui"]. Arguments
	// derived from the invocation are appended after it.
	Command []string
}

// Invoke runs the configured command. Tool failures propagate as task
// failures; the orchestrator never retries them.
func (e *ExecInvoker) Invoke(ctx context.Context, inv Invocation) error {
	if len(e.Command) == 0 {
		return fmt.Errorf("analysis: no tool command configured for %s", inv.Tool)
	}
	args := append([]string{}, e.Command[1:]...)
	args = append(args, "-xml:withMessages", "-output", inv.OutputXML)
	if len(inv.Classpath) > 0 || len(inv.AuxClasspath) > 0 {
		aux := append(append([]string{}, inv.Classpath...), inv.AuxClasspath...)
		args = append(args, "-auxclasspath", strings.Join(aux, string(filepath.ListSeparator)))
	}
	if len(inv.SourceDirs) > 0 {
		args = append(args, "-sourcepath", strings.Join(inv.SourceDirs, string(filepath.ListSeparator)))
	}
	args = append(args, inv.Artifacts...)

	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("analysis: %s failed for variant %s: %w: %s", inv.Tool, inv.Variant, err, strings.TrimSpace(string(out)))
	}
	return nil
}
