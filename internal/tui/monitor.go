// Package tui renders a live view of a task graph run. It follows The Elm
// Architecture via bubbletea: runner events arrive as messages, Update folds
// them into the model, View draws the task board.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kderr/varlint/internal/graph"
)

var (
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	statusStyleDone  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	statusStyleFail  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	statusStyleSkip  = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	statusStyleRun   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	statusStyleIdle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	detailStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	summaryStyleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	summaryStyleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

type eventMsg graph.Event

type runClosedMsg struct{}

type taskRow struct {
	name    string
	status  graph.Status
	elapsed time.Duration
	err     error
}

// Monitor is the bubbletea model for one run. Events are consumed from a
// channel the runner observer feeds; the model quits once the channel closes.
type Monitor struct {
	title    string
	events   <-chan graph.Event
	order    []string
	rows     map[string]*taskRow
	spinner  spinner.Model
	progress progress.Model
	finished int
	closed   bool
	width    int
}

// NewMonitor builds a monitor over the named tasks. Names not in the initial
// set are added as their events arrive, so targets resolved by the runner
// still show up.
func NewMonitor(title string, taskNames []string, events <-chan graph.Event) *Monitor {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = statusStyleRun
	rows := make(map[string]*taskRow, len(taskNames))
	order := make([]string, 0, len(taskNames))
	for _, name := range taskNames {
		if _, ok := rows[name]; ok {
			continue
		}
		rows[name] = &taskRow{name: name, status: graph.StatusPending}
		order = append(order, name)
	}
	sort.Strings(order)
	return &Monitor{
		title:    title,
		events:   events,
		order:    order,
		rows:     rows,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// ChannelObserver adapts a channel into a runner observer. The runner invokes
// observers from its scheduling goroutine, so the channel must be drained for
// the run to make progress; the monitor's event loop does exactly that.
func ChannelObserver(ch chan<- graph.Event) graph.Observer {
	return func(event graph.Event) {
		ch <- event
	}
}

func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *Monitor) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return runClosedMsg{}
		}
		return eventMsg(event)
	}
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.apply(graph.Event(msg))
		return m, m.waitForEvent()
	case runClosedMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Monitor) apply(event graph.Event) {
	row, ok := m.rows[event.Task]
	if !ok {
		row = &taskRow{name: event.Task}
		m.rows[event.Task] = row
		m.order = append(m.order, event.Task)
		sort.Strings(m.order)
	}
	row.status = event.Status
	row.err = event.Err
	row.elapsed = event.Elapsed
	switch event.Status {
	case graph.StatusDone, graph.StatusFailed, graph.StatusSkipped:
		m.finished++
	}
}

// Completion reports finished tasks over all known tasks, in [0, 1].
func (m *Monitor) Completion() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	return float64(m.finished) / float64(len(m.rows))
}

func (m *Monitor) View() string {
	lines := []string{titleStyle.Render(m.title), ""}
	for _, name := range m.order {
		lines = append(lines, m.renderRow(m.rows[name]))
	}
	lines = append(lines, "", m.progress.ViewAs(m.Completion()))
	if m.closed {
		lines = append(lines, "", m.renderSummary())
	}
	return strings.Join(lines, "\n")
}

func (m *Monitor) renderRow(row *taskRow) string {
	var marker string
	switch row.status {
	case graph.StatusRunning:
		marker = m.spinner.View()
	case graph.StatusDone:
		marker = statusStyleDone.Render("✓")
	case graph.StatusFailed:
		marker = statusStyleFail.Render("✗")
	case graph.StatusSkipped:
		marker = statusStyleSkip.Render("-")
	default:
		marker = statusStyleIdle.Render("·")
	}
	line := fmt.Sprintf("%s %s", marker, row.name)
	if row.status == graph.StatusDone && row.elapsed > 0 {
		line += detailStyle.Render(fmt.Sprintf("  %s", row.elapsed.Round(time.Millisecond)))
	}
	if row.err != nil {
		line += statusStyleFail.Render(fmt.Sprintf("  %v", row.err))
	}
	return line
}

func (m *Monitor) renderSummary() string {
	var done, failed, skipped int
	for _, row := range m.rows {
		switch row.status {
		case graph.StatusDone:
			done++
		case graph.StatusFailed:
			failed++
		case graph.StatusSkipped:
			skipped++
		}
	}
	text := fmt.Sprintf("%d done, %d failed, %d skipped", done, failed, skipped)
	if failed > 0 {
		return summaryStyleFail.Render(text)
	}
	return summaryStyleOK.Render(text)
}

// Run drives the monitor until the event channel closes or the user quits.
func Run(m *Monitor) error {
	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
