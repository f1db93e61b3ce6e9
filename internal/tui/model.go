// Package tui follows a running sweep in a bubbletea dashboard: overall
// progress, one row per strategy and dataset, and host load.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/hedgesweep/internal/errors"
	"github.com/agbru/hedgesweep/internal/format"
	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/sweep"
	"github.com/agbru/hedgesweep/internal/sysmon"
)

const (
	tickInterval     = 500 * time.Millisecond
	sparklineSamples = 16
	progressWidth    = 30
	// chromeLines is every line of the view outside the row table.
	chromeLines = 8
	minRows     = 3
)

// Session describes the sweep shown in the header.
type Session struct {
	RunID   string
	Version string
	Axes    sweep.Axes
	Workers int
}

// Dispatch runs the sweep with the dashboard's progress reporter.
type Dispatch func(ctx context.Context, progress orchestration.ProgressReporter) (orchestration.ResultSet, error)

// TaskDoneMsg carries one finished task and the aggregate progress.
type TaskDoneMsg struct {
	Result   orchestration.TaskResult
	Progress orchestration.AggregatedProgress
}

// ProgressDoneMsg is sent once the progress channel is closed.
type ProgressDoneMsg struct{}

// SweepDoneMsg carries the outcome of the sweep.
type SweepDoneMsg struct {
	Results orchestration.ResultSet
	Err     error
}

// TickMsg drives the elapsed timer and host sampling.
type TickMsg time.Time

// SysStatsMsg carries a host sample.
type SysStatsMsg sysmon.Stats

type rowKey struct {
	strategy hedging.Strategy
	dataset  string
}

// row aggregates the tasks of one strategy and dataset.
type row struct {
	strategy  hedging.Strategy
	dataset   string
	expected  int
	completed int
	failed    int
	rmseSum   float64
	durations *RingBuffer
}

func (r *row) meanRMSE() (float64, bool) {
	ok := r.completed - r.failed
	if ok == 0 {
		return 0, false
	}
	return r.rmseSum / float64(ok), true
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	session Session
	cancel  context.CancelFunc
	ref     *programRef
	keys    KeyMap
	help    help.Model

	rows  []*row
	index map[rowKey]int

	progress  orchestration.AggregatedProgress
	host      sysmon.Stats
	startTime time.Time
	endTime   time.Time
	done      bool
	results   int
	err       error

	offset        int
	width, height int
}

// NewModel lays out one row per strategy and dataset of the session's grid.
// cancel is called when the user quits.
func NewModel(session Session, cancel context.CancelFunc) Model {
	perRow := len(session.Axes.PortfolioSizes) * len(session.Axes.Schedules)
	m := Model{
		session:   session,
		cancel:    cancel,
		ref:       &programRef{},
		keys:      DefaultKeyMap(),
		help:      help.New(),
		index:     map[rowKey]int{},
		progress:  orchestration.AggregatedProgress{Total: session.Axes.Size()},
		startTime: time.Now(),
	}
	for _, s := range session.Axes.Strategies {
		for _, d := range session.Axes.Datasets {
			m.index[rowKey{s, d}] = len(m.rows)
			m.rows = append(m.rows, &row{strategy: s, dataset: d, expected: perRow, durations: NewRingBuffer(sparklineSamples)})
		}
	}
	return m
}

// Init starts the ticker and the first host sample.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), sampleSysStatsCmd())
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.offset = min(m.offset, m.maxOffset())
		return m, nil

	case TaskDoneMsg:
		m.progress = msg.Progress
		if i, ok := m.index[rowKey{msg.Result.Task.Strategy, msg.Result.Task.Dataset}]; ok {
			r := m.rows[i]
			r.completed++
			if msg.Result.Err != nil {
				r.failed++
			} else {
				r.rmseSum += msg.Result.Stats.RMSE()
			}
			r.durations.Push(float64(msg.Result.Duration))
		}
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case SweepDoneMsg:
		m.done = true
		m.endTime = time.Now()
		m.results = len(msg.Results)
		m.err = msg.Err
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(sampleSysStatsCmd(), tickCmd())

	case SysStatsMsg:
		m.host = sysmon.Stats(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.offset = max(m.offset-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.offset = min(m.offset+1, m.maxOffset())
	case key.Matches(msg, m.keys.PageUp):
		m.offset = max(m.offset-m.visibleRows(), 0)
	case key.Matches(msg, m.keys.PageDown):
		m.offset = min(m.offset+m.visibleRows(), m.maxOffset())
	}
	return m, nil
}

// visibleRows is the number of table rows that fit the window. Before the
// first WindowSizeMsg every row is shown.
func (m Model) visibleRows() int {
	if m.height == 0 {
		return len(m.rows)
	}
	return max(m.height-chromeLines, minRows)
}

func (m Model) maxOffset() int {
	return max(len(m.rows)-m.visibleRows(), 0)
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.progressView())
	b.WriteString("\n\n")
	b.WriteString(m.tableView())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("host: cpu %.1f%%, memory %.1f%%", m.host.CPUPercent, m.host.MemPercent)))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) elapsed() time.Duration {
	if m.done {
		return m.endTime.Sub(m.startTime)
	}
	return time.Since(m.startTime)
}

func (m Model) headerView() string {
	title := "hedgesweep"
	if m.session.Version != "" && m.session.Version != "dev" {
		title += " " + m.session.Version
	}
	pipe := mutedStyle.Render(" | ")
	return titleStyle.Render(title) + pipe +
		mutedStyle.Render("run "+m.session.RunID) + pipe +
		fmt.Sprintf("%d tasks on %d workers", m.session.Axes.Size(), m.session.Workers) + pipe +
		accentStyle.Render("Elapsed: "+format.FormatDuration(m.elapsed()))
}

func (m Model) progressView() string {
	line := format.FormatProgressBarWithETA(m.progress.Fraction, m.progress.ETA, progressWidth) +
		fmt.Sprintf(" %d/%d", m.progress.Completed, m.progress.Total)
	if m.progress.Failed > 0 {
		line += " " + badStyle.Render(fmt.Sprintf("(%d failed)", m.progress.Failed))
	}
	return line
}

func (m Model) tableView() string {
	var b strings.Builder
	b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-11s %-12s %7s %6s %10s  %s", "Strategy", "Dataset", "Done", "Failed", "Mean RMSE", "Durations")))
	b.WriteString("\n")

	end := min(m.offset+m.visibleRows(), len(m.rows))
	for _, r := range m.rows[m.offset:end] {
		rmse := "-"
		if v, ok := r.meanRMSE(); ok {
			rmse = fmt.Sprintf("%.4f", v)
		}
		failed := fmt.Sprintf("%6d", r.failed)
		if r.failed > 0 {
			failed = badStyle.Render(failed)
		}
		done := fmt.Sprintf("%7s", fmt.Sprintf("%d/%d", r.completed, r.expected))
		if r.completed == r.expected && r.failed == 0 {
			done = goodStyle.Render(done)
		}
		fmt.Fprintf(&b, "%-11s %-12s %s %s %10s  %s\n",
			r.strategy, r.dataset, done, failed, rmse, accentStyle.Render(RenderSparkline(r.durations.Slice())))
	}
	if hidden := len(m.rows) - end; hidden > 0 || m.offset > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("rows %d-%d of %d", m.offset+1, end, len(m.rows))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusView() string {
	switch {
	case !m.done:
		return goodStyle.Render("Running...")
	case m.err != nil:
		return badStyle.Render("Sweep failed: " + m.err.Error())
	default:
		failed := m.progress.Failed
		return lipgloss.JoinHorizontal(lipgloss.Top,
			goodStyle.Render(fmt.Sprintf("Done: %d results, %d failed.", m.results, failed)),
			mutedStyle.Render(" Press q to exit."))
	}
}

// Run shows the dashboard while dispatch runs and returns the sweep outcome
// once the user quits. Quitting before the sweep ends cancels it; Run still
// waits for dispatch to return.
func Run(ctx context.Context, session Session, dispatch Dispatch, opts ...tea.ProgramOption) (orchestration.ResultSet, error) {
	initStyles()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(session, cancel)
	p := tea.NewProgram(model, opts...)
	model.ref.SetProgram(p)

	type outcome struct {
		results orchestration.ResultSet
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		presenter := &ResultPresenter{ref: model.ref}
		results, err := dispatch(ctx, &ProgressReporter{ref: model.ref})
		if err != nil {
			presenter.PresentFailure(err, results, io.Discard)
		} else {
			presenter.PresentResults(results, io.Discard)
		}
		done <- outcome{results, err}
	}()

	_, runErr := p.Run()
	cancel()
	o := <-done
	if runErr != nil {
		return o.results, apperrors.WrapError(runErr, "dashboard")
	}
	return o.results, o.err
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(sysmon.Sample(context.Background()))
	}
}
