package format

import (
	"fmt"
	"strings"
	"time"
)

// maxETA caps estimates produced from very few samples.
const maxETA = 24 * time.Hour

// ProgressWithETA tracks how many tasks of a sweep have finished and
// estimates the remaining time from the average completion rate so far.
// It is not safe for concurrent use; the progress reporter owns it.
type ProgressWithETA struct {
	total     int
	completed int
	startTime time.Time
	now       func() time.Time
}

// NewProgressWithETA starts tracking a sweep of total tasks.
func NewProgressWithETA(total int) *ProgressWithETA {
	return &ProgressWithETA{total: total, startTime: time.Now(), now: time.Now}
}

// Update records the number of finished tasks and returns the completed
// fraction and the estimated time remaining.
func (p *ProgressWithETA) Update(completed int) (float64, time.Duration) {
	p.completed = min(max(completed, 0), p.total)
	return p.Fraction(), p.GetETA()
}

// Fraction returns the completed share of the sweep, in [0, 1].
func (p *ProgressWithETA) Fraction() float64 {
	if p.total <= 0 {
		return 0
	}
	return float64(p.completed) / float64(p.total)
}

// GetETA returns the estimated remaining time, or 0 while no task finished.
func (p *ProgressWithETA) GetETA() time.Duration {
	if p.completed == 0 || p.completed >= p.total {
		return 0
	}
	perTask := float64(p.now().Sub(p.startTime)) / float64(p.completed)
	remaining := perTask * float64(p.total-p.completed)
	if remaining >= float64(maxETA) {
		return maxETA
	}
	return time.Duration(remaining)
}

// Elapsed returns the time since tracking started.
func (p *ProgressWithETA) Elapsed() time.Duration {
	return p.now().Sub(p.startTime)
}

// FormatETA renders an ETA compactly ("45s", "2m30s", "1h15m").
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h, m := int(eta.Hours()), int(eta.Minutes())%60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// FormatDuration renders a measured run or task time with a precision that
// suits its magnitude ("840µs", "12.5ms", "3.20s", "2m5s").
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d\u00b5s", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

// ProgressBar renders a bar of length cells, clamping progress to [0, 1].
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.0% ETA: 1m5s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), min(max(progress, 0), 1)*100, FormatETA(eta))
}

// FormatThroughput renders a task rate, e.g. "12.5 tasks/s".
func FormatThroughput(tasks int, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f tasks/s", float64(tasks)/elapsed.Seconds())
}
