package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
	StepSkipped                    // Skipped
)

// Step represents a single step in a multi-step operation
type Step struct {
	Number  int        // Step number (1-based)
	Name    string     // Step description
	Status  StepStatus // Current status
	Message string     // Optional status message (e.g., "3 users")
}

// Progress tracks a fixed list of steps and renders them with a bar
type Progress struct {
	Steps   []Step
	Percent float64 // 0.0 - 1.0
	Width   int
	bar     progress.Model
}

// NewProgress creates a progress tracker for the named steps
func NewProgress(names ...string) *Progress {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Number: i + 1, Name: name}
	}

	p := &Progress{Steps: steps}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the terminal width for responsive rendering
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20 // Leave room for percentage and step count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// UpdateStep updates a specific step's status and optional message
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	p.Steps[stepNumber-1].Status = status
	p.Steps[stepNumber-1].Message = message

	done := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete || s.Status == StepSkipped {
			done++
		}
	}
	p.Percent = float64(done) / float64(len(p.Steps))
}

// Render returns the bar followed by the step list
func (p *Progress) Render() string {
	total := len(p.Steps)
	lines := []string{
		lipgloss.NewStyle().PaddingLeft(2).Render(
			fmt.Sprintf("%s  %3.0f%%", p.bar.ViewAs(p.Percent), p.Percent*100)),
		"",
	}
	for _, step := range p.Steps {
		lines = append(lines, renderStepLine(step, total))
	}
	return strings.Join(lines, "\n")
}

func renderStepLine(step Step, total int) string {
	var marker string
	var style lipgloss.Style

	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  [%d/%d] ", step.Number, total))
	b.WriteString(style.Render(step.Name))

	// Align markers in one column
	padding := 40 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// StepCallback reports progress of one step
type StepCallback func(stepNumber int, status StepStatus, message string)

// Operation is the work a Runner executes. It returns the details shown in
// the success box.
type Operation func(ctx context.Context, onStep StepCallback) ([]Field, error)

// RunnerConfig describes a command run by a Runner
type RunnerConfig struct {
	Title     string
	Command   string
	Params    []Field
	StepNames []string
	// Hint maps a failure to troubleshooting tips. Optional.
	Hint   func(error) []string
	Output io.Writer // Default: os.Stdout
}

// Runner prints the header, the step list as steps finish, and the final
// result box of a non-interactive command.
type Runner struct {
	config   RunnerConfig
	progress *Progress
	out      io.Writer
	width    int
}

// NewRunner creates a runner for one command execution
func NewRunner(config RunnerConfig) *Runner {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	width := GetTerminalWidth()

	return &Runner{
		config:   config,
		progress: NewProgress(config.StepNames...).SetWidth(width),
		out:      out,
		width:    width,
	}
}

// Progress returns the runner's step tracker
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Run executes op and renders its outcome. The error from op is returned unchanged.
func (r *Runner) Run(ctx context.Context, op Operation) error {
	start := time.Now()

	_, _ = fmt.Fprintln(r.out, NewHeader(r.config.Title, r.config.Command, r.config.Params...).SetWidth(r.width).Render())
	_, _ = fmt.Fprintln(r.out)

	details, err := op(ctx, func(n int, status StepStatus, message string) {
		r.progress.UpdateStep(n, status, message)
		if status != StepRunning && n >= 1 && n <= len(r.progress.Steps) {
			_, _ = fmt.Fprintln(r.out, renderStepLine(r.progress.Steps[n-1], len(r.progress.Steps)))
		}
	})
	_, _ = fmt.Fprintln(r.out)

	elapsed := time.Since(start).Round(10 * time.Millisecond).String()
	if err != nil {
		var tips []string
		if r.config.Hint != nil {
			tips = r.config.Hint(err)
		}
		_, _ = fmt.Fprintln(r.out, NewFailureResult(r.config.Title+" failed", err, tips).SetWidth(r.width).Render())
		return err
	}

	result := NewSuccessResult(r.config.Title+" complete", details...).SetWidth(r.width)
	result.AddDetail("Duration", elapsed)
	_, _ = fmt.Fprintln(r.out, result.Render())
	return nil
}
