// Package ui provides terminal output components for powerpack's
// non-interactive commands.
//
// Components render with Lipgloss and follow a "run once and exit"
// pattern: they print polished output but never wait for input, except
// Confirm.
//
//   - Header: command banner showing operation name and parameters
//   - Progress: step list with a bar, driven by a Runner
//   - Result: success, failure and warning boxes
//   - Printer: writes the above to any io.Writer
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Set E-mail",
//	    Command:   "powerpack set-email 42 ada@example.com",
//	    StepNames: []string{"Log in", "Load user", "Commit"},
//	    Hint:      looker.GetTroubleshootingHint,
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "")
//	    return []ui.Field{{Key: "User", Value: "42"}}, nil
//	})
//
// Logging stays silent unless POWERPACK_LOG_LEVEL is set, so the curated
// output is not interleaved with log lines.
package ui
