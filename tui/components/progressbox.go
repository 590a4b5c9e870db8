package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/dimasjulianto/app-video-cutter/tui/styles"
)

// ProgressState holds what the progress box displays.
type ProgressState struct {
	Total      int
	Completed  int
	Errors     int
	Skipped    int
	LastFile   string
	Message    string
	Cancelling bool
	Status     string // set once the run has finished
}

// Percent returns completion as 0-100.
func (s ProgressState) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

// ProgressBox renders a bordered box with a progress bar, percentage,
// clip counter, error count and the last finished file.
func ProgressBox(state ProgressState, width int) string {
	if width < 10 {
		return ""
	}

	greenStyle := lipgloss.NewStyle().Foreground(styles.Green)
	amberStyle := lipgloss.NewStyle().Foreground(styles.Amber)
	redStyle := lipgloss.NewStyle().Foreground(styles.Red)
	textStyle := styles.PrimaryText

	// Inner width for content (box border = 2, plus 1 space padding each side)
	innerW := width - 4
	if innerW < 6 {
		innerW = 6
	}

	// Bar width: innerW minus " XXX%" label
	barWidth := innerW - 6
	if barWidth < 4 {
		barWidth = 4
	}
	filled := 0
	if state.Total > 0 {
		filled = barWidth * state.Completed / state.Total
	}
	if filled > barWidth {
		filled = barWidth
	}

	var lines []string
	bar := greenStyle.Render(strings.Repeat("█", filled)) + amberStyle.Render(strings.Repeat("░", barWidth-filled))
	lines = append(lines, " "+bar+textStyle.Render(fmt.Sprintf(" %3d%%", state.Percent())))

	counter := textStyle.Render(fmt.Sprintf(" %d/%d clips", state.Completed, state.Total))
	if state.Errors > 0 {
		counter += "  " + redStyle.Render(fmt.Sprintf("%d failed", state.Errors))
	}
	if state.Skipped > 0 {
		counter += "  " + amberStyle.Render(fmt.Sprintf("%d skipped", state.Skipped))
	}
	lines = append(lines, counter)

	switch {
	case state.Status != "":
		lines = append(lines, " "+statusLine(state.Status))
	case state.Cancelling:
		lines = append(lines, " "+styles.Notice.Render("Cancelling, finishing clips in progress..."))
	case state.LastFile != "":
		maxFileW := innerW - 2
		file := state.LastFile
		if lipgloss.Width(file) > maxFileW {
			file = ansi.Truncate(file, maxFileW-3, "...")
		}
		lines = append(lines, " "+textStyle.Render(file))
	case state.Message != "":
		lines = append(lines, " "+textStyle.Render(state.Message))
	}

	return RenderInfoBox("Cutting", lines, width)
}

func statusLine(status string) string {
	switch status {
	case "succeeded":
		return styles.Success.Render("All clips created")
	case "cancelled":
		return styles.Notice.Render("Cancelled")
	default:
		return styles.Warning.Render("Finished with errors")
	}
}
