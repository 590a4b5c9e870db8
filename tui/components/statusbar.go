package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dimasjulianto/app-video-cutter/pkg/timeutil"
	"github.com/dimasjulianto/app-video-cutter/tui/styles"
)

// StatusBarState holds the run timing shown under the progress box.
type StatusBarState struct {
	// Elapsed is the time since the run started
	Elapsed time.Duration
	// Completed and Total are used for the remaining-time estimate
	Completed int
	Total     int
	// Hint is the key hint shown on the right
	Hint string
}

// Remaining estimates the time left from the average time per finished
// clip. ok is false until at least one clip has finished.
func (s StatusBarState) Remaining() (d time.Duration, ok bool) {
	if s.Completed <= 0 || s.Total <= s.Completed {
		return 0, false
	}
	perClip := s.Elapsed / time.Duration(s.Completed)
	return perClip * time.Duration(s.Total-s.Completed), true
}

// StatusBar renders elapsed time and the estimate on the left and the key
// hint on the right.
func StatusBar(state StatusBarState, width int) string {
	left := " ⏱ " + timeutil.FormatTime(state.Elapsed.Seconds())
	if rem, ok := state.Remaining(); ok {
		left += fmt.Sprintf("  ~%s left", timeutil.FormatTime(rem.Seconds()))
	}
	right := state.Hint + " "

	// Calculate padding between left and right content
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return styles.PrimaryText.Render(left) + strings.Repeat(" ", padding) + styles.SecondaryText.Render(right)
}
