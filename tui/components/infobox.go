// Package components provides reusable view components.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dimasjulianto/app-video-cutter/tui/layout"
	"github.com/dimasjulianto/app-video-cutter/tui/styles"
)

// RenderInfoBox renders content lines inside a rounded border with the
// title set into the top edge:
//
//	╭─ Title ──────╮
//	│content       │
//	╰──────────────╯
func RenderInfoBox(title string, contentLines []string, width int) string {
	if width < 4 {
		return ""
	}
	innerWidth := width - 2

	headerText := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).Render(" " + title + " ")
	border := lipgloss.NewStyle().Foreground(styles.Purple)

	fillWidth := innerWidth - 1 - lipgloss.Width(headerText)
	if fillWidth < 0 {
		fillWidth = 0
	}

	lines := make([]string, 0, len(contentLines)+2)
	lines = append(lines, border.Render("╭─")+headerText+border.Render(strings.Repeat("─", fillWidth)+"╮"))
	for _, line := range contentLines {
		lines = append(lines, border.Render("│")+layout.PadToWidth(line, innerWidth)+border.Render("│"))
	}
	lines = append(lines, border.Render("╰"+strings.Repeat("─", innerWidth)+"╯"))

	return strings.Join(lines, "\n")
}
