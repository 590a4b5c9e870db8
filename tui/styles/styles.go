// Package styles provides Lipgloss styles for the terminal views using the
// Ciapre colour palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - Ciapre (warm, earthy) theme from Gogh
const (
	// DeepPurple is the darkest background colour
	DeepPurple = lipgloss.Color("#191C27")
	// Purple is the border/dim accent colour
	Purple = lipgloss.Color("#5C4F4B")
	// BrightPurple is used for focus states
	BrightPurple = lipgloss.Color("#724D7C")
	// Lavender is a secondary text colour
	Lavender = lipgloss.Color("#AEA47A")
	// LightLavender is the primary text colour
	LightLavender = lipgloss.Color("#F3DBB2")
	// Pink is used for box titles and headers
	Pink = lipgloss.Color("#D33061")
	// Cyan marks interactive elements
	Cyan = lipgloss.Color("#3097C6")
	// Amber fills the unfinished part of progress bars
	Amber = lipgloss.Color("#CC8B3F")
	// Red is used for failures
	Red = lipgloss.Color("#AC3835")
	// Green is used for success
	Green = lipgloss.Color("#A6A75D")
)

// Title is the style for the view heading
var Title = lipgloss.NewStyle().
	Foreground(Pink).
	Bold(true)

// PrimaryText is the style for primary text content
var PrimaryText = lipgloss.NewStyle().
	Foreground(LightLavender)

// SecondaryText is the style for less prominent text such as key hints
var SecondaryText = lipgloss.NewStyle().
	Foreground(Lavender)

// Warning is the style for failure and cancellation messages
var Warning = lipgloss.NewStyle().
	Foreground(Red).
	Bold(true)

// Success is the style for success messages
var Success = lipgloss.NewStyle().
	Foreground(Green).
	Bold(true)

// Notice is the style for in-between states such as "cancelling"
var Notice = lipgloss.NewStyle().
	Foreground(Amber).
	Bold(true)
