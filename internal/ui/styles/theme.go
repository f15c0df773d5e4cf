// Package styles holds the console palette shared by the notibus commands.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and pre-built styles for console output.
type Theme struct {
	Primary lipgloss.Color // Purple - titles
	FgMuted lipgloss.Color // Secondary text (dimmed)

	// Status colors
	Success lipgloss.Color // Green - delivered, sent
	Error   lipgloss.Color // Red - failures
	Warning lipgloss.Color // Yellow/orange - rejected, critical

	styles *Styles
}

// Styles contains pre-built lipgloss styles for common output.
type Styles struct {
	Muted   lipgloss.Style
	Title   lipgloss.Style // Bold, accented
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

var defaultTheme = Theme{
	Primary: lipgloss.Color("#a78bfa"),
	FgMuted: lipgloss.Color("#808080"),

	Success: lipgloss.Color("#42b883"),
	Error:   lipgloss.Color("#ff5555"),
	Warning: lipgloss.Color("#f1a208"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the pre-built styles for this theme.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	return &Styles{
		Muted:   lipgloss.NewStyle().Foreground(t.FgMuted),
		Title:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Success: lipgloss.NewStyle().Foreground(t.Success),
		Error:   lipgloss.NewStyle().Foreground(t.Error),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
	}
}

// Outcome returns the style for a delivery outcome name.
func (s *Styles) Outcome(outcome string) lipgloss.Style {
	switch outcome {
	case "delivered":
		return s.Success
	case "rejected":
		return s.Muted
	case "malformed", "failed":
		return s.Error
	default:
		return s.Warning
	}
}

// Urgency returns the style for an urgency name.
func (s *Styles) Urgency(urgency string) lipgloss.Style {
	switch urgency {
	case "critical":
		return s.Error
	case "low":
		return s.Muted
	default:
		return s.Warning
	}
}
