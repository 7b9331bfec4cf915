// Package styles defines the lipgloss styles used to print selection
// results on a terminal.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette.
type Theme struct {
	// Primary is used for document names.
	Primary lipgloss.Color

	// Secondary is used for scores.
	Secondary lipgloss.Color

	// Foreground is used for passage text.
	Foreground lipgloss.Color

	// Muted is used for labels and run summaries.
	Muted lipgloss.Color

	// Warning is used for skipped documents.
	Warning lipgloss.Color

	// Border is used around passages.
	Border lipgloss.Color
}

// DefaultTheme returns the default theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Document styles the document a passage came from.
	Document lipgloss.Style

	// Label styles the Document/Passage/Score labels.
	Label lipgloss.Style

	// Passage styles the passage body.
	Passage lipgloss.Style

	// Score styles the relevance score.
	Score lipgloss.Style

	// Muted styles summaries.
	Muted lipgloss.Style

	// Warning styles per-document warnings.
	Warning lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Document: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Passage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Border).
			PaddingLeft(1),

		Score: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
