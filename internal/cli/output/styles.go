package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Muted   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	URL     lipgloss.Style

	StatusSuccess lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() *Styles {
	return &Styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")),
		Header2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60A5FA")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")).Width(20),
		Value:   lipgloss.NewStyle(),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#4ADE80")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
		URL:     lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#A78BFA")),

		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#4ADE80")).SetString("✓"),
	}
}

// PlainStyles returns styles that add no escape codes.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1: plain, Header2: plain, Muted: plain,
		Key: plain.Width(20), Value: plain,
		Success: plain, Warning: plain, URL: plain,
		StatusSuccess: plain.SetString("✓"),
	}
}
