package ui

import "github.com/charmbracelet/lipgloss"

// Theme is a named colour palette.
type Theme struct {
	Name string

	Background string
	Surface    string // header and footer bars
	Border     string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Heart   string
}

// Styles are the rendered roles of a theme.
type Styles struct {
	Title   lipgloss.Style // artist - title
	Meta    lipgloss.Style // mapper and status line
	Hint    lipgloss.Style
	Notice  lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Faint   lipgloss.Style

	Heart    lipgloss.Style
	HeartOff lipgloss.Style
	Count    lipgloss.Style

	Logo      lipgloss.Style
	SignedIn  lipgloss.Style
	Guest     lipgloss.Style
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Offline   lipgloss.Style
	HelpTitle lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
	Modal     lipgloss.Style
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the styles for t.
func (t Theme) Styles() Styles {
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	return Styles{
		Title:   fg(t.Text).Bold(true),
		Meta:    fg(t.Muted),
		Hint:    fg(t.Muted).Italic(true),
		Notice:  fg(t.Accent),
		Error:   fg(t.Danger).Bold(true),
		Warning: fg(t.Warning),
		Faint:   fg(t.Faint),

		Heart:    fg(t.Heart).Bold(true),
		HeartOff: fg(t.Muted),
		Count:    fg(t.Text),

		Logo:     fg(t.Heart).Bold(true),
		SignedIn: fg(t.Success).Bold(true),
		Guest:    fg(t.Muted),
		Header:   bar.Foreground(lipgloss.Color(t.Text)),
		Footer:   bar.Foreground(lipgloss.Color(t.Muted)),
		Offline: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Background)).
			Background(lipgloss.Color(t.Danger)).
			Bold(true).
			Padding(0, 1),
		HelpTitle: fg(t.Text).Bold(true),
		HelpKey:   fg(t.Warning).Width(10),
		HelpDesc:  fg(t.Text),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(1, 2).
			Width(40),
	}
}

// Button is the bordered frame around the heart. The border is pink while
// favourited and faint while the button is disabled.
func (t Theme) Button(enabled, favourited bool) lipgloss.Style {
	border := t.Border
	switch {
	case !enabled:
		border = t.Faint
	case favourited:
		border = t.Heart
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 2)
}

var themes = []Theme{
	{
		// https://github.com/EdenEast/nightfox.nvim
		Name:       "Nightfox",
		Background: "#131a24", Surface: "#192330", Border: "#39506d",
		Text: "#cdcecf", Muted: "#738091", Faint: "#71839b",
		Accent: "#719cd6", Success: "#81b29a", Warning: "#dbc074", Danger: "#c94f6d",
		Heart: "#d67ad2",
	},
	{
		// https://github.com/rebelot/kanagawa.nvim
		Name:       "Kanagawa",
		Background: "#16161D", Surface: "#1F1F28", Border: "#54546D",
		Text: "#DCD7BA", Muted: "#C8C093", Faint: "#727169",
		Accent: "#7E9CD8", Success: "#98BB6C", Warning: "#E6C384", Danger: "#E46876",
		Heart: "#D27E99",
	},
	{
		// Tailwind slate with sky and rose accents
		Name:       "Slate",
		Background: "#020617", Surface: "#0f172a", Border: "#334155",
		Text: "#f1f5f9", Muted: "#94a3b8", Faint: "#64748b",
		Accent: "#38bdf8", Success: "#22c55e", Warning: "#f59e0b", Danger: "#ef4444",
		Heart: "#fb7185",
	},
}

// GetTheme returns the named theme, or the first one for unknown names.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme returns the theme after current, wrapping around.
func NextTheme(current string) string {
	for i, t := range themes {
		if t.Name == current {
			return themes[(i+1)%len(themes)].Name
		}
	}
	return themes[0].Name
}

// ThemeNames lists themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
