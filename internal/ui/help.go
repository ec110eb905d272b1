package ui

import "strings"

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder

	b.WriteString(styles.HelpTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.Faint.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	groups := m.keys.FullHelp()
	for i, group := range groups {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(styles.HelpKey.Render(h.Key))
			b.WriteString(styles.HelpDesc.Render(h.Desc))
			b.WriteString("\n")
		}
		if i < len(groups)-1 {
			b.WriteString("\n")
		}
	}

	return m.place(styles.Modal.Render(b.String()))
}
