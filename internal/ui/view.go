package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/heart/internal/favourite"
	"github.com/five82/heart/internal/i18n"
	"github.com/five82/heart/internal/state"
)

const (
	heartFilled  = "♥"
	heartOutline = "♡"
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	snap := m.store.Snapshot()

	var b strings.Builder
	b.WriteString(m.renderHeader(snap))
	b.WriteString("\n\n")

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderBeatmapSet(snap.View),
		"",
		m.renderButton(snap.View),
		m.theme.Styles().Hint.Render(snap.View.Hint),
	)
	b.WriteString(lipgloss.NewStyle().Padding(0, 2).Render(body))
	b.WriteString("\n\n")

	if line := m.renderNotice(snap); line != "" {
		b.WriteString(lipgloss.NewStyle().Padding(0, 2).Render(line))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the logo, the session user and connection state.
func (m Model) renderHeader(snap state.Snapshot) string {
	styles := m.theme.Styles()
	sep := "  "

	parts := []string{styles.Logo.Render(heartFilled + " heart")}
	if snap.User.IsGuest() {
		parts = append(parts, styles.Guest.Render("● "+snap.User.String()))
	} else {
		parts = append(parts, styles.SignedIn.Render("● "+snap.User.String()))
	}
	if snap.IsOffline() {
		parts = append(parts, styles.Offline.Render("OFFLINE"))
	}
	if !snap.LastUpdated.IsZero() {
		parts = append(parts, styles.Faint.Render(snap.LastUpdated.Format("15:04:05")))
	}

	header := styles.Header
	if m.width > 0 {
		header = header.Width(m.width)
	}
	return header.Render(strings.Join(parts, sep))
}

// renderBeatmapSet renders artist, title and creator of the cached set.
func (m Model) renderBeatmapSet(view favourite.View) string {
	styles := m.theme.Styles()

	if !view.Resource.Published() {
		return styles.Warning.Render(m.strings.Get(i18n.KeyUnpublished))
	}
	set := view.BeatmapSet
	if set == nil {
		label := fmt.Sprintf("Beatmap set #%d", view.Resource.OnlineID)
		if view.Loading {
			return styles.Title.Render(label) + "  " + styles.Faint.Render(m.strings.Get(i18n.KeyLoading))
		}
		return styles.Title.Render(label)
	}

	lines := []string{
		styles.Title.Render(set.DisplayTitle()),
	}
	meta := []string{}
	if set.Creator != "" {
		meta = append(meta, "mapped by "+set.Creator)
	}
	if set.Status != "" {
		meta = append(meta, set.Status)
	}
	if len(meta) > 0 {
		lines = append(lines, styles.Meta.Render(strings.Join(meta, " · ")))
	}
	return strings.Join(lines, "\n")
}

// renderButton renders the heart with the favourite count.
func (m Model) renderButton(view favourite.View) string {
	styles := m.theme.Styles()

	var glyph string
	switch {
	case view.Loading:
		glyph = m.spinner.View()
	case view.State.Favourited:
		glyph = styles.Heart.Render(heartFilled)
	default:
		glyph = styles.HeartOff.Render(heartOutline)
	}

	count := styles.Count
	if !view.Enabled {
		count = styles.Faint
	}
	label := count.Render(m.strings.FavouriteCount(view.State.Count))
	return m.theme.Button(view.Enabled, view.State.Favourited).Render(glyph + "  " + label)
}

// renderNotice shows the last action message or the last request error.
func (m Model) renderNotice(snap state.Snapshot) string {
	styles := m.theme.Styles()
	if m.notice != "" {
		return styles.Notice.Render(m.notice)
	}
	if snap.LastError != nil {
		return styles.Error.Render(snap.LastError.Error())
	}
	return ""
}

func (m Model) renderFooter() string {
	footer := m.theme.Styles().Footer
	if m.width > 0 {
		footer = footer.Width(m.width)
	}
	return footer.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}
