package ui

import (
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/heart/internal/bindable"
	"github.com/five82/heart/internal/favourite"
	"github.com/five82/heart/internal/i18n"
	"github.com/five82/heart/internal/prefs"
	"github.com/five82/heart/internal/session"
	"github.com/five82/heart/internal/state"
)

// Options configures the UI.
type Options struct {
	Controller *favourite.Controller
	Session    *session.Provider
	Store      *state.Store
	Strings    *i18n.Strings
	Logger     *slog.Logger

	ThemeName string
	PrefsPath string
	Locale    string

	// Token is used to sign in again after signing out with L.
	Token string
	// URL is the public page of the beatmap set, copied with y.
	URL string
	// Clipboard writes text to the system clipboard. Defaults to
	// clipboard.WriteAll.
	Clipboard func(string) error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	controller *favourite.Controller
	session    *session.Provider
	store      *state.Store
	strings    *i18n.Strings
	logger     *slog.Logger

	prefsPath string
	locale    string
	token     string
	url       string
	clipboard func(string) error

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	theme    Theme
	width    int
	height   int
	showHelp bool
	notice   string
}

// New creates the model and connects the store to the controller and
// session. It must be called on the goroutine that will run the program,
// before Run.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	strs := opts.Strings
	if strs == nil {
		strs = i18n.New(opts.Locale)
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	m := Model{
		controller: opts.Controller,
		session:    opts.Session,
		store:      store,
		strings:    strs,
		logger:     logger,
		prefsPath:  prefsPath,
		locale:     opts.Locale,
		token:      opts.Token,
		url:        opts.URL,
		clipboard:  copyFn,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		theme:      GetTheme(opts.ThemeName),
	}

	if m.controller != nil {
		m.controller.Subscribe(store.Publish)
	}
	if m.session != nil {
		m.session.LocalUser.BindValueChanged(func(ev bindable.ValueChangedEvent[session.User]) {
			store.SetUser(ev.New)
		}, true)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case callbackMsg:
		msg()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
		return m, nil

	case key.Matches(msg, m.keys.SignOut):
		m.toggleSession()
		return m, nil

	case key.Matches(msg, m.keys.CopyURL):
		m.copyURL()
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	}

	return m, nil
}

func (m *Model) toggle() {
	if m.controller == nil || !m.controller.Enabled() {
		return
	}
	m.notice = ""
	m.controller.Toggle()
}

func (m *Model) toggleSession() {
	if m.session == nil {
		return
	}
	if !m.session.User().IsGuest() {
		m.session.SignOut()
		m.notice = "Signed out"
		return
	}
	if m.token == "" {
		m.notice = "No access token configured"
		return
	}
	user, err := m.session.SignIn(m.token)
	if err != nil {
		m.notice = fmt.Sprintf("Sign in failed: %v", err)
		m.logger.Warn("sign in failed", "error", err)
		return
	}
	m.notice = "Signed in as " + user.String()
}

func (m *Model) copyURL() {
	if m.url == "" || (m.controller != nil && !m.controller.Resource().Published()) {
		m.notice = m.strings.Get(i18n.KeyUnpublished)
		return
	}
	if err := m.clipboard(m.url); err != nil {
		m.notice = fmt.Sprintf("Clipboard unavailable: %v", err)
		m.logger.Warn("copy to clipboard failed", "error", err)
		return
	}
	m.notice = "Copied " + m.url
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Locale: m.locale}); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// Run starts the Bubble Tea program. sched is attached to the program before
// it starts so request completions run inside Update.
func Run(m Model, sched *Scheduler, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, opts...)
	if sched != nil {
		sched.Attach(p)
	}
	_, err := p.Run()
	return err
}

// place centres content in the window when its size is known.
func (m Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
