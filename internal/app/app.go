package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/heart/internal/config"
	"github.com/five82/heart/internal/favourite"
	"github.com/five82/heart/internal/i18n"
	"github.com/five82/heart/internal/logging"
	"github.com/five82/heart/internal/loop"
	"github.com/five82/heart/internal/online"
	"github.com/five82/heart/internal/prefs"
	"github.com/five82/heart/internal/session"
	"github.com/five82/heart/internal/state"
	"github.com/five82/heart/internal/ui"
)

// Options configure the heart application.
type Options struct {
	ConfigPath   string
	PrefsPath    string        // empty uses default ~/.config/heart/prefs.toml
	BeatmapSetID int64         // zero uses beatmapset_id from config
	PollInterval time.Duration // zero uses poll_interval from config

	// Out receives the result of the headless commands. Defaults to stdout.
	Out io.Writer
	// Logger overrides the logger built from config.
	Logger *slog.Logger
}

// ErrNoBeatmapSet is returned when no beatmap set id was given.
var ErrNoBeatmapSet = errors.New("no beatmap set id given (pass one or set beatmapset_id)")

// deps is everything shared by the TUI and the headless commands.
type deps struct {
	strings  *i18n.Strings
	client   *online.Client
	provider *session.Provider
	resource favourite.Resource
}

func setup(cfg config.Config, opts Options, locale string, logger *slog.Logger) (deps, error) {
	id := cfg.BeatmapSetID
	if opts.BeatmapSetID != 0 {
		id = opts.BeatmapSetID
	}
	if id == 0 {
		return deps{}, ErrNoBeatmapSet
	}

	client, err := online.NewClient(cfg.APIURL, online.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return deps{}, fmt.Errorf("init api client: %w", err)
	}

	provider := session.NewProvider(session.WithTokenSink(client.SetToken))
	if cfg.AccessToken != "" {
		if _, err := provider.SignIn(cfg.AccessToken); err != nil {
			logger.Warn("access token rejected, continuing as guest", "error", err)
		}
	}

	if locale == "" {
		locale = cfg.Locale
	}
	if locale == "" {
		locale = localeFromEnv()
	}

	return deps{
		strings:  i18n.New(locale),
		client:   client,
		provider: provider,
		resource: favourite.Resource{OnlineID: id},
	}, nil
}

// Run boots the heart TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closeLog, err := fileLogger(opts, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	userPrefs := prefs.Load(opts.PrefsPath)
	locale := cfg.Locale
	if locale == "" {
		locale = userPrefs.Locale
	}

	d, err := setup(cfg, opts, locale, logger)
	if err != nil {
		return err
	}

	sched := ui.NewScheduler()
	access := online.NewAccess(ctx, d.client, sched, logger)
	store := &state.Store{}

	controller := favourite.New(d.resource, access,
		favourite.WithLogger(logger),
		favourite.WithStrings(d.strings),
		favourite.WithReporter(store.Record),
	)
	defer controller.Close()

	model := ui.New(ui.Options{
		Controller: controller,
		Session:    d.provider,
		Store:      store,
		Strings:    d.strings,
		Logger:     logger,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
		Locale:     userPrefs.Locale,
		Token:      cfg.AccessToken,
		URL:        d.client.BeatmapSetURL(d.resource.OnlineID),
	})
	controller.Bind(d.provider.LocalUser)

	interval := cfg.PollInterval
	if opts.PollInterval > 0 {
		interval = opts.PollInterval
	}

	access.Start()
	StartPoller(ctx, Poller{
		API:       access,
		Scheduler: sched,
		Session:   d.provider,
		Store:     store,
		Logger:    logger,
		Interval:  interval,
	})

	logger.Info("heart started", "beatmapset", d.resource.OnlineID, "user", d.provider.User().String(), "locale", d.strings.Locale())
	return ui.Run(model, sched, tea.WithAltScreen(), tea.WithContext(ctx))
}

// RunStatus fetches the favourite state once and prints it.
func RunStatus(ctx context.Context, opts Options) error {
	h, err := newHeadless(ctx, opts)
	if err != nil {
		return err
	}
	defer h.close()

	if err := h.settle(ctx); err != nil {
		return err
	}
	h.print()
	return h.lastErr
}

// RunToggle fetches the favourite state, toggles it once and prints the
// result.
func RunToggle(ctx context.Context, opts Options) error {
	h, err := newHeadless(ctx, opts)
	if err != nil {
		return err
	}
	defer h.close()

	if err := h.settle(ctx); err != nil {
		return err
	}
	if h.lastErr != nil {
		h.print()
		return h.lastErr
	}
	if !h.controller.Enabled() {
		h.print()
		return fmt.Errorf("cannot toggle: %s", h.controller.Hint())
	}

	h.controller.Toggle()
	if err := h.settle(ctx); err != nil {
		return err
	}
	h.print()
	return h.lastErr
}

// headless runs the controller on a loop.Loop instead of the TUI.
type headless struct {
	out        io.Writer
	loop       *loop.Loop
	controller *favourite.Controller
	strings    *i18n.Strings
	url        string
	lastErr    error
	cancel     context.CancelFunc
}

func newHeadless(ctx context.Context, opts Options) (*headless, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logger = logging.Stderr(level)
	}

	d, err := setup(cfg, opts, "", logger)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	ctx, cancel := context.WithCancel(ctx)
	l := loop.New()
	access := online.NewAccess(ctx, d.client, l, logger)
	access.Start()

	h := &headless{
		out:     out,
		loop:    l,
		strings: d.strings,
		url:     d.client.BeatmapSetURL(d.resource.OnlineID),
		cancel:  cancel,
	}
	h.controller = favourite.New(d.resource, access,
		favourite.WithLogger(logger),
		favourite.WithStrings(d.strings),
		favourite.WithReporter(func(err error) { h.lastErr = err }),
	)
	h.controller.Bind(d.provider.LocalUser)
	return h, nil
}

// settle runs callbacks until no request is in flight.
func (h *headless) settle(ctx context.Context) error {
	return h.loop.RunUntil(ctx, func() bool { return !h.controller.Loading() })
}

func (h *headless) close() {
	h.controller.Close()
	h.cancel()
}

func (h *headless) print() {
	view := h.controller.View()
	if set := view.BeatmapSet; set != nil {
		fmt.Fprintf(h.out, "%s (%d)\n", set.DisplayTitle(), view.Resource.OnlineID)
	} else {
		fmt.Fprintf(h.out, "Beatmap set %d\n", view.Resource.OnlineID)
	}
	glyph := "♡"
	if view.State.Favourited {
		glyph = "♥"
	}
	fmt.Fprintf(h.out, "%s %s\n", glyph, h.strings.FavouriteCount(view.State.Count))
	fmt.Fprintln(h.out, view.Hint)
	if view.Resource.Published() {
		fmt.Fprintln(h.out, h.url)
	}
}

func fileLogger(opts Options, cfg config.Config) (*slog.Logger, func(), error) {
	if opts.Logger != nil {
		return opts.Logger, func() {}, nil
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(logging.Options{Writer: f, Level: level}), func() { _ = f.Close() }, nil
}

// localeFromEnv turns LC_ALL, LC_MESSAGES or LANG ("de_DE.UTF-8") into a
// BCP 47 tag ("de-DE").
func localeFromEnv() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
