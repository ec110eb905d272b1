package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything heart needs to reach the API and log.
type Config struct {
	APIURL         string
	AccessToken    string
	Locale         string
	LogFile        string
	LogLevel       string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	BeatmapSetID   int64
}

const (
	defaultConfigPath     = "~/.config/heart/config.toml"
	defaultAPIURL         = "https://osu.ppy.sh"
	defaultLogFile        = "~/.local/share/heart/heart.log"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
	defaultPollInterval   = time.Minute

	envPrefix = "HEART_"
)

// fileConfig mirrors config.toml. Durations are strings ("15s", "2m").
type fileConfig struct {
	APIURL         string `toml:"api_url"`
	AccessToken    string `toml:"access_token"`
	Locale         string `toml:"locale"`
	LogFile        string `toml:"log_file"`
	LogLevel       string `toml:"log_level"`
	RequestTimeout string `toml:"request_timeout"`
	PollInterval   string `toml:"poll_interval"`
	BeatmapSetID   int64  `toml:"beatmapset_id"`
}

// envConfig holds HEART_* overrides; nil means unset.
type envConfig struct {
	APIURL         *string        `env:"API_URL"`
	AccessToken    *string        `env:"ACCESS_TOKEN"`
	Locale         *string        `env:"LOCALE"`
	LogFile        *string        `env:"LOG_FILE"`
	LogLevel       *string        `env:"LOG_LEVEL"`
	RequestTimeout *time.Duration `env:"REQUEST_TIMEOUT"`
	PollInterval   *time.Duration `env:"POLL_INTERVAL"`
	BeatmapSetID   *int64         `env:"BEATMAPSET_ID"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		LogFile:        MustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
		PollInterval:   defaultPollInterval,
	}
}

// Load reads config.toml at path (or the default location), then applies a
// .env file next to it and HEART_* environment variables, in that order.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := applyFile(&cfg, resolved); err != nil {
		return Config{}, err
	}

	environ, err := environment(filepath.Join(filepath.Dir(resolved), ".env"))
	if err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, environ); err != nil {
		return Config{}, err
	}

	cfg.normalize()
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.APIURL, raw.APIURL)
	setString(&cfg.AccessToken, raw.AccessToken)
	setString(&cfg.Locale, raw.Locale)
	setString(&cfg.LogFile, raw.LogFile)
	setString(&cfg.LogLevel, raw.LogLevel)
	if err := setDuration(&cfg.RequestTimeout, raw.RequestTimeout); err != nil {
		return fmt.Errorf("parse config: request_timeout: %w", err)
	}
	if err := setDuration(&cfg.PollInterval, raw.PollInterval); err != nil {
		return fmt.Errorf("parse config: poll_interval: %w", err)
	}
	if raw.BeatmapSetID != 0 {
		cfg.BeatmapSetID = raw.BeatmapSetID
	}
	return nil
}

// environment merges the optional .env file under the process environment.
// Real environment variables win.
func environment(dotenv string) (map[string]string, error) {
	merged := map[string]string{}
	vars, err := godotenv.Read(dotenv)
	switch {
	case err == nil:
		for k, v := range vars {
			merged[k] = v
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", dotenv, err)
	}
	for k, v := range env.ToMap(os.Environ()) {
		merged[k] = v
	}
	return merged, nil
}

func applyEnv(cfg *Config, environ map[string]string) error {
	var raw envConfig
	if err := env.ParseWithOptions(&raw, env.Options{Prefix: envPrefix, Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if raw.APIURL != nil {
		setString(&cfg.APIURL, *raw.APIURL)
	}
	if raw.AccessToken != nil {
		cfg.AccessToken = strings.TrimSpace(*raw.AccessToken)
	}
	if raw.Locale != nil {
		setString(&cfg.Locale, *raw.Locale)
	}
	if raw.LogFile != nil {
		setString(&cfg.LogFile, *raw.LogFile)
	}
	if raw.LogLevel != nil {
		setString(&cfg.LogLevel, *raw.LogLevel)
	}
	if raw.RequestTimeout != nil {
		cfg.RequestTimeout = *raw.RequestTimeout
	}
	if raw.PollInterval != nil {
		cfg.PollInterval = *raw.PollInterval
	}
	if raw.BeatmapSetID != nil {
		cfg.BeatmapSetID = *raw.BeatmapSetID
	}
	return nil
}

func (c *Config) normalize() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFile = MustExpand(c.LogFile)
}

// ParseBeatmapSetID parses a beatmap set id given on the command line. It
// accepts a bare number or a beatmap set URL such as
// https://osu.ppy.sh/beatmapsets/241526#osu/589403.
func ParseBeatmapSetID(arg string) (int64, error) {
	trimmed := strings.TrimSpace(arg)
	if i := strings.Index(trimmed, "/beatmapsets/"); i >= 0 {
		trimmed = trimmed[i+len("/beatmapsets/"):]
		if j := strings.IndexAny(trimmed, "/#?"); j >= 0 {
			trimmed = trimmed[:j]
		}
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid beatmap set id %q", arg)
	}
	return id, nil
}

func setString(dst *string, v string) {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		*dst = trimmed
	}
}

func setDuration(dst *time.Duration, v string) error {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

// MustExpand is ExpandPath that returns path unchanged on error.
func MustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
