// Package i18n supplies the localised hint strings shown next to the
// favourite button.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a message.
type Key string

const (
	KeyFavourite            Key = "beatmapsets.favourite"
	KeyUnfavourite          Key = "beatmapsets.unfavourite"
	KeyFavouriteLogin       Key = "beatmapsets.favourite_login"
	KeyFavouriteUnavailable Key = "beatmapsets.favourite_unavailable"
	KeyUnpublished          Key = "beatmapsets.unpublished"
	KeyLoading              Key = "beatmapsets.loading"
	KeyFavouriteCount       Key = "beatmapsets.favourite_count"
)

// BaseLocale is the fallback locale and the source of truth for keys.
const BaseLocale = "en"

//go:embed locales/*.toml
var localeFS embed.FS

type localeFile struct {
	Locale   string            `toml:"locale"`
	Messages map[string]string `toml:"messages"`
}

type bundle struct {
	catalog   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
}

var (
	loadOnce sync.Once
	loaded   *bundle
	loadErr  error
)

func defaultBundle() (*bundle, error) {
	loadOnce.Do(func() {
		loaded, loadErr = loadBundle(localeFS)
	})
	return loaded, loadErr
}

func loadBundle(fsys fs.FS) (*bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	sort.Strings(paths)

	b := &bundle{catalog: catalog.NewBuilder(catalog.Fallback(language.Make(BaseLocale)))}
	var base language.Tag
	haveBase := false
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var file localeFile
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return nil, fmt.Errorf("%s: locale %q: %w", path, file.Locale, err)
		}
		for key, msg := range file.Messages {
			if err := b.catalog.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("%s: key %q: %w", path, key, err)
			}
		}
		if tag.String() == BaseLocale {
			base = tag
			haveBase = true
			continue
		}
		b.supported = append(b.supported, tag)
	}
	if !haveBase {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}
	// The matcher falls back to the first tag.
	b.supported = append([]language.Tag{base}, b.supported...)
	b.matcher = language.NewMatcher(b.supported)
	return b, nil
}

// Strings formats messages for one locale.
type Strings struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns Strings for the closest supported match of locale, falling
// back to English for unknown or empty locales.
func New(locale string) *Strings {
	b, err := defaultBundle()
	if err != nil {
		// Embedded catalogs are validated by tests; keep working with raw keys.
		tag := language.Make(BaseLocale)
		return &Strings{tag: tag, printer: message.NewPrinter(tag)}
	}
	tag := b.supported[0]
	if requested, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		_, idx, conf := b.matcher.Match(requested)
		if conf != language.No {
			tag = b.supported[idx]
		}
	}
	return &Strings{tag: tag, printer: message.NewPrinter(tag, message.Catalog(b.catalog))}
}

// Locale returns the matched locale tag.
func (s *Strings) Locale() string {
	return s.tag.String()
}

// Get returns the message for key.
func (s *Strings) Get(key Key, args ...any) string {
	return s.printer.Sprintf(string(key), args...)
}

// Count formats n with the locale's digit grouping.
func (s *Strings) Count(n int) string {
	return s.printer.Sprintf("%d", n)
}

// FavouriteCount returns the count label, e.g. "1,234 favourites".
func (s *Strings) FavouriteCount(n int) string {
	return s.Get(KeyFavouriteCount, s.Count(n))
}

// Supported lists the available locales, base locale first.
func Supported() []string {
	b, err := defaultBundle()
	if err != nil {
		return []string{BaseLocale}
	}
	out := make([]string, 0, len(b.supported))
	for _, tag := range b.supported {
		out = append(out, tag.String())
	}
	return out
}
