// Package config implements auto-detection of a localized resource
// directory (its locales, tables and base locale) and loads stringray's
// own settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minios-linux/stringray/i18n"
	"github.com/minios-linux/stringray/langmeta"
	"github.com/minios-linux/stringray/loader"
)

// ErrBaseNotFound is returned when no base locale is given and none can be
// inferred from the directory.
var ErrBaseNotFound = errors.New("base locale could not be inferred")

// ---------------------------------------------------------------------------
// Resource directory detection
// ---------------------------------------------------------------------------

// Project holds the auto-detected layout of a resource directory.
type Project struct {
	// Root is the absolute path of the directory holding the .lproj folders.
	Root string
	// Base is the base (development) locale.
	Base string
	// Locales are the .lproj directories found, sorted.
	Locales []string
	// Tables are the table names found in any locale, sorted.
	Tables []string
}

// Detect inspects root. base, when not empty, is used as the base locale
// instead of being inferred.
func Detect(root, base string) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	locales, err := loader.Locales(absRoot)
	if err != nil {
		return nil, err
	}
	base, err = DetectBase(absRoot, base)
	if err != nil {
		return nil, err
	}
	return &Project{
		Root:    absRoot,
		Base:    base,
		Locales: locales,
		Tables:  detectTables(absRoot, locales),
	}, nil
}

// DetectBase picks the base locale of root. In order:
//  1. explicit, when not empty
//  2. Base, when Base.lproj exists
//  3. the user's language (LANGUAGE, LC_ALL, LC_MESSAGES, LANG), when its
//     .lproj exists, first with its region and then without
//  4. en, when en.lproj exists
func DetectBase(root, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if hasLproj(root, langmeta.BaseLocale) {
		return langmeta.BaseLocale, nil
	}
	if tag, err := langmeta.Parse(i18n.DetectLanguage()); err == nil {
		lang, _ := tag.Base()
		for _, candidate := range []string{tag.String(), lang.String()} {
			if hasLproj(root, candidate) {
				return candidate, nil
			}
		}
	}
	if hasLproj(root, "en") {
		return "en", nil
	}
	return "", fmt.Errorf("%s: %w", root, ErrBaseNotFound)
}

func hasLproj(root, locale string) bool {
	info, err := os.Stat(filepath.Join(root, locale+loader.LprojExt))
	return err == nil && info.IsDir()
}

// detectTables collects the names of .strings and .stringsdict files.
func detectTables(root string, locales []string) []string {
	var tables []string
	for _, locale := range locales {
		entries, err := os.ReadDir(filepath.Join(root, locale+loader.LprojExt))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if ext != ".strings" && ext != ".stringsdict" {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ext)
			if !slices.Contains(tables, name) {
				tables = append(tables, name)
			}
		}
	}
	slices.Sort(tables)
	return tables
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// Settings are read from the environment, after an optional .env file.
type Settings struct {
	// CacheDir holds the parse cache (default: <user cache dir>/stringray).
	CacheDir string `env:"STRINGRAY_CACHE_DIR"`
	// LogLevel is a zerolog level name.
	LogLevel string `env:"STRINGRAY_LOG_LEVEL" envDefault:"info"`
	// NoCache disables the parse cache.
	NoCache bool `env:"STRINGRAY_NO_CACHE"`
	// Lang is the language of stringray's own messages (default: from locale env).
	Lang string `env:"STRINGRAY_LANG"`
}

// LoadSettings loads envFiles (".env" when none are given) into the
// environment, then parses Settings. Missing env files are not an error;
// variables already set take precedence over the files.
func LoadSettings(envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Settings{}, fmt.Errorf("loading %s: %w", f, err)
			}
			log.Debug().Str("file", f).Msg("no env file")
		}
	}

	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parsing environment: %w", err)
	}
	if s.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			s.CacheDir = filepath.Join(dir, "stringray")
		}
	}
	return s, nil
}

// Level returns the configured log level, info when unparsable.
func (s Settings) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Cache returns the cache directory, empty when caching is disabled.
func (s Settings) Cache() string {
	if s.NoCache {
		return ""
	}
	return s.CacheDir
}
