// Package loader reads and writes string tables laid out the Xcode way:
//
//	<root>/<locale>.lproj/<table>.strings
//	<root>/<locale>.lproj/<table>.stringsdict
//
// Parsed files are remembered in a per-table cache record (see package
// cache) so that unchanged files are not parsed again on the next run.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/stringray/cache"
	"github.com/minios-linux/stringray/langmeta"
	"github.com/minios-linux/stringray/stringsdict"
	"github.com/minios-linux/stringray/stringsfile"
	"github.com/minios-linux/stringray/strtable"
)

// LprojExt is the suffix of locale directories.
const LprojExt = ".lproj"

// Stats counts how the files of loaded tables were obtained.
type Stats struct {
	Parsed int // files parsed from disk
	Cached int // files restored from the cache
}

// Loader loads and saves tables. The zero value works without a cache.
type Loader struct {
	// CacheDir holds the cache records. Empty disables caching.
	CacheDir string
	// OnParse, when set, is called with the path of every file that is
	// parsed rather than restored from the cache.
	OnParse func(path string)

	stats   Stats
	records map[string]*cache.Record
}

// New returns a loader keeping its cache records in cacheDir.
func New(cacheDir string) *Loader {
	return &Loader{CacheDir: cacheDir}
}

// Stats returns the counters accumulated over every load.
func (l *Loader) Stats() Stats { return l.stats }

// Path returns the path of a table file.
func Path(root, locale, table, ext string) string {
	return filepath.Join(root, locale+LprojExt, table+ext)
}

// Locales returns the sorted names of the .lproj directories under root.
func Locales(root string) ([]string, error) {
	dirents, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	var locales []string
	for _, d := range dirents {
		name, ok := strings.CutSuffix(d.Name(), LprojExt)
		if !ok || !d.IsDir() || name == "" {
			continue
		}
		if !langmeta.Valid(name) {
			log.Warn().Str("dir", d.Name()).Msg("unrecognized locale directory")
		}
		locales = append(locales, name)
	}
	slices.Sort(locales)
	return locales, nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadTable loads table name from root. Locales listed in ignoring are left
// out. A locale appears in the result only when at least one of its files
// exists; text entries precede plural entries within a locale.
func (l *Loader) LoadTable(root, name, base string, ignoring ...string) (*strtable.Table, error) {
	locales, err := Locales(root)
	if err != nil {
		return nil, err
	}
	locales = slices.DeleteFunc(locales, func(loc string) bool {
		return slices.Contains(ignoring, loc)
	})

	rec := l.record(root, name)
	if rec != nil {
		fp := cache.Fingerprint(root, name, base, locales)
		if !rec.Matches(fp) {
			log.Debug().Str("table", name).Str("cache", rec.Path()).Msg("cache does not match table layout, reparsing")
			rec.Reset(name, base, fp)
		}
	}

	t := strtable.NewTable(name, base)
	var seen []string
	for _, locale := range locales {
		for _, ext := range []string{stringsfile.Ext, stringsdict.Ext} {
			entries, ok, err := l.loadFile(rec, Path(root, locale, name, ext), cache.FileKey(locale, ext))
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			seen = append(seen, cache.FileKey(locale, ext))
			t.Ensure(locale).AddAll(entries...)
		}
	}
	if rec != nil {
		rec.Clean(seen)
	}
	return t, nil
}

// loadFile returns the entries of path, from the cache when its stamp is
// unchanged. ok is false when the file does not exist.
func (l *Loader) loadFile(rec *cache.Record, path, key string) (entries []strtable.LocalizedString, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	stamp := cache.StampOf(info, data)

	if rec != nil {
		if cached, hit := rec.Lookup(key, stamp); hit {
			l.stats.Cached++
			return cache.Restore(cached, path), true, nil
		}
	}

	l.stats.Parsed++
	if l.OnParse != nil {
		l.OnParse(path)
	}
	cacheable := true
	if filepath.Ext(path) == stringsdict.Ext {
		entries, err = stringsdict.Parse(data, path)
		var invalid *stringsdict.InvalidEntriesError
		if errors.As(err, &invalid) {
			// Keep the valid entries; leave the file uncached so the
			// warning shows up on every run until it is fixed.
			log.Warn().Err(err).Msg("skipping invalid plural entries")
			err, cacheable = nil, false
		}
	} else {
		entries, err = stringsfile.Parse(data, path)
	}
	if err != nil {
		return nil, false, err
	}
	if rec != nil && cacheable {
		rec.Store(key, stamp, cache.Snapshot(entries))
	}
	return entries, true, nil
}

// record returns the cache record of a table, loading it on first use.
func (l *Loader) record(root, name string) *cache.Record {
	if l.CacheDir == "" {
		return nil
	}
	path := cache.PathFor(l.CacheDir, root, name)
	if rec, ok := l.records[path]; ok {
		return rec
	}
	rec, err := cache.Load(path)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring unreadable cache")
	}
	if l.records == nil {
		l.records = make(map[string]*cache.Record)
	}
	l.records[path] = rec
	return rec
}

// WriteCache saves the cache record of table name under root. Files written
// since the table was loaded no longer match their stamps and are parsed
// again on the next load.
func (l *Loader) WriteCache(root, name string) error {
	if l.CacheDir == "" {
		return nil
	}
	rec, ok := l.records[cache.PathFor(l.CacheDir, root, name)]
	if !ok {
		return nil
	}
	if err := rec.Save(); err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	log.Debug().Str("table", name).Str("cache", rec.Path()).Str("summary", rec.Summary()).Msg("cache written")
	return nil
}

// CacheSummary describes the cache record of a table.
func (l *Loader) CacheSummary(root, name string) string {
	rec := l.record(root, name)
	if rec == nil {
		return "disabled"
	}
	return rec.Summary()
}

// ---------------------------------------------------------------------------
// Saving
// ---------------------------------------------------------------------------

// SaveTable writes every localization of t under root. A file is written
// when the locale has entries of its kind or when it already exists, so
// emptied files are truncated rather than left stale.
func SaveTable(t *strtable.Table, root string) error {
	for _, locale := range t.Locales() {
		loc, _ := t.Localization(locale)

		stringsPath := Path(root, locale, t.Name, stringsfile.Ext)
		if texts := loc.Strings(); len(texts) > 0 || exists(stringsPath) {
			if err := ensureDir(stringsPath); err != nil {
				return err
			}
			if err := stringsfile.WriteFile(stringsPath, texts); err != nil {
				return err
			}
		}

		dictPath := Path(root, locale, t.Name, stringsdict.Ext)
		if plurals := loc.Pluralizations(); len(plurals) > 0 || exists(dictPath) {
			if err := ensureDir(dictPath); err != nil {
				return err
			}
			if err := stringsdict.WriteFile(dictPath, plurals); err != nil {
				return err
			}
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
