// Package cache implements the per-table parse cache: a YAML record holding
// a snapshot of every parsed .strings/.stringsdict file together with the
// size, modification time and content hash it had when parsed. A file whose
// stamp still matches is served from the snapshot instead of being parsed
// again; every (locale, kind) file is validated on its own, so editing the
// French strings leaves German and the French stringsdict cached.
//
// The whole record is discarded when its fingerprint (cache version, table
// root, table name, base locale and the set of locale directories) no
// longer matches.
//
// Records live in the user cache directory, one file per table:
//
//	~/.cache/stringray/<hash of root and table>.yml
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/stringray/strtable"
)

// Version is the cache record format version. Bumping it invalidates every
// existing record through the fingerprint.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Stamp identifies the on-disk state of a file.
type Stamp struct {
	Size    int64  `yaml:"size"`
	ModTime int64  `yaml:"mtime"` // unix nanoseconds
	Hash    string `yaml:"hash"`  // xxhash64 of the content
}

// Rule is the cached form of a plural rule. Its fields mirror
// strtable.PluralRule so the two convert directly.
type Rule struct {
	Zero      string `yaml:"zero,omitempty"`
	One       string `yaml:"one,omitempty"`
	Two       string `yaml:"two,omitempty"`
	Few       string `yaml:"few,omitempty"`
	Many      string `yaml:"many,omitempty"`
	Other     string `yaml:"other"`
	ValueType string `yaml:"value_type,omitempty"`
}

// Entry is the cached form of a LocalizedString.
type Entry struct {
	Key         string          `yaml:"key"`
	Value       string          `yaml:"value,omitempty"`
	Comment     string          `yaml:"comment,omitempty"`
	Line        int             `yaml:"line,omitempty"`
	CommentLine int             `yaml:"comment_line,omitempty"`
	FormatKey   string          `yaml:"format_key,omitempty"`
	Rules       map[string]Rule `yaml:"rules,omitempty"`
}

// File is the snapshot of one parsed file.
type File struct {
	Stamp   `yaml:",inline"`
	Entries []Entry `yaml:"entries"`
}

// Record is the cache of one table.
type Record struct {
	Version     int              `yaml:"version"`
	Table       string           `yaml:"table"`
	Base        string           `yaml:"base"`
	Fingerprint string           `yaml:"fingerprint"`
	Files       map[string]*File `yaml:"files"` // "<locale>.strings" -> snapshot

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// PathFor returns the record path for a table under root, inside dir.
func PathFor(dir, root, table string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Join(dir, fmt.Sprintf("%016x.yml", xxhash.Sum64String(root+"\x00"+table)))
}

// New returns an empty record stored at path.
func New(path string) *Record {
	return &Record{Version: Version, Files: make(map[string]*File), path: path}
}

// Load reads a record. A missing file yields an empty record; an unreadable
// or corrupt one yields an error and an empty record the caller may use.
func Load(path string) (*Record, error) {
	rec := New(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rec, nil
		}
		return rec, fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded Record
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return rec, fmt.Errorf("parsing %s: %w", path, err)
	}
	if loaded.Version != Version {
		return rec, fmt.Errorf("%s: cache version %d, want %d", path, loaded.Version, Version)
	}
	rec.Table, rec.Base, rec.Fingerprint = loaded.Table, loaded.Base, loaded.Fingerprint
	for k, f := range loaded.Files {
		if f != nil {
			rec.Files[k] = f
		}
	}
	return rec, nil
}

// Save writes the record, creating its directory.
func (r *Record) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		return fmt.Errorf("cache path not set")
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(r.path), err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", r.path, err)
	}
	return nil
}

// Path returns the record path.
func (r *Record) Path() string { return r.path }

// ---------------------------------------------------------------------------
// Fingerprints and stamps
// ---------------------------------------------------------------------------

// Fingerprint identifies a table layout.
func Fingerprint(root, table, base string, locales []string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	sorted := append([]string(nil), locales...)
	sort.Strings(sorted)

	d := xxhash.New()
	fmt.Fprintf(d, "v%d\x00%s\x00%s\x00%s", Version, root, table, base)
	for _, l := range sorted {
		d.WriteString("\x00" + l)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// StampOf builds the stamp of a file from its info and content.
func StampOf(info os.FileInfo, data []byte) Stamp {
	return Stamp{
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
		Hash:    fmt.Sprintf("%016x", xxhash.Sum64(data)),
	}
}

// FileKey names a (locale, kind) file inside a record, e.g. "fr.strings".
func FileKey(locale, ext string) string { return locale + ext }

// ---------------------------------------------------------------------------
// Record operations
// ---------------------------------------------------------------------------

// Matches reports whether the record was written for this fingerprint.
func (r *Record) Matches(fingerprint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Fingerprint == fingerprint
}

// Reset empties the record and rebinds it to a table layout.
func (r *Record) Reset(table, base, fingerprint string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Version = Version
	r.Table, r.Base, r.Fingerprint = table, base, fingerprint
	r.Files = make(map[string]*File)
}

// Lookup returns the snapshot of key when its stamp equals st.
func (r *Record) Lookup(key string, st Stamp) ([]Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.Files[key]
	if !ok || f.Stamp != st {
		return nil, false
	}
	return f.Entries, true
}

// Store records the snapshot of key.
func (r *Record) Store(key string, st Stamp, entries []Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files[key] = &File{Stamp: st, Entries: entries}
}

// Clean drops files that are not in keep.
func (r *Record) Clean(keep []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	valid := make(map[string]bool, len(keep))
	for _, k := range keep {
		valid[k] = true
	}
	for k := range r.Files {
		if !valid[k] {
			delete(r.Files, k)
		}
	}
}

// Keys returns the sorted file keys.
func (r *Record) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.Files))
	for k := range r.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary returns a human-readable summary string.
func (r *Record) Summary() string {
	keys := r.Keys()
	if len(keys) == 0 {
		return "empty"
	}
	parts := make([]string, len(keys))
	total := 0
	for i, k := range keys {
		n := len(r.Files[k].Entries)
		total += n
		parts[i] = fmt.Sprintf("%s: %d", k, n)
	}
	return fmt.Sprintf("%d files, %d entries (%s)", len(keys), total, strings.Join(parts, ", "))
}

// ---------------------------------------------------------------------------
// Snapshot conversion
// ---------------------------------------------------------------------------

// Snapshot converts entries to their cached form.
func Snapshot(entries []strtable.LocalizedString) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		c := Entry{Key: e.Key, Comment: e.Comment}
		if e.Location != nil {
			c.Line, c.CommentLine = e.Location.Line, e.Location.CommentLine
		}
		if p, ok := e.Value.Plural(); ok {
			c.FormatKey = p.FormatKey
			c.Rules = make(map[string]Rule, len(p.Rules))
			for name, r := range p.Rules {
				c.Rules[name] = Rule(r)
			}
		} else {
			c.Value = e.Value.Text()
		}
		out = append(out, c)
	}
	return out
}

// Restore rebuilds entries from their cached form. Entries with a format
// key are plural entries. file becomes each entry's location.
func Restore(cached []Entry, file string) []strtable.LocalizedString {
	out := make([]strtable.LocalizedString, 0, len(cached))
	for _, c := range cached {
		var e strtable.LocalizedString
		if c.Rules != nil || c.FormatKey != "" {
			p := strtable.Plural{FormatKey: c.FormatKey, Rules: make(map[string]strtable.PluralRule, len(c.Rules))}
			for name, r := range c.Rules {
				p.Rules[name] = strtable.PluralRule(r)
			}
			e = strtable.NewPlural(c.Key, p)
		} else {
			e = strtable.NewText(c.Key, c.Value, "")
		}
		e.Comment = c.Comment
		e.Location = &strtable.Location{File: file, Line: c.Line, CommentLine: c.CommentLine}
		out = append(out, e)
	}
	return out
}
