// Package merge implements the table refactoring operations: copying,
// moving and deleting keys between string tables, sorting and renaming.
package merge

import (
	"errors"

	"github.com/minios-linux/stringray/strtable"
)

// ErrNoMatches is returned by Delete when the selection names no key.
// Deleting every key of a table is never implied.
var ErrNoMatches = errors.New("at least one match is required")

// Selection picks entries out of a table.
type Selection struct {
	// Locale restricts the selection to one locale. Empty selects all.
	Locale string
	// Matches select keys. Empty selects every key.
	Matches []strtable.Match
}

// From returns a new table holding clones of the selected entries of t.
func (s Selection) From(t *strtable.Table) *strtable.Table {
	var selected *strtable.Table
	if len(s.Matches) == 0 {
		selected = t.Clone()
	} else {
		selected = t.WithKeys(s.Matches...)
	}
	if s.Locale != "" {
		for locale := range selected.Localizations {
			if locale != s.Locale {
				delete(selected.Localizations, locale)
			}
		}
	}
	return selected
}

// Copy adds the selected entries of src to dst and returns them.
// - Entries are merged locale by locale; missing locales are created in dst.
// - A key dst already holds (of the same kind) keeps its existing value.
// - src is not modified.
func Copy(src, dst *strtable.Table, sel Selection) *strtable.Table {
	selected := sel.From(src)
	dst.AddEntries(selected)
	return selected
}

// Move copies the selected entries of src to dst, then removes them from
// src. Keys dst already held are still removed from src.
func Move(src, dst *strtable.Table, sel Selection) *strtable.Table {
	selected := Copy(src, dst, sel)
	src.RemoveEntries(selected)
	return selected
}

// Delete removes the selected entries from t and returns them.
func Delete(t *strtable.Table, sel Selection) (*strtable.Table, error) {
	if len(sel.Matches) == 0 {
		return nil, ErrNoMatches
	}
	selected := sel.From(t)
	t.RemoveEntries(selected)
	return selected, nil
}

// Sort sorts one locale of t by key, or every locale when locale is empty.
// It reports whether anything was sorted.
func Sort(t *strtable.Table, locale string) bool {
	if locale == "" {
		t.Sort()
		return len(t.Localizations) > 0
	}
	l, ok := t.Localization(locale)
	if !ok {
		return false
	}
	l.Sort()
	return true
}

// Rename renames the keys matched by matches[i] using replacements[i] in
// every locale and returns the number of renamed entries.
func Rename(t *strtable.Table, matches []strtable.Match, replacements []string) (int, error) {
	if len(matches) == 0 {
		return 0, ErrNoMatches
	}
	return t.Replace(matches, replacements)
}
