package strtable

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/minios-linux/stringray/orderedset"
)

// KeySet is an ordered set of entry keys.
type KeySet = orderedset.Set[string, string]

// EntrySet is an ordered set of entries identified by key.
type EntrySet = orderedset.Set[LocalizedString, string]

// NewKeySet returns a key set holding keys in order.
func NewKeySet(keys ...string) *KeySet { return orderedset.New(keys...) }

// NewEntrySet returns an empty entry set keyed by LocalizedString.ID.
func NewEntrySet() *EntrySet { return orderedset.NewFunc(LocalizedString.ID) }

// Localization is the ordered list of entries of one table in one locale.
// Entries may repeat a key; files do, and the duplicate check needs to see it.
type Localization struct {
	Name    string
	Locale  string
	Entries []LocalizedString
}

// NewLocalization returns a localization holding entries.
func NewLocalization(name, locale string, entries ...LocalizedString) *Localization {
	return &Localization{Name: name, Locale: locale, Entries: entries}
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

// Len returns the number of entries, duplicates included.
func (l *Localization) Len() int { return len(l.Entries) }

// All returns a copy of the entries.
func (l *Localization) All() []LocalizedString { return slices.Clone(l.Entries) }

// Strings returns the text entries.
func (l *Localization) Strings() []LocalizedString { return l.OfKind(KindText) }

// Pluralizations returns the plural entries.
func (l *Localization) Pluralizations() []LocalizedString { return l.OfKind(KindPlural) }

// OfKind returns the entries of kind k in order.
func (l *Localization) OfKind(k Kind) []LocalizedString {
	var out []LocalizedString
	for _, e := range l.Entries {
		if e.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

// AllKeys returns every key in first-seen order.
func (l *Localization) AllKeys() *KeySet {
	keys := NewKeySet()
	for _, e := range l.Entries {
		keys.Insert(e.Key)
	}
	return keys
}

// Keys returns the keys of kind k in first-seen order.
func (l *Localization) Keys(k Kind) *KeySet {
	keys := NewKeySet()
	for _, e := range l.Entries {
		if e.Kind() == k {
			keys.Insert(e.Key)
		}
	}
	return keys
}

// Set returns the entries of kind k as a set; the first entry of each key wins.
func (l *Localization) Set(k Kind) *EntrySet {
	set := NewEntrySet()
	for _, e := range l.Entries {
		if e.Kind() == k {
			set.Insert(e)
		}
	}
	return set
}

// Find returns the first entry with key, of either kind.
func (l *Localization) Find(key string) (LocalizedString, bool) {
	for _, e := range l.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return LocalizedString{}, false
}

// FindKind returns the first entry of kind k with key.
func (l *Localization) FindKind(key string, k Kind) (LocalizedString, bool) {
	for _, e := range l.Entries {
		if e.Key == key && e.Kind() == k {
			return e, true
		}
	}
	return LocalizedString{}, false
}

// Matching returns the entries selected by any of matches.
func (l *Localization) Matching(matches ...Match) []LocalizedString {
	var out []LocalizedString
	for _, e := range l.Entries {
		if MatchAny(matches, e.Key) {
			out = append(out, e)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Mutation
// ---------------------------------------------------------------------------

// Add appends one entry.
func (l *Localization) Add(e LocalizedString) { l.Entries = append(l.Entries, e) }

// AddText appends a text entry.
func (l *Localization) AddText(key, value, comment string) {
	l.Add(NewText(key, value, comment))
}

// AddAll appends entries in order.
func (l *Localization) AddAll(entries ...LocalizedString) {
	l.Entries = append(l.Entries, entries...)
}

// RemoveWhere deletes every entry for which drop returns true and returns how
// many were removed.
func (l *Localization) RemoveWhere(drop func(LocalizedString) bool) int {
	before := len(l.Entries)
	l.Entries = slices.DeleteFunc(l.Entries, drop)
	return before - len(l.Entries)
}

// RemoveKey deletes every entry with key.
func (l *Localization) RemoveKey(key string) int {
	return l.RemoveWhere(func(e LocalizedString) bool { return e.Key == key })
}

// RemoveKeys deletes every entry whose key is in keys.
func (l *Localization) RemoveKeys(keys *KeySet) int {
	return l.RemoveWhere(func(e LocalizedString) bool { return keys.ContainsKey(e.Key) })
}

// RemoveAt deletes the entries at the given indexes. Out of range and
// repeated indexes are ignored.
func (l *Localization) RemoveAt(indexes []int) {
	drop := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		drop[i] = true
	}
	kept := l.Entries[:0]
	for i, e := range l.Entries {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	clear(l.Entries[len(kept):])
	l.Entries = kept
}

// Sort orders entries by key. Entries sharing a key keep their order.
func (l *Localization) Sort() {
	slices.SortStableFunc(l.Entries, func(a, b LocalizedString) int {
		return cmp.Compare(a.Key, b.Key)
	})
}

// Replace renames keys. Each (matches[i], replacements[i]) pair is applied
// in order to every entry, so a later pair sees keys renamed by earlier ones.
// It returns the number of renames.
func (l *Localization) Replace(matches []Match, replacements []string) (int, error) {
	if len(matches) != len(replacements) {
		return 0, fmt.Errorf("replace: %d matches but %d replacements", len(matches), len(replacements))
	}
	n := 0
	for i, m := range matches {
		for j := range l.Entries {
			if key, ok := m.Rename(l.Entries[j].Key, replacements[i]); ok && key != "" {
				l.Entries[j].Key = key
				n++
			}
		}
	}
	return n, nil
}

// Clone returns a deep copy.
func (l *Localization) Clone() *Localization {
	c := &Localization{Name: l.Name, Locale: l.Locale, Entries: make([]LocalizedString, len(l.Entries))}
	for i, e := range l.Entries {
		c.Entries[i] = e.Clone()
	}
	return c
}
