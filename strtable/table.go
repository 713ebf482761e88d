package strtable

import (
	"maps"
	"slices"
)

// Table is one string table across locales, anchored on a base locale.
// A table need not hold every locale, not even the base.
type Table struct {
	Name          string
	Base          string
	Localizations map[string]*Localization
}

// NewTable returns an empty table.
func NewTable(name, base string) *Table {
	return &Table{Name: name, Base: base, Localizations: make(map[string]*Localization)}
}

// Locales returns the locales present, base first, the rest sorted.
func (t *Table) Locales() []string {
	out := make([]string, 0, len(t.Localizations))
	for _, loc := range slices.Sorted(maps.Keys(t.Localizations)) {
		if loc != t.Base {
			out = append(out, loc)
		}
	}
	if _, ok := t.Localizations[t.Base]; ok {
		out = slices.Insert(out, 0, t.Base)
	}
	return out
}

// BaseLocalization returns the base locale's localization, or an empty one
// (not stored in the table) when the base is absent.
func (t *Table) BaseLocalization() *Localization {
	if l, ok := t.Localizations[t.Base]; ok {
		return l
	}
	return NewLocalization(t.Name, t.Base)
}

// Localization returns the localization for locale.
func (t *Table) Localization(locale string) (*Localization, bool) {
	l, ok := t.Localizations[locale]
	return l, ok
}

// Ensure returns the localization for locale, creating an empty one if needed.
func (t *Table) Ensure(locale string) *Localization {
	if l, ok := t.Localizations[locale]; ok {
		return l
	}
	l := NewLocalization(t.Name, locale)
	t.Localizations[locale] = l
	return l
}

// Add stores l, appending its entries when the locale is already present.
func (t *Table) Add(l *Localization) {
	if existing, ok := t.Localizations[l.Locale]; ok {
		existing.AddAll(l.Entries...)
		return
	}
	l.Name = t.Name
	t.Localizations[l.Locale] = l
}

// Len returns the number of entries over all locales.
func (t *Table) Len() int {
	n := 0
	for _, l := range t.Localizations {
		n += l.Len()
	}
	return n
}

// WithKeys returns a new table holding, for every locale, the entries of
// either kind selected by any of matches. Locales with no selected entry are
// left out.
func (t *Table) WithKeys(matches ...Match) *Table {
	out := NewTable(t.Name, t.Base)
	for locale, l := range t.Localizations {
		selected := l.Matching(matches...)
		if len(selected) == 0 {
			continue
		}
		c := NewLocalization(t.Name, locale)
		for _, e := range selected {
			c.Add(e.Clone())
		}
		out.Localizations[locale] = c
	}
	return out
}

// AddEntries merges from into t locale by locale. Within each kind the
// existing entry wins: an incoming key already present in t is skipped.
func (t *Table) AddEntries(from *Table) {
	for _, locale := range from.Locales() {
		src := from.Localizations[locale]
		dst := t.Ensure(locale)
		for _, k := range []Kind{KindText, KindPlural} {
			merged := dst.Set(k)
			for _, e := range src.OfKind(k) {
				if merged.Insert(e) {
					dst.Add(e.Clone())
				}
			}
		}
	}
}

// RemoveEntries deletes from t every entry whose key and kind appear in the
// same locale of from.
func (t *Table) RemoveEntries(from *Table) {
	for locale, src := range from.Localizations {
		dst, ok := t.Localizations[locale]
		if !ok {
			continue
		}
		text, plural := src.Keys(KindText), src.Keys(KindPlural)
		dst.RemoveWhere(func(e LocalizedString) bool {
			if e.IsPlural() {
				return plural.ContainsKey(e.Key)
			}
			return text.ContainsKey(e.Key)
		})
	}
}

// Replace renames keys in every locale; see Localization.Replace.
func (t *Table) Replace(matches []Match, replacements []string) (int, error) {
	n := 0
	for _, locale := range t.Locales() {
		c, err := t.Localizations[locale].Replace(matches, replacements)
		if err != nil {
			return n, err
		}
		n += c
	}
	return n, nil
}

// Sort sorts every localization by key.
func (t *Table) Sort() {
	for _, l := range t.Localizations {
		l.Sort()
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := NewTable(t.Name, t.Base)
	for locale, l := range t.Localizations {
		c.Localizations[locale] = l.Clone()
	}
	return c
}

// Restore makes t an exact copy of snapshot.
func (t *Table) Restore(snapshot *Table) {
	s := snapshot.Clone()
	t.Name, t.Base, t.Localizations = s.Name, s.Base, s.Localizations
}
