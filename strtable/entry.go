// Package strtable holds the in-memory model of Apple-style localized string
// tables: entries, per-locale localizations and the table that ties them to a
// base locale.
//
// Entries are identified by key only. Two entries with the same key and
// different values are the same member of an ordered set, and the one
// inserted first wins; code that needs to see conflicting duplicates walks
// Localization.Entries directly instead of going through a set.
package strtable

import (
	"fmt"
	"maps"
	"slices"
)

// ---------------------------------------------------------------------------
// Location
// ---------------------------------------------------------------------------

// Location points at the origin of an entry. Zero line numbers are unknown.
type Location struct {
	File        string
	Line        int
	CommentLine int
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}

// ---------------------------------------------------------------------------
// Plural rules
// ---------------------------------------------------------------------------

// PluralSpecType is the NSStringFormatSpecTypeKey value of a plural rule.
const PluralSpecType = "NSStringPluralRuleType"

// Categories lists the plural categories in canonical order.
var Categories = []string{"zero", "one", "two", "few", "many", "other"}

// PluralRule maps plural categories to format templates for one named
// substitution. Other is mandatory; an empty category is absent.
type PluralRule struct {
	Zero  string
	One   string
	Two   string
	Few   string
	Many  string
	Other string
	// ValueType is the conversion of the counted argument, e.g. "d".
	ValueType string
}

// Variant is one category template of a plural rule.
type Variant struct {
	Category string
	Format   string
}

// Variant returns the template for category.
func (r PluralRule) Variant(category string) (string, bool) {
	var v string
	switch category {
	case "zero":
		v = r.Zero
	case "one":
		v = r.One
	case "two":
		v = r.Two
	case "few":
		v = r.Few
	case "many":
		v = r.Many
	case "other":
		v = r.Other
	}
	return v, v != ""
}

// SetVariant stores format under category. Unknown categories are rejected.
func (r *PluralRule) SetVariant(category, format string) error {
	switch category {
	case "zero":
		r.Zero = format
	case "one":
		r.One = format
	case "two":
		r.Two = format
	case "few":
		r.Few = format
	case "many":
		r.Many = format
	case "other":
		r.Other = format
	default:
		return fmt.Errorf("unknown plural category %q", category)
	}
	return nil
}

// Variants returns the present categories in canonical order.
func (r PluralRule) Variants() []Variant {
	var out []Variant
	for _, c := range Categories {
		if f, ok := r.Variant(c); ok {
			out = append(out, Variant{Category: c, Format: f})
		}
	}
	return out
}

// Plural is one stringsdict entry: a format template referencing named
// substitutions, and the plural rule for each of them.
type Plural struct {
	FormatKey string
	Rules     map[string]PluralRule
}

// RuleNames returns the substitution names sorted.
func (p Plural) RuleNames() []string {
	return slices.Sorted(maps.Keys(p.Rules))
}

// Template is a format string found inside a plural entry. Label says where:
// "NSStringLocalizedFormatKey" or "<substitution>.<category>".
type Template struct {
	Label  string
	Format string
}

// FormatKeyLabel labels the top-level template of a plural entry.
const FormatKeyLabel = "NSStringLocalizedFormatKey"

// Templates returns the format key followed by every variant, substitutions
// in name order.
func (p Plural) Templates() []Template {
	out := []Template{{Label: FormatKeyLabel, Format: p.FormatKey}}
	for _, name := range p.RuleNames() {
		for _, v := range p.Rules[name].Variants() {
			out = append(out, Template{Label: name + "." + v.Category, Format: v.Format})
		}
	}
	return out
}

func (p Plural) clone() Plural {
	return Plural{FormatKey: p.FormatKey, Rules: maps.Clone(p.Rules)}
}

// ---------------------------------------------------------------------------
// Value
// ---------------------------------------------------------------------------

// Kind distinguishes text entries from plural entries.
type Kind int

const (
	KindText Kind = iota
	KindPlural
)

func (k Kind) String() string {
	if k == KindPlural {
		return "plural"
	}
	return "text"
}

// Value is either a plain text or a plural entry.
type Value struct {
	text   string
	plural *Plural
}

// TextValue wraps a plain string.
func TextValue(s string) Value { return Value{text: s} }

// PluralValue wraps a stringsdict entry.
func PluralValue(p Plural) Value { return Value{plural: &p} }

// Kind reports which case the value holds.
func (v Value) Kind() Kind {
	if v.plural != nil {
		return KindPlural
	}
	return KindText
}

// Text returns the plain string; it is empty for plural values.
func (v Value) Text() string { return v.text }

// Plural returns the plural entry and true for plural values.
func (v Value) Plural() (Plural, bool) {
	if v.plural == nil {
		return Plural{}, false
	}
	return *v.plural, true
}

// Formats returns every format string in the value.
func (v Value) Formats() []Template {
	if v.plural != nil {
		return v.plural.Templates()
	}
	return []Template{{Format: v.text}}
}

func (v Value) clone() Value {
	if v.plural == nil {
		return v
	}
	return PluralValue(v.plural.clone())
}

// ---------------------------------------------------------------------------
// LocalizedString
// ---------------------------------------------------------------------------

// LocalizedString is one table row.
type LocalizedString struct {
	Key      string
	Value    Value
	Comment  string
	Location *Location
}

// NewText returns a text entry.
func NewText(key, value, comment string) LocalizedString {
	return LocalizedString{Key: key, Value: TextValue(value), Comment: comment}
}

// NewPlural returns a plural entry.
func NewPlural(key string, p Plural) LocalizedString {
	return LocalizedString{Key: key, Value: PluralValue(p)}
}

// ID is the set identity of the entry: its key.
func (s LocalizedString) ID() string { return s.Key }

// Kind reports whether this is a text or plural entry.
func (s LocalizedString) Kind() Kind { return s.Value.Kind() }

// IsPlural reports whether the entry came from a stringsdict.
func (s LocalizedString) IsPlural() bool { return s.Value.Kind() == KindPlural }

// HasComment reports whether the entry carries a non-empty comment.
func (s LocalizedString) HasComment() bool { return s.Comment != "" }

// Clone returns a deep copy.
func (s LocalizedString) Clone() LocalizedString {
	c := s
	c.Value = s.Value.clone()
	if s.Location != nil {
		loc := *s.Location
		c.Location = &loc
	}
	return c
}

func (s LocalizedString) String() string {
	if s.IsPlural() {
		return fmt.Sprintf("%q (plural)", s.Key)
	}
	return fmt.Sprintf("%q = %q", s.Key, s.Value.Text())
}
