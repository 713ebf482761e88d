package lint

import (
	"github.com/minios-linux/stringray/formatspec"
	"github.com/minios-linux/stringray/strtable"
)

// AllRules returns the built-in rules in the order they run.
func AllRules() []Rule {
	return []Rule{
		MissingLocalization{},
		OrphanedLocalization{},
		DuplicateKey{},
		MissingComment{},
		ValidFormatArgument{},
		MismatchedFormatArgument{},
		NumberedFormatArgument{},
	}
}

// locationOf returns the location of the first entry with key in l.
func locationOf(l *strtable.Localization, key string) *strtable.Location {
	if e, ok := l.Find(key); ok {
		return e.Location
	}
	return nil
}

// subject names an entry in a violation reason; plural templates carry their label.
func subject(e strtable.LocalizedString, tpl strtable.Template) string {
	if tpl.Label == "" {
		return "key " + quote(e.Key)
	}
	return "key " + quote(e.Key) + " (" + tpl.Label + ")"
}

func quote(s string) string { return `"` + s + `"` }

// ---------------------------------------------------------------------------
// missing_localization
// ---------------------------------------------------------------------------

// MissingLocalization reports base keys a locale lacks.
type MissingLocalization struct{ noRepair }

func (MissingLocalization) Info() RuleInfo {
	return RuleInfo{
		ID:          "missing_localization",
		Name:        "Missing Localization",
		Description: "Reports keys of the base locale that a locale does not translate.",
		Severity:    SeverityWarning,
	}
}

func (r MissingLocalization) Scan(t *strtable.Table, cfg RuleConfig) []Violation {
	var out []Violation
	base := t.BaseLocalization()
	baseKeys := base.AllKeys()
	for _, locale := range t.Locales() {
		if locale == t.Base {
			continue
		}
		missing := baseKeys.Difference(t.Localizations[locale].AllKeys())
		for _, key := range missing.All() {
			out = append(out, r.Info().violation(cfg, locale, locationOf(base, key), "Missing %s in %s", quote(key), locale))
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// orphaned_localization
// ---------------------------------------------------------------------------

// OrphanedLocalization reports keys a locale has but the base does not.
// Repair deletes them; saving is up to the caller.
type OrphanedLocalization struct{}

func (OrphanedLocalization) Info() RuleInfo {
	return RuleInfo{
		ID:          "orphaned_localization",
		Name:        "Orphaned Localization",
		Description: "Reports keys translated in a locale that no longer exist in the base locale.",
		Severity:    SeverityWarning,
	}
}

func (r OrphanedLocalization) Scan(t *strtable.Table, cfg RuleConfig) []Violation {
	var out []Violation
	baseKeys := t.BaseLocalization().AllKeys()
	for _, locale := range t.Locales() {
		if locale == t.Base {
			continue
		}
		l := t.Localizations[locale]
		for _, key := range l.AllKeys().Difference(baseKeys).All() {
			out = append(out, r.Info().violation(cfg, locale, locationOf(l, key), "Orphaned %s", quote(key)))
		}
	}
	return out
}

func (OrphanedLocalization) Repair(t *strtable.Table, _ RuleConfig) error {
	baseKeys := t.BaseLocalization().AllKeys()
	for _, locale := range t.Locales() {
		if locale == t.Base {
			continue
		}
		l := t.Localizations[locale]
		l.RemoveKeys(l.AllKeys().Difference(baseKeys))
	}
	return nil
}

// ---------------------------------------------------------------------------
// duplicate_key
// ---------------------------------------------------------------------------

// DuplicateKey reports keys repeated within one locale. Text and plural
// entries are tracked apart, so a key may appear once as each.
type DuplicateKey struct{}

func (DuplicateKey) Info() RuleInfo {
	return RuleInfo{
		ID:          "duplicate_key",
		Name:        "Duplicate Key",
		Description: "Reports keys defined more than once in the same locale.",
		Severity:    SeverityError,
	}
}

// duplicates returns the indexes of every re-occurrence in l.
func duplicates(l *strtable.Localization) []int {
	seen := map[strtable.Kind]*strtable.KeySet{
		strtable.KindText:   strtable.NewKeySet(),
		strtable.KindPlural: strtable.NewKeySet(),
	}
	var dups []int
	for i, e := range l.Entries {
		if !seen[e.Kind()].Insert(e.Key) {
			dups = append(dups, i)
		}
	}
	return dups
}

func (r DuplicateKey) Scan(t *strtable.Table, cfg RuleConfig) []Violation {
	var out []Violation
	for _, locale := range t.Locales() {
		l := t.Localizations[locale]
		for _, i := range duplicates(l) {
			e := l.Entries[i]
			out = append(out, r.Info().violation(cfg, locale, e.Location, "Duplicate key %s", quote(e.Key)))
		}
	}
	return out
}

func (DuplicateKey) Repair(t *strtable.Table, _ RuleConfig) error {
	for _, l := range t.Localizations {
		l.RemoveAt(duplicates(l))
	}
	return nil
}

// ---------------------------------------------------------------------------
// missing_comment
// ---------------------------------------------------------------------------

// MissingComment reports base text entries without a translator comment.
type MissingComment struct{ noRepair }

func (MissingComment) Info() RuleInfo {
	return RuleInfo{
		ID:          "missing_comment",
		Name:        "Missing Comment",
		Description: "Reports base locale strings that have no comment for translators.",
		Severity:    SeverityError,
	}
}

func (r MissingComment) Scan(t *strtable.Table, cfg RuleConfig) []Violation {
	var out []Violation
	for _, e := range t.BaseLocalization().Strings() {
		if !e.HasComment() {
			out = append(out, r.Info().violation(cfg, t.Base, e.Location, "Missing comment for %s", quote(e.Key)))
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// valid_format_argument
// ---------------------------------------------------------------------------

// ValidFormatArgument reports malformed placeholders and argument positions
// that cannot be resolved, in every locale.
type ValidFormatArgument struct{ noRepair }

func (ValidFormatArgument) Info() RuleInfo {
	return RuleInfo{
		ID:          "valid_format_argument",
		Name:        "Valid Format Arguments",
		Description: "Validates that all format arguments are valid.",
		Severity:    SeverityError,
	}
}

func (r ValidFormatArgument) Scan(t *strtable.Table, cfg RuleConfig) []Violation {
	var out []Violation
	for _, locale := range t.Locales() {
		for _, e := range t.Localizations[locale].Entries {
			for _, tpl := range e.Value.Formats() {
				specs, err := formatspec.Parse(tpl.Format)
				if err == nil {
					_, err = formatspec.Order(specs)
				}
				if err != nil {
					out = append(out, r.Info().violation(cfg, locale, e.Location, "Invalid format argument for %s: %v", subject(e, tpl), err))
				}
			}
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// mismatched_format_argument
// ---------------------------------------------------------------------------

// MismatchedFormatArgument compares each translation's placeholders with the
// base string's, grouped by argument position. For plural entries only the
// format key is compared; variants legitimately differ between languages.
type MismatchedFormatArgument struct{ noRepair }

func (MismatchedFormatArgument) Info() RuleInfo {
	return RuleInfo{
		ID:          "mismatched_format_argument",
		Name:        "Mismatched Format Argument",
		Description: "Reports translations whose placeholders differ from the base string.",
		Severity:    SeverityError,
	}
}

// headFormat is the format compared across locales: the text, or a plural's format key.
func headFormat(e strtable.LocalizedString) string {
	if p, ok := e.Value.Plural(); ok {
		return p.FormatKey
	}
	return e.Value.Text()
}

func (r MismatchedFormatArgument) Scan(t *strtable.Table, cfg RuleConfig) []Violation {
	type kindKey struct {
		kind strtable.Kind
		key  string
	}
	baseGroups := make(map[kindKey]map[int][]formatspec.PlaceholderType)
	for _, e := range t.BaseLocalization().Entries {
		k := kindKey{e.Kind(), e.Key}
		if _, ok := baseGroups[k]; !ok {
			baseGroups[k] = formatspec.GroupByPosition(formatspec.Placeholders(headFormat(e)))
		}
	}

	var out []Violation
	for _, locale := range t.Locales() {
		if locale == t.Base {
			continue
		}
		for _, e := range t.Localizations[locale].Entries {
			want, ok := baseGroups[kindKey{e.Kind(), e.Key}]
			if !ok {
				continue
			}
			got := formatspec.GroupByPosition(formatspec.Placeholders(headFormat(e)))
			if !formatspec.EqualGroups(want, got) {
				out = append(out, r.Info().violation(cfg, locale, e.Location, "Mismatched placeholders for key %s", quote(e.Key)))
			}
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// numbered_format_argument
// ---------------------------------------------------------------------------

// NumberedFormatArgument reports strings with several placeholders where some
// lack an explicit position. Substitution references (%#@name@) are exempt.
// Strings that do not parse are left to ValidFormatArgument.
type NumberedFormatArgument struct{ noRepair }

func (NumberedFormatArgument) Info() RuleInfo {
	return RuleInfo{
		ID:          "numbered_format_argument",
		Name:        "Numbered Format Arguments",
		Description: "Validates that any localized string with more than one format argument includes numeric positions.",
		Severity:    SeverityWarning,
	}
}

func (r NumberedFormatArgument) Scan(t *strtable.Table, cfg RuleConfig) []Violation {
	var out []Violation
	for _, locale := range t.Locales() {
		for _, e := range t.Localizations[locale].Entries {
			for _, tpl := range e.Value.Formats() {
				specs, err := formatspec.Parse(tpl.Format)
				if err != nil || len(specs) < 2 {
					continue
				}
				for _, s := range specs {
					if !s.HasPosition() && !s.External {
						out = append(out, r.Info().violation(cfg, locale, e.Location, "Missing numbered positions in format string for %s", subject(e, tpl)))
						break
					}
				}
			}
		}
	}
	return out
}
