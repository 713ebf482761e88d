// Package stringsdict reads and writes .stringsdict property lists.
//
// A stringsdict maps each key to a dictionary holding the format template
// (NSStringLocalizedFormatKey) and one plural rule per substitution the
// template references with %#@name@:
//
//	<key>files</key>
//	<dict>
//		<key>NSStringLocalizedFormatKey</key>
//		<string>%#@count@</string>
//		<key>count</key>
//		<dict>
//			<key>NSStringFormatSpecTypeKey</key>
//			<string>NSStringPluralRuleType</string>
//			<key>NSStringFormatValueTypeKey</key>
//			<string>d</string>
//			<key>one</key>
//			<string>%d file</string>
//			<key>other</key>
//			<string>%d files</string>
//		</dict>
//	</dict>
//
// XML and binary property lists are read; XML is written.
package stringsdict

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"howett.net/plist"

	"github.com/minios-linux/stringray/strtable"
)

// Ext is the file extension of stringsdict files.
const Ext = ".stringsdict"

const (
	formatKey    = "NSStringLocalizedFormatKey"
	specTypeKey  = "NSStringFormatSpecTypeKey"
	valueTypeKey = "NSStringFormatValueTypeKey"
)

var (
	// ErrNotPluralRule is reported for substitutions whose spec type is not
	// NSStringPluralRuleType.
	ErrNotPluralRule = errors.New("not a plural rule")
	// ErrMissingOther is reported for plural rules without an "other" form.
	ErrMissingOther = errors.New("plural rule has no \"other\" form")
)

// InvalidEntriesError lists entries that were skipped while parsing.
type InvalidEntriesError struct {
	File string
	Errs []error
}

func (e *InvalidEntriesError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %d invalid entries: %s", e.File, len(e.Errs), strings.Join(msgs, "; "))
}

func (e *InvalidEntriesError) Unwrap() []error { return e.Errs }

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// ParseFile reads and parses a stringsdict from disk.
func ParseFile(path string) ([]strtable.LocalizedString, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a stringsdict. Entries come back sorted by key. Entries that
// are not valid plural definitions are left out and reported together in an
// *InvalidEntriesError, which is returned alongside the valid entries; any
// other error means data is not a stringsdict at all.
func Parse(data []byte, file string) ([]strtable.LocalizedString, error) {
	var raw map[string]map[string]any
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var (
		entries []strtable.LocalizedString
		invalid []error
	)
	for _, key := range keys {
		p, err := decodePlural(raw[key])
		if err != nil {
			invalid = append(invalid, fmt.Errorf("%q: %w", key, err))
			continue
		}
		e := strtable.NewPlural(key, p)
		e.Location = &strtable.Location{File: file}
		entries = append(entries, e)
	}
	if len(invalid) > 0 {
		return entries, &InvalidEntriesError{File: file, Errs: invalid}
	}
	return entries, nil
}

func decodePlural(dict map[string]any) (strtable.Plural, error) {
	p := strtable.Plural{Rules: make(map[string]strtable.PluralRule)}
	for name, v := range dict {
		if name == formatKey {
			s, ok := v.(string)
			if !ok {
				return p, fmt.Errorf("%s is not a string", formatKey)
			}
			p.FormatKey = s
			continue
		}
		sub, ok := v.(map[string]any)
		if !ok {
			return p, fmt.Errorf("substitution %q is not a dictionary", name)
		}
		rule, err := decodeRule(sub)
		if err != nil {
			return p, fmt.Errorf("substitution %q: %w", name, err)
		}
		p.Rules[name] = rule
	}
	if p.FormatKey == "" {
		return p, fmt.Errorf("missing %s", formatKey)
	}
	return p, nil
}

func decodeRule(dict map[string]any) (strtable.PluralRule, error) {
	var r strtable.PluralRule
	if spec, _ := dict[specTypeKey].(string); spec != strtable.PluralSpecType {
		return r, fmt.Errorf("%w: %s is %q", ErrNotPluralRule, specTypeKey, spec)
	}
	r.ValueType, _ = dict[valueTypeKey].(string)
	for _, c := range strtable.Categories {
		v, ok := dict[c]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return r, fmt.Errorf("category %q is not a string", c)
		}
		if err := r.SetVariant(c, s); err != nil {
			return r, err
		}
	}
	if r.Other == "" {
		return r, ErrMissingOther
	}
	return r, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

type ruleDict struct {
	SpecType  string `plist:"NSStringFormatSpecTypeKey"`
	ValueType string `plist:"NSStringFormatValueTypeKey,omitempty"`
	Zero      string `plist:"zero,omitempty"`
	One       string `plist:"one,omitempty"`
	Two       string `plist:"two,omitempty"`
	Few       string `plist:"few,omitempty"`
	Many      string `plist:"many,omitempty"`
	Other     string `plist:"other"`
}

// Marshal renders the plural entries of entries as an XML property list.
// Text entries are ignored. The first entry of a repeated key wins.
func Marshal(entries []strtable.LocalizedString) ([]byte, error) {
	doc := make(map[string]map[string]any)
	for _, e := range entries {
		p, ok := e.Value.Plural()
		if !ok {
			continue
		}
		if _, dup := doc[e.Key]; dup {
			continue
		}
		dict := map[string]any{formatKey: p.FormatKey}
		for name, r := range p.Rules {
			dict[name] = ruleDict{
				SpecType:  strtable.PluralSpecType,
				ValueType: r.ValueType,
				Zero:      r.Zero,
				One:       r.One,
				Two:       r.Two,
				Few:       r.Few,
				Many:      r.Many,
				Other:     r.Other,
			}
		}
		doc[e.Key] = dict
	}
	out, err := plist.MarshalIndent(doc, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("encoding stringsdict: %w", err)
	}
	return append(out, '\n'), nil
}

// WriteFile writes the plural entries of entries to path.
func WriteFile(path string, entries []strtable.LocalizedString) error {
	data, err := Marshal(entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
