// Package langmeta provides language metadata for locale directory names:
// validation, display names and flag emoji.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// BaseLocale is Xcode's development-language directory name (Base.lproj).
// It is not a language tag but is always a valid locale directory.
const BaseLocale = "Base"

// Meta describes a locale.
type Meta struct {
	Code    string // canonical BCP 47 form, e.g. "pt-BR"
	Name    string // name in the language itself
	English string // name in English
	Flag    string // regional indicator emoji, empty when unknown
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Parse parses a locale name as used for .lproj directories ("fr",
// "pt-BR", "pt_BR", "zh-Hans").
func Parse(lang string) (language.Tag, error) {
	return language.Parse(canonicalize(lang))
}

// Valid reports whether lang names a locale.
func Valid(lang string) bool {
	if lang == BaseLocale {
		return true
	}
	if lang == "" {
		return false
	}
	_, err := Parse(lang)
	return err == nil
}

// Resolve returns best-effort metadata for lang. Unknown names come back
// with the input as name and no flag.
func Resolve(lang string) Meta {
	if lang == BaseLocale {
		return Meta{Code: lang, Name: lang, English: lang}
	}
	tag, err := Parse(lang)
	if err != nil {
		return Meta{Code: lang, Name: lang, English: lang}
	}
	m := Meta{
		Code:    tag.String(),
		Name:    display.Self.Name(tag),
		English: display.English.Tags().Name(tag),
		Flag:    flag(tag),
	}
	if m.Name == "" {
		m.Name = lang
	}
	if m.English == "" {
		m.English = m.Name
	}
	return m
}

// flag builds the regional indicator pair of the tag's region. Regions the
// tag only implies with low confidence still count ("fr" gives France).
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	code := region.String()
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return ""
	}
	return string([]rune{rune(0x1F1E6 + int(code[0]-'A')), rune(0x1F1E6 + int(code[1]-'A'))})
}
