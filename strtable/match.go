package strtable

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Match selects entries by key.
//
// Prefix and Regex can also rename the keys they match. Exact and Glob only
// select.
type Match interface {
	Matches(key string) bool
	// Rename returns the new key for key, and false when key does not match
	// or the match kind cannot rename.
	Rename(key, replacement string) (string, bool)
	String() string

	isMatch()
}

// MatchAny reports whether any of matches selects key.
func MatchAny(matches []Match, key string) bool {
	for _, m := range matches {
		if m.Matches(key) {
			return true
		}
	}
	return false
}

// ParseMatch reads a match from its command-line form: "exact:KEY",
// "prefix:P", "regex:EXPR", "glob:PATTERN" or a bare prefix.
func ParseMatch(s string) (Match, error) {
	kind, arg, ok := strings.Cut(s, ":")
	if !ok {
		return Prefix(s), nil
	}
	switch kind {
	case "exact":
		return Exact(arg), nil
	case "prefix":
		return Prefix(arg), nil
	case "regex":
		m, err := NewRegex(arg)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "glob":
		m, err := NewGlob(arg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	// keys may legitimately contain ':'
	return Prefix(s), nil
}

// ParseMatches parses each argument with ParseMatch.
func ParseMatches(args []string) ([]Match, error) {
	out := make([]Match, 0, len(args))
	for _, a := range args {
		m, err := ParseMatch(a)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Exact selects one key.
type Exact string

func (m Exact) Matches(key string) bool { return key == string(m) }
func (m Exact) Rename(string, string) (string, bool) { return "", false }
func (m Exact) String() string { return "exact:" + string(m) }
func (Exact) isMatch() {}

// Prefix selects keys starting with a prefix; Rename swaps the leading prefix.
type Prefix string

func (m Prefix) Matches(key string) bool { return strings.HasPrefix(key, string(m)) }

func (m Prefix) Rename(key, replacement string) (string, bool) {
	rest, ok := strings.CutPrefix(key, string(m))
	if !ok {
		return "", false
	}
	return replacement + rest, true
}

func (m Prefix) String() string { return "prefix:" + string(m) }
func (Prefix) isMatch() {}

// Regex selects keys matching a regular expression. Rename expands $1-style
// references in the replacement.
type Regex struct {
	re *regexp.Regexp
}

// NewRegex compiles expr.
func NewRegex(expr string) (Regex, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Regex{}, fmt.Errorf("compiling regex match %q: %w", expr, err)
	}
	return Regex{re: re}, nil
}

func (m Regex) Matches(key string) bool { return m.re.MatchString(key) }

func (m Regex) Rename(key, replacement string) (string, bool) {
	if !m.re.MatchString(key) {
		return "", false
	}
	return m.re.ReplaceAllString(key, replacement), true
}

func (m Regex) String() string { return "regex:" + m.re.String() }
func (Regex) isMatch() {}

// Glob selects keys with a shell pattern. '.' separates key segments, so
// "menu.*" covers "menu.open" but not "menu.file.open"; use "menu.**" for that.
type Glob struct {
	pattern string
	g       glob.Glob
}

// NewGlob compiles pattern.
func NewGlob(pattern string) (Glob, error) {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return Glob{}, fmt.Errorf("compiling glob match %q: %w", pattern, err)
	}
	return Glob{pattern: pattern, g: g}, nil
}

func (m Glob) Matches(key string) bool { return m.g.Match(key) }
func (m Glob) Rename(string, string) (string, bool) { return "", false }
func (m Glob) String() string { return "glob:" + m.pattern }
func (Glob) isMatch() {}
