// Package formatspec extracts printf-style placeholders from localized
// format strings and infers the argument type each one consumes.
//
// Only the subset used by Apple platform localizations is recognized:
//
//	%[N$][flag][width][.precision][length]type
//
// where N is a 1-based argument position, flag is one of "-+# 0", width and
// precision are single digits, length is one of h hh l ll q z t j (integer
// conversions only) and type is one of @ a e f g d i o u x c s p. The type
// letter and length modifier are case-insensitive. "%%" is a literal percent
// sign and never produces a placeholder.
package formatspec

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// PlaceholderType is the kind of argument a specifier consumes.
type PlaceholderType int

const (
	// Pointer is %p, and the type of argument slots nothing refers to.
	Pointer PlaceholderType = iota
	// Object is %@.
	Object
	// Float is %a %e %f %g.
	Float
	// Int is %d %i %o %u %x with any length modifier.
	Int
	// Char is %c.
	Char
	// CString is %s.
	CString
)

// Unknown is used for argument positions no specifier refers to.
const Unknown = Pointer

var typeNames = map[PlaceholderType]string{
	Pointer: "pointer",
	Object:  "object",
	Float:   "float",
	Int:     "int",
	Char:    "char",
	CString: "cstring",
}

func (t PlaceholderType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("PlaceholderType(%d)", int(t))
}

// TypeOf classifies a conversion letter. ok is false for letters outside the
// supported set.
func TypeOf(verb byte) (t PlaceholderType, ok bool) {
	switch lower(verb) {
	case '@':
		return Object, true
	case 'a', 'e', 'f', 'g':
		return Float, true
	case 'd', 'i', 'o', 'u', 'x':
		return Int, true
	case 'c':
		return Char, true
	case 's':
		return CString, true
	case 'p':
		return Pointer, true
	}
	return Unknown, false
}

// FormatSpec is one placeholder found in a format string.
type FormatSpec struct {
	Type PlaceholderType
	// Position is the explicit 1-based argument index, 0 when absent.
	Position int

	Flag      string
	Width     string
	Precision string
	Length    string
	Verb      byte

	// Offset is the byte offset of the introducing '%'.
	Offset int
	// Raw is the matched text, including a substitution name for External specs.
	Raw string

	// External marks a stringsdict substitution reference such as %#@count@.
	External bool
	// Name is the substitution name of an External spec.
	Name string
}

// MaxPosition is the largest accepted explicit argument position. Larger
// positions make the specifier malformed.
const MaxPosition = 9999

// HasPosition reports whether the spec carries an explicit N$ position.
func (s FormatSpec) HasPosition() bool { return s.Position > 0 }

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrPositionOutOfRange is returned when an explicit position exceeds the
	// number of placeholders in the string.
	ErrPositionOutOfRange = errors.New("placeholder position out of range")
	// ErrPositionCollision is returned when an argument slot is claimed by
	// both a positioned and an unpositioned placeholder, or with two types.
	ErrPositionCollision = errors.New("placeholder position collision")
)

// SyntaxError lists malformed specifiers in a format string.
type SyntaxError struct {
	Input   string
	Offsets []int
}

func (e *SyntaxError) Error() string {
	if len(e.Offsets) == 1 {
		return fmt.Sprintf("invalid format specifier at offset %d in %q", e.Offsets[0], e.Input)
	}
	parts := make([]string, len(e.Offsets))
	for i, o := range e.Offsets {
		parts[i] = fmt.Sprint(o)
	}
	return fmt.Sprintf("invalid format specifiers at offsets %s in %q", strings.Join(parts, ", "), e.Input)
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse returns every placeholder in s in order of appearance. Malformed
// specifiers are skipped and reported together in a *SyntaxError; the
// placeholders that did parse are returned alongside it.
func Parse(s string) ([]FormatSpec, error) {
	var (
		specs []FormatSpec
		bad   []int
	)
	for i := 0; i < len(s); {
		if s[i] != '%' {
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '%' {
			j++
		}
		if (j-i)%2 == 0 {
			// only literal %% pairs
			i = j
			continue
		}
		start := j - 1
		spec, end, ok := scanSpec(s, j)
		if !ok {
			bad = append(bad, start)
			i = j
			continue
		}
		spec.Offset = start
		spec.Raw = s[start:end]
		specs = append(specs, spec)
		i = end
	}
	if len(bad) > 0 {
		return specs, &SyntaxError{Input: s, Offsets: bad}
	}
	return specs, nil
}

// Placeholders is Parse with malformed specifiers silently dropped.
func Placeholders(s string) []FormatSpec {
	specs, _ := Parse(s)
	return specs
}

// scanSpec parses the specifier body starting at i, right after its '%'.
// It returns the spec and the offset just past it.
func scanSpec(s string, i int) (FormatSpec, int, bool) {
	var spec FormatSpec

	// position: [1-9]\d*\$
	if i < len(s) && s[i] >= '1' && s[i] <= '9' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '$' {
			n := 0
			for _, c := range s[i:j] {
				n = n*10 + int(c-'0')
				if n > MaxPosition {
					return spec, i, false
				}
			}
			spec.Position = n
			i = j + 1
		}
	}

	// precision: [-+# 0]?\d?(\.\d)?
	if i < len(s) && strings.IndexByte("-+# 0", s[i]) >= 0 {
		spec.Flag = s[i : i+1]
		i++
	}
	if i < len(s) && isDigit(s[i]) {
		spec.Width = s[i : i+1]
		i++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		spec.Precision = s[i+1 : i+2]
		i += 2
	}

	// type
	if i >= len(s) {
		return spec, i, false
	}
	if length, n := scanLength(s, i); n > 0 {
		spec.Length = length
		spec.Verb = s[i+n]
		spec.Type = Int
		return spec, i + n + 1, true
	}
	t, ok := TypeOf(s[i])
	if !ok {
		return spec, i, false
	}
	spec.Type = t
	spec.Verb = s[i]
	end := i + 1

	if t == Object && spec.Flag == "#" {
		if name, n := scanSubstitution(s, end); n > 0 {
			spec.External = true
			spec.Name = name
			end += n
		}
	}
	return spec, end, true
}

var lengthModifiers = []string{"h", "hh", "l", "ll", "q", "z", "t", "j"}

// scanLength matches a length modifier followed by an integer conversion,
// trying modifiers in grammar order. n is the modifier length, 0 on no match.
func scanLength(s string, i int) (string, int) {
	for _, m := range lengthModifiers {
		end := i + len(m)
		if end >= len(s) || !strings.EqualFold(s[i:end], m) {
			continue
		}
		switch lower(s[end]) {
		case 'd', 'i', 'o', 'u', 'x':
			return s[i:end], len(m)
		}
	}
	return "", 0
}

// scanSubstitution matches "name@" following a %#@ specifier.
func scanSubstitution(s string, i int) (string, int) {
	j := i
	for j < len(s) && isIdent(s[j]) {
		j++
	}
	if j == i || j >= len(s) || s[j] != '@' {
		return "", 0
	}
	return s[i:j], j - i + 1
}

// ---------------------------------------------------------------------------
// Argument order
// ---------------------------------------------------------------------------

// OrderedPlaceholders returns the argument types of s in argument order.
//
// The result has one slot per placeholder. A positioned placeholder N fills
// slot N-1; an unpositioned one fills the slot matching its appearance
// index. Slots nothing writes stay Unknown. A position past the last slot
// yields ErrPositionOutOfRange. Repeating a position with the same type is
// allowed (%1$@ ... %1$@); a slot written both by a positioned and an
// unpositioned placeholder, or twice with different types, yields
// ErrPositionCollision together with the last-write-wins result.
// Malformed specifiers are ignored here; see Parse.
func OrderedPlaceholders(s string) ([]PlaceholderType, error) {
	return Order(Placeholders(s))
}

// slot writers
const (
	unwritten = iota
	sequential
	positioned
)

// Order resolves argument order for already parsed specs.
func Order(specs []FormatSpec) ([]PlaceholderType, error) {
	ordered := make([]PlaceholderType, len(specs))
	writer := make([]int, len(specs))
	var collision error
	for i, spec := range specs {
		slot, by := i, sequential
		if spec.HasPosition() {
			slot, by = spec.Position-1, positioned
		}
		if slot >= len(ordered) {
			return ordered, fmt.Errorf("%w: %%%d$ with %d placeholders", ErrPositionOutOfRange, spec.Position, len(specs))
		}
		clash := writer[slot] != unwritten &&
			(writer[slot] != by || ordered[slot] != spec.Type)
		if clash && collision == nil {
			collision = fmt.Errorf("%w: argument %d", ErrPositionCollision, slot+1)
		}
		ordered[slot] = spec.Type
		writer[slot] = by
	}
	return ordered, collision
}

// GroupByPosition groups placeholder types by explicit position. All
// unpositioned placeholders share group 0, in order of appearance.
func GroupByPosition(specs []FormatSpec) map[int][]PlaceholderType {
	groups := make(map[int][]PlaceholderType)
	for _, spec := range specs {
		groups[spec.Position] = append(groups[spec.Position], spec.Type)
	}
	return groups
}

// EqualGroups reports whether two position groupings are identical.
func EqualGroups(a, b map[int][]PlaceholderType) bool {
	return maps.EqualFunc(a, b, slices.Equal[[]PlaceholderType])
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdent(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
