// Package stringsfile reads and writes Apple .strings files.
//
// Format: a sequence of entries, each an optional block comment followed by
// a quoted key/value pair terminated by ";" and a newline:
//
//	/* Title of the main window */
//	"window.title" = "Stringray";
//
// Keys and values are kept exactly as written between the quotes; escape
// sequences are not decoded, so writing a parsed file reproduces them.
// Blocks that do not contain a key/value pair are skipped.
//
// Input may be UTF-8 or UTF-16 with a byte order mark. Output is UTF-8.
package stringsfile

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/minios-linux/stringray/strtable"
)

// Ext is the file extension of string files.
const Ext = ".strings"

var pairRe = regexp.MustCompile(`"(.*)"\s*=\s*"(.*)"`)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .strings file from disk. Entry locations
// refer to path.
func ParseFile(path string) ([]strtable.LocalizedString, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses .strings content. file is recorded in each entry's location.
func Parse(data []byte, file string) ([]strtable.LocalizedString, error) {
	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	s := &scanner{src: text, lines: lineStarts(text)}

	var entries []strtable.LocalizedString
	for s.skipSpace(); !s.done(); s.skipSpace() {
		var (
			comment     string
			commentLine int
		)
		if strings.HasPrefix(s.rest(), "/*") {
			commentLine = s.line(s.pos)
			s.pos += 2
			comment = strings.TrimSpace(s.upTo("*/"))
			s.skipSpace()
		}
		if s.done() {
			break
		}
		start := s.pos
		chunk := s.upTo(";\n")

		m, pairs := lastMatch(chunk)
		if m == nil {
			log.Debug().Str("file", file).Int("line", s.line(start)).Msg("skipping malformed strings entry")
			continue
		}
		if pairs > 1 {
			log.Debug().Str("file", file).Int("line", s.line(start)).Int("pairs", pairs).Msg("several pairs in one entry, keeping the last")
		}
		entry := strtable.NewText(chunk[m[2]:m[3]], chunk[m[4]:m[5]], comment)
		entry.Location = &strtable.Location{
			File:        file,
			Line:        s.line(start + m[0]),
			CommentLine: commentLine,
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// lastMatch returns the submatch indexes of the last key/value pair in chunk
// and the number of pairs found.
func lastMatch(chunk string) ([]int, int) {
	all := pairRe.FindAllStringSubmatchIndex(chunk, -1)
	if len(all) == 0 {
		return nil, 0
	}
	return all[len(all)-1], len(all)
}

// decode strips a UTF-8 BOM or converts UTF-16 (detected by its BOM) to
// UTF-8, and turns CRLF line endings into LF.
func decode(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", err
		}
		data = out
	}
	return string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))), nil
}

// ---------------------------------------------------------------------------
// Scanner
// ---------------------------------------------------------------------------

type scanner struct {
	src   string
	pos   int
	lines []int
}

func (s *scanner) done() bool   { return s.pos >= len(s.src) }
func (s *scanner) rest() string { return s.src[s.pos:] }

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			s.pos++
		default:
			return
		}
	}
}

// upTo returns the text before the next occurrence of delim and moves past
// the delimiter, or returns the remainder when delim does not occur.
func (s *scanner) upTo(delim string) string {
	i := strings.Index(s.rest(), delim)
	if i < 0 {
		out := s.rest()
		s.pos = len(s.src)
		return out
	}
	out := s.src[s.pos : s.pos+i]
	s.pos += i + len(delim)
	return out
}

// line returns the 1-based line number of byte offset off.
func (s *scanner) line(off int) int {
	i, found := slices.BinarySearch(s.lines, off)
	if found {
		return i + 1
	}
	return i
}

// lineStarts returns the byte offset at which each line begins.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal renders the text entries of entries. Plural entries are ignored;
// they belong in a .stringsdict file.
func Marshal(entries []strtable.LocalizedString) []byte {
	var buf bytes.Buffer
	first := true
	for _, e := range entries {
		if e.IsPlural() {
			continue
		}
		if !first {
			buf.WriteByte('\n')
		}
		first = false
		if e.HasComment() {
			fmt.Fprintf(&buf, "/* %s */\n", e.Comment)
		}
		fmt.Fprintf(&buf, "\"%s\" = \"%s\";\n", e.Key, e.Value.Text())
	}
	return buf.Bytes()
}

// WriteFile writes the text entries of entries to path.
func WriteFile(path string, entries []strtable.LocalizedString) error {
	if err := os.WriteFile(path, Marshal(entries), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
