package stringsfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/minios-linux/stringray/strtable"
)

const sample = `/* Title of the main window */
"window.title" = "Stringray";

/* Greeting with the user's name */
"greeting" = "Hello, %@!";
"no.comment" = "Plain";

/*
   Multi-line
   comment
*/
"escaped" = "Say \"hi\"\n";
`

func TestParse(t *testing.T) {
	entries, err := Parse([]byte(sample), "en.lproj/Localizable.strings")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "window.title", entries[0].Key)
	assert.Equal(t, "Stringray", entries[0].Value.Text())
	assert.Equal(t, "Title of the main window", entries[0].Comment)
	assert.Equal(t, &strtable.Location{File: "en.lproj/Localizable.strings", Line: 2, CommentLine: 1}, entries[0].Location)

	assert.Equal(t, "Hello, %@!", entries[1].Value.Text())
	assert.Equal(t, 5, entries[1].Location.Line)

	assert.False(t, entries[2].HasComment())
	assert.Equal(t, 6, entries[2].Location.Line)
	assert.Zero(t, entries[2].Location.CommentLine)

	assert.Equal(t, "Multi-line\n   comment", entries[3].Comment)
	assert.Equal(t, `Say \"hi\"\n`, entries[3].Value.Text(), "escapes are kept verbatim")
	assert.Equal(t, 8, entries[3].Location.CommentLine)
	assert.Equal(t, 12, entries[3].Location.Line)
}

func TestParseSkipsMalformed(t *testing.T) {
	src := "\"good\" = \"1\";\nthis is not an entry;\n\"also\" = \"2\";\n"
	entries, err := Parse([]byte(src), "x.strings")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "good", entries[0].Key)
	assert.Equal(t, "also", entries[1].Key)
	assert.Equal(t, 3, entries[1].Location.Line)
}

func TestParseEdgeCases(t *testing.T) {
	entries, err := Parse([]byte("/* same line */ \"k\" = \"v\";"), "x.strings")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "same line", entries[0].Comment)
	assert.Equal(t, "v", entries[0].Value.Text(), "final entry needs no trailing newline")

	entries, err = Parse([]byte("/* */\n\"k\" = \"v\";\n"), "x.strings")
	require.NoError(t, err)
	assert.False(t, entries[0].HasComment(), "empty comment counts as absent")

	entries, err = Parse(nil, "x.strings")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = Parse([]byte("/* dangling comment */\n"), "x.strings")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseUTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("/* Café */\n\"menu\" = \"Carte du café\";\n"))
	require.NoError(t, err)

	entries, err := Parse(data, "fr.lproj/Localizable.strings")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Café", entries[0].Comment)
	assert.Equal(t, "Carte du café", entries[0].Value.Text())

	entries, err = Parse(append([]byte{0xEF, 0xBB, 0xBF}, `"k" = "v";`...), "x.strings")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k", entries[0].Key, "UTF-8 BOM stripped")
}

func TestParseCRLF(t *testing.T) {
	src := "/* First */\r\n\"a\" = \"1\";\r\n\r\n\"b\" = \"2\";\r\n\"c\" = \"3\";\r\n"
	entries, err := Parse([]byte(src), "x.strings")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "First", entries[0].Comment)
	assert.Equal(t, "1", entries[0].Value.Text())
	assert.Equal(t, "b", entries[1].Key)
	assert.Equal(t, 4, entries[1].Location.Line)
	assert.Equal(t, "3", entries[2].Value.Text())
}

func TestMarshal(t *testing.T) {
	entries := []strtable.LocalizedString{
		strtable.NewText("a", "A", "First"),
		strtable.NewPlural("files", strtable.Plural{FormatKey: "%#@n@"}),
		strtable.NewText("b", "B", ""),
	}
	want := "/* First */\n\"a\" = \"A\";\n\n\"b\" = \"B\";\n"
	assert.Equal(t, want, string(Marshal(entries)))
	assert.Empty(t, Marshal(nil))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Localizable.strings")
	first, err := Parse([]byte(sample), path)
	require.NoError(t, err)

	require.NoError(t, WriteFile(path, first))
	second, err := ParseFile(path)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Key, second[i].Key)
		assert.Equal(t, first[i].Value, second[i].Value)
		assert.Equal(t, first[i].Comment, second[i].Comment)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(Marshal(second)), string(data), "writing is stable")
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.strings"))
	assert.ErrorContains(t, err, "reading ")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
