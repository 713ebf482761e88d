package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/stringray/cache"
)

const plurals = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>files</key>
	<dict>
		<key>NSStringLocalizedFormatKey</key>
		<string>%#@n@</string>
		<key>n</key>
		<dict>
			<key>NSStringFormatSpecTypeKey</key>
			<string>NSStringPluralRuleType</string>
			<key>one</key>
			<string>%d file</string>
			<key>other</key>
			<string>%d files</string>
		</dict>
	</dict>
</dict>
</plist>
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixture lays out en (strings and stringsdict), fr and de.
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, Path(root, "en", "Localizable", ".strings"), "/* Greeting */\n\"hello\" = \"Hello\";\n\n/* Farewell */\n\"bye\" = \"Bye\";\n")
	writeFile(t, Path(root, "en", "Localizable", ".stringsdict"), plurals)
	writeFile(t, Path(root, "fr", "Localizable", ".strings"), "\"hello\" = \"Bonjour\";\n")
	writeFile(t, Path(root, "de", "Localizable", ".strings"), "\"hello\" = \"Hallo\";\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Resources"), 0o755))
	return root
}

func TestLocales(t *testing.T) {
	root := fixture(t)
	writeFile(t, filepath.Join(root, "stray.lproj"), "not a directory")

	locales, err := Locales(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en", "fr"}, locales)

	_, err = Locales(filepath.Join(root, "missing"))
	assert.ErrorContains(t, err, "reading ")
}

func TestLoadTable(t *testing.T) {
	root := fixture(t)
	tbl, err := New("").LoadTable(root, "Localizable", "en")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "de", "fr"}, tbl.Locales())
	en := tbl.BaseLocalization()
	require.Equal(t, 3, en.Len())
	assert.Equal(t, []string{"hello", "bye", "files"}, en.AllKeys().Values(), "text entries first")
	assert.True(t, en.Entries[2].IsPlural())
	assert.Equal(t, "Greeting", en.Entries[0].Comment)
	assert.Equal(t, 2, en.Entries[0].Location.Line)
	assert.Equal(t, Path(root, "en", "Localizable", ".strings"), en.Entries[0].Location.File)

	fr, ok := tbl.Localization("fr")
	require.True(t, ok)
	assert.Equal(t, "Bonjour", fr.Entries[0].Value.Text())
}

func TestLoadTableIgnoring(t *testing.T) {
	root := fixture(t)
	tbl, err := New("").LoadTable(root, "Localizable", "en", "fr", "de")
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, tbl.Locales())
}

func TestLoadTableOtherTableName(t *testing.T) {
	root := fixture(t)
	tbl, err := New("").LoadTable(root, "InfoPlist", "en")
	require.NoError(t, err)
	assert.Empty(t, tbl.Locales(), "no locale has InfoPlist files")
}

func TestCacheSkipsUnchangedFiles(t *testing.T) {
	root := fixture(t)
	dir := t.TempDir()

	first := New(dir)
	_, err := first.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	assert.Equal(t, Stats{Parsed: 4}, first.Stats())
	require.NoError(t, first.WriteCache(root, "Localizable"))

	var parsed []string
	second := New(dir)
	second.OnParse = func(path string) { parsed = append(parsed, path) }
	tbl, err := second.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	assert.Empty(t, parsed)
	assert.Equal(t, Stats{Cached: 4}, second.Stats())

	en := tbl.BaseLocalization()
	require.Equal(t, 3, en.Len())
	assert.Equal(t, "Greeting", en.Entries[0].Comment)
	assert.Equal(t, 2, en.Entries[0].Location.Line)
	p, ok := en.Entries[2].Value.Plural()
	require.True(t, ok)
	assert.Equal(t, "%d file", p.Rules["n"].One)
}

func TestCacheInvalidatesOnlyChangedFile(t *testing.T) {
	root := fixture(t)
	dir := t.TempDir()

	l := New(dir)
	_, err := l.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	require.NoError(t, l.WriteCache(root, "Localizable"))

	frPath := Path(root, "fr", "Localizable", ".strings")
	writeFile(t, frPath, "\"hello\" = \"Salut\";\n")

	var parsed []string
	again := New(dir)
	again.OnParse = func(path string) { parsed = append(parsed, path) }
	tbl, err := again.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{frPath}, parsed)
	assert.Equal(t, Stats{Parsed: 1, Cached: 3}, again.Stats())

	fr, _ := tbl.Localization("fr")
	assert.Equal(t, "Salut", fr.Entries[0].Value.Text())
}

func TestCacheInvalidatesOnLayoutChange(t *testing.T) {
	root := fixture(t)
	dir := t.TempDir()

	l := New(dir)
	_, err := l.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	require.NoError(t, l.WriteCache(root, "Localizable"))

	writeFile(t, Path(root, "ja", "Localizable", ".strings"), "\"hello\" = \"こんにちは\";\n")

	again := New(dir)
	_, err = again.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	assert.Equal(t, Stats{Parsed: 5}, again.Stats(), "a new locale reparses everything")

	other := New(dir)
	_, err = other.LoadTable(root, "Localizable", "fr")
	require.NoError(t, err)
	assert.Equal(t, 0, other.Stats().Cached, "a different base reparses everything")
}

func TestCorruptCacheFallsBackToParsing(t *testing.T) {
	root := fixture(t)
	dir := t.TempDir()
	writeFile(t, cache.PathFor(dir, root, "Localizable"), "{{{ not yaml")

	l := New(dir)
	tbl, err := l.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	assert.Equal(t, 4, l.Stats().Parsed)
	assert.Equal(t, 3, tbl.BaseLocalization().Len())

	require.NoError(t, l.WriteCache(root, "Localizable"))
	rec, err := cache.Load(cache.PathFor(dir, root, "Localizable"))
	require.NoError(t, err, "the corrupt record is replaced")
	assert.Len(t, rec.Files, 4)
}

func TestSameLoaderReusesRecord(t *testing.T) {
	root := fixture(t)
	l := New(t.TempDir())
	_, err := l.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	_, err = l.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	assert.Equal(t, Stats{Parsed: 4, Cached: 4}, l.Stats())
	assert.Contains(t, l.CacheSummary(root, "Localizable"), "4 files")
	assert.Equal(t, "disabled", New("").CacheSummary(root, "Localizable"))
}

func TestInvalidPluralsAreSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, Path(root, "en", "Localizable", ".stringsdict"), `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>broken</key>
	<dict>
		<key>NSStringLocalizedFormatKey</key>
		<string>%#@n@</string>
		<key>n</key>
		<dict>
			<key>NSStringFormatSpecTypeKey</key>
			<string>NSStringPluralRuleType</string>
			<key>one</key>
			<string>%d</string>
		</dict>
	</dict>
</dict>
</plist>
`)
	dir := t.TempDir()
	l := New(dir)
	tbl, err := l.LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.BaseLocalization().Len())
	assert.Equal(t, "empty", l.CacheSummary(root, "Localizable"), "invalid files are not cached")
}

func TestLoadTableNotAPlist(t *testing.T) {
	root := t.TempDir()
	writeFile(t, Path(root, "en", "Localizable", ".stringsdict"), "<?xml version=\"1.0\"?>\n<plist version=\"1.0\"><dict><key>k</key>")
	_, err := New("").LoadTable(root, "Localizable", "en")
	assert.ErrorContains(t, err, "parsing ")
}

func TestSaveTable(t *testing.T) {
	root := fixture(t)
	tbl, err := New("").LoadTable(root, "Localizable", "en")
	require.NoError(t, err)

	en := tbl.BaseLocalization()
	en.RemoveKey("bye")
	en.AddText("new", "New", "Added")
	fr, _ := tbl.Localization("fr")
	fr.RemoveKey("hello")
	tbl.Ensure("it").AddText("hello", "Ciao", "")

	require.NoError(t, SaveTable(tbl, root))

	data, err := os.ReadFile(Path(root, "fr", "Localizable", ".strings"))
	require.NoError(t, err)
	assert.Empty(t, data, "emptied file is truncated")
	assert.NoFileExists(t, Path(root, "fr", "Localizable", ".stringsdict"))
	assert.FileExists(t, Path(root, "it", "Localizable", ".strings"))

	again, err := New("").LoadTable(root, "Localizable", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "new", "files"}, again.BaseLocalization().AllKeys().Values())
	it, ok := again.Localization("it")
	require.True(t, ok)
	assert.Equal(t, "Ciao", it.Entries[0].Value.Text())
}

func TestWriteCacheWithoutLoad(t *testing.T) {
	assert.NoError(t, New(t.TempDir()).WriteCache(t.TempDir(), "Localizable"))
	assert.NoError(t, New("").WriteCache(t.TempDir(), "Localizable"))
}
