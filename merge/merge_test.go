package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/stringray/strtable"
)

func table(name string) *strtable.Table {
	t := strtable.NewTable(name, "en")
	en := t.Ensure("en")
	en.AddText("settings.title", "Settings", "Screen title")
	en.AddText("settings.done", "Done", "")
	en.AddText("about", "About", "")
	en.Add(strtable.NewPlural("settings.items", strtable.Plural{
		FormatKey: "%#@n@",
		Rules:     map[string]strtable.PluralRule{"n": {One: "%d item", Other: "%d items"}},
	}))
	fr := t.Ensure("fr")
	fr.AddText("settings.title", "Réglages", "")
	fr.AddText("about", "À propos", "")
	return t
}

func keys(l *strtable.Localization) []string {
	var out []string
	for _, e := range l.Entries {
		out = append(out, e.Key)
	}
	return out
}

func TestCopy(t *testing.T) {
	src := table("Localizable")
	dst := strtable.NewTable("Settings", "en")
	dst.Ensure("en").AddText("settings.done", "OK", "existing")

	selected := Copy(src, dst, Selection{Matches: []strtable.Match{strtable.Prefix("settings.")}})
	assert.Equal(t, 4, selected.Len())

	en, _ := dst.Localization("en")
	require.Equal(t, []string{"settings.done", "settings.title", "settings.items"}, keys(en))
	assert.Equal(t, "OK", en.Entries[0].Value.Text(), "existing entry wins")
	assert.True(t, en.Entries[2].IsPlural())

	fr, ok := dst.Localization("fr")
	require.True(t, ok)
	assert.Equal(t, []string{"settings.title"}, keys(fr))
	assert.Equal(t, 6, src.Len(), "source untouched")
}

func TestCopyAllOneLocale(t *testing.T) {
	src := table("Localizable")
	dst := strtable.NewTable("Other", "en")

	Copy(src, dst, Selection{Locale: "fr"})
	require.Equal(t, []string{"fr"}, dst.Locales())
	fr, _ := dst.Localization("fr")
	assert.Equal(t, []string{"settings.title", "about"}, keys(fr))
}

func TestMove(t *testing.T) {
	src := table("Localizable")
	dst := strtable.NewTable("Settings", "en")

	Move(src, dst, Selection{Matches: []strtable.Match{strtable.Prefix("settings."), strtable.Exact("nope")}})

	en, _ := src.Localization("en")
	assert.Equal(t, []string{"about"}, keys(en))
	fr, _ := src.Localization("fr")
	assert.Equal(t, []string{"about"}, keys(fr))
	assert.Equal(t, 4, dst.Len())
}

func TestMoveKeepsOtherKind(t *testing.T) {
	src := strtable.NewTable("A", "en")
	en := src.Ensure("en")
	en.AddText("count", "Count", "")
	en.Add(strtable.NewPlural("count", strtable.Plural{FormatKey: "%#@n@"}))

	dst := strtable.NewTable("B", "en")
	dst.Ensure("en").AddText("other", "x", "")

	Move(src, dst, Selection{Matches: []strtable.Match{strtable.Exact("count")}})
	assert.Zero(t, en.Len(), "source still holds %v", keys(en))
	dstEn, _ := dst.Localization("en")
	assert.Equal(t, 3, dstEn.Len(), "destination en = %v", keys(dstEn))
}

func TestDelete(t *testing.T) {
	tbl := table("Localizable")

	_, err := Delete(tbl, Selection{})
	require.ErrorIs(t, err, ErrNoMatches)

	removed, err := Delete(tbl, Selection{Locale: "fr", Matches: []strtable.Match{strtable.Exact("about")}})
	require.NoError(t, err)
	assert.Equal(t, 1, removed.Len())

	fr, _ := tbl.Localization("fr")
	assert.Equal(t, []string{"settings.title"}, keys(fr))
	en, _ := tbl.Localization("en")
	assert.Equal(t, 4, en.Len(), "other locales untouched")
}

func TestSort(t *testing.T) {
	tbl := table("Localizable")
	assert.False(t, Sort(tbl, "de"), "missing locale")
	require.True(t, Sort(tbl, "fr"))

	fr, _ := tbl.Localization("fr")
	en, _ := tbl.Localization("en")
	assert.Equal(t, []string{"about", "settings.title"}, keys(fr))
	assert.Equal(t, "settings.title", keys(en)[0], "en not sorted yet")

	Sort(tbl, "")
	assert.Equal(t, []string{"about", "settings.done", "settings.items", "settings.title"}, keys(en))
}

func TestRename(t *testing.T) {
	tbl := table("Localizable")
	re, err := strtable.NewRegex(`^about$`)
	require.NoError(t, err)

	n, err := Rename(tbl, []strtable.Match{strtable.Prefix("settings."), re}, []string{"prefs.", "info"})
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	en, _ := tbl.Localization("en")
	assert.Equal(t, []string{"prefs.title", "prefs.done", "info", "prefs.items"}, keys(en))

	_, err = Rename(tbl, []strtable.Match{strtable.Prefix("x")}, nil)
	assert.Error(t, err, "missing replacement")
	_, err = Rename(tbl, nil, nil)
	assert.ErrorIs(t, err, ErrNoMatches)
}
