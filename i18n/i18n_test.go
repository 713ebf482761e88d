package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setLocaleEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, name := range localeVars {
		t.Setenv(name, env[name])
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"LANGUAGE list wins", map[string]string{"LANGUAGE": "ru_RU.UTF-8:en_US", "LC_ALL": "de_DE.UTF-8"}, "ru_RU"},
		{"C and POSIX skipped", map[string]string{"LANGUAGE": "C", "LC_ALL": "POSIX", "LC_MESSAGES": "fr_FR.UTF-8"}, "fr_FR"},
		{"LANG alone", map[string]string{"LANG": "pt_BR.ISO-8859-1"}, "pt_BR"},
		{"nothing set", nil, "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setLocaleEnv(t, tt.env)
			assert.Equal(t, tt.want, DetectLanguage())
		})
	}
}

func TestUninitializedPassthrough(t *testing.T) {
	old := current
	current = nil
	t.Cleanup(func() { current = old })

	assert.Equal(t, "No violations found", T("No violations found"))
	assert.Equal(t, "Deleted %d entry", N("Deleted %d entry", "Deleted %d entries", 1))
	assert.Equal(t, "Deleted %d entries", N("Deleted %d entry", "Deleted %d entries", 0))
}

func TestEmbeddedCatalog(t *testing.T) {
	old := current
	t.Cleanup(func() { current = old })

	Init("ru_RU")
	assert.Equal(t, "Нарушений не найдено", T("No violations found"))
	assert.Equal(t, "Удалена %d запись", N("Deleted %d entry", "Deleted %d entries", 1))
	assert.Equal(t, "Удалено %d записи", N("Deleted %d entry", "Deleted %d entries", 3))
	assert.Equal(t, "Удалено %d записей", N("Deleted %d entry", "Deleted %d entries", 11))

	Init("de")
	assert.Equal(t, "No violations found", T("No violations found"), "no German catalog")

	setLocaleEnv(t, map[string]string{"LANG": "ru_RU.UTF-8"})
	Init("")
	assert.Equal(t, "Проект", T("Project"))
}
