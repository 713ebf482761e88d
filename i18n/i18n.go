// Package i18n translates stringray's console messages. Catalogs are gettext
// .po files embedded from locales/<lang>/LC_MESSAGES/stringray.po.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var catalogs embed.FS

const domain = "stringray"

// localeVars are consulted in gettext order.
var localeVars = []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"}

var current *gotext.Locale

// Init selects the message catalog for lang, or for the environment's
// language when lang is empty. Messages without a translation, or any
// message when no catalog matches, are returned untranslated.
func Init(lang string) {
	if lang == "" {
		lang = DetectLanguage()
	}
	l := gotext.NewLocaleFSWithPath(lang, catalogs, "locales")
	l.AddDomain(domain)
	l.SetDomain(domain)
	current = l
}

// T returns the translation of msgid.
func T(msgid string) string {
	if current == nil {
		return msgid
	}
	return current.Get(msgid)
}

// N returns the plural form of a message matching n under the catalog's
// plural formula.
func N(singular, plural string, n int) string {
	if current == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return current.GetN(singular, plural, n)
}

// DetectLanguage reads the first usable locale from the environment and
// returns it without its encoding ("ru_RU.UTF-8" gives "ru_RU"). The C and
// POSIX locales are skipped. It returns "en" when nothing is set.
func DetectLanguage() string {
	for _, name := range localeVars {
		val := os.Getenv(name)
		if name == "LANGUAGE" {
			// a priority list: "ru:en"
			val, _, _ = strings.Cut(val, ":")
		}
		val, _, _ = strings.Cut(val, ".")
		switch val {
		case "", "C", "POSIX":
			continue
		}
		return val
	}
	return "en"
}
