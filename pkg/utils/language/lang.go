// Package language negotiates the display language of rendered pages.
package language

import (
	"golang.org/x/text/language"
)

// Supported lists the page languages in preference order. The catalogs are
// mostly Indonesian; English is the default UI language.
var Supported = []language.Tag{
	language.English,
	language.Indonesian,
}

var matcher = language.NewMatcher(Supported)

// Negotiate picks the best supported language for an Accept-Language header.
// Malformed or empty headers yield English.
func Negotiate(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

// Code returns the BCP 47 base code of t, e.g. "id" for Indonesian.
func Code(t language.Tag) string {
	base, _ := t.Base()
	return base.String()
}
