package catalog

import (
	"regexp"
	"strings"
)

const DefaultGenre = "Drama"

type genreRule struct {
	pattern *regexp.Regexp
	label   string
}

// genreRules are checked in order and the first match wins. Keywords cover
// English and the Indonesian vocabulary the upstream catalogs use.
var genreRules = []genreRule{
	{regexp.MustCompile(`ceo|boss|\bbos\b|presiden|president|billionaire|miliarder|tycoon`), "CEO"},
	{regexp.MustCompile(`nikah|marriage|married|wife|husband|istri|suami|divorce|cerai|mertua|in-law`), "Marriage"},
	{regexp.MustCompile(`cinta|love|romance|romansa|pasangan|lover`), "Romance"},
	{regexp.MustCompile(`balas|dendam|revenge|betray|penghianatan|pengkhianatan|vengeance`), "Revenge"},
	{regexp.MustCompile(`reinkarnasi|reincarnat|reborn|rebirth|hidup kembali|second life`), "Reincarnation"},
}

// ClassifyGenre derives a genre label from title and synopsis keywords.
func ClassifyGenre(title, synopsis string) string {
	content := strings.ToLower(title + " " + synopsis)
	for _, rule := range genreRules {
		if rule.pattern.MatchString(content) {
			return rule.label
		}
	}
	return DefaultGenre
}
