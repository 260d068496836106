package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphens  = regexp.MustCompile(`-+`)
	reTag      = regexp.MustCompile(`(<([^>]+)>)`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

// Slugify turns free text into a lowercase [a-z0-9-] slug: diacritics are
// stripped, runs of anything else collapse to a single hyphen, and leading or
// trailing hyphens are trimmed.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// StripHTML removes tags, leaving only text content. It is the snippet and
// word-count helper, not a sanitizer.
func StripHTML(s string) string {
	return reTag.ReplaceAllString(s, "")
}

// WordCount counts whitespace-separated words in s after stripping tags.
func WordCount(s string) int {
	text := strings.TrimSpace(StripHTML(s))
	if text == "" {
		return 0
	}
	return len(reSpaces.Split(text, -1))
}

// ReadingMinutes estimates reading time at 200 words per minute, rounded up.
func ReadingMinutes(content string) int {
	words := WordCount(content)
	if words == 0 {
		return 0
	}
	return (words + 199) / 200
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
