package util

import (
	"regexp"
	"strings"
)

var (
	// htmlTagPattern matches HTML tags like <span>, </span>, <script>, etc.
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	// multiSpacePattern matches multiple consecutive whitespace characters
	multiSpacePattern = regexp.MustCompile(`\s+`)
	// inlineSpacePattern matches runs of spaces and tabs without newlines
	inlineSpacePattern = regexp.MustCompile(`[ \t]+`)
	// blankLinesPattern matches three or more consecutive newlines
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// CleanText strips markup from owner-supplied single line input (titles,
// addresses) and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = stripMarkup(s)
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanMultiline strips markup from free text (descriptions, house rules)
// but keeps paragraph breaks.
func CleanMultiline(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = stripMarkup(s)
	s = inlineSpacePattern.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLinesPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// stripMarkup decodes entities before removing tags and repeats until the
// text is stable, so escaped or double-escaped markup cannot survive.
func stripMarkup(s string) string {
	for {
		// Escaped closing tags: <\/ -> </
		next := strings.ReplaceAll(entityReplacer.Replace(s), `<\/`, `</`)
		next = htmlTagPattern.ReplaceAllString(next, "")
		if next == s {
			return s
		}
		s = next
	}
}
