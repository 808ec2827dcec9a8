package utils

import (
	"regexp"
	"strings"
)

var (
	boilerplateRegex  = regexp.MustCompile(`\bShow (?:more|less)\b`)
	trailingMoreRegex = regexp.MustCompile(`\s*(?:…|\.\.\.)\s*more\s*$`)
	spaceRunRegex     = regexp.MustCompile(`[ \t\f\v]+`)
	blankLinesRegex   = regexp.MustCompile(`\n{3,}`)
)

// StripBoilerplate removes expander labels ("Show more", "Show less") and a
// trailing "… more" left behind by truncated text.
func StripBoilerplate(s string) string {
	s = boilerplateRegex.ReplaceAllString(s, " ")
	return trailingMoreRegex.ReplaceAllString(s, "")
}

// NormalizeText cleans a single-line value: boilerplate removed, every
// whitespace run (newlines and NBSP included) collapsed to one space, trimmed.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = StripBoilerplate(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeBlock cleans multi-line text: boilerplate removed, space runs
// collapsed within lines, trailing spaces dropped, 3+ newlines reduced to 2.
func NormalizeBlock(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, " ", " ")
	s = StripBoilerplate(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(spaceRunRegex.ReplaceAllString(line, " "), " ")
	}
	s = strings.Join(lines, "\n")

	s = blankLinesRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
