package render

import (
	"regexp"
	"strings"
)

const (
	maxFilenameLen      = 200
	placeholderFilename = "unnamed_job.md"
)

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
)

// SanitizeFilename strips characters that are invalid on common filesystems,
// collapses whitespace and caps the stem at 200 characters while keeping the
// extension. An empty result becomes "unnamed_job.md".
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	if len([]rune(name)) > maxFilenameLen {
		stem, ext := name, ""
		if i := strings.LastIndex(name, "."); i >= 0 {
			stem, ext = name[:i], name[i:]
		}
		if runes := []rune(stem); len(runes) > maxFilenameLen {
			stem = string(runes[:maxFilenameLen])
		}
		name = stem + ext
	}

	if name == "" {
		return placeholderFilename
	}
	return name
}
