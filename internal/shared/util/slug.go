package util

import (
	"regexp"
	"strings"
)

var (
	slugInvalid    = regexp.MustCompile(`[^a-zA-Z0-9\-_ ]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// Slugify turns a title into a download-safe file stem. Characters outside
// [a-zA-Z0-9-_ ] are dropped, the edges are trimmed and inner whitespace runs
// become "-", so no stem starts or ends with "-". When nothing is left the
// first fallback is returned, or "resume".
func Slugify(value string, fallback ...string) string {
	s := slugInvalid.ReplaceAllString(value, "")
	s = strings.TrimSpace(s)
	s = slugWhitespace.ReplaceAllString(s, "-")
	if s != "" {
		return s
	}
	if len(fallback) > 0 && fallback[0] != "" {
		return fallback[0]
	}
	return "resume"
}
