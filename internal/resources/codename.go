package resources

import (
	"regexp"
	"strings"
)

var (
	whitespace     = regexp.MustCompile(`\s+`)
	notSlugChars   = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphen = regexp.MustCompile(`-{2,}`)
)

// GenerateCodename derives a slug from a display name: "C++ / Advanced!!" becomes "c-advanced".
func GenerateCodename(name string) string {
	str := strings.ToLower(name)
	str = whitespace.ReplaceAllString(str, "-")
	str = notSlugChars.ReplaceAllString(str, "")
	str = repeatedHyphen.ReplaceAllString(str, "-")
	return strings.Trim(str, "-")
}
