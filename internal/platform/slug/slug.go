package slug

import (
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]+`)

// FileName turns a display name into a single path element.
// Case and spaces are kept; separators and reserved characters become "_".
func FileName(input string) string {
	s := strings.TrimSpace(input)
	s = unsafeFileChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, ". ")
	if s == "" {
		return "untitled"
	}
	return s
}
