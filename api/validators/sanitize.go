package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, folds runs of whitespace and control
// characters into single spaces, and caps the result at maxLen runes.
// Query values such as product search terms pass through here before
// reaching SQL LIKE patterns or cache keys.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))

	runes := 0
	pendingSpace := false
	for _, r := range input {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			pendingSpace = runes > 0
			continue
		}
		if maxLen > 0 && runes >= maxLen {
			break
		}
		if pendingSpace {
			if maxLen > 0 && runes+1 >= maxLen {
				break
			}
			b.WriteByte(' ')
			runes++
			pendingSpace = false
		}
		b.WriteRune(r)
		runes++
	}
	return b.String()
}
