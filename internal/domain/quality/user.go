package quality

import (
	"strings"
	"unicode"
)

// ValidUsername accepts letters, digits and @ . + - _ only.
func ValidUsername(raw string) bool {
	if raw == "" {
		return false
	}
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return false
	}
	return true
}
