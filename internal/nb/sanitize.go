package nb

import (
	"fmt"
	"strings"
)

// SafeName maps an arbitrary display string to a token that is safe as a
// file name or object key segment. Surrounding whitespace is trimmed, then
// every character outside [A-Za-z0-9_-] is replaced with an underscore.
// Distinct inputs may map to the same output.
func SafeName(name string) string {
	trimmed := strings.TrimSpace(name)

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if isSafeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

// BlobKey returns the object key an archive is stored under.
func BlobKey(timestamp, subscriptionName string) string {
	return fmt.Sprintf("%s/%s_network_backup.zip", timestamp, SafeName(subscriptionName))
}
