package extractor

import (
	"regexp"
	"strings"
)

var nonEntityChars = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)

// NormalizeKey canonicalizes an entity surface form into its graph key:
// everything except letters, digits, whitespace and hyphens is stripped, the
// result is trimmed and lowercased. The operation is idempotent.
func NormalizeKey(name string) string {
	cleaned := nonEntityChars.ReplaceAllString(name, "")
	return strings.ToLower(strings.TrimSpace(cleaned))
}
