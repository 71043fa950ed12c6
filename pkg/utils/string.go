package utils

import "strings"

// TruncateString shortens a string to the given limit, appending an
// ellipsis when content was removed. Limits below 4 return the raw cut.
func TruncateString(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	if limit < 4 {
		return s[:limit]
	}

	return strings.TrimRight(s[:limit-3], " ") + "..."
}
