// Package runtime holds the state a tiny program mutates while it runs.
package runtime

import "strconv"

// Booleans are represented as integers.
const (
	False int64 = 0
	True  int64 = 1
)

// BoolValue converts a Go bool to the integer encoding.
func BoolValue(b bool) int64 {
	if b {
		return True
	}
	return False
}

// Truthy reports whether v counts as true when a bare expression is used as
// a condition.
func Truthy(v int64) bool {
	return v != False
}

// FormatValue renders v the way print shows it. Exactly 0 and 1 print as
// false and true, so integer results of 0 and 1 are indistinguishable from
// comparison results.
func FormatValue(v int64) string {
	switch v {
	case False:
		return "false"
	case True:
		return "true"
	default:
		return strconv.FormatInt(v, 10)
	}
}
