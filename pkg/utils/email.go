package utils

import "strings"

// SafeEmail converts an email address into a key that is safe to use as
// a storage path segment: every '.' and '@' becomes '-'. The result is
// the canonical user key across all stores.
func SafeEmail(email string) string {
	safe := strings.ReplaceAll(email, ".", "-")
	return strings.ReplaceAll(safe, "@", "-")
}
