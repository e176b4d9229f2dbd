package core

import "strings"

// CleanString trims the surrounding whitespace of s.
func CleanString(s string) string {
	return strings.TrimSpace(s)
}

// CleanLower trims and lower-cases s, the form usernames and emails are stored in.
func CleanLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
