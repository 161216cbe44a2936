package core

import "regexp"

// emailShape is a syntactic sanity check, not mailbox verification.
var emailShape = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	if s == "" {
		return false
	}
	return emailShape.MatchString(s)
}
