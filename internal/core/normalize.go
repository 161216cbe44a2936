package core

// normalize.go canonicalizes raw header text.
//
// The substitution is intentionally literal: spaces and hyphens become
// underscores and one pass of "__" -> "_" runs afterwards. Longer runs of
// separators ("a - b") are therefore only partially collapsed.

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeHeader converts a raw header cell to its HeaderKey.
func NormalizeHeader(raw string) HeaderKey {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")

	// A Caser carries state and must not be shared between goroutines.
	return HeaderKey(cases.Lower(language.Und).String(s))
}

// SearchKeyOf strips a HeaderKey down to lowercase ASCII letters, digits
// and underscores.
func SearchKeyOf(h HeaderKey) SearchKey {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range string(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return SearchKey(b.String())
}

// searchKeyFor normalizes a logical field name and strips it.
func searchKeyFor(name string) SearchKey {
	return SearchKeyOf(NormalizeHeader(name))
}
