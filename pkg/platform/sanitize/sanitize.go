// Package sanitize strips markup from free-text fields before they are
// validated, signed, and stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxRounds bounds how many layers of entity encoding Text peels off.
const maxRounds = 8

// Text removes all HTML, unescapes the entities bluemonday leaves behind, and
// trims surrounding whitespace. Unescaping can surface markup that was
// hidden behind entities, so the pair is repeated until the value stops
// changing. Input that is still changing after maxRounds is returned in its
// escaped form.
func Text(s string) string {
	if s == "" {
		return ""
	}
	cur := s
	for range maxRounds {
		next := html.UnescapeString(strict.Sanitize(cur))
		if next == cur {
			return strings.TrimSpace(next)
		}
		cur = next
	}
	return strings.TrimSpace(strict.Sanitize(cur))
}

// TextPtr applies Text to an optional field, keeping nil as nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	return &v
}
