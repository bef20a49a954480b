package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses bounds how many entity layers are peeled off before giving up.
const maxSanitizePasses = 8

// textSanitizer reduces user input to plain text. Entities are decoded so stored
// content reads as typed, and every decoded layer is sanitized again, so encoded
// markup never survives as live markup.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) Clean(in string) string {
	cur := in
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(cur))
		if next == cur {
			return strings.TrimSpace(next)
		}
		cur = next
	}
	// Still changing: keep the escaped form.
	return strings.TrimSpace(s.policy.Sanitize(cur))
}
