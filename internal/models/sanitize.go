package models

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds the decode loop for deeply entity-encoded input.
const maxSanitizePasses = 8

// SanitizeText strips all markup from user-supplied free text and trims it.
// Names and reasons are rendered verbatim by clients, so nothing HTML-like is kept.
// Entities are decoded so "Tom & Jerry" stays readable, and the result is
// sanitized again until stable so encoded tags cannot come back as markup.
func SanitizeText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		clean := strictPolicy.Sanitize(s)
		decoded := html.UnescapeString(clean)
		if decoded == s {
			return strings.TrimSpace(decoded)
		}
		s = decoded
	}
	// Still decoding into something new: keep the escaped form.
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
