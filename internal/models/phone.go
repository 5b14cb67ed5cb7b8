package models

import "strings"

// NormalizePhone strips every non-digit character from a phone number.
func NormalizePhone(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders a 10-digit phone as (xxx)-xxx-xxxx.
// Numbers that do not normalize to exactly 10 digits are returned unchanged.
func FormatPhone(number string) string {
	d := NormalizePhone(number)
	if len(d) != 10 {
		return number
	}
	return "(" + d[:3] + ")-" + d[3:6] + "-" + d[6:]
}

// FormatPhoneDashed renders a 10-digit phone as xxx-xxx-xxxx.
func FormatPhoneDashed(number string) string {
	d := NormalizePhone(number)
	if len(d) != 10 {
		return number
	}
	return d[:3] + "-" + d[3:6] + "-" + d[6:]
}
