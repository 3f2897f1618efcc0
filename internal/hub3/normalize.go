package hub3

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var croatianDiacritics = strings.NewReplacer(
	"č", "c", "Č", "C",
	"ć", "c", "Ć", "C",
	"ž", "z", "Ž", "Z",
	"š", "s", "Š", "S",
	"đ", "d", "Đ", "D",
)

// Normalize replaces Croatian diacritics with their closest ASCII letter.
// Input is NFC-composed first so that decomposed carons (c + U+030C) are
// caught as well. All other characters pass through.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return croatianDiacritics.Replace(norm.NFC.String(text))
}
