package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// stripControl drops control characters other than whitespace.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var (
	guestInfoPipeline   = Pipeline{stripControl, TrimAndNormalize}
	descriptionPipeline = Pipeline{stripControl, strings.TrimSpace}
)

// NormalizeGuestInfo collapses guest details onto a single clean line.
func NormalizeGuestInfo(s string) string {
	return guestInfoPipeline.Apply(s)
}

// NormalizeDescription keeps line breaks but trims the ends.
func NormalizeDescription(s string) string {
	return descriptionPipeline.Apply(s)
}
