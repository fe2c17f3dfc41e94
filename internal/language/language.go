// Package language tags a text corpus with its dominant script family.
//
// Detection is a presence test: one code point from a block is enough.
// Checks run in priority order urdu, arabic, hindi and default to english.
package language

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"

	"irps-content-analyzer/internal/models"
)

var (
	// U+0600–U+06FF
	arabicBlock = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0600, Hi: 0x06FF, Stride: 1}}}
	// U+0750–U+077F
	arabicSupplement = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0750, Hi: 0x077F, Stride: 1}}}
	// U+0900–U+097F
	devanagariBlock = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}}}

	// Letters of the main Arabic block that Urdu orthography uses and
	// Arabic does not: ٹ ڈ ڑ ں ھ ہ ۂ ے ۓ, plus the Urdu forms of yeh,
	// kaf and gaf (ی U+06CC, ک U+06A9, گ U+06AF) that replace ي and ك.
	urduLetters = rangetable.New('ٹ', 'ڈ', 'ڑ', 'ں', 'ھ', 'ہ', 'ۂ', 'ے', 'ۓ', 'ی', 'ک', 'گ')

	urduMarkers = rangetable.Merge(arabicSupplement, urduLetters)
)

// Detect returns the language whose script appears in text.
func Detect(text string) models.Language {
	var hasArabic, hasDevanagari bool
	for _, r := range text {
		switch {
		case unicode.Is(urduMarkers, r):
			return models.Urdu
		case unicode.Is(arabicBlock, r):
			hasArabic = true
		case unicode.Is(devanagariBlock, r):
			hasDevanagari = true
		}
	}
	switch {
	case hasArabic:
		return models.Arabic
	case hasDevanagari:
		return models.Hindi
	default:
		return models.English
	}
}
