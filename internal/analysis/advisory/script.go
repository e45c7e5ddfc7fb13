package advisory

import "strings"

// Language is one of the languages the advisor answers in.
type Language string

const (
	Marathi Language = "marathi"
	Hindi   Language = "hindi"
	English Language = "english"
)

const (
	devanagariFirst = '\u0900'
	devanagariLast  = '\u097F'
)

// ContainsDevanagari reports whether text has at least one code point in the
// Devanagari block (U+0900..U+097F).
func ContainsDevanagari(text string) bool {
	for _, r := range text {
		if r >= devanagariFirst && r <= devanagariLast {
			return true
		}
	}
	return false
}

// DetectLanguage classifies text by script. Devanagari text that mentions one
// of the Marathi farming terms is Marathi, other Devanagari text is Hindi and
// everything else is English.
func DetectLanguage(text string, marathiTerms []string) Language {
	if !ContainsDevanagari(text) {
		return English
	}
	for _, term := range marathiTerms {
		if term != "" && strings.Contains(text, term) {
			return Marathi
		}
	}
	return Hindi
}
