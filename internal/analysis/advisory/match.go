package advisory

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// matchKeyword reports whether kw occurs in text. Latin keywords match as
// substrings. Devanagari keywords must start a word and end it, optionally
// followed by a chain of inflection suffixes, so that खत does not match
// inside देखते.
func matchKeyword(text, kw string, suffixes []string) bool {
	if !ContainsDevanagari(kw) {
		return strings.Contains(text, kw)
	}

	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(kw)
		if startsWord(text, start) && endsWord(text[end:], suffixes, 0) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func startsWord(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

// maxSuffixChain bounds stacked suffixes such as ांच्या + वर.
const maxSuffixChain = 3

func endsWord(rest string, suffixes []string, depth int) bool {
	if rest == "" {
		return true
	}
	if r, _ := utf8.DecodeRuneInString(rest); !isWordRune(r) {
		return true
	}
	if depth >= maxSuffixChain {
		return false
	}
	for _, sfx := range suffixes {
		if strings.HasPrefix(rest, sfx) && endsWord(rest[len(sfx):], suffixes, depth+1) {
			return true
		}
	}
	return false
}

// Devanagari vowel signs and virama are marks, not letters.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r)
}
