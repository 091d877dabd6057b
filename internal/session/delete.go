package session

import "unicode"

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordDeleteCount reports how many trailing runes a smart delete removes:
// trailing whitespace, then either a run of word runes, or a run of symbols
// plus the whitespace and word run behind it.
func wordDeleteCount(typed []rune) int {
	i := len(typed)
	for i > 0 && unicode.IsSpace(typed[i-1]) {
		i--
	}
	if i == 0 {
		return len(typed)
	}
	if isWordRune(typed[i-1]) {
		for i > 0 && isWordRune(typed[i-1]) {
			i--
		}
		return len(typed) - i
	}
	for i > 0 && !isWordRune(typed[i-1]) && !unicode.IsSpace(typed[i-1]) {
		i--
	}
	for i > 0 && unicode.IsSpace(typed[i-1]) {
		i--
	}
	for i > 0 && isWordRune(typed[i-1]) {
		i--
	}
	return len(typed) - i
}
