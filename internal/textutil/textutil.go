// Package textutil normalizes generated text and cuts it to a length bound
// without leaving a half word behind.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	sentenceEnds = ".!?…"
	clauseEnds   = ",;:"
	trimTail     = " ,;:-–—"
)

// Len counts runes, which is how the length bounds are expressed.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Clean drops an echoed prompt, control characters and wrapping quotes, and
// collapses runs of whitespace to single spaces.
func Clean(s, prompt string) string {
	if prompt != "" {
		s = strings.Replace(s, prompt, "", 1)
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	return unquote(s)
}

func unquote(s string) string {
	pairs := [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}}
	for _, p := range pairs {
		if len(s) > len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			inner := s[len(p[0]) : len(s)-len(p[1])]
			if !strings.Contains(inner, p[0]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}

// Truncate returns s unchanged when it fits in limit runes. Otherwise it cuts
// at the last sentence end, then clause end, then space that keeps at least
// half of the budget, falling back to the last space at all and finally to a
// hard cut when s has no boundary inside the bound.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	atBoundary := func(i int) bool {
		return i >= len(runes) || unicode.IsSpace(runes[i])
	}

	half := limit / 2
	sentence, clause, word := -1, -1, -1
	for i := limit; i > 0; i-- {
		if word < 0 && unicode.IsSpace(runes[i]) {
			word = i
		}
		prev := runes[i-1]
		if sentence < 0 && strings.ContainsRune(sentenceEnds, prev) && atBoundary(i) {
			sentence = i
		}
		if clause < 0 && strings.ContainsRune(clauseEnds, prev) && atBoundary(i) {
			clause = i - 1
		}
	}

	cut := limit
	switch {
	case sentence >= half:
		cut = sentence
	case clause >= half:
		cut = clause
	case word >= half:
		cut = word
	case sentence > 0:
		cut = sentence
	case word > 0:
		cut = word
	}

	out := strings.TrimRight(string(runes[:cut]), trimTail)
	if out == "" {
		return string(runes[:limit])
	}
	return out
}
