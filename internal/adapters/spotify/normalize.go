package spotify

import (
	"strings"
	"unicode"
)

// noiseTokens are release qualifiers that differ between a user's request and
// the catalog entry without changing which recording is meant.
var noiseTokens = map[string]struct{}{
	"clean":      {},
	"deluxe":     {},
	"edition":    {},
	"edit":       {},
	"explicit":   {},
	"feat":       {},
	"featuring":  {},
	"ft":         {},
	"live":       {},
	"mix":        {},
	"mono":       {},
	"radio":      {},
	"remaster":   {},
	"remastered": {},
	"stereo":     {},
	"version":    {},
}

// normalizeSearchInput lowercases, drops bracketed segments and punctuation,
// and removes noise tokens.
func normalizeSearchInput(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	tokens := strings.FieldsFunc(stripBracketedSegments(strings.ToLower(input)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	cleaned := tokens[:0]
	for _, token := range tokens {
		if _, drop := noiseTokens[token]; drop {
			continue
		}
		cleaned = append(cleaned, token)
	}
	return strings.Join(cleaned, " ")
}

// stripBracketedSegments removes "(...)" and "[...]", nesting included.
func stripBracketedSegments(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}
	return out.String()
}

func fallbackIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return strings.TrimSpace(fallback)
	}
	return value
}
