package address

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks (Hebrew niqqud and cantillation) so
// that pointed and unpointed spellings compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// quoteReplacer drops ASCII quotes and the Hebrew geresh/gershayim
// abbreviation marks, plus their typographic variants.
var quoteReplacer = strings.NewReplacer(
	`"`, "", "'", "",
	"׳", "", "״", "", // ׳ ״
	"‘", "", "’", "", // ‘ ’
	"“", "", "”", "", // “ ”
)

// Normalize prepares a street or city name for comparison: quotes and
// abbreviation marks are dropped, diacritics stripped, and whitespace
// collapsed. Case is deliberately left alone; Hebrew has no case.
func Normalize(name string) string {
	cleaned := quoteReplacer.Replace(name)
	if stripped, _, err := transform.String(stripMarks, cleaned); err == nil {
		cleaned = stripped
	}
	return strings.Join(strings.Fields(cleaned), " ")
}

// StripHouseNumber removes trailing numeric tokens from a street query, so
// "הרצל 12" matches the catalog entry "הרצל". Numbers embedded before the
// last non-numeric token are preserved.
func StripHouseNumber(street string) string {
	tokens := strings.Fields(street)

	end := len(tokens)
	for end > 0 && isNumericToken(tokens[end-1]) {
		end--
	}

	if end == 0 {
		// Nothing but numbers; leave the input alone rather than
		// returning an empty query.
		return strings.Join(tokens, " ")
	}

	return strings.Join(tokens[:end], " ")
}

func isNumericToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
