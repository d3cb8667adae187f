package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	DefaultCardTitleMax = 40
	DefaultCartTitleMax = 50
)

// TruncateTitle shortens titles longer than max runes to their first max runes,
// trimmed of surrounding spaces, followed by "...".
func TruncateTitle(title string, max int) string {
	if max <= 0 || utf8.RuneCountInString(title) <= max {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

// FormatCategory upper-cases the first rune of every space separated word and
// leaves the rest of each word untouched.
func FormatCategory(category string) string {
	words := strings.Split(category, " ")
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

// FormatCurrency renders an amount as dollars with two decimals, rounding half
// away from zero.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
