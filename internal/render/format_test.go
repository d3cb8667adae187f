package render

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncateTitle(t *testing.T) {
	long := strings.Repeat("a", 39) + " bcd"
	cases := []struct {
		name  string
		title string
		max   int
		want  string
	}{
		{name: "short", title: "Backpack", max: 40, want: "Backpack"},
		{name: "exact", title: strings.Repeat("x", 40), max: 40, want: strings.Repeat("x", 40)},
		{name: "trailing space trimmed", title: long, max: 40, want: strings.Repeat("a", 39) + "..."},
		{name: "runes not bytes", title: "héllo wörld", max: 5, want: "héllo..."},
		{name: "cart length", title: strings.Repeat("b", 51), max: 50, want: strings.Repeat("b", 50) + "..."},
		{name: "non-positive max", title: "anything", max: 0, want: "anything"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateTitle(tc.title, tc.max); got != tc.want {
				t.Fatalf("TruncateTitle(%q, %d) = %q, want %q", tc.title, tc.max, got, tc.want)
			}
		})
	}
}

func TestFormatCategory(t *testing.T) {
	cases := map[string]string{
		"men's clothing":   "Men's Clothing",
		"electronics":      "Electronics",
		"women's clothing": "Women's Clothing",
		"already Upper":    "Already Upper",
		"two  spaces":      "Two  Spaces",
		"élan vital":       "Élan Vital",
		"":                 "",
	}
	for in, want := range cases {
		if got := FormatCategory(in); got != want {
			t.Fatalf("FormatCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"9.99":   "$9.99",
		"19.98":  "$19.98",
		"0":      "$0.00",
		"22.3":   "$22.30",
		"1.005":  "$1.01",
		"109.95": "$109.95",
	}
	for in, want := range cases {
		if got := FormatCurrency(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatCurrency(%s) = %q, want %q", in, got, want)
		}
	}
}
