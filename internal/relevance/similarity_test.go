package relevance

import (
	"math"
	"strings"
	"testing"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{name: "identical strings", a: "acme", b: "acme", expected: 1.0},
		{name: "two empty strings", a: "", b: "", expected: 1.0},
		{name: "one empty string", a: "abc", b: "", expected: 0.0},
		{name: "shifted overlap", a: "abcd", b: "bcde", expected: 0.75},
		{name: "alias prefix of a longer word", a: "lukoil", b: "lukoilish", expected: 0.8},
		{name: "alias prefix of a title", a: "acme", b: "acme corp", expected: 8.0 / 13.0},
		{name: "one missing letter", a: "kubair mullchandi", b: "kubair mulchandi", expected: 32.0 / 33.0},
		{name: "popular runes in a long string only extend matches", a: "lukoil", b: strings.Repeat("lukoil ", 40), expected: 12.0 / 286.0},
		{name: "popular runes limit a repetitive long string", a: "aaa", b: strings.Repeat("ab", 150), expected: 2.0 / 303.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestRatioIsBounded(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "a", "acme", "Ünïcödé", "money laundering probe", strings.Repeat("x", 250)}
	for _, a := range inputs {
		for _, b := range inputs {
			r := Ratio(a, b)
			if r < 0 || r > 1 {
				t.Errorf("Ratio(%q, %q) = %v out of [0,1]", a, b, r)
			}
		}
	}
}
