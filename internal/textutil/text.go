// Package textutil holds the text normalization shared by alias lookup,
// relevance filtering and risk scoring.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lower returns the Unicode lower-case form of s, so that "LUKOIL",
// "Lukoil" and "lukoil" compare equal. It is plain lower-casing, not full
// case folding: "ß" stays "ß" and does not match "ss".
// A fresh Caser is created per call because a Caser keeps state and is
// not safe for concurrent use.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// LowerKey lower-cases s after trimming surrounding whitespace. Alias
// mapping keys are normalized with it.
func LowerKey(s string) string {
	return Lower(strings.TrimSpace(s))
}

// CollapseSpace replaces every run of whitespace in s with a single space
// and trims the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
