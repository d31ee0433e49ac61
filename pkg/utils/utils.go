package utils

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Capitalize returns the string with its first letter capitalized.
// Using golang.org/x/text/cases for robust capitalization, as strings.Title is deprecated.
func Capitalize(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}
