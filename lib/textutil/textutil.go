package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Fold lowercases name, trims it and replaces every run of whitespace
// with sep, so names that only differ in case or spacing compare equal.
func Fold(name, sep string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t\r")
	return whitespaceRegex.ReplaceAllString(name, sep)
}

// NormalizeName is Fold with single spaces.
func NormalizeName(name string) string {
	return Fold(name, " ")
}
