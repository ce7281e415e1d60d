package reconcile

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minNameLength     = 3
	particleMaxLength = 3
)

// ExpandNames builds the search variants for a record: every name and alias
// in title case (names shorter than three characters are dropped) plus, for
// names of more than two words, a variant with short words such as "von" or
// "de" lower-cased. The result is deduplicated in first-seen order.
func ExpandNames(name string, aliases []string) []string {
	title := cases.Title(language.Und)

	titled := make([]string, 0, len(aliases)+1)
	for _, candidate := range append([]string{name}, aliases...) {
		candidate = strings.TrimSpace(candidate)
		if utf8.RuneCountInString(candidate) < minNameLength {
			continue
		}
		titled = append(titled, title.String(candidate))
	}

	out := make([]string, 0, len(titled)*2)
	seen := make(map[string]struct{}, len(titled)*2)
	add := func(value string) {
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	for _, value := range titled {
		add(value)
	}
	for _, value := range titled {
		words := strings.Fields(value)
		if len(words) <= 2 {
			continue
		}
		for i, word := range words {
			if utf8.RuneCountInString(word) <= particleMaxLength {
				words[i] = strings.ToLower(word)
			}
		}
		add(strings.Join(words, " "))
	}
	return out
}

// SearchName strips a trailing parenthetical qualifier: "Smith (botanist)"
// searches as "Smith".
func SearchName(variant string) string {
	before, _, _ := strings.Cut(variant, "(")
	return strings.TrimSpace(before)
}
