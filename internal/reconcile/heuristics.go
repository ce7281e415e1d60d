package reconcile

import "strings"

var maleHonorifics = []string{"Mr ", "Mr.", "Lord ", "Earl ", "Sir ", "Baron ", "Ld ", "Ld. ", "Count "}

var femaleHonorifics = []string{"Mrs ", "Mrs. ", "Lady ", "Miss ", "Baroness ", "Countess ", "Daughter ", "Niece ", "Neice "}

// GenderFromHonorifics scans names in order for a form of address. The first
// name containing one decides; within a name the male list is checked first.
func GenderFromHonorifics(names ...string) (string, bool) {
	for _, name := range names {
		if containsAny(name, maleHonorifics) {
			return GenderMan, true
		}
		if containsAny(name, femaleHonorifics) {
			return GenderWoman, true
		}
	}
	return "", false
}

func containsAny(value string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
