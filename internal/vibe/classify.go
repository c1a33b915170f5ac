package vibe

import "strings"

// Classify returns every vibe whose keywords occur in the title or
// description, in taxonomy order. Matching is case-insensitive substring
// containment, so "up" also matches "cup". All is never returned.
func Classify(title, description string) []Vibe {
	text := strings.ToLower(title + " " + description)

	var detected []Vibe
	for _, d := range taxonomy {
		for _, kw := range d.Keywords {
			if strings.Contains(text, kw) {
				detected = append(detected, d.Name)
				break
			}
		}
	}
	return detected
}

// Matches reports whether an item passes filter.
func Matches(filter Vibe, title, description string) bool {
	if filter == All {
		return true
	}
	for _, v := range Classify(title, description) {
		if v == filter {
			return true
		}
	}
	return false
}
