package scraper

import "strings"

// Denylist is a fixed set of author-name substrings whose content never
// enters the store. The cleanup job reuses the same list for retroactive
// deletion so both sides match identically.
type Denylist []string

// IsExcluded reports whether the author matches any denylist entry,
// case-insensitive, unanchored substring containment.
func (d Denylist) IsExcluded(author string) bool {
	lowered := strings.ToLower(author)
	for _, pattern := range d {
		if pattern == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
