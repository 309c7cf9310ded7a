package listings

import "strings"

// Filter narrows a community's listings. The text query is a
// case-insensitive substring match over title, description and location,
// applied to the already-fetched community set.
type Filter struct {
	Query    string
	Category Category
	Status   Status
}

// Normalized returns a sanitized copy.
func (f Filter) Normalized() Filter {
	f.Query = strings.ToLower(strings.TrimSpace(f.Query))
	return f
}

// Matches reports whether the listing passes the filter. Call on a
// Normalized filter.
func (f Filter) Matches(l *Listing) bool {
	if f.Category != "" && l.Category() != f.Category {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	haystack := strings.ToLower(l.Title + " " + l.Description + " " + l.Location)
	return strings.Contains(haystack, f.Query)
}
