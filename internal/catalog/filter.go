package catalog

import (
	"slices"
	"strings"
)

// Filter selects resources. Inactive predicates (empty query, StatusAll,
// empty or "All" year) match everything; active ones are combined with AND.
type Filter struct {
	Query  string
	Status Status
	Year   string
}

// ParseFilter builds a filter from raw query values. Unknown statuses fall
// back to StatusAll.
func ParseFilter(kind Kind, query, status, year string) Filter {
	f := Filter{
		Query:  strings.TrimSpace(query),
		Status: StatusAll,
		Year:   strings.TrimSpace(year),
	}

	for _, s := range kind.Statuses() {
		if strings.EqualFold(status, string(s)) {
			f.Status = s
		}
	}

	if strings.EqualFold(f.Year, string(StatusAll)) {
		f.Year = ""
	}

	return f
}

// Active reports whether any predicate is set.
func (f Filter) Active() bool {
	return f.queryActive() || f.statusActive() || f.yearActive()
}

// MatchQuery reports whether the title or category contains the query, case-insensitively.
func (f Filter) MatchQuery(r Resource) bool {
	if !f.queryActive() {
		return true
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))

	return strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(r.Category), q)
}

// MatchStatus reports whether the status predicate holds.
func (f Filter) MatchStatus(r Resource) bool {
	return !f.statusActive() || r.Status == f.Status
}

// MatchYear reports whether the year predicate holds.
func (f Filter) MatchYear(r Resource) bool {
	return !f.yearActive() || r.Year() == f.Year
}

// Matches reports whether all active predicates hold.
func (f Filter) Matches(r Resource) bool {
	return f.MatchQuery(r) && f.MatchStatus(r) && f.MatchYear(r)
}

// Apply returns the matching resources in catalog order.
func (f Filter) Apply(resources []Resource) []Resource {
	out := make([]Resource, 0, len(resources))

	for _, r := range resources {
		if f.Matches(r) {
			out = append(out, r)
		}
	}

	return out
}

func (f Filter) queryActive() bool  { return strings.TrimSpace(f.Query) != "" }
func (f Filter) statusActive() bool { return f.Status != "" && f.Status != StatusAll }
func (f Filter) yearActive() bool   { return f.Year != "" && f.Year != string(StatusAll) }

// Years returns the distinct publication years, newest first.
func Years(resources []Resource) []string {
	var years []string

	for _, r := range resources {
		if y := r.Year(); y != "" && !slices.Contains(years, y) {
			years = append(years, y)
		}
	}

	slices.Sort(years)
	slices.Reverse(years)

	return years
}
