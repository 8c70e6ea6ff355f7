package search

import (
	"strings"
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
)

// Criteria is everything FilterRecords narrows a record set by.
type Criteria struct {
	Query     string
	Selection filter.Selection
	Tab       tab.Tab
	Starred   map[string]struct{}
	Now       time.Time
}

// FilterRecords returns the records satisfying the query, the selection and the tab, in input order.
//
// A non-empty query matches case-insensitively against name, domain, owner or any tag.
// Queries starting with "mar" instead match name or domain against the query or
// against "marketing"; owner and tags are not consulted for them. Like ComputeSuggestions
// the query is lower-cased but not trimmed.
func FilterRecords(records []record.Record, c Criteria) []record.Record {
	q := strings.ToLower(c.Query)
	out := make([]record.Record, 0, len(records))
	for i := range records {
		r := &records[i]
		if q != "" && !matchesQuery(r, q) {
			continue
		}
		if !c.Selection.Matches(r) {
			continue
		}
		if c.Tab != "" && !c.Tab.Matches(r, c.Starred, c.Now) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// matchesQuery expects q to be lower-cased and non-empty.
func matchesQuery(r *record.Record, q string) bool {
	name := strings.ToLower(r.Name())
	domain := strings.ToLower(r.Domain())

	if strings.HasPrefix(q, marketingPrefix) {
		return strings.Contains(name, q) || strings.Contains(domain, q) ||
			strings.Contains(name, marketingNeedle) || strings.Contains(domain, marketingNeedle)
	}

	if strings.Contains(name, q) || strings.Contains(domain, q) ||
		strings.Contains(strings.ToLower(r.Owner()), q) {
		return true
	}
	for _, tag := range r.Tags() {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
