package search

import (
	"strings"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
)

const (
	marketingPrefix = "mar"
	marketingNeedle = "marketing"
	marketingLabel  = "Marketing"
)

// ComputeSuggestions merges autocomplete candidates for query.
//
// Candidates are taken in order from history terms containing the query, the remote
// suggestions as given, then record names, types and domains containing the query.
// Matching is case-insensitive while deduplication compares exact strings. A query starting
// with "mar" always offers "Marketing" unless a candidate already mentions it.
// The query is only lower-cased, never trimmed: " mar" does not start with "mar".
// The result holds at most max entries. An empty query yields no suggestions.
func ComputeSuggestions(
	query string,
	terms []string,
	remote []suggestion.Suggestion,
	records []record.Record,
	limit int,
) []suggestion.Suggestion {
	q := strings.ToLower(query)
	if q == "" || limit <= 0 {
		return []suggestion.Suggestion{}
	}

	c := newCollector()
	for _, t := range terms {
		if strings.Contains(strings.ToLower(t), q) {
			c.add(t, suggestion.SourceHistory)
		}
	}
	for _, s := range remote {
		c.add(s.Text(), s.Source())
	}
	for i := range records {
		r := &records[i]
		for _, v := range [...]string{r.Name(), r.Type(), r.Domain()} {
			if strings.Contains(strings.ToLower(v), q) {
				c.add(v, suggestion.SourceData)
			}
		}
	}

	if strings.HasPrefix(q, marketingPrefix) && !c.mentions(marketingNeedle) {
		c.add(marketingLabel, suggestion.SourceRule)
	}

	out := c.list
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// collector keeps first-seen suggestions, deduplicated by exact text.
type collector struct {
	seen map[string]struct{}
	list []suggestion.Suggestion
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) add(text string, src suggestion.Source) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if _, dup := c.seen[text]; dup {
		return
	}
	c.seen[text] = struct{}{}
	c.list = append(c.list, suggestion.New(text, src))
}

func (c *collector) mentions(needle string) bool {
	for _, s := range c.list {
		if strings.Contains(strings.ToLower(s.Text()), needle) {
			return true
		}
	}
	return false
}
