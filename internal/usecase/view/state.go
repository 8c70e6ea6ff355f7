package view

import (
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
)

// State is the view state of one catalog page.
type State struct {
	ID   string
	Kind record.Kind
	// RawQuery is the query as typed; Query is its debounced value that drives fetches.
	RawQuery    string
	Query       string
	Filters     map[filter.Dimension][]string
	Tab         tab.Tab
	Starred     []string
	Page        int
	Limit       int
	Records     []record.Record
	Total       int
	TotalPages  int
	Source      result.Source
	Suggestions []suggestion.Suggestion
	Notice      *result.Notice
	Loading     bool
	Suggesting  bool
	// Generation is the token of the fetch whose result is shown.
	Generation uint64
}

func (s *State) clone() State {
	out := *s
	out.Filters = make(map[filter.Dimension][]string, len(s.Filters))
	for d, vals := range s.Filters {
		out.Filters[d] = append([]string(nil), vals...)
	}
	out.Starred = append([]string(nil), s.Starred...)
	out.Records = append([]record.Record(nil), s.Records...)
	out.Suggestions = append([]suggestion.Suggestion(nil), s.Suggestions...)
	if s.Notice != nil {
		n := *s.Notice
		out.Notice = &n
	}
	return out
}
