package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 512
	DefaultLimit   = 20
	MaxLimit       = 100
	MaxStarred     = 1000
	DefaultSort    = "lastModified:desc"
)

// Request is a validated catalog search.
type Request struct {
	query     string
	selection filter.Selection
	view      tab.Tab
	starred   map[string]struct{}
	page      int
	limit     int
	sort      string
}

// New validates and normalizes search parameters.
// Defaults: tab=all, page=1, limit=20, sort=lastModified:desc. Limit is clamped to MaxLimit.
// An empty query is allowed and means "list".
func New(
	query string,
	selection filter.Selection,
	t tab.Tab,
	starred []string,
	page, limit int,
	sort string,
) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if t == "" {
		t = tab.All
	}
	if !t.IsValid() {
		return Request{}, fmt.Errorf("invalid tab: %q", t)
	}
	if len(starred) > MaxStarred {
		return Request{}, fmt.Errorf("too many starred ids (max %d)", MaxStarred)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	sort = strings.TrimSpace(sort)
	if sort == "" {
		sort = DefaultSort
	}

	set := make(map[string]struct{}, len(starred))
	for _, id := range starred {
		if id != "" {
			set[id] = struct{}{}
		}
	}

	return Request{
		query:     query,
		selection: selection,
		view:      t,
		starred:   set,
		page:      page,
		limit:     limit,
		sort:      sort,
	}, nil
}

// Query returns the free-text query as typed.
func (r *Request) Query() string { return r.query }

// Selection returns the per-dimension filter selection.
func (r *Request) Selection() filter.Selection { return r.selection }

// Tab returns the view preset.
func (r *Request) Tab() tab.Tab { return r.view }

// Starred returns the favorite record ids.
func (r *Request) Starred() map[string]struct{} { return r.starred }

// Page returns the requested 1-based page.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Sort returns the upstream sort expression.
func (r *Request) Sort() string { return r.sort }

// WithPage returns a copy of the request for another page.
func (r Request) WithPage(page int) Request {
	if page <= 0 {
		page = 1
	}
	r.page = page
	return r
}
