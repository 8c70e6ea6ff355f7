package result

import (
	"github.com/kailas-cloud/datadesk/internal/domain/record"
)

// Params are the pagination and single-value filter parameters understood by the record service.
type Params struct {
	Page   int
	Limit  int
	Sort   string
	Type   string
	Domain string
}

// Page is one page of records returned by the record service.
type Page struct {
	Records []record.Record
	Total   int
}

// Source tells where the records of an Outcome came from.
type Source string

// Outcome sources.
const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
	SourceEmpty  Source = "empty"
)

// NoticeKind classifies a user-visible notice.
type NoticeKind string

// Notice kinds.
const (
	NoticeFetchFailed    NoticeKind = "fetch_failed"
	NoticeHistoryReset   NoticeKind = "history_reset"
	NoticeSuggestDegrade NoticeKind = "suggestions_degraded"
)

// Notice is a dismissible, user-visible message about a recovered failure.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Retryable bool       `json:"retryable"`
}

// Outcome is the result of a catalog search.
//
// Total and TotalPages describe the result set pages are drawn from: the record
// service's set for remote outcomes, the narrowed snapshot for cache and empty ones.
// When a remote page is narrowed locally, Records can hold fewer entries than Limit
// while Total still counts the un-narrowed set; the narrowed total of the other pages
// is unknown without fetching them.
type Outcome struct {
	Records    []record.Record
	Total      int
	Page       int
	TotalPages int
	Source     Source
	// LocallyFiltered is set when criteria the record service cannot express were applied to the page.
	LocallyFiltered bool
	Notice          *Notice
}
