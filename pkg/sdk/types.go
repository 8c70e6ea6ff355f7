package datadesk

import "time"

// Kind selects a record collection of the record service.
type Kind string

// Record kinds.
const (
	KindAsset       Kind = "asset"
	KindApplication Kind = "application"
	KindTimeline    Kind = "timeline"
)

// Dimension is a filterable record attribute.
type Dimension string

// Filter dimensions.
const (
	DimType          Dimension = "type"
	DimDomain        Dimension = "domain"
	DimStatus        Dimension = "status"
	DimCertification Dimension = "certification"
	DimCenter        Dimension = "center"
	DimOwner         Dimension = "owner"
)

// Tab is a catalog view preset applied on top of query and filters.
type Tab string

// Tabs.
const (
	TabAll                  Tab = "all"
	TabRecentlyModified     Tab = "recently_modified"
	TabFavorites            Tab = "favorites"
	TabPendingCertification Tab = "pending_certification"
)

// Source tells where the records of a page came from.
type Source string

// Page sources.
const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
	SourceEmpty  Source = "empty"
)

// Record is one catalog entry. Optional numbers are nil when the record service omitted them.
type Record struct {
	ID             string
	Kind           Kind
	Name           string
	Type           string
	Domain         string
	Owner          string
	Status         string
	Certification  string
	Center         string
	Tags           []string
	LastModified   time.Time
	ReceivedDate   time.Time
	ProcessingDays *float64
	RiskScore      *float64
	QualityScore   *float64
}

// Notice is a user-visible message about a recovered failure.
type Notice struct {
	Kind      string
	Message   string
	Retryable bool
}

// Page is one page of search results. When LocallyFiltered is set, Total and
// TotalPages still count the record service's un-narrowed result set.
type Page struct {
	Records    []Record
	Total      int
	Page       int
	TotalPages int
	Source     Source
	// LocallyFiltered is set when criteria the record service cannot express were applied here.
	LocallyFiltered bool
	Notice          *Notice
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Text   string
	Source string // history, server, predicted, data, rule
}

// Count is one key of a grouped count, in first-seen order.
type Count struct {
	Key   string
	Count int
}

// AgeBucket is one range of the application age histogram. Max is -1 for the open-ended bucket.
type AgeBucket struct {
	Label string
	Min   int
	Max   int
	Count int
}

// Summary is the application dashboard summary.
type Summary struct {
	Total             int
	ByType            []Count
	ByCenter          []Count
	ByStatus          []Count
	Backlog           int
	BacklogRatio      float64
	BacklogByType     []Count
	BacklogByCenter   []Count
	AvgProcessingDays float64
	AgeBuckets        []AgeBucket
	RiskClasses       []Count
	QualityClasses    []Count
	GeneratedAt       time.Time
	Source            Source
	Truncated         bool
	Notice            *Notice
}

// SummaryOptions narrow a summary.
type SummaryOptions struct {
	// Type keeps applications of one type. Empty means all.
	Type string
	// AgeBoundaries are ascending day counts. Empty means 30, 60, 90, 180, 365.
	AgeBoundaries []int
}
