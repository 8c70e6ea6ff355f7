package aggregate

import (
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/scale"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/stats"
)

// Summary holds the dashboard numbers of an application collection.
type Summary struct {
	Total             int
	ByType            *stats.Counts
	ByCenter          *stats.Counts
	ByStatus          *stats.Counts
	Backlog           int
	BacklogRatio      float64
	BacklogByType     *stats.Counts
	BacklogByCenter   *stats.Counts
	AvgProcessingDays float64
	AgeBuckets        []stats.Bucket
	RiskClasses       *stats.Counts
	QualityClasses    *stats.Counts
	GeneratedAt       time.Time
	Source            result.Source
	// Truncated is set when the collection hit the fetch cap.
	Truncated bool
	Notice    *result.Notice
}

// Summarize computes a Summary from an in-memory collection.
func Summarize(records []record.Record, boundaries []int, now time.Time) (Summary, error) {
	buckets, err := BucketByAge(records, boundaries, now)
	if err != nil {
		return Summary{}, err
	}
	backlog := Backlog(records)

	return Summary{
		Total:             len(records),
		ByType:            ByField(records, "type"),
		ByCenter:          ByField(records, "center"),
		ByStatus:          ByField(records, "status"),
		Backlog:           len(backlog),
		BacklogRatio:      BacklogRatio(len(backlog), len(records)),
		BacklogByType:     ByField(backlog, "type"),
		BacklogByCenter:   ByField(backlog, "center"),
		AvgProcessingDays: AverageProcessingDays(records),
		AgeBuckets:        buckets,
		RiskClasses:       Classify(records, scale.Risk, (*record.Record).RiskScore),
		QualityClasses:    Classify(records, scale.Quality, (*record.Record).QualityScore),
		GeneratedAt:       now,
	}, nil
}
