package datadesk

import (
	"slices"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/domain/stats"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
)

func fromInternalRecord(r *record.Record) Record {
	return Record{
		ID:             r.ID(),
		Kind:           Kind(r.Kind()),
		Name:           r.Name(),
		Type:           r.Type(),
		Domain:         r.Domain(),
		Owner:          r.Owner(),
		Status:         r.Status(),
		Certification:  r.Certification(),
		Center:         r.Center(),
		Tags:           slices.Clone(r.Tags()),
		LastModified:   r.LastModified(),
		ReceivedDate:   r.ReceivedDate(),
		ProcessingDays: r.ProcessingDays(),
		RiskScore:      r.RiskScore(),
		QualityScore:   r.QualityScore(),
	}
}

func fromNotice(n *result.Notice) *Notice {
	if n == nil {
		return nil
	}
	return &Notice{Kind: string(n.Kind), Message: n.Message, Retryable: n.Retryable}
}

func fromOutcome(o *result.Outcome) Page {
	recs := make([]Record, len(o.Records))
	for i := range o.Records {
		recs[i] = fromInternalRecord(&o.Records[i])
	}
	return Page{
		Records:         recs,
		Total:           o.Total,
		Page:            o.Page,
		TotalPages:      o.TotalPages,
		Source:          Source(o.Source),
		LocallyFiltered: o.LocallyFiltered,
		Notice:          fromNotice(o.Notice),
	}
}

func fromCounts(c *stats.Counts) []Count {
	if c == nil {
		return []Count{}
	}
	entries := c.Entries()
	out := make([]Count, len(entries))
	for i, e := range entries {
		out[i] = Count{Key: e.Key, Count: e.Count}
	}
	return out
}

func fromInternalSummary(s *aggregateuc.Summary) Summary {
	buckets := make([]AgeBucket, len(s.AgeBuckets))
	for i, b := range s.AgeBuckets {
		buckets[i] = AgeBucket{Label: b.Label, Min: b.Min, Max: b.Max, Count: b.Count}
	}
	return Summary{
		Total:             s.Total,
		ByType:            fromCounts(s.ByType),
		ByCenter:          fromCounts(s.ByCenter),
		ByStatus:          fromCounts(s.ByStatus),
		Backlog:           s.Backlog,
		BacklogRatio:      s.BacklogRatio,
		BacklogByType:     fromCounts(s.BacklogByType),
		BacklogByCenter:   fromCounts(s.BacklogByCenter),
		AvgProcessingDays: s.AvgProcessingDays,
		AgeBuckets:        buckets,
		RiskClasses:       fromCounts(s.RiskClasses),
		QualityClasses:    fromCounts(s.QualityClasses),
		GeneratedAt:       s.GeneratedAt,
		Source:            Source(s.Source),
		Truncated:         s.Truncated,
		Notice:            fromNotice(s.Notice),
	}
}
