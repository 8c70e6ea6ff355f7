package datadesk

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/scale"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
)

// Scale names a banded metric classification.
type Scale string

// Scales.
const (
	ScaleQuality     Scale = "quality"
	ScaleUtilization Scale = "utilization"
	ScaleCompliance  Scale = "compliance"
	ScaleRisk        Scale = "risk"
)

// NoData is the class of a missing or non-numeric value.
const NoData = scale.NoData

// Classify maps a value to its class on a scale. Unknown scales yield NoData.
func Classify(s Scale, value float64) string {
	sc, ok := scale.ByName(string(s))
	if !ok {
		return NoData
	}
	return sc.ClassifyValue(value)
}

// Labels returns the classes of a scale in ascending order, followed by NoData.
func Labels(s Scale) []string {
	sc, ok := scale.ByName(string(s))
	if !ok {
		return nil
	}
	return sc.Labels()
}

// Summary computes the application dashboard summary. When the record service fails
// the last snapshot is summarized and the result carries a Notice.
func (c *Client) Summary(ctx context.Context, opts SummaryOptions) (_ Summary, err error) {
	start := time.Now()
	op := call{name: "summary", kind: KindApplication}
	defer func() { c.obs.done(&op, start, err) }()

	if c.summary == nil {
		return Summary{}, fmt.Errorf("%w: application records are not served", domain.ErrInvalidRequest)
	}
	sum, err := c.summary.Summary(ctx, aggregateuc.Params{Type: opts.Type, Boundaries: opts.AgeBoundaries})
	if err != nil {
		return Summary{}, fmt.Errorf("summary: %w", err)
	}
	out := fromInternalSummary(&sum)
	op.source, op.notice = out.Source, out.Notice
	return out, nil
}
