package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/scale"
	"github.com/kailas-cloud/datadesk/internal/domain/stats"
)

// TerminalStatuses are the statuses after which an application leaves the backlog.
var TerminalStatuses = []string{"Approved", "Denied", "Withdrawn", "Terminated"}

// DefaultAgeBoundaries are the day counts of the application age histogram.
var DefaultAgeBoundaries = []int{30, 60, 90, 180, 365}

// UnknownAgeLabel is the bucket of records without a received date.
const UnknownAgeLabel = "Unknown"

const day = 24 * time.Hour

// ByField counts records per value of a field. Records without a value are not counted.
func ByField(records []record.Record, field string) *stats.Counts {
	c := stats.NewCounts()
	for i := range records {
		if v := records[i].Field(field); v != "" {
			c.Add(v, 1)
		}
	}
	return c
}

// IsTerminal reports whether a status ends processing. Comparison ignores case.
func IsTerminal(status string) bool {
	for _, t := range TerminalStatuses {
		if strings.EqualFold(status, t) {
			return true
		}
	}
	return false
}

// Backlog returns the records still in processing, in input order.
// A record without a status counts as backlog.
func Backlog(records []record.Record) []record.Record {
	out := make([]record.Record, 0, len(records))
	for i := range records {
		if !IsTerminal(records[i].Status()) {
			out = append(out, records[i])
		}
	}
	return out
}

// BacklogRatio returns backlog/total, 0 when total is 0.
func BacklogRatio(backlog, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(backlog) / float64(total)
}

// AverageProcessingDays is the mean processing time over records reporting a positive value, 0 if none.
func AverageProcessingDays(records []record.Record) float64 {
	var sum float64
	n := 0
	for i := range records {
		d := records[i].ProcessingDays()
		if d == nil || *d <= 0 || math.IsNaN(*d) {
			continue
		}
		sum += *d
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ValidateBoundaries checks that age boundaries are non-negative and strictly ascending.
func ValidateBoundaries(boundaries []int) error {
	for i, b := range boundaries {
		if b < 0 {
			return fmt.Errorf("age boundary %d is negative", b)
		}
		if i > 0 && b <= boundaries[i-1] {
			return fmt.Errorf("age boundaries must be strictly ascending (%d after %d)", b, boundaries[i-1])
		}
	}
	return nil
}

// BucketByAge partitions records by whole days elapsed since their received date.
// Bucket i holds ages up to and including boundaries[i], the bucket after the last
// boundary is open-ended, and a trailing Unknown bucket holds records without a
// received date. Ages in the future count as 0. The bucket counts always sum to len(records).
func BucketByAge(records []record.Record, boundaries []int, now time.Time) ([]stats.Bucket, error) {
	if err := ValidateBoundaries(boundaries); err != nil {
		return nil, err
	}

	buckets := make([]stats.Bucket, 0, len(boundaries)+2)
	lower := 0
	for _, b := range boundaries {
		buckets = append(buckets, stats.Bucket{Label: rangeLabel(lower, b), Min: lower, Max: b})
		lower = b + 1
	}
	buckets = append(buckets,
		stats.Bucket{Label: strconv.Itoa(lower) + "+", Min: lower, Max: -1},
		stats.Bucket{Label: UnknownAgeLabel, Min: -1, Max: -1},
	)
	unknown := len(buckets) - 1
	open := unknown - 1

	for i := range records {
		received := records[i].ReceivedDate()
		if received.IsZero() {
			buckets[unknown].Count++
			continue
		}
		age := max(int(now.Sub(received)/day), 0)
		idx := open
		for j, b := range boundaries {
			if age <= b {
				idx = j
				break
			}
		}
		buckets[idx].Count++
	}
	return buckets, nil
}

func rangeLabel(lo, hi int) string {
	return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
}

// Classify counts records per class of a scale. Every class of the scale is present,
// in scale order, so that empty classes still show up.
func Classify(records []record.Record, s scale.Scale, value func(*record.Record) *float64) *stats.Counts {
	c := stats.NewCounts()
	for _, label := range s.Labels() {
		c.Add(label, 0)
	}
	for i := range records {
		c.Add(s.Classify(value(&records[i])), 1)
	}
	return c
}
