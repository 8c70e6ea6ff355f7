package snapshot

import (
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
)

// recordRow is the JSON-serializable representation of a record.
type recordRow struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Type           string   `json:"type,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	Owner          string   `json:"owner,omitempty"`
	Status         string   `json:"status,omitempty"`
	Certification  string   `json:"certification,omitempty"`
	Center         string   `json:"center,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	LastModified   int64    `json:"last_modified,omitempty"`
	ReceivedDate   int64    `json:"received_date,omitempty"`
	ProcessingDays *float64 `json:"processing_days,omitempty"`
	RiskScore      *float64 `json:"risk_score,omitempty"`
	QualityScore   *float64 `json:"quality_score,omitempty"`
}

func toRow(r *record.Record) recordRow {
	return recordRow{
		ID:             r.ID(),
		Name:           r.Name(),
		Type:           r.Type(),
		Domain:         r.Domain(),
		Owner:          r.Owner(),
		Status:         r.Status(),
		Certification:  r.Certification(),
		Center:         r.Center(),
		Tags:           r.Tags(),
		LastModified:   toMillis(r.LastModified()),
		ReceivedDate:   toMillis(r.ReceivedDate()),
		ProcessingDays: r.ProcessingDays(),
		RiskScore:      r.RiskScore(),
		QualityScore:   r.QualityScore(),
	}
}

func fromRow(row *recordRow, kind record.Kind) record.Record {
	return record.New(row.ID, kind, record.Fields{
		Name:           row.Name,
		Type:           row.Type,
		Domain:         row.Domain,
		Owner:          row.Owner,
		Status:         row.Status,
		Certification:  row.Certification,
		Center:         row.Center,
		Tags:           row.Tags,
		LastModified:   fromMillis(row.LastModified),
		ReceivedDate:   fromMillis(row.ReceivedDate),
		ProcessingDays: row.ProcessingDays,
		RiskScore:      row.RiskScore,
		QualityScore:   row.QualityScore,
	})
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
