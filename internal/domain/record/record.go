package record

import (
	"slices"
	"time"
)

// Kind is the domain a record belongs to.
type Kind string

// Record kinds served by the catalog API.
const (
	KindAsset       Kind = "asset"
	KindApplication Kind = "application"
	KindTimeline    Kind = "timeline"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindAsset || k == KindApplication || k == KindTimeline
}

// DefaultOwner is shown for records without an owner.
const DefaultOwner = "Unknown"

// Record is one domain entity flowing through search and aggregation (immutable value object).
// Empty strings and nil pointers mean the field was absent or malformed at ingestion.
type Record struct {
	id             string
	kind           Kind
	name           string
	recordType     string
	domain         string
	owner          string
	status         string
	certification  string
	center         string
	tags           []string
	lastModified   time.Time
	receivedDate   time.Time
	processingDays *float64
	riskScore      *float64
	qualityScore   *float64
}

// Fields carries the raw attribute values for New.
type Fields struct {
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

// New creates a Record. Tags and optional numerics are copied.
func New(id string, kind Kind, f Fields) Record {
	tags := slices.Clone(f.Tags)
	if tags == nil {
		tags = []string{}
	}
	return Record{
		id:             id,
		kind:           kind,
		name:           f.Name,
		recordType:     f.Type,
		domain:         f.Domain,
		owner:          f.Owner,
		status:         f.Status,
		certification:  f.Certification,
		center:         f.Center,
		tags:           tags,
		lastModified:   f.LastModified,
		receivedDate:   f.ReceivedDate,
		processingDays: clonePtr(f.ProcessingDays),
		riskScore:      clonePtr(f.RiskScore),
		qualityScore:   clonePtr(f.QualityScore),
	}
}

// ID returns the stable record identifier.
func (r *Record) ID() string { return r.id }

// Kind returns the record domain.
func (r *Record) Kind() Kind { return r.kind }

// Name returns the display name.
func (r *Record) Name() string { return r.name }

// Type returns the record type (asset type, application type, task type).
func (r *Record) Type() string { return r.recordType }

// Domain returns the business domain or category.
func (r *Record) Domain() string { return r.domain }

// Owner returns the owner, empty if absent.
func (r *Record) Owner() string { return r.owner }

// OwnerOrDefault returns the owner or DefaultOwner for display.
func (r *Record) OwnerOrDefault() string {
	if r.owner == "" {
		return DefaultOwner
	}
	return r.owner
}

// Status returns the lifecycle status.
func (r *Record) Status() string { return r.status }

// Certification returns the certification state.
func (r *Record) Certification() string { return r.certification }

// Center returns the processing center (applications only).
func (r *Record) Center() string { return r.center }

// Tags returns the ordered tag list. Never nil.
func (r *Record) Tags() []string { return r.tags }

// LastModified returns the last modification time, zero if unknown.
func (r *Record) LastModified() time.Time { return r.lastModified }

// ReceivedDate returns the receipt time, zero if unknown.
func (r *Record) ReceivedDate() time.Time { return r.receivedDate }

// ProcessingDays returns processing time in business days, nil if unknown.
func (r *Record) ProcessingDays() *float64 { return r.processingDays }

// RiskScore returns the risk score, nil if unknown.
func (r *Record) RiskScore() *float64 { return r.riskScore }

// QualityScore returns the data quality score, nil if unknown.
func (r *Record) QualityScore() *float64 { return r.qualityScore }

// Field returns the value of a named categorical attribute.
// Unknown names return an empty string.
func (r *Record) Field(name string) string {
	switch name {
	case "name":
		return r.name
	case "type":
		return r.recordType
	case "domain":
		return r.domain
	case "owner":
		return r.owner
	case "status":
		return r.status
	case "certification":
		return r.certification
	case "center":
		return r.center
	case "kind":
		return string(r.kind)
	default:
		return ""
	}
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
