package tab

import (
	"strings"
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
)

// Tab is the catalog view preset applied on top of query and filters.
type Tab string

// Tab constants.
const (
	All Tab = "all"
	// RecentlyModified keeps records modified within RecentWindow.
	RecentlyModified     Tab = "recently_modified"
	Favorites            Tab = "favorites"
	PendingCertification Tab = "pending_certification"
)

// RecentWindow is the look-back period of the RecentlyModified tab.
const RecentWindow = 30 * 24 * time.Hour

// PendingSentinel is the certification value of records awaiting certification.
const PendingSentinel = "pending"

// IsValid checks if the tab is one of the supported values.
func (t Tab) IsValid() bool {
	return t == All || t == RecentlyModified || t == Favorites || t == PendingCertification
}

// Matches evaluates the tab predicate for a record.
// starred holds favorite record ids; now anchors the recency window.
func (t Tab) Matches(r *record.Record, starred map[string]struct{}, now time.Time) bool {
	switch t {
	case RecentlyModified:
		lm := r.LastModified()
		if lm.IsZero() {
			return false
		}
		return !lm.Before(now.Add(-RecentWindow))
	case Favorites:
		_, ok := starred[r.ID()]
		return ok
	case PendingCertification:
		return strings.EqualFold(r.Certification(), PendingSentinel)
	default:
		return true
	}
}
