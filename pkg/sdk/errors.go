package datadesk

import "github.com/kailas-cloud/datadesk/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrUpstream       = domain.ErrUpstream
	ErrPredictor      = domain.ErrPredictor
	ErrPredictorQuota = domain.ErrPredictorQuotaExceeded
)

// UpstreamError carries the HTTP status of a failed record service call.
// It matches ErrUpstream with errors.Is.
type UpstreamError = domain.UpstreamError
