package aggregate

import (
	"context"
	"fmt"
	"slices"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
)

// Fetch limits.
const (
	pageSize           = 100
	DefaultMaxRecords  = 5000
	summaryFailMessage = "Applications could not be loaded. Figures reflect the last results available."
)

// SnapshotScope names the snapshot of the full application set behind a summary.
// Summaries narrowed to one type use SnapshotScope + ":" + type.
const SnapshotScope = "summary"

func snapshotScope(typ string) string {
	if typ == "" {
		return SnapshotScope
	}
	return SnapshotScope + ":" + typ
}

// Params narrow the collection a summary is computed over.
type Params struct {
	Type       string
	Boundaries []int
}

// Service computes application dashboard summaries.
type Service struct {
	lister     Lister
	snapshots  SnapshotStore
	maxRecords int
	boundaries []int
	clock      clock.Clock
	logger     *zap.Logger
}

// New creates a Service. snapshots can be nil (no fallback).
func New(lister Lister, snapshots SnapshotStore) *Service {
	return &Service{
		lister:     lister,
		snapshots:  snapshots,
		maxRecords: DefaultMaxRecords,
		boundaries: DefaultAgeBoundaries,
		clock:      clock.New(),
		logger:     zap.NewNop(),
	}
}

// WithMaxRecords caps how many applications a summary fetches.
func (s *Service) WithMaxRecords(n int) *Service {
	if n > 0 {
		s.maxRecords = n
	}
	return s
}

// WithBoundaries sets the age boundaries used when a request names none.
// Invalid boundaries are ignored.
func (s *Service) WithBoundaries(b []int) *Service {
	if len(b) > 0 && ValidateBoundaries(b) == nil {
		s.boundaries = slices.Clone(b)
	}
	return s
}

// WithClock overrides the clock used for ages.
func (s *Service) WithClock(c clock.Clock) *Service {
	s.clock = c
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	s.logger = l
	return s
}

// Summary fetches applications and summarizes them. Every complete fetch is kept as a
// snapshot; when the record service fails the last one is summarized instead and the
// result carries a notice.
func (s *Service) Summary(ctx context.Context, p Params) (Summary, error) {
	boundaries := p.Boundaries
	if len(boundaries) == 0 {
		boundaries = s.boundaries
	}
	if err := ValidateBoundaries(boundaries); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	records, truncated, err := s.fetchAll(ctx, p.Type)
	src := result.SourceRemote
	var notice *result.Notice
	if err != nil {
		if ctx.Err() != nil {
			return Summary{}, fmt.Errorf("summary: %w", ctx.Err())
		}
		s.logger.Warn("Application fetch failed, summarizing snapshot", zap.Error(err))
		records, src = s.fallback(ctx, p.Type)
		truncated = false
		notice = &result.Notice{Kind: result.NoticeFetchFailed, Message: summaryFailMessage, Retryable: true}
	} else {
		s.save(ctx, p.Type, records)
	}

	sum, err := Summarize(records, boundaries, s.clock.Now())
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	sum.Source = src
	sum.Truncated = truncated
	sum.Notice = notice
	return sum, nil
}

func (s *Service) fetchAll(ctx context.Context, typ string) ([]record.Record, bool, error) {
	var all []record.Record
	for page := 1; ; page++ {
		pg, err := s.lister.List(ctx, result.Params{Page: page, Limit: pageSize, Type: typ})
		if err != nil {
			return nil, false, fmt.Errorf("list applications page %d: %w", page, err)
		}
		all = append(all, pg.Records...)
		if len(all) >= s.maxRecords {
			return all[:s.maxRecords], pg.Total > s.maxRecords, nil
		}
		if len(pg.Records) == 0 || len(all) >= pg.Total {
			return all, false, nil
		}
	}
}

func (s *Service) save(ctx context.Context, typ string, records []record.Record) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, record.KindApplication, snapshotScope(typ), records); err != nil {
		s.logger.Warn("Snapshot save failed", zap.String("scope", snapshotScope(typ)), zap.Error(err))
	}
}

// fallback prefers the snapshot of the same type and otherwise narrows the full set.
func (s *Service) fallback(ctx context.Context, typ string) ([]record.Record, result.Source) {
	if s.snapshots == nil {
		return nil, result.SourceEmpty
	}
	if typ != "" {
		if recs, ok := s.load(ctx, snapshotScope(typ)); ok {
			return recs, result.SourceCache
		}
	}
	recs, ok := s.load(ctx, SnapshotScope)
	if !ok {
		return nil, result.SourceEmpty
	}
	if typ == "" {
		return recs, result.SourceCache
	}
	out := make([]record.Record, 0, len(recs))
	for i := range recs {
		if recs[i].Type() == typ {
			out = append(out, recs[i])
		}
	}
	return out, result.SourceCache
}

func (s *Service) load(ctx context.Context, scope string) ([]record.Record, bool) {
	recs, ok, err := s.snapshots.Load(ctx, record.KindApplication, scope)
	if err != nil {
		s.logger.Warn("Snapshot load failed", zap.String("scope", scope), zap.Error(err))
		return nil, false
	}
	return recs, ok
}
