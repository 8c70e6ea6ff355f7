package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// Predictor is the shared query completion contract between layers.
type Predictor interface {
	Predict(ctx context.Context, partial string, n int) ([]string, error)
}

// HealthChecker verifies completion provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CleanPredictor is a domain decorator that tidies raw provider output:
// blank lines, list markers and quotes are stripped, exact duplicates dropped,
// and the result is capped at n.
type CleanPredictor struct {
	inner Predictor
}

// NewCleanPredictor wraps a predictor with output cleanup.
func NewCleanPredictor(inner Predictor) *CleanPredictor {
	return &CleanPredictor{inner: inner}
}

// Predict delegates to the inner predictor and cleans its output.
func (p *CleanPredictor) Predict(ctx context.Context, partial string, n int) ([]string, error) {
	if n <= 0 || strings.TrimSpace(partial) == "" {
		return []string{}, nil
	}
	raw, err := p.inner.Predict(ctx, partial, n)
	if err != nil {
		return nil, fmt.Errorf("clean predict: %w", err)
	}
	return CleanCompletions(raw, n), nil
}

// CleanCompletions normalizes completion lines and keeps at most n.
func CleanCompletions(raw []string, n int) []string {
	out := make([]string, 0, min(len(raw), max(n, 0)))
	seen := make(map[string]struct{}, len(raw))
	for _, line := range raw {
		if len(out) >= n {
			break
		}
		s := strings.TrimSpace(line)
		s = listMarker.ReplaceAllString(s, "")
		s = strings.Trim(s, "\"'` ")
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
