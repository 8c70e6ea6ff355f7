package domain

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type stubPredictor struct {
	out []string
	err error
	got string
}

func (s *stubPredictor) Predict(_ context.Context, partial string, _ int) ([]string, error) {
	s.got = partial
	return s.out, s.err
}

func TestCleanCompletions(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		n    int
		want []string
	}{
		{"markers and quotes", []string{"1. \"market share\"", "- marketing spend", "* `market data`"}, 5,
			[]string{"market share", "marketing spend", "market data"}},
		{"blank lines dropped", []string{"", "  ", "mar budget"}, 5, []string{"mar budget"}},
		{"exact duplicates dropped", []string{"Sales", "Sales", "sales"}, 5, []string{"Sales", "sales"}},
		{"capped", []string{"a", "b", "c"}, 2, []string{"a", "b"}},
		{"zero cap", []string{"a"}, 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCompletions(tt.raw, tt.n); !slices.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanPredictor(t *testing.T) {
	inner := &stubPredictor{out: []string{"1. sales q3", "2. sales q3", "3. sales east"}}
	p := NewCleanPredictor(inner)

	got, err := p.Predict(context.Background(), "sal", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, []string{"sales q3", "sales east"}) {
		t.Errorf("got %q", got)
	}
	if inner.got != "sal" {
		t.Errorf("inner got %q", inner.got)
	}
}

func TestCleanPredictor_BlankSkipsProvider(t *testing.T) {
	inner := &stubPredictor{out: []string{"x"}}
	got, err := NewCleanPredictor(inner).Predict(context.Background(), "  ", 7)
	if err != nil || len(got) != 0 || inner.got != "" {
		t.Errorf("got %q, %v, inner called with %q", got, err, inner.got)
	}
}

func TestCleanPredictor_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewCleanPredictor(&stubPredictor{err: boom}).Predict(context.Background(), "x", 3)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestPredictorUsage(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(12)
	UsageFromContext(ctx).AddTokens(3)
	if u.TotalTokens != 15 || !u.Used {
		t.Errorf("usage = %+v", u)
	}

	var missing *PredictorUsage = UsageFromContext(context.Background())
	missing.AddTokens(1)
	missing.MarkUsed()
}

func TestCleanCompletions_KeepsLeadingDigits(t *testing.T) {
	got := CleanCompletions([]string{"2. 3d terrain", "311 calls"}, 5)
	if !slices.Equal(got, []string{"3d terrain", "311 calls"}) {
		t.Errorf("got %q", got)
	}
}
