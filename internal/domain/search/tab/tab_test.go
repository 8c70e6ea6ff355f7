package tab

import (
	"testing"
	"time"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
)

func TestIsValid(t *testing.T) {
	valid := []Tab{All, RecentlyModified, Favorites, PendingCertification}
	for _, tb := range valid {
		if !tb.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", tb)
		}
	}

	invalid := []Tab{"", "recent", "ALL", "starred"}
	for _, tb := range invalid {
		if tb.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", tb)
		}
	}
}

func TestMatches_RecentlyModified(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		lm   time.Time
		want bool
	}{
		{"yesterday", now.Add(-24 * time.Hour), true},
		{"exactly 30 days", now.Add(-RecentWindow), true},
		{"31 days", now.Add(-31 * 24 * time.Hour), false},
		{"unknown", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := record.New("a", record.KindAsset, record.Fields{LastModified: tt.lm})
			if got := RecentlyModified.Matches(&r, nil, now); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_Favorites(t *testing.T) {
	starred := map[string]struct{}{"a": {}}
	a := record.New("a", record.KindAsset, record.Fields{})
	b := record.New("b", record.KindAsset, record.Fields{})

	if !Favorites.Matches(&a, starred, time.Now()) {
		t.Error("starred record must match")
	}
	if Favorites.Matches(&b, starred, time.Now()) {
		t.Error("unstarred record must not match")
	}
	if Favorites.Matches(&a, nil, time.Now()) {
		t.Error("nil starred set matches nothing")
	}
}

func TestMatches_PendingCertification(t *testing.T) {
	pending := record.New("a", record.KindAsset, record.Fields{Certification: "Pending"})
	certified := record.New("b", record.KindAsset, record.Fields{Certification: "certified"})

	if !PendingCertification.Matches(&pending, nil, time.Now()) {
		t.Error("pending record must match")
	}
	if PendingCertification.Matches(&certified, nil, time.Now()) {
		t.Error("certified record must not match")
	}
}

func TestMatches_AllAcceptsEverything(t *testing.T) {
	r := record.New("", "", record.Fields{})
	if !All.Matches(&r, nil, time.Time{}) {
		t.Error("All must match any record")
	}
}
