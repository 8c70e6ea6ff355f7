package record

import (
	"slices"
	"testing"
	"time"
)

func TestNormalize_Asset(t *testing.T) {
	raw := map[string]any{
		"id":            "asset-1",
		"name":          "Marketing Campaign Report",
		"type":          "Report",
		"domain":        "Marketing",
		"owner":         "J. Doe",
		"status":        "Development",
		"certification": "pending",
		"tags":          []any{"campaign", "quarterly"},
		"lastModified":  "2026-10-01T12:00:00Z",
		"qualityScore":  float64(82),
	}

	r, repaired := Normalize(raw, KindAsset)
	if len(repaired) != 0 {
		t.Fatalf("unexpected repairs: %v", repaired)
	}
	if r.ID() != "asset-1" {
		t.Errorf("ID = %q", r.ID())
	}
	if r.Name() != "Marketing Campaign Report" || r.Type() != "Report" || r.Domain() != "Marketing" {
		t.Errorf("unexpected fields: %q %q %q", r.Name(), r.Type(), r.Domain())
	}
	if !slices.Equal(r.Tags(), []string{"campaign", "quarterly"}) {
		t.Errorf("Tags = %v", r.Tags())
	}
	want := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if !r.LastModified().Equal(want) {
		t.Errorf("LastModified = %v, want %v", r.LastModified(), want)
	}
	if r.QualityScore() == nil || *r.QualityScore() != 82 {
		t.Errorf("QualityScore = %v", r.QualityScore())
	}
}

func TestNormalize_ApplicationAliases(t *testing.T) {
	raw := map[string]any{
		"applicationId":              float64(1042),
		"applicationType":            "Disability",
		"serviceCenter":              "North",
		"status":                     "Pending Review",
		"receivedDate":               "2026-08-01",
		"processingTimeBusinessDays": "12.5",
		"riskScore":                  float64(40),
	}

	r, repaired := Normalize(raw, KindApplication)
	if len(repaired) != 0 {
		t.Fatalf("unexpected repairs: %v", repaired)
	}
	if r.ID() != "1042" {
		t.Errorf("ID = %q, want 1042", r.ID())
	}
	if r.Type() != "Disability" || r.Center() != "North" {
		t.Errorf("Type/Center = %q/%q", r.Type(), r.Center())
	}
	if r.ProcessingDays() == nil || *r.ProcessingDays() != 12.5 {
		t.Errorf("ProcessingDays = %v", r.ProcessingDays())
	}
	if r.ReceivedDate().IsZero() {
		t.Error("ReceivedDate not parsed")
	}
}

func TestNormalize_NumericIDs(t *testing.T) {
	tests := []struct {
		name string
		id   float64
		want string
	}{
		{"whole", 1042, "1042"},
		{"negative", -7, "-7"},
		{"fraction", 12.5, "12.5"},
		{"beyond int64", 1e19, "10000000000000000000"},
		{"below int64", -1e19, "-10000000000000000000"},
		{"int64 min", -(1 << 63), "-9223372036854775808"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := Normalize(map[string]any{"id": tt.id}, KindApplication)
			if r.ID() != tt.want {
				t.Errorf("ID = %q, want %q", r.ID(), tt.want)
			}
		})
	}
}

func TestNormalize_MalformedFieldsDegrade(t *testing.T) {
	raw := map[string]any{
		"name":         42.0,
		"owner":        []any{"x"},
		"tags":         "not-a-list",
		"lastModified": "yesterday",
		"riskScore":    "high",
	}

	r, repaired := Normalize(raw, KindAsset)

	if r.Name() != "" {
		t.Errorf("Name = %q, want empty", r.Name())
	}
	if r.Owner() != "" || r.OwnerOrDefault() != DefaultOwner {
		t.Errorf("Owner = %q / %q", r.Owner(), r.OwnerOrDefault())
	}
	if r.Tags() == nil || len(r.Tags()) != 0 {
		t.Errorf("Tags = %v, want empty non-nil", r.Tags())
	}
	if !r.LastModified().IsZero() {
		t.Errorf("LastModified = %v, want zero", r.LastModified())
	}
	if r.RiskScore() != nil {
		t.Errorf("RiskScore = %v, want nil", *r.RiskScore())
	}
	for _, f := range []string{"name", "owner", "tags", "lastModified", "riskScore", "id"} {
		if !slices.Contains(repaired, f) {
			t.Errorf("repaired %v missing %q", repaired, f)
		}
	}
}

func TestNormalize_GeneratedIDIsStable(t *testing.T) {
	raw := map[string]any{"name": "Sales Transactions", "domain": "Sales"}

	a, _ := Normalize(raw, KindAsset)
	b, _ := Normalize(raw, KindAsset)
	c, _ := Normalize(raw, KindTimeline)

	if a.ID() == "" || a.ID() != b.ID() {
		t.Errorf("ids not stable: %q vs %q", a.ID(), b.ID())
	}
	if a.ID() == c.ID() {
		t.Error("different kinds must not share generated ids")
	}
}

func TestNormalizeAll_SkipsNonObjects(t *testing.T) {
	raws := []any{
		map[string]any{"id": "a"},
		"garbage",
		map[string]any{"id": "b"},
	}

	recs, repaired := NormalizeAll(raws, KindAsset)
	if len(recs) != 2 || recs[0].ID() != "a" || recs[1].ID() != "b" {
		t.Fatalf("unexpected records: %d", len(recs))
	}
	if !slices.Contains(repaired, "record[1]") {
		t.Errorf("repaired = %v", repaired)
	}
}

func TestNew_CopiesInputs(t *testing.T) {
	tags := []string{"a"}
	score := 10.0
	r := New("x", KindAsset, Fields{Tags: tags, RiskScore: &score})

	tags[0] = "mutated"
	score = 99

	if r.Tags()[0] != "a" {
		t.Error("tags aliased caller slice")
	}
	if *r.RiskScore() != 10 {
		t.Error("risk score aliased caller pointer")
	}
}

func TestField(t *testing.T) {
	r := New("x", KindApplication, Fields{Type: "T", Domain: "D", Status: "S", Center: "C"})
	tests := map[string]string{
		"type": "T", "domain": "D", "status": "S", "center": "C",
		"kind": "application", "bogus": "",
	}
	for name, want := range tests {
		if got := r.Field(name); got != want {
			t.Errorf("Field(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestKind_IsValid(t *testing.T) {
	for _, k := range []Kind{KindAsset, KindApplication, KindTimeline} {
		if !k.IsValid() {
			t.Errorf("%q.IsValid() = false", k)
		}
	}
	if Kind("dataset").IsValid() {
		t.Error("unexpected valid kind")
	}
}
