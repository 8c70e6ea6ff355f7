package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const assetsExport = `[
  {"id": "a1", "name": "Marketing Campaign Report", "type": "Report", "domain": "Marketing", "owner": "J. Doe", "certification": "pending"},
  {"id": "a2", "name": "Sales Transactions", "type": "Dataset", "domain": "Sales"},
  {"id": "a3", "name": "Market Share Index", "type": "Dataset", "domain": "Finance", "tags": ["quarterly"]}
]`

func writeExport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSuggest(t *testing.T) {
	path := writeExport(t, assetsExport)

	out, err := run(t, "suggest", "sal", "-f", path, "--history", "sales q3", "--json")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	var got []struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) < 2 || got[0].Text != "sales q3" || got[0].Source != "history" {
		t.Errorf("suggestions = %+v", got)
	}
}

func TestSuggest_MarketingRule(t *testing.T) {
	path := writeExport(t, `[{"id": "x", "name": "Mars Rover Telemetry"}]`)

	out, err := run(t, "suggest", "mar", "-f", path)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(out, "Marketing\t(rule)") {
		t.Errorf("output = %q", out)
	}
}

func TestFilter(t *testing.T) {
	path := writeExport(t, assetsExport)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"marketing query", []string{"-q", "mar"}, []string{"a1", "a3"}},
		{"repeated type", []string{"--type", "Dataset", "--type", "Report"}, []string{"a1", "a2", "a3"}},
		{"type and domain", []string{"--type", "Dataset", "--domain", "Sales"}, []string{"a2"}},
		{"pending tab", []string{"--tab", "pending_certification"}, []string{"a1"}},
		{"favorites", []string{"--tab", "favorites", "--starred", "a3"}, []string{"a3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"filter", "-f", path, "--json"}, tt.args...)
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			var rows []struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal([]byte(out), &rows); err != nil {
				t.Fatalf("decode: %v", err)
			}
			var ids []string
			for _, r := range rows {
				ids = append(ids, r.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestFilter_TableOutput(t *testing.T) {
	path := writeExport(t, `{"records": `+assetsExport+`}`)

	out, err := run(t, "filter", "-f", path, "--domain", "Sales")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(out, "Sales Transactions") || !strings.Contains(out, "1 record(s)") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Unknown") {
		t.Errorf("missing owner placeholder: %q", out)
	}
}

func TestFilter_Errors(t *testing.T) {
	path := writeExport(t, assetsExport)

	if _, err := run(t, "filter", "-f", path, "--tab", "archived"); err == nil {
		t.Error("expected invalid tab error")
	}
	if _, err := run(t, "filter"); err == nil || !strings.Contains(err.Error(), "--file") {
		t.Errorf("expected missing file error, got %v", err)
	}
	if _, err := run(t, "filter", "-f", path, "-k", "dataset"); err == nil {
		t.Error("expected unknown kind error")
	}
	bad := writeExport(t, `{"items": []}`)
	if _, err := run(t, "filter", "-f", bad); err == nil {
		t.Error("expected shape error")
	}
}

func TestSummary(t *testing.T) {
	path := writeExport(t, `[
  {"applicationId": 1, "applicationType": "Disability", "serviceCenter": "North", "status": "Pending Review", "processingTimeBusinessDays": 10},
  {"applicationId": 2, "applicationType": "Disability", "serviceCenter": "South", "status": "Approved", "processingTimeBusinessDays": 20},
  {"applicationId": 3, "applicationType": "Pension", "serviceCenter": "North", "status": ""}
]`)

	out, err := run(t, "summary", "-k", "application", "-f", path, "--json")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var sum struct {
		Total   int
		Backlog int
	}
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Total != 3 {
		t.Errorf("total = %d", sum.Total)
	}

	out, err = run(t, "summary", "-k", "application", "-f", path, "--boundaries", "7,14")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "Applications: 3") || !strings.Contains(out, "Disability") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "summary", "-k", "application", "-f", path, "--boundaries", "14,7"); err == nil {
		t.Error("expected boundary error")
	}
}

func TestClassify(t *testing.T) {
	out, err := run(t, "classify", "risk", "n/a")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if strings.TrimSpace(out) != "No Data" {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "classify", "temperature", "3"); err == nil {
		t.Error("expected unknown scale error")
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "datadeskctl dev") {
		t.Errorf("output = %q", out)
	}
}
