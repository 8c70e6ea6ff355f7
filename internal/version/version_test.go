package version

import "testing"

func TestString(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "1.4.0", "abc123", "2026-10-01"
	if got := String(); got != "1.4.0 (commit abc123, built 2026-10-01)" {
		t.Errorf("String() = %q", got)
	}
	if got := UserAgent(); got != "datadesk/1.4.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}
