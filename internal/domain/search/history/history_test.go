package history

import (
	"slices"
	"testing"
)

func TestPush_CapAndOrder(t *testing.T) {
	var h History
	for _, term := range []string{"one", "two", "three", "four", "five", "six"} {
		if !h.Push(term) {
			t.Fatalf("Push(%q) = false, want true", term)
		}
	}

	want := []string{"six", "five", "four", "three", "two"}
	if !slices.Equal(h.Terms(), want) {
		t.Errorf("Terms = %v, want %v", h.Terms(), want)
	}
	if h.Len() != MaxEntries {
		t.Errorf("Len = %d, want %d", h.Len(), MaxEntries)
	}
}

func TestPush_ExistingTermNotMoved(t *testing.T) {
	h := New([]string{"b", "a"})

	if h.Push("a") {
		t.Error("Push of existing term must report no change")
	}
	if !slices.Equal(h.Terms(), []string{"b", "a"}) {
		t.Errorf("Terms = %v, want [b a]", h.Terms())
	}
}

func TestPush_CaseSensitiveDedup(t *testing.T) {
	h := New([]string{"sales"})
	if !h.Push("Sales") {
		t.Error("differently cased term is a new entry")
	}
	if h.Len() != 2 {
		t.Errorf("Len = %d, want 2", h.Len())
	}
}

func TestPush_BlankIgnored(t *testing.T) {
	var h History
	if h.Push("   ") {
		t.Error("blank term must be ignored")
	}
	if h.Push("") {
		t.Error("empty term must be ignored")
	}
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}

func TestNew_SanitizesPersistedTerms(t *testing.T) {
	h := New([]string{"a", "", "a", " b ", "c", "d", "e", "f", "g"})
	want := []string{"a", "b", "c", "d", "e"}
	if !slices.Equal(h.Terms(), want) {
		t.Errorf("Terms = %v, want %v", h.Terms(), want)
	}
}

func TestTerms_ReturnsCopy(t *testing.T) {
	h := New([]string{"a"})
	terms := h.Terms()
	terms[0] = "mutated"
	if !h.contains("a") {
		t.Error("Terms must not alias internal state")
	}
}

func TestClear(t *testing.T) {
	h := New([]string{"a", "b"})
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len = %d after Clear", h.Len())
	}
	if !h.Push("a") {
		t.Error("Push after Clear must succeed")
	}
}
