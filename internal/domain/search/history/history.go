package history

import (
	"slices"
	"strings"
)

// MaxEntries caps the number of remembered searches.
const MaxEntries = 5

// History is the recent-search list, most recent first.
// Pushing a term that is already present leaves the list unchanged; it is not moved to the front.
type History struct {
	terms []string
}

// New creates a History from persisted terms. Blank and duplicate entries are
// dropped and the list is capped at MaxEntries.
func New(terms []string) History {
	h := History{terms: make([]string, 0, MaxEntries)}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || h.contains(t) {
			continue
		}
		h.terms = append(h.terms, t)
		if len(h.terms) == MaxEntries {
			break
		}
	}
	return h
}

// Push records a search term. Returns true if the history changed.
func (h *History) Push(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" || h.contains(term) {
		return false
	}
	h.terms = slices.Insert(h.terms, 0, term)
	if len(h.terms) > MaxEntries {
		h.terms = h.terms[:MaxEntries]
	}
	return true
}

// contains reports whether the exact term is remembered.
func (h *History) contains(term string) bool {
	return slices.Contains(h.terms, term)
}

// Terms returns a copy of the remembered terms, most recent first.
func (h *History) Terms() []string {
	out := make([]string, len(h.terms))
	copy(out, h.terms)
	return out
}

// Len returns the number of remembered terms.
func (h *History) Len() int { return len(h.terms) }

// Clear forgets every term.
func (h *History) Clear() { h.terms = h.terms[:0] }
