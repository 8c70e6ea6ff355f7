package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
)

// MaxValuesPerDimension is the maximum number of selected values per dimension.
const MaxValuesPerDimension = 64

// Dimension is a filterable record attribute.
type Dimension string

// Filterable dimensions.
const (
	Type          Dimension = "type"
	Domain        Dimension = "domain"
	Status        Dimension = "status"
	Certification Dimension = "certification"
	Center        Dimension = "center"
	Owner         Dimension = "owner"
)

// Dimensions lists every dimension in evaluation order.
var Dimensions = []Dimension{Type, Domain, Status, Certification, Center, Owner}

// IsValid checks if the dimension is one of the supported values.
func (d Dimension) IsValid() bool {
	return slices.Contains(Dimensions, d)
}

// Selection is the set of selected values per dimension.
// A dimension without values places no restriction on records.
// Values are OR-ed within a dimension and dimensions are AND-ed.
type Selection struct {
	values map[Dimension]map[string]struct{}
}

// NewSelection validates and creates a Selection. Blank values are dropped.
func NewSelection(values map[Dimension][]string) (Selection, error) {
	s := Selection{values: make(map[Dimension]map[string]struct{}, len(values))}
	for dim, vals := range values {
		if !dim.IsValid() {
			return Selection{}, fmt.Errorf("unknown filter dimension %q", dim)
		}
		if len(vals) > MaxValuesPerDimension {
			return Selection{}, fmt.Errorf("too many %s values (max %d)", dim, MaxValuesPerDimension)
		}
		set := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			set[v] = struct{}{}
		}
		if len(set) > 0 {
			s.values[dim] = set
		}
	}
	return s, nil
}

// Values returns the selected values of a dimension in sorted order.
func (s Selection) Values(d Dimension) []string {
	set := s.values[d]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Single returns the only selected value of a dimension, if exactly one is selected.
func (s Selection) Single(d Dimension) (string, bool) {
	set := s.values[d]
	if len(set) != 1 {
		return "", false
	}
	for v := range set {
		return v, true
	}
	return "", false
}

// IsEmpty reports whether no dimension is restricted.
func (s Selection) IsEmpty() bool {
	return len(s.values) == 0
}

// Matches reports whether the record satisfies every restricted dimension.
// A record with no value for a restricted dimension does not match.
func (s Selection) Matches(r *record.Record) bool {
	for dim, set := range s.values {
		v := r.Field(string(dim))
		if v == "" {
			return false
		}
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
