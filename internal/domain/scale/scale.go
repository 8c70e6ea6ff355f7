// Package scale classifies dashboard scores into named bands.
package scale

import (
	"fmt"
	"math"
)

// NoData is the class of a missing or non-numeric value.
const NoData = "No Data"

// Band is a half-open interval [previous upper, Upper) mapped to a label.
type Band struct {
	Label string
	Upper float64
}

// Scale is a monotonic step function: ascending bands followed by an
// unbounded top class. A value equal to a band's Upper belongs to the next band.
type Scale struct {
	name  string
	bands []Band
	top   string
}

// New validates and creates a Scale. Band uppers must be strictly ascending.
func New(name string, bands []Band, top string) (Scale, error) {
	if top == "" {
		return Scale{}, fmt.Errorf("scale %q: top label is required", name)
	}
	for i, b := range bands {
		if b.Label == "" {
			return Scale{}, fmt.Errorf("scale %q: band %d label is required", name, i)
		}
		if math.IsNaN(b.Upper) {
			return Scale{}, fmt.Errorf("scale %q: band %q upper is NaN", name, b.Label)
		}
		if i > 0 && b.Upper <= bands[i-1].Upper {
			return Scale{}, fmt.Errorf("scale %q: band %q upper must exceed %v", name, b.Label, bands[i-1].Upper)
		}
	}
	cp := make([]Band, len(bands))
	copy(cp, bands)
	return Scale{name: name, bands: cp, top: top}, nil
}

// MustNew is New that panics on invalid bands (package-level scales only).
func MustNew(name string, bands []Band, top string) Scale {
	s, err := New(name, bands, top)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the metric the scale applies to.
func (s Scale) Name() string { return s.name }

// Labels returns every class in ascending order, followed by NoData.
func (s Scale) Labels() []string {
	out := make([]string, 0, len(s.bands)+2)
	for _, b := range s.bands {
		out = append(out, b.Label)
	}
	return append(out, s.top, NoData)
}

// Classify maps a value to its class. nil and NaN map to NoData.
func (s Scale) Classify(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NoData
	}
	return s.ClassifyValue(*v)
}

// ClassifyValue maps a present value to its class.
func (s Scale) ClassifyValue(v float64) string {
	if math.IsNaN(v) {
		return NoData
	}
	for _, b := range s.bands {
		if v < b.Upper {
			return b.Label
		}
	}
	return s.top
}

// Predefined dashboard scales.
var (
	// Quality grades data asset quality scores (0-100).
	Quality = MustNew("quality", []Band{
		{Label: "Critical", Upper: 51},
		{Label: "Poor", Upper: 71},
		{Label: "Fair", Upper: 86},
		{Label: "Good", Upper: 96},
	}, "Excellent")

	// Utilization grades center capacity use in percent.
	Utilization = MustNew("utilization", []Band{
		{Label: "Under-utilized", Upper: 50},
		{Label: "Optimal", Upper: 85},
		{Label: "High", Upper: 95},
	}, "Over-capacity")

	// Compliance grades service center compliance rates in percent.
	Compliance = MustNew("compliance", []Band{
		{Label: "Non-compliant", Upper: 60},
		{Label: "Partially Compliant", Upper: 80},
		{Label: "Mostly Compliant", Upper: 95},
	}, "Fully Compliant")

	// Risk grades application risk scores (0-100).
	Risk = MustNew("risk", []Band{
		{Label: "Low", Upper: 30},
		{Label: "Medium", Upper: 70},
	}, "High")
)

// ByName returns a predefined scale.
func ByName(name string) (Scale, bool) {
	switch name {
	case Quality.name:
		return Quality, true
	case Utilization.name:
		return Utilization, true
	case Compliance.name:
		return Compliance, true
	case Risk.name:
		return Risk, true
	default:
		return Scale{}, false
	}
}
