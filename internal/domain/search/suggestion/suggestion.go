package suggestion

// Source is the provenance of a suggestion.
type Source string

// Suggestion sources, in merge order.
const (
	SourceHistory   Source = "history"
	SourceServer    Source = "server"
	SourcePredicted Source = "predicted"
	SourceData      Source = "data"
	// SourceRule marks suggestions injected by a fixed business rule.
	SourceRule Source = "rule"
)

// Result size caps.
const (
	// MaxResults caps the history and data-derived suggestion list.
	MaxResults = 5
	// MaxPredictive caps the predictive variant.
	MaxPredictive = 7
)

// Suggestion is one autocomplete entry.
type Suggestion struct {
	text   string
	source Source
}

// New creates a suggestion.
func New(text string, source Source) Suggestion {
	return Suggestion{text: text, source: source}
}

// Text returns the suggested string with its original casing.
func (s Suggestion) Text() string { return s.text }

// Source returns the provenance.
func (s Suggestion) Source() Source { return s.source }

// Texts extracts the strings of a suggestion list.
func Texts(list []Suggestion) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.text
	}
	return out
}
