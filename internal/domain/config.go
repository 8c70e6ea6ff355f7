package domain

// PredictorConfig holds internal completion settings, not exposed to clients.
type PredictorConfig struct {
	Model       string
	Instruction string
	MaxTokens   int
	Temperature float32
	// MaxPromptChars bounds the partial query sent to the provider.
	MaxPromptChars int
}

// DefaultPredictorConfig returns the default configuration for short search completions.
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		Model: "gpt-4o-mini",
		Instruction: "You complete search queries typed into a government data catalog. " +
			"Reply with one completion per line, no numbering, no commentary.",
		MaxTokens:      64,
		Temperature:    0.2,
		MaxPromptChars: 200,
	}
}
