package datadesk

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/datadesk/internal/domain"
	openaiPred "github.com/kailas-cloud/datadesk/internal/transport/openai"
)

// Predictor proposes completions of a partial query for predictive suggestions.
// Implementations may return raw model lines; list markers, quotes and duplicates are cleaned.
type Predictor interface {
	Predict(ctx context.Context, partial string, n int) ([]string, error)
}

// OpenAIPredictor creates a predictor backed by an OpenAI-compatible chat completion API.
// Empty model and baseURL select the defaults.
func OpenAIPredictor(apiKey, baseURL, model string) Predictor {
	return openaiPred.NewPredictor(&openaiPred.Config{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
	})
}

// predictorAdapter wraps a public Predictor to satisfy domain.Predictor.
type predictorAdapter struct {
	inner Predictor
}

func (a *predictorAdapter) Predict(ctx context.Context, partial string, n int) ([]string, error) {
	out, err := a.inner.Predict(ctx, partial, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPredictor, err)
	}
	return out, nil
}
