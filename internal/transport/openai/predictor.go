package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/metrics"
)

const upstreamName = "predictor"

// Predictor is a query completion provider using the OpenAI-compatible chat API.
type Predictor struct {
	client         *openai.Client
	model          string
	instruction    string
	maxTokens      int
	temperature    float32
	maxPromptChars int
	user           string
	logger         *zap.Logger
}

// Config holds the completion provider settings.
// Zero fields fall back to domain.DefaultPredictorConfig.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Instruction    string
	MaxTokens      int
	Temperature    float32
	MaxPromptChars int
	User           string
	Logger         *zap.Logger
}

// NewPredictor creates an OpenAI-compatible completion provider.
func NewPredictor(cfg *Config) *Predictor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	def := domain.DefaultPredictorConfig()
	p := &Predictor{
		client:         openai.NewClientWithConfig(clientCfg),
		model:          orDefault(cfg.Model, def.Model),
		instruction:    orDefault(cfg.Instruction, def.Instruction),
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		maxPromptChars: cfg.MaxPromptChars,
		user:           cfg.User,
		logger:         cfg.Logger,
	}
	if p.maxTokens <= 0 {
		p.maxTokens = def.MaxTokens
	}
	if p.temperature <= 0 {
		p.temperature = def.Temperature
	}
	if p.maxPromptChars <= 0 {
		p.maxPromptChars = def.MaxPromptChars
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Predict implements domain.Predictor. Returns raw completion lines with transport-level metrics;
// cleanup is left to domain.CleanPredictor.
func (p *Predictor) Predict(ctx context.Context, partial string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	if len(partial) > p.maxPromptChars {
		partial = partial[:p.maxPromptChars]
	}

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.instruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt(partial, n)},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		User:        p.user,
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, req)

	metrics.UpstreamRequestDuration.WithLabelValues(upstreamName, "predict").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, "predict", statusLabel(err)).Inc()
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, "predict", "empty").Inc()
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrPredictor)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, "predict", "success").Inc()

	if total := resp.Usage.TotalTokens; total > 0 {
		metrics.PredictorTokensTotal.WithLabelValues(p.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.PredictorTokensTotal.WithLabelValues(p.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		domain.UsageFromContext(ctx).AddTokens(total)
	} else {
		domain.UsageFromContext(ctx).MarkUsed()
	}

	lines := strings.Split(resp.Choices[0].Message.Content, "\n")
	p.logger.Debug("Predicted completions",
		zap.String("model", p.model),
		zap.Int("lines", len(lines)),
		zap.Int("tokens", resp.Usage.TotalTokens),
	)
	return lines, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *Predictor) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func prompt(partial string, n int) string {
	return "Suggest up to " + strconv.Itoa(n) + " completions for the search query: " + partial
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func statusLabel(err error) string {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return strconv.Itoa(reqErr.HTTPStatusCode)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return strconv.Itoa(apiErr.HTTPStatusCode)
	}
	return "error"
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrPredictor so callers can degrade instead of failing.
func parseAPIError(err error) error {
	wrap := domain.ErrPredictor

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("completion request: %w", err)
	}
	return fmt.Errorf("completion request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
