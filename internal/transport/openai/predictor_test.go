package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterUpstreamMetrics()
	os.Exit(m.Run())
}

// chatResponse mirrors the OpenAI-compatible chat completion response.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func completionServer(t *testing.T, content string, total int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "mar") {
			t.Errorf("unexpected request: %+v", req)
		}

		resp := chatResponse{ID: "c1", Object: "chat.completion", Model: "test-model"}
		resp.Choices = make([]struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}, 1)
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = content
		resp.Choices[0].FinishReason = "stop"
		resp.Usage.PromptTokens = total / 2
		resp.Usage.CompletionTokens = total - total/2
		resp.Usage.TotalTokens = total

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestPredictor(url string) *Predictor {
	return NewPredictor(&Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})
}

func TestPredictor_Predict(t *testing.T) {
	srv := completionServer(t, "marketing spend\nmarket share\n", 30)
	p := newTestPredictor(srv.URL)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	lines, err := p.Predict(ctx, "mar", 7)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	got := domain.CleanCompletions(lines, 7)
	if len(got) != 2 || got[0] != "marketing spend" || got[1] != "market share" {
		t.Errorf("completions = %q", got)
	}
	if usage.TotalTokens != 30 || !usage.Used {
		t.Errorf("usage = %+v", usage)
	}
}

func TestPredictor_ZeroN(t *testing.T) {
	p := newTestPredictor("http://unused")
	got, err := p.Predict(context.Background(), "mar", 0)
	if err != nil || len(got) != 0 {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestPredictor_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "c1", "choices": []any{}})
	}))
	defer srv.Close()

	_, err := newTestPredictor(srv.URL).Predict(context.Background(), "mar", 5)
	if !errors.Is(err, domain.ErrPredictor) {
		t.Errorf("err = %v, want ErrPredictor", err)
	}
}

func TestPredictor_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer srv.Close()

	_, err := newTestPredictor(srv.URL).Predict(context.Background(), "mar", 5)
	if !errors.Is(err, domain.ErrPredictor) {
		t.Fatalf("err = %v, want ErrPredictor", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("status missing from %q", err)
	}
}

func TestPredictor_LongPartialTruncated(t *testing.T) {
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotLen = len(req.Messages[1].Content)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": "x"}}},
		})
	}))
	defer srv.Close()

	p := NewPredictor(&Config{APIKey: "k", BaseURL: srv.URL, MaxPromptChars: 10})
	if _, err := p.Predict(context.Background(), strings.Repeat("a", 500), 3); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if want := len(prompt(strings.Repeat("a", 10), 3)); gotLen != want {
		t.Errorf("prompt length = %d, want %d", gotLen, want)
	}
}
