package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain"
	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/search/result"
	"github.com/kailas-cloud/datadesk/internal/metrics"
	"github.com/kailas-cloud/datadesk/internal/version"
)

const (
	upstreamName = "catalog"
	// maxBodyBytes bounds a single upstream response.
	maxBodyBytes = 8 << 20
	// maxErrorMessage bounds a raw error body quoted in errors.
	maxErrorMessage = 200
)

// DefaultPaths maps each record kind to its collection path on the record service.
var DefaultPaths = map[record.Kind]string{
	record.KindAsset:       "/assets",
	record.KindApplication: "/applications",
	record.KindTimeline:    "/timeline",
}

// Config holds the record service client settings.
type Config struct {
	BaseURL string
	// Path overrides DefaultPaths for the client's kind.
	Path    string
	Token   string
	Timeout time.Duration
	Logger  *zap.Logger
	// HTTPClient replaces the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the remote record service for one record kind.
type Client struct {
	http    *http.Client
	baseURL string
	path    string
	token   string
	kind    record.Kind
	logger  *zap.Logger
}

// New creates a record service client for a kind.
func New(kind record.Kind, cfg *Config) (*Client, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid catalog base url %q", cfg.BaseURL)
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPaths[kind]
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:    hc,
		baseURL: base,
		path:    "/" + strings.Trim(path, "/"),
		token:   cfg.Token,
		kind:    kind,
		logger:  logger,
	}, nil
}

// Kind returns the record kind this client serves.
func (c *Client) Kind() record.Kind { return c.kind }

// pageBody is the search/list response. Older deployments return "data" instead of "records".
type pageBody struct {
	Records []any `json:"records"`
	Data    []any `json:"data"`
	Total   *int  `json:"total"`
}

type suggestionBody struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Search runs a free-text search.
func (c *Client) Search(ctx context.Context, query string, params result.Params) (result.Page, error) {
	q := pageQuery(params)
	q.Set("q", query)
	return c.fetchPage(ctx, "search", c.path+"/search", q)
}

// List returns a page of records without a query.
func (c *Client) List(ctx context.Context, params result.Params) (result.Page, error) {
	return c.fetchPage(ctx, "list", c.path, pageQuery(params))
}

// Suggest returns the service's completions for a partial query, blank texts dropped.
func (c *Client) Suggest(ctx context.Context, partial string) ([]string, error) {
	q := url.Values{}
	q.Set("q", partial)

	var body []suggestionBody
	if err := c.do(ctx, "suggest", http.MethodGet, c.path+"/suggestions", q, nil, &body); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(body))
	for _, s := range body {
		if strings.TrimSpace(s.Text) != "" {
			out = append(out, s.Text)
		}
	}
	return out, nil
}

// Update applies a partial update and returns the full replacement record.
func (c *Client) Update(ctx context.Context, id string, patch map[string]any) (record.Record, error) {
	data, err := json.Marshal(patch)
	if err != nil {
		return record.Record{}, fmt.Errorf("marshal patch: %w", err)
	}

	var raw map[string]any
	path := c.path + "/" + url.PathEscape(id)
	if err := c.do(ctx, "update", http.MethodPatch, path, nil, data, &raw); err != nil {
		return record.Record{}, err
	}
	if raw == nil {
		return record.Record{}, fmt.Errorf("empty update response: %w", domain.ErrUpstream)
	}
	rec, repaired := record.Normalize(raw, c.kind)
	c.logRepairs("update", repaired)
	return rec, nil
}

// HealthCheck verifies the record service answers a minimal list request.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.List(ctx, result.Params{Page: 1, Limit: 1})
	return err
}

func (c *Client) fetchPage(ctx context.Context, op, path string, q url.Values) (result.Page, error) {
	var body pageBody
	if err := c.do(ctx, op, http.MethodGet, path, q, nil, &body); err != nil {
		return result.Page{}, err
	}

	raws := body.Records
	if raws == nil {
		raws = body.Data
	}
	recs, repaired := record.NormalizeAll(raws, c.kind)
	c.logRepairs(op, repaired)

	total := len(recs)
	if body.Total != nil && *body.Total >= 0 {
		total = *body.Total
	}
	return result.Page{Records: recs, Total: total}, nil
}

func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	q url.Values,
	payload []byte,
	out any,
) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(upstreamName, op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, op, "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("catalog %s: %w", op, ctxErr)
		}
		return fmt.Errorf("catalog %s: %v: %w", op, err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(upstreamName, op, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("catalog %s: read body: %v: %w", op, err, domain.ErrUpstream)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound && op == "update" {
			return fmt.Errorf("record %s: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("catalog %s: %w", op, domain.NewUpstreamError(resp.StatusCode, errorMessage(body)))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("catalog %s: decode: %v: %w", op, err, domain.ErrUpstream)
	}
	return nil
}

func (c *Client) logRepairs(op string, repaired []string) {
	if len(repaired) == 0 {
		return
	}
	c.logger.Warn("Repaired malformed records",
		zap.String("kind", string(c.kind)),
		zap.String("op", op),
		zap.Int("count", len(repaired)),
		zap.Strings("fields", head(repaired, 20)),
	)
}

func pageQuery(p result.Params) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if p.Domain != "" {
		q.Set("domain", p.Domain)
	}
	return q
}

// errorMessage extracts "message", "error" or "detail" from a JSON error body, else a truncated raw body.
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		for _, s := range []string{parsed.Message, parsed.Error, parsed.Detail} {
			if s != "" {
				return s
			}
		}
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorMessage)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func head(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
