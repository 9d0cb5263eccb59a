// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/internal/httputil"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

// Endpoint paths relative to the configured base URL.
const (
	PathChat            = "/api/chat"
	PathDocumentsSearch = "/api/front/documents/search"
	PathFilterValues    = "/api/front/filter-values"
	PathStats           = "/api/front/stats"
	PathHealth          = "/diag/health"
	PathDiagEmbedding   = "/diag/emb"
	PathDiagRetrieval   = "/diag/retrieval"
)

// Client calls the retrieval backend over HTTP. It never retries; a
// failure surfaces as a *RetrievalError on the first attempt.
type Client struct {
	cfg     types.HTTPConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[any]
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithBreaker wraps every call in a circuit breaker when cfg.Enabled.
func WithBreaker(cfg types.BreakerConfig) Option {
	return func(c *Client) {
		if !cfg.Enabled {
			return
		}
		c.breaker = newBreaker(cfg, c)
	}
}

// NewClient returns a Client for cfg. A zero timeout becomes
// types.DefaultTimeout so requests can never hang forever.
func NewClient(cfg types.HTTPConfig, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = types.DefaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = types.DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = types.DefaultUserAgent
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat posts a question to the semantic RAG endpoint.
func (c *Client) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	if req.Filters != nil && req.Filters.IsEmpty() {
		req.Filters = nil
	}
	var out types.ChatResponse
	if err := c.call(ctx, "chat", http.MethodPost, PathChat, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchDocuments runs a structured document search. Skip and Limit are
// sent as query parameters.
func (c *Client) SearchDocuments(ctx context.Context, req types.DocumentSearchRequest) (*types.DocumentSearchResponse, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(max(req.Skip, 0)))
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	var out types.DocumentSearchResponse
	if err := c.call(ctx, "documents search", http.MethodPost, PathDocumentsSearch, q, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FilterValues lists the facet values known to the backend.
func (c *Client) FilterValues(ctx context.Context) (*types.FilterValues, error) {
	var out types.FilterValues
	if err := c.call(ctx, "filter values", http.MethodGet, PathFilterValues, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns corpus statistics.
func (c *Client) Stats(ctx context.Context) (*types.Stats, error) {
	var out types.Stats
	if err := c.call(ctx, "stats", http.MethodGet, PathStats, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls the backend's diagnostic health endpoint.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var out types.HealthResponse
	if err := c.call(ctx, "health", http.MethodGet, PathHealth, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Embedding asks the backend to embed text with its retrieval model.
func (c *Client) Embedding(ctx context.Context, text string) (*types.EmbeddingResponse, error) {
	var out types.EmbeddingResponse
	if err := c.call(ctx, "embedding", http.MethodPost, PathDiagEmbedding, nil, types.EmbeddingRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	if out.Dimension == 0 {
		out.Dimension = len(out.Embedding)
	}
	return &out, nil
}

// Retrieval returns the chunks the backend retrieves for query without
// generating an answer. A non-positive topK uses types.DefaultDiagTopK.
func (c *Client) Retrieval(ctx context.Context, query string, topK int) (*types.RetrievalResponse, error) {
	if topK <= 0 {
		topK = types.DefaultDiagTopK
	}
	var out types.RetrievalResponse
	req := types.RetrievalRequest{Query: query, TopK: topK}
	if err := c.call(ctx, "retrieval", http.MethodPost, PathDiagRetrieval, nil, req, &out); err != nil {
		return nil, err
	}
	if out.Chunks == nil {
		out.Chunks = []types.Citation{}
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if c.breaker == nil {
		return c.do(ctx, op, method, path, query, body, out)
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.do(ctx, op, method, path, query, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &RetrievalError{Op: op, Err: err}
	}
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	reqURL := c.cfg.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	header := http.Header{}
	header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	req, err := httputil.NewJSONRequest(ctx, method, reqURL, body, header)
	if err != nil {
		return &RetrievalError{Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("oracle request failed", zap.String("op", op), zap.Error(err))
		return &RetrievalError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("oracle response",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if !httputil.IsSuccess(resp.StatusCode) {
		return &RetrievalError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       httputil.ErrorBody(resp),
		}
	}
	if err := httputil.DecodeJSON(resp, out); err != nil {
		return &RetrievalError{Op: op, Err: err}
	}
	return nil
}

func newBreaker(cfg types.BreakerConfig, c *Client) *gobreaker.CircuitBreaker[any] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "oracle",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// isBreakerSuccess counts only transport failures and 5xx answers against
// the breaker. Caller cancellation and 4xx answers do not trip it.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var re *RetrievalError
	if errors.As(err, &re) && re.StatusCode != 0 && re.StatusCode < 500 {
		return true
	}
	return false
}
