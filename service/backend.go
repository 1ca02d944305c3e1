package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/achtung-live/guard-go/core"
)

// Backend is a remote analysis service. The hosted service carries newer
// pattern catalogs than the built-in ones; when it is unreachable the
// caller falls back to local analysis.
type Backend interface {
	AnalyzeText(ctx context.Context, req core.AnalyzeTextRequest) (*core.TextResult, error)
	AnalyzeForm(ctx context.Context, req core.AnalyzeFormRequest) (*core.FormResult, error)
	AnalyzeDarkPatterns(ctx context.Context, req core.AnalyzeDarkPatternsRequest) (*core.DarkPatternResult, error)
	AnalyzeCookies(ctx context.Context, req core.AnalyzeCookiesRequest) (*core.CookieResult, error)
}

// HTTPBackendConfig configures an HTTPBackend.
type HTTPBackendConfig struct {
	// BaseURL of the hosted analysis API
	BaseURL string

	// Timeout per request; defaults to 5 seconds
	Timeout time.Duration

	// APIKey is sent as a bearer token when set
	APIKey string
}

// HTTPBackend calls the hosted analysis endpoints over JSON.
type HTTPBackend struct {
	cfg    HTTPBackendConfig
	client *http.Client
}

// NewHTTPBackend creates a backend client for the given configuration.
func NewHTTPBackend(cfg HTTPBackendConfig) *HTTPBackend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &HTTPBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (b *HTTPBackend) AnalyzeText(ctx context.Context, req core.AnalyzeTextRequest) (*core.TextResult, error) {
	var result core.TextResult
	if err := b.post(ctx, "/analyze-text", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) AnalyzeForm(ctx context.Context, req core.AnalyzeFormRequest) (*core.FormResult, error) {
	var result core.FormResult
	if err := b.post(ctx, "/analyze-form", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) AnalyzeDarkPatterns(ctx context.Context, req core.AnalyzeDarkPatternsRequest) (*core.DarkPatternResult, error) {
	var result core.DarkPatternResult
	if err := b.post(ctx, "/detect-darkpatterns", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) AnalyzeCookies(ctx context.Context, req core.AnalyzeCookiesRequest) (*core.CookieResult, error) {
	var result core.CookieResult
	if err := b.post(ctx, "/analyze-cookies", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) post(ctx context.Context, path string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}
