package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/achtung-live/guard-go/core"
)

func quietConfig() Config {
	return Config{Logger: log.New(io.Discard, "", 0)}
}

// TestDecideGating covers the gate: global switch, whitelist, per-kind
// toggles and the blacklist override.
func TestDecideGating(t *testing.T) {
	store := NewMemoryStore()
	cfg := quietConfig()
	cfg.Store = store
	svc := NewAnalyzerService(cfg)

	// Defaults allow everything
	decision, err := svc.Decide("example.de", KindText)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	// Global switch off stops all analyses
	settings := DefaultSettings()
	settings.Enabled = false
	assert.NoError(t, store.SaveSettings(settings))

	decision, err = svc.Decide("example.de", KindText)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, SkipDisabled, decision.Reason)

	// Whitelisted hosts are skipped, subdomains included
	settings = DefaultSettings()
	settings.Whitelist = []string{"trusted.de"}
	assert.NoError(t, store.SaveSettings(settings))

	decision, err = svc.Decide("app.trusted.de", KindForm)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, SkipWhitelisted, decision.Reason)

	decision, err = svc.Decide("untrusted.de", KindForm)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	// A disabled toggle skips its kind only
	settings = DefaultSettings()
	settings.FormAnalysis = false
	assert.NoError(t, store.SaveSettings(settings))

	decision, err = svc.Decide("example.de", KindForm)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, SkipToggledOff, decision.Reason)

	decision, err = svc.Decide("example.de", KindText)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	// The blacklist forces analysis past a disabled toggle
	settings.Blacklist = []string{"example.de"}
	assert.NoError(t, store.SaveSettings(settings))

	decision, err = svc.Decide("example.de", KindForm)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	// But never past the global switch
	settings.Enabled = false
	assert.NoError(t, store.SaveSettings(settings))

	decision, err = svc.Decide("example.de", KindForm)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
}

// TestAnalyzeTextSkippedReturnsDecision verifies that a gated request
// yields a nil result and the skip reason, not an error.
func TestAnalyzeTextSkippedReturnsDecision(t *testing.T) {
	store := NewMemoryStore()
	settings := DefaultSettings()
	settings.Enabled = false
	assert.NoError(t, store.SaveSettings(settings))

	cfg := quietConfig()
	cfg.Store = store
	svc := NewAnalyzerService(cfg)

	result, decision, err := svc.AnalyzeText(context.Background(), "example.de", core.AnalyzeTextRequest{
		Text: "Meine IBAN ist DE89370400440532013000",
	})
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, SkipDisabled, decision.Reason)
}

// TestRateLimitPerOrigin verifies that one origin hitting the limit does
// not affect another.
func TestRateLimitPerOrigin(t *testing.T) {
	cfg := quietConfig()
	cfg.RateLimitEnabled = true
	cfg.RequestsPerMinute = 2
	svc := NewAnalyzerService(cfg)

	req := core.AnalyzeTextRequest{Text: "ein harmloser Beispieltext"}

	for i := 0; i < 2; i++ {
		_, _, err := svc.AnalyzeText(context.Background(), "chatty.de", req)
		assert.NoError(t, err)
	}

	_, _, err := svc.AnalyzeText(context.Background(), "chatty.de", req)
	assert.Error(t, err)
	var guardErr GuardError
	assert.True(t, errors.As(err, &guardErr))
	assert.Equal(t, ErrorCategoryRateLimit, guardErr.Category)

	_, _, err = svc.AnalyzeText(context.Background(), "quiet.de", req)
	assert.NoError(t, err)
}

// stubBackend returns canned results or a canned error.
type stubBackend struct {
	textResult *core.TextResult
	err        error
	calls      int
}

func (b *stubBackend) AnalyzeText(ctx context.Context, req core.AnalyzeTextRequest) (*core.TextResult, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.textResult, nil
}

func (b *stubBackend) AnalyzeForm(ctx context.Context, req core.AnalyzeFormRequest) (*core.FormResult, error) {
	return nil, b.err
}

func (b *stubBackend) AnalyzeDarkPatterns(ctx context.Context, req core.AnalyzeDarkPatternsRequest) (*core.DarkPatternResult, error) {
	return nil, b.err
}

func (b *stubBackend) AnalyzeCookies(ctx context.Context, req core.AnalyzeCookiesRequest) (*core.CookieResult, error) {
	return nil, b.err
}

// TestBackendPreferred verifies that a healthy backend result is used
// as-is.
func TestBackendPreferred(t *testing.T) {
	backend := &stubBackend{
		textResult: &core.TextResult{RiskScore: 55, RiskLevel: "medium", SafeToSend: false},
	}
	cfg := quietConfig()
	cfg.Backend = backend
	svc := NewAnalyzerService(cfg)

	result, _, err := svc.AnalyzeText(context.Background(), "example.de", core.AnalyzeTextRequest{
		Text: "ein harmloser Beispieltext",
	})
	assert.NoError(t, err)
	assert.Equal(t, 55, result.RiskScore)
	assert.Equal(t, 1, backend.calls)
}

// TestBackendFallbackToLocal verifies that a failing backend degrades
// to the local classifier instead of surfacing an error.
func TestBackendFallbackToLocal(t *testing.T) {
	backend := &stubBackend{err: fmt.Errorf("connection refused")}
	cfg := quietConfig()
	cfg.Backend = backend
	svc := NewAnalyzerService(cfg)

	result, _, err := svc.AnalyzeText(context.Background(), "example.de", core.AnalyzeTextRequest{
		Text: "Schreib mir an max@example.de",
	})
	assert.NoError(t, err)
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, 25, result.RiskScore)
	assert.Equal(t, 1, backend.calls)

	// The other analyses fall back the same way
	formResult, _, err := svc.AnalyzeForm(context.Background(), "example.de", core.AnalyzeFormRequest{
		Fields: []core.FieldDescriptor{{Name: "ssn"}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 35, formResult.FormRiskScore)
}

// TestStatsAccumulate verifies the counters across analyses.
func TestStatsAccumulate(t *testing.T) {
	store := NewMemoryStore()
	cfg := quietConfig()
	cfg.Store = store
	svc := NewAnalyzerService(cfg)

	_, _, err := svc.AnalyzeText(context.Background(), "example.de", core.AnalyzeTextRequest{
		Text: "Meine IBAN ist DE89370400440532013000",
	})
	assert.NoError(t, err)

	_, _, err = svc.AnalyzeForm(context.Background(), "example.de", core.AnalyzeFormRequest{
		Fields: []core.FieldDescriptor{{Name: "kommentar"}},
	})
	assert.NoError(t, err)

	stats, err := svc.Stats()
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TextsAnalyzed)
	assert.Equal(t, 1, stats.FormsAnalyzed)
	assert.Equal(t, 1, stats.WarningsShown)
	assert.GreaterOrEqual(t, stats.FindingsDetected, 2)

	assert.NoError(t, svc.ResetStats())
	stats, err = svc.Stats()
	assert.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

// TestApplyQuickAction verifies the one-click text rewrites.
func TestApplyQuickAction(t *testing.T) {
	svc := NewAnalyzerService(quietConfig())
	text := "Ich bin erreichbar unter max@example.de, Gruß"

	result, _, err := svc.AnalyzeText(context.Background(), "example.de", core.AnalyzeTextRequest{Text: text})
	assert.NoError(t, err)

	cleaned, err := svc.ApplyQuickAction(ActionRemoveEmail, text, result)
	assert.NoError(t, err)
	assert.Equal(t, "Ich bin erreichbar unter [E-Mail entfernt], Gruß", cleaned)

	cleaned, err = svc.ApplyQuickAction(ActionAnonymizeAll, text, result)
	assert.NoError(t, err)
	assert.NotContains(t, cleaned, "max@example.de")

	_, err = svc.ApplyQuickAction("explode", text, result)
	assert.Error(t, err)

	_, err = svc.ApplyQuickAction(ActionAnonymizeAll, text, nil)
	assert.Error(t, err)
}
