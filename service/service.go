package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/achtung-live/guard-go/core"
	"github.com/achtung-live/guard-go/utils"
)

// Analysis kinds, used for gating, stats and activity entries.
const (
	KindText        = "text"
	KindForm        = "form"
	KindDarkPattern = "darkpattern"
	KindCookie      = "cookie"
)

// Skip reasons returned by the gating decision.
const (
	SkipDisabled    = "disabled"
	SkipToggledOff  = "feature_disabled"
	SkipWhitelisted = "whitelisted"
)

// Quick actions the caller can apply to analyzed text.
const (
	ActionRemoveEmail   = "remove_email"
	ActionRemovePhone   = "remove_phone"
	ActionAnonymizeName = "anonymize_name"
	ActionAnonymizeAll  = "anonymize_all"
)

// Decision is the outcome of the pre-analysis gate.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Config wires an AnalyzerService. Catalog and Store are required for a
// useful instance but default sensibly when omitted.
type Config struct {
	// Catalog of detection rules; defaults to the built-in catalog
	Catalog *core.Catalog

	// Registry of known trackers; defaults to the built-in registry
	Registry *core.TrackerRegistry

	// Store for settings and stats; defaults to an in-memory store
	Store Store

	// Backend is tried before local analysis when set
	Backend Backend

	// Activity receives one entry per completed analysis when set
	Activity *core.ActivityLogger

	// Logger for request/error lines; defaults to stdout
	Logger *log.Logger

	// AuditLevel for request logging: "minimal", "standard" or "verbose"
	AuditLevel string

	// RateLimitEnabled caps requests per origin
	RateLimitEnabled bool

	// RequestsPerMinute per origin when rate limiting is on; default 60
	RequestsPerMinute int

	// Validation bounds incoming payloads
	Validation ValidationConfig
}

// AnalyzerService orchestrates the classifiers behind gating, rate
// limiting, remote fallback, stats and activity logging. All state is
// instance-local; construct one per process or per test.
type AnalyzerService struct {
	catalog  *core.Catalog
	registry *core.TrackerRegistry
	store    Store
	backend  Backend
	activity *core.ActivityLogger

	rateLimiter   *RateLimiter
	requestLog    *RequestLogger
	errorReporter *ErrorReporter
	validator     *RequestValidator
	logger        *log.Logger
}

// NewAnalyzerService builds a service from the given configuration.
func NewAnalyzerService(cfg Config) *AnalyzerService {
	if cfg.Catalog == nil {
		cfg.Catalog = core.DefaultCatalog()
	}
	if cfg.Registry == nil {
		cfg.Registry = core.DefaultTrackerRegistry()
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[guard] ", log.LstdFlags)
	}
	if cfg.AuditLevel == "" {
		cfg.AuditLevel = "standard"
	}

	var limiter *RateLimiter
	if cfg.RateLimitEnabled {
		rpm := cfg.RequestsPerMinute
		if rpm <= 0 {
			rpm = 60
		}
		limiter = NewRateLimiter(rpm, time.Minute)
	}

	return &AnalyzerService{
		catalog:       cfg.Catalog,
		registry:      cfg.Registry,
		store:         cfg.Store,
		backend:       cfg.Backend,
		activity:      cfg.Activity,
		rateLimiter:   limiter,
		requestLog:    NewRequestLogger(cfg.Logger, cfg.AuditLevel),
		errorReporter: NewErrorReporter(cfg.Logger),
		validator:     NewRequestValidator(cfg.Validation),
		logger:        cfg.Logger,
	}
}

// Decide runs the pre-analysis gate for a host and analysis kind. The
// whitelist always wins; the blacklist forces analysis past a disabled
// per-kind toggle but not past the global switch.
func (s *AnalyzerService) Decide(host, kind string) (Decision, error) {
	settings, err := s.store.LoadSettings()
	if err != nil {
		return Decision{}, newGuardError(ErrorCategoryStorage, err, generateRequestID(), nil)
	}

	if !settings.Enabled {
		return Decision{Reason: SkipDisabled}, nil
	}
	if hostMatches(host, settings.Whitelist) {
		return Decision{Reason: SkipWhitelisted}, nil
	}

	toggled := true
	switch kind {
	case KindText:
		toggled = settings.LiveTypingGuard
	case KindForm:
		toggled = settings.FormAnalysis
	case KindDarkPattern:
		toggled = settings.DarkPatternDetection
	case KindCookie:
		toggled = settings.CookieAnalysis
	}
	if !toggled && !hostMatches(host, settings.Blacklist) {
		return Decision{Reason: SkipToggledOff}, nil
	}

	return Decision{Allowed: true}, nil
}

func hostMatches(host string, list []string) bool {
	host = strings.ToLower(host)
	for _, entry := range list {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

func (s *AnalyzerService) checkRate(origin, requestID string) error {
	if s.rateLimiter == nil {
		return nil
	}
	exceeded, count, reset := s.rateLimiter.CheckLimit(origin)
	if exceeded {
		return newGuardError(ErrorCategoryRateLimit,
			fmt.Errorf("rate limit exceeded for %q: %d requests, resets at %s", origin, count, reset.Format(time.RFC3339)),
			requestID, map[string]interface{}{"origin": origin})
	}
	return nil
}

// AnalyzeText gates, rate limits and runs a text analysis. The backend is
// tried first when configured; any backend failure falls back to the
// local classifier, never to an error.
func (s *AnalyzerService) AnalyzeText(ctx context.Context, origin string, req core.AnalyzeTextRequest) (*core.TextResult, *Decision, error) {
	requestID := generateRequestID()

	decision, err := s.Decide(origin, KindText)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, &decision, nil
	}
	if err := s.checkRate(origin, requestID); err != nil {
		return nil, nil, err
	}
	if err := s.validator.ValidateText(req); err != nil {
		return nil, nil, newGuardError(ErrorCategoryValidation, err, requestID, nil)
	}

	start := time.Now()
	s.requestLog.LogRequest(requestID, map[string]interface{}{
		"kind":        KindText,
		"origin":      origin,
		"input_chars": len(req.Text),
	}, "minimal")

	result, err := s.textResult(ctx, req)
	if err != nil {
		wrapped := newGuardError(categorizeError(err), err, requestID, nil)
		s.errorReporter.ReportError(wrapped)
		return nil, nil, wrapped
	}

	s.requestLog.LogResponse(requestID, map[string]interface{}{
		"score":    result.RiskScore,
		"level":    result.RiskLevel,
		"findings": len(result.Findings),
	}, time.Since(start), "standard")

	s.bumpStats(func(st *Stats) {
		st.TextsAnalyzed++
		st.FindingsDetected += len(result.Findings)
		if !result.SafeToSend {
			st.WarningsShown++
		}
	})
	s.recordActivity(KindText, origin, result.RiskScore, result.RiskLevel, result.Findings)

	return result, &decision, nil
}

func (s *AnalyzerService) textResult(ctx context.Context, req core.AnalyzeTextRequest) (*core.TextResult, error) {
	if s.backend != nil {
		result, err := s.backend.AnalyzeText(ctx, req)
		if err == nil {
			return result, nil
		}
		s.logger.Printf("backend text analysis failed, falling back to local: %v", err)
	}
	return core.AnalyzeText(req, s.catalog)
}

// AnalyzeForm gates, rate limits and runs a form analysis.
func (s *AnalyzerService) AnalyzeForm(ctx context.Context, origin string, req core.AnalyzeFormRequest) (*core.FormResult, *Decision, error) {
	requestID := generateRequestID()

	decision, err := s.Decide(origin, KindForm)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, &decision, nil
	}
	if err := s.checkRate(origin, requestID); err != nil {
		return nil, nil, err
	}
	if err := s.validator.ValidateForm(req); err != nil {
		return nil, nil, newGuardError(ErrorCategoryValidation, err, requestID, nil)
	}

	start := time.Now()
	s.requestLog.LogRequest(requestID, map[string]interface{}{
		"kind":   KindForm,
		"origin": origin,
		"fields": len(req.Fields),
	}, "minimal")

	result, err := s.formResult(ctx, req)
	if err != nil {
		wrapped := newGuardError(categorizeError(err), err, requestID, nil)
		s.errorReporter.ReportError(wrapped)
		return nil, nil, wrapped
	}

	s.requestLog.LogResponse(requestID, map[string]interface{}{
		"score":   result.FormRiskScore,
		"level":   result.RiskLevel,
		"unusual": len(result.UnusualFields),
	}, time.Since(start), "standard")

	s.bumpStats(func(st *Stats) {
		st.FormsAnalyzed++
		st.FindingsDetected += len(result.UnusualFields)
		if len(result.Warnings) > 0 {
			st.WarningsShown++
		}
	})
	s.recordActivity(KindForm, origin, result.FormRiskScore, result.RiskLevel, nil)

	return result, &decision, nil
}

func (s *AnalyzerService) formResult(ctx context.Context, req core.AnalyzeFormRequest) (*core.FormResult, error) {
	if s.backend != nil {
		result, err := s.backend.AnalyzeForm(ctx, req)
		if err == nil {
			return result, nil
		}
		s.logger.Printf("backend form analysis failed, falling back to local: %v", err)
	}
	return core.AnalyzeForm(req, s.catalog)
}

// AnalyzeDarkPatterns gates, rate limits and runs a page scan.
func (s *AnalyzerService) AnalyzeDarkPatterns(ctx context.Context, origin string, req core.AnalyzeDarkPatternsRequest) (*core.DarkPatternResult, *Decision, error) {
	requestID := generateRequestID()

	decision, err := s.Decide(origin, KindDarkPattern)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, &decision, nil
	}
	if err := s.checkRate(origin, requestID); err != nil {
		return nil, nil, err
	}
	if err := s.validator.ValidateElements(req); err != nil {
		return nil, nil, newGuardError(ErrorCategoryValidation, err, requestID, nil)
	}

	start := time.Now()
	s.requestLog.LogRequest(requestID, map[string]interface{}{
		"kind":   KindDarkPattern,
		"origin": origin,
	}, "minimal")

	result, err := s.darkPatternResult(ctx, req)
	if err != nil {
		wrapped := newGuardError(categorizeError(err), err, requestID, nil)
		s.errorReporter.ReportError(wrapped)
		return nil, nil, wrapped
	}

	s.requestLog.LogResponse(requestID, map[string]interface{}{
		"score":    result.DarkPatternScore,
		"trust":    result.TrustScore,
		"patterns": len(result.PatternsFound),
	}, time.Since(start), "standard")

	s.bumpStats(func(st *Stats) {
		st.PagesScanned++
		st.FindingsDetected += len(result.PatternsFound)
	})
	s.recordActivity(KindDarkPattern, origin, result.DarkPatternScore, "", result.PatternsFound)

	return result, &decision, nil
}

func (s *AnalyzerService) darkPatternResult(ctx context.Context, req core.AnalyzeDarkPatternsRequest) (*core.DarkPatternResult, error) {
	if s.backend != nil {
		result, err := s.backend.AnalyzeDarkPatterns(ctx, req)
		if err == nil {
			return result, nil
		}
		s.logger.Printf("backend dark-pattern analysis failed, falling back to local: %v", err)
	}
	return core.AnalyzeDarkPatterns(req, s.catalog)
}

// AnalyzeCookies gates, rate limits and runs a consent analysis.
func (s *AnalyzerService) AnalyzeCookies(ctx context.Context, origin string, req core.AnalyzeCookiesRequest) (*core.CookieResult, *Decision, error) {
	requestID := generateRequestID()

	decision, err := s.Decide(origin, KindCookie)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, &decision, nil
	}
	if err := s.checkRate(origin, requestID); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	s.requestLog.LogRequest(requestID, map[string]interface{}{
		"kind":     KindCookie,
		"origin":   origin,
		"trackers": len(req.Trackers),
	}, "minimal")

	result, err := s.cookieResult(ctx, req)
	if err != nil {
		wrapped := newGuardError(categorizeError(err), err, requestID, nil)
		s.errorReporter.ReportError(wrapped)
		return nil, nil, wrapped
	}

	s.requestLog.LogResponse(requestID, map[string]interface{}{
		"score":  result.ComplianceScore,
		"level":  result.ComplianceLevel,
		"issues": len(result.Issues),
	}, time.Since(start), "standard")

	s.bumpStats(func(st *Stats) {
		st.BannersAnalyzed++
		st.FindingsDetected += len(result.Issues)
	})
	s.recordActivity(KindCookie, origin, result.ComplianceScore, result.ComplianceLevel, nil)

	return result, &decision, nil
}

func (s *AnalyzerService) cookieResult(ctx context.Context, req core.AnalyzeCookiesRequest) (*core.CookieResult, error) {
	if s.backend != nil {
		result, err := s.backend.AnalyzeCookies(ctx, req)
		if err == nil {
			return result, nil
		}
		s.logger.Printf("backend cookie analysis failed, falling back to local: %v", err)
	}
	return core.AnalyzeCookies(req, s.catalog, s.registry)
}

// ApplyQuickAction rewrites text according to a one-click user action.
// Findings must come from a prior text analysis of the same text.
func (s *AnalyzerService) ApplyQuickAction(action, text string, result *core.TextResult) (string, error) {
	if result == nil {
		return "", newGuardError(ErrorCategoryValidation,
			fmt.Errorf("invalid quick action: analysis result is required"), generateRequestID(), nil)
	}

	switch action {
	case ActionRemoveEmail:
		return core.AnonymizeCategories(text, result.Findings, core.CategoryEmail), nil
	case ActionRemovePhone:
		return core.AnonymizeCategories(text, result.Findings, core.CategoryPhone), nil
	case ActionAnonymizeName:
		return core.AnonymizeCategories(text, result.Findings, core.CategoryFullName), nil
	case ActionAnonymizeAll:
		return core.Anonymize(text, result.Findings), nil
	}
	return "", newGuardError(ErrorCategoryValidation,
		fmt.Errorf("invalid quick action %q", action), generateRequestID(), nil)
}

// Settings returns the current settings from the store.
func (s *AnalyzerService) Settings() (Settings, error) {
	return s.store.LoadSettings()
}

// UpdateSettings persists new settings.
func (s *AnalyzerService) UpdateSettings(settings Settings) error {
	if err := s.store.SaveSettings(settings); err != nil {
		return newGuardError(ErrorCategoryStorage, err, generateRequestID(), nil)
	}
	return nil
}

// Stats returns the running counters from the store.
func (s *AnalyzerService) Stats() (Stats, error) {
	return s.store.LoadStats()
}

// ResetStats zeroes the running counters.
func (s *AnalyzerService) ResetStats() error {
	if err := s.store.SaveStats(Stats{}); err != nil {
		return newGuardError(ErrorCategoryStorage, err, generateRequestID(), nil)
	}
	return nil
}

func (s *AnalyzerService) bumpStats(update func(*Stats)) {
	stats, err := s.store.LoadStats()
	if err != nil {
		s.logger.Printf("failed to load stats: %v", err)
		return
	}
	update(&stats)
	if err := s.store.SaveStats(stats); err != nil {
		s.logger.Printf("failed to save stats: %v", err)
	}
}

func (s *AnalyzerService) recordActivity(kind, origin string, score int, level string, findings []utils.Finding) {
	if s.activity == nil {
		return
	}
	if err := s.activity.RecordFindings(kind, origin, score, level, findings); err != nil {
		s.logger.Printf("failed to record activity: %v", err)
	}
}
