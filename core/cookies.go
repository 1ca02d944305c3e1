package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/achtung-live/guard-go/utils"
)

// ConsentBanner describes the cookie-consent UI found on a page.
type ConsentBanner struct {
	Found              bool `json:"found"`
	HasRejectAll       bool `json:"hasRejectAll"`
	RejectAllVisible   bool `json:"rejectAllVisible"`
	AcceptAllProminent bool `json:"acceptAllProminent"`

	// DeclaredVendors is how many third parties the banner admits to.
	DeclaredVendors int `json:"declaredVendors,omitempty"`
}

// DetectedTracker is one third-party script observed on the page.
type DetectedTracker struct {
	Domain string `json:"domain"`

	// DeclaredType is the category the page declares for this tracker;
	// "unknown" (or empty) means the page does not declare it at all.
	DeclaredType string `json:"type,omitempty"`
}

// CookieDescriptor is one cookie observed on the page.
type CookieDescriptor struct {
	Name   string `json:"name"`
	Expiry string `json:"expiry,omitempty"`
}

// AnalyzeCookiesRequest is the normalized payload for a consent analysis.
type AnalyzeCookiesRequest struct {
	Banner   *ConsentBanner     `json:"consentBanner"`
	Trackers []DetectedTracker  `json:"detectedTrackers,omitempty"`
	Cookies  []CookieDescriptor `json:"cookies,omitempty"`
}

// ConsentIssue is one compliance problem found on a page.
type ConsentIssue struct {
	Type          string         `json:"type"`
	Severity      utils.Severity `json:"severity"`
	Description   string         `json:"description"`
	GDPRViolation bool           `json:"gdprViolation"`

	// Trackers lists offending domains for undeclared-tracker issues.
	Trackers []string `json:"trackers,omitempty"`

	// Cookies lists offending cookies for lifetime issues.
	Cookies []string `json:"cookies,omitempty"`
}

// TrackerSummary counts declared, detected and undeclared trackers.
type TrackerSummary struct {
	Declared   int            `json:"declared"`
	Detected   int            `json:"detected"`
	Undeclared int            `json:"undeclared"`
	Categories map[string]int `json:"categories"`
}

// CookieResult is the verdict for one consent analysis.
type CookieResult struct {
	ComplianceScore int            `json:"complianceScore"`
	ComplianceLevel string         `json:"complianceLevel"`
	Issues          []ConsentIssue `json:"issues"`
	TrackerSummary  TrackerSummary `json:"trackerSummary"`
	Recommendations []string       `json:"recommendations"`
}

// ClassifyConsent evaluates a consent banner and the observed trackers
// against the registry. Undeclared trackers produce a single aggregated
// issue listing all offending domains, not one issue per tracker.
func ClassifyConsent(banner *ConsentBanner, trackers []DetectedTracker, cookies []CookieDescriptor, rules []PatternRule, registry *TrackerRegistry) ([]ConsentIssue, TrackerSummary) {
	byCategory := make(map[string]*PatternRule, len(rules))
	for i := range rules {
		byCategory[rules[i].Category] = &rules[i]
	}

	issues := []ConsentIssue{}

	if banner != nil && banner.Found {
		if rule := byCategory[CategoryMissingRejectAll]; rule != nil && !banner.HasRejectAll {
			issues = append(issues, ConsentIssue{
				Type:          rule.Category,
				Severity:      rule.Severity,
				Description:   rule.Message,
				GDPRViolation: true,
			})
		}
		if rule := byCategory[CategoryDarkPatternConsent]; rule != nil && banner.AcceptAllProminent && !banner.RejectAllVisible {
			issues = append(issues, ConsentIssue{
				Type:        rule.Category,
				Severity:    rule.Severity,
				Description: rule.Message,
			})
		}
	}

	summary := TrackerSummary{
		Detected:   len(trackers),
		Categories: map[string]int{},
	}
	if banner != nil {
		summary.Declared = banner.DeclaredVendors
	}

	var undeclared []string
	for _, tracker := range trackers {
		if info, known := registry.Lookup(tracker.Domain); known {
			summary.Categories[info.Category]++
			continue
		}
		if tracker.DeclaredType == "" || tracker.DeclaredType == "unknown" {
			undeclared = append(undeclared, tracker.Domain)
			summary.Undeclared++
		}
	}

	if rule := byCategory[CategoryUndeclaredTrackers]; rule != nil && len(undeclared) > 0 {
		issues = append(issues, ConsentIssue{
			Type:          rule.Category,
			Severity:      rule.Severity,
			Description:   fmt.Sprintf("%d %s", len(undeclared), rule.Message),
			Trackers:      undeclared,
			GDPRViolation: true,
		})
	}

	if rule := byCategory[CategoryCookieLifetime]; rule != nil {
		var longLived []string
		for _, cookie := range cookies {
			if hasExcessiveLifetime(cookie.Expiry) {
				longLived = append(longLived, fmt.Sprintf("%s (%s)", cookie.Name, cookie.Expiry))
			}
		}
		if len(longLived) > 0 {
			issues = append(issues, ConsentIssue{
				Type:        rule.Category,
				Severity:    rule.Severity,
				Description: rule.Message,
				Cookies:     longLived,
			})
		}
	}

	return issues, summary
}

func hasExcessiveLifetime(expiry string) bool {
	if expiry == "" {
		return false
	}
	lower := strings.ToLower(expiry)
	if strings.Contains(lower, "year") || strings.Contains(lower, "jahr") {
		return true
	}
	if strings.Contains(lower, "month") || strings.Contains(lower, "monat") {
		if n, err := strconv.Atoi(strings.Fields(lower)[0]); err == nil && n > 12 {
			return true
		}
	}
	return false
}

// AnalyzeCookies runs the full consent path: issue detection, deducted
// compliance score and verdict.
func AnalyzeCookies(req AnalyzeCookiesRequest, catalog *Catalog, registry *TrackerRegistry) (*CookieResult, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", ErrInvalidInput)
	}
	if registry == nil {
		registry = DefaultTrackerRegistry()
	}

	rules := catalog.RulesFor(DomainCookie, LocaleGerman)
	issues, summary := ClassifyConsent(req.Banner, req.Trackers, req.Cookies, rules, registry)

	findings := make([]utils.Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, utils.Finding{Type: issue.Type, Severity: issue.Severity})
	}
	score := AggregateScore(findings, CookieWeights, ModeCompliance)

	return &CookieResult{
		ComplianceScore: score,
		ComplianceLevel: LevelFor(score, ComplianceLevels),
		Issues:          issues,
		TrackerSummary:  summary,
		Recommendations: cookieRecommendations(issues),
	}, nil
}

func cookieRecommendations(issues []ConsentIssue) []string {
	recommendations := []string{}
	hasViolation := false

	for _, issue := range issues {
		if issue.GDPRViolation {
			hasViolation = true
		}
		switch issue.Type {
		case CategoryMissingRejectAll:
			recommendations = append(recommendations, `Suche nach "Einstellungen" oder "Mehr Optionen" im Banner`)
		case CategoryUndeclaredTrackers:
			recommendations = append(recommendations, "Nutze einen Cookie-Blocker für nicht deklarierte Tracker")
		case CategoryCookieLifetime:
			recommendations = append(recommendations, "Lösche Cookies regelmäßig oder nutze den privaten Modus")
		}
	}
	if hasViolation {
		recommendations = append(recommendations, "Diese Seite könnte gegen DSGVO verstoßen")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Cookie-Handling scheint DSGVO-konform zu sein")
	}

	return recommendations
}
