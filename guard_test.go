package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/achtung-live/guard-go/core"
)

// TestAnalyzeTextOneCall exercises the facade end to end with the
// built-in catalog.
func TestAnalyzeTextOneCall(t *testing.T) {
	result, err := AnalyzeText("Ich bin Anna Schmidt, meine IBAN ist DE89370400440532013000")
	assert.NoError(t, err)
	assert.False(t, result.SafeToSend)
	assert.Equal(t, "high", result.RiskLevel)

	cleaned := Anonymize("Ich bin Anna Schmidt, meine IBAN ist DE89370400440532013000", result.Findings)
	assert.NotContains(t, cleaned, "Anna Schmidt")
	assert.NotContains(t, cleaned, "DE89370400440532013000")
}

// TestAnalyzeTextLocaleOneCall verifies locale selection on the facade.
func TestAnalyzeTextLocaleOneCall(t *testing.T) {
	result, err := AnalyzeTextLocale("Hi, my name is Jane Miller, nice to meet you", core.LocaleEnglish)
	assert.NoError(t, err)
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, "full_name", result.Findings[0].Type)
}

// TestAnalyzeFormOneCall exercises the form facade.
func TestAnalyzeFormOneCall(t *testing.T) {
	result, err := AnalyzeForm([]core.FieldDescriptor{
		{Name: "steuernummer", Label: "Steuernummer"},
		{Name: "name", Label: "Name"},
	})
	assert.NoError(t, err)
	assert.Len(t, result.UnusualFields, 1)
	assert.Equal(t, "medium", result.RiskLevel)
}

// TestAnalyzeDarkPatternsOneCall exercises the dark-pattern facade.
func TestAnalyzeDarkPatternsOneCall(t *testing.T) {
	result, err := AnalyzeDarkPatterns(&core.PageElements{
		Modals: []core.ModalDescriptor{{Type: "exit_intent", HasCloseButton: false}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 25, result.DarkPatternScore)
	assert.Equal(t, 75, result.TrustScore)
}

// TestAnalyzeCookiesOneCall exercises the consent facade against the
// built-in tracker registry.
func TestAnalyzeCookiesOneCall(t *testing.T) {
	result, err := AnalyzeCookies(core.AnalyzeCookiesRequest{
		Banner: &core.ConsentBanner{Found: true, HasRejectAll: false},
		Trackers: []core.DetectedTracker{
			{Domain: "cdn.mouseflow.com"},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 75, result.ComplianceScore)
	assert.Equal(t, 1, result.TrackerSummary.Categories["session_recording"])
}
