package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/achtung-live/guard-go/utils"
)

// TestAnalyzeTextBelowThreshold verifies that short input is reported as
// below threshold rather than as analyzed-and-clean.
func TestAnalyzeTextBelowThreshold(t *testing.T) {
	catalog := DefaultCatalog()

	result, err := AnalyzeText(AnalyzeTextRequest{Text: "kurz"}, catalog)
	assert.NoError(t, err)
	assert.True(t, result.BelowThreshold)
	assert.True(t, result.SafeToSend)
	assert.Equal(t, 0, result.RiskScore)
	assert.Empty(t, result.Findings)

	// Whitespace padding does not get text past the gate
	result, err = AnalyzeText(AnalyzeTextRequest{Text: "   abc      "}, catalog)
	assert.NoError(t, err)
	assert.True(t, result.BelowThreshold)
}

// TestAnalyzeTextCleanInput verifies that analyzed clean text is not
// confused with below-threshold input.
func TestAnalyzeTextCleanInput(t *testing.T) {
	catalog := DefaultCatalog()

	result, err := AnalyzeText(AnalyzeTextRequest{Text: "Das Wetter ist heute wirklich schön draußen"}, catalog)
	assert.NoError(t, err)
	assert.False(t, result.BelowThreshold)
	assert.True(t, result.SafeToSend)
	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, "low", result.RiskLevel)
	assert.Empty(t, result.Findings)
}

// TestAnalyzeTextSingleEmail verifies score, level and verdict for a
// lone email address.
func TestAnalyzeTextSingleEmail(t *testing.T) {
	catalog := DefaultCatalog()

	result, err := AnalyzeText(AnalyzeTextRequest{
		Text: "Kontaktiere mich unter max.mustermann@example.de bitte",
	}, catalog)
	assert.NoError(t, err)
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, CategoryEmail, result.Findings[0].Type)
	assert.Equal(t, utils.SeverityHigh, result.Findings[0].Severity)
	assert.Equal(t, "max.mustermann@example.de", result.Findings[0].Value)
	assert.Equal(t, 25, result.RiskScore)
	assert.Equal(t, "low", result.RiskLevel)
	assert.True(t, result.SafeToSend)
}

// TestAnalyzeTextNameAndIBAN covers the compound case: introduction with
// a full name plus bank data. The digit run inside the IBAN also trips
// the phone detector, which counts as additional evidence.
func TestAnalyzeTextNameAndIBAN(t *testing.T) {
	catalog := DefaultCatalog()

	result, err := AnalyzeText(AnalyzeTextRequest{
		Text: "Ich bin Anna Schmidt, meine IBAN ist DE89370400440532013000",
	}, catalog)
	assert.NoError(t, err)

	types := make(map[string]bool)
	for _, f := range result.Findings {
		types[f.Type] = true
	}
	assert.True(t, types[CategoryIBAN])
	assert.True(t, types[CategoryFullName])
	assert.True(t, types[CategoryPhone])

	assert.Equal(t, 90, result.RiskScore)
	assert.Equal(t, "high", result.RiskLevel)
	assert.False(t, result.SafeToSend)
	assert.NotEmpty(t, result.WarningMessage)
	assert.NotEmpty(t, result.Recommendations)
}

// TestAnalyzeTextEnglishLocale verifies that the English rule set detects
// English phrasings that the German set would miss.
func TestAnalyzeTextEnglishLocale(t *testing.T) {
	catalog := DefaultCatalog()

	result, err := AnalyzeText(AnalyzeTextRequest{
		Text:   "Hello, my name is John Smith and I live here",
		Locale: LocaleEnglish,
	}, catalog)
	assert.NoError(t, err)
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, CategoryFullName, result.Findings[0].Type)
}

// TestAnalyzeTextDeterministic verifies that identical input always
// yields identical findings in identical order.
func TestAnalyzeTextDeterministic(t *testing.T) {
	catalog := DefaultCatalog()
	input := AnalyzeTextRequest{
		Text: "Schreib an a@b.de oder c@d.de, Diagnose folgt per Post",
	}

	first, err := AnalyzeText(input, catalog)
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := AnalyzeText(input, catalog)
		assert.NoError(t, err)
		assert.Equal(t, first.Findings, again.Findings)
		assert.Equal(t, first.RiskScore, again.RiskScore)
	}

	// Both emails come before the health finding, in match order
	assert.Len(t, first.Findings, 3)
	assert.Equal(t, CategoryEmail, first.Findings[0].Type)
	assert.Equal(t, CategoryEmail, first.Findings[1].Type)
	assert.Less(t, first.Findings[0].Position.Start, first.Findings[1].Position.Start)
	assert.Equal(t, CategoryHealth, first.Findings[2].Type)
}

// TestAnalyzeTextCredentials verifies the critical credentials detector.
func TestAnalyzeTextCredentials(t *testing.T) {
	catalog := DefaultCatalog()

	result, err := AnalyzeText(AnalyzeTextRequest{
		Text: "Mein Passwort: geheim123 bitte nicht weitersagen",
	}, catalog)
	assert.NoError(t, err)
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, CategoryCredentials, result.Findings[0].Type)
	assert.Equal(t, utils.SeverityCritical, result.Findings[0].Severity)
	assert.Equal(t, 40, result.RiskScore)
	assert.False(t, result.SafeToSend)
}

// TestAnalyzeTextCustomThresholds verifies the per-request overrides for
// minimum length and warning threshold.
func TestAnalyzeTextCustomThresholds(t *testing.T) {
	catalog := DefaultCatalog()

	// A three-character minimum lets short text through the gate
	result, err := AnalyzeText(AnalyzeTextRequest{Text: "a@b.de", MinLength: 3}, catalog)
	assert.NoError(t, err)
	assert.False(t, result.BelowThreshold)
	assert.Len(t, result.Findings, 1)

	// A threshold under the email weight makes the same text unsafe
	result, err = AnalyzeText(AnalyzeTextRequest{Text: "a@b.de", MinLength: 3, WarningThreshold: 20}, catalog)
	assert.NoError(t, err)
	assert.False(t, result.SafeToSend)
}

// TestAnalyzeTextNilCatalog verifies the invalid-input error path.
func TestAnalyzeTextNilCatalog(t *testing.T) {
	_, err := AnalyzeText(AnalyzeTextRequest{Text: "irgendein Text hier"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// TestAnalyzeTextPaddedInputPositions verifies that finding positions
// refer to the input exactly as given, padding included, so anonymizing
// the caller's text replaces the whole matched value.
func TestAnalyzeTextPaddedInputPositions(t *testing.T) {
	catalog := DefaultCatalog()
	text := "\n\n  Ich bin erreichbar unter max@example.de, Gruß"

	result, err := AnalyzeText(AnalyzeTextRequest{Text: text}, catalog)
	assert.NoError(t, err)
	assert.Len(t, result.Findings, 1)

	pos := result.Findings[0].Position
	assert.Equal(t, "max@example.de", text[pos.Start:pos.End])

	cleaned := AnonymizeCategories(text, result.Findings, CategoryEmail)
	assert.Equal(t, "\n\n  Ich bin erreichbar unter [E-Mail entfernt], Gruß", cleaned)
}

// TestClassifyTextKeywordRule verifies keyword scanning with positions.
func TestClassifyTextKeywordRule(t *testing.T) {
	rules := []PatternRule{
		{
			ID: "kw", Category: "test", Type: RuleTypeKeyword,
			Keywords: []string{"geheim"},
			Severity: utils.SeverityLow,
		},
	}

	findings := ClassifyText("Das ist geheim und bleibt GEHEIM", rules)
	assert.Len(t, findings, 2)
	assert.Equal(t, "geheim", findings[0].Value)
	assert.Equal(t, "GEHEIM", findings[1].Value)
	assert.Equal(t, 8, findings[0].Position.Start)
}

// TestClassifyTextKeywordOffsetOrder verifies that matches of one rule
// come out by offset regardless of keyword declaration order.
func TestClassifyTextKeywordOffsetOrder(t *testing.T) {
	rules := []PatternRule{
		{
			ID: "kw", Category: "test", Type: RuleTypeKeyword,
			Keywords: []string{"beta", "alpha"},
			Severity: utils.SeverityLow,
		},
	}

	findings := ClassifyText("alpha then beta", rules)
	assert.Len(t, findings, 2)
	assert.Equal(t, "alpha", findings[0].Value)
	assert.Equal(t, 0, findings[0].Position.Start)
	assert.Equal(t, "beta", findings[1].Value)
	assert.Equal(t, 11, findings[1].Position.Start)
}

// TestClassifyTextKeywordCaseFolding verifies positions stay aligned with
// the original text when lowering changes a rune's byte length, as with
// the capital sharp s.
func TestClassifyTextKeywordCaseFolding(t *testing.T) {
	rules := []PatternRule{
		{
			ID: "kw", Category: "test", Type: RuleTypeKeyword,
			Keywords: []string{"geheim"},
			Severity: utils.SeverityLow,
		},
	}

	text := "FUẞBALL ist geheim"
	findings := ClassifyText(text, rules)
	assert.Len(t, findings, 1)
	assert.Equal(t, "geheim", findings[0].Value)
	assert.Equal(t, 14, findings[0].Position.Start)
	assert.Equal(t, "geheim", text[findings[0].Position.Start:findings[0].Position.End])
}
