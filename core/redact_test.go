package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/achtung-live/guard-go/utils"
)

// TestAnonymizeReplacesFindings verifies placeholder substitution from a
// real analysis.
func TestAnonymizeReplacesFindings(t *testing.T) {
	catalog := DefaultCatalog()
	text := "Schreib an max@example.de wegen der Diagnose"

	result, err := AnalyzeText(AnalyzeTextRequest{Text: text}, catalog)
	assert.NoError(t, err)

	cleaned := Anonymize(text, result.Findings)
	assert.Equal(t, "Schreib an [E-Mail entfernt] wegen der [Gesundheitsdaten entfernt]", cleaned)
}

// TestAnonymizeCategoriesFilters verifies selective anonymization.
func TestAnonymizeCategoriesFilters(t *testing.T) {
	catalog := DefaultCatalog()
	text := "Schreib an max@example.de wegen der Diagnose"

	result, err := AnalyzeText(AnalyzeTextRequest{Text: text}, catalog)
	assert.NoError(t, err)

	cleaned := AnonymizeCategories(text, result.Findings, CategoryEmail)
	assert.Equal(t, "Schreib an [E-Mail entfernt] wegen der Diagnose", cleaned)

	// No category filter means everything goes
	cleaned = AnonymizeCategories(text, result.Findings)
	assert.NotContains(t, cleaned, "max@example.de")
	assert.NotContains(t, cleaned, "Diagnose")
}

// TestAnonymizeUnknownCategory verifies the generic placeholder.
func TestAnonymizeUnknownCategory(t *testing.T) {
	cleaned := Anonymize("abcdef", []utils.Finding{
		{Type: "custom", Position: &utils.Position{Start: 2, End: 4}},
	})
	assert.Equal(t, "ab[Entfernt]ef", cleaned)
}

// TestAnonymizeSkipsUnpositionedAndOverlapping verifies the guard rails:
// findings without positions are ignored and overlaps collapse into the
// earliest finding.
func TestAnonymizeSkipsUnpositionedAndOverlapping(t *testing.T) {
	text := "0123456789"
	cleaned := Anonymize(text, []utils.Finding{
		{Type: "structural"},
		{Type: CategoryEmail, Position: &utils.Position{Start: 2, End: 6}},
		{Type: CategoryPhone, Position: &utils.Position{Start: 4, End: 8}},
	})
	assert.Equal(t, "01[E-Mail entfernt]6789", cleaned)
}

// TestAnonymizeNoFindings verifies that clean text passes through
// unchanged.
func TestAnonymizeNoFindings(t *testing.T) {
	assert.Equal(t, "unverändert", Anonymize("unverändert", nil))
}
