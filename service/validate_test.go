package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/achtung-live/guard-go/core"
)

// TestValidationBoundsText verifies that oversized text payloads are
// rejected with a validation error.
func TestValidationBoundsText(t *testing.T) {
	svc := NewAnalyzerService(Config{
		Logger:     log.New(io.Discard, "", 0),
		Validation: ValidationConfig{Enabled: true, MaxTextLength: 100},
	})

	_, _, err := svc.AnalyzeText(context.Background(), "example.de", core.AnalyzeTextRequest{
		Text: strings.Repeat("a", 101),
	})
	assert.Error(t, err)
	var guardErr GuardError
	assert.True(t, errors.As(err, &guardErr))
	assert.Equal(t, ErrorCategoryValidation, guardErr.Category)

	// Within bounds, analysis proceeds
	result, _, err := svc.AnalyzeText(context.Background(), "example.de", core.AnalyzeTextRequest{
		Text: strings.Repeat("a", 100),
	})
	assert.NoError(t, err)
	assert.NotNil(t, result)
}

// TestValidationDisabledByDefault verifies that unbounded payloads pass
// when validation is off.
func TestValidationDisabledByDefault(t *testing.T) {
	svc := NewAnalyzerService(Config{Logger: log.New(io.Discard, "", 0)})

	_, _, err := svc.AnalyzeText(context.Background(), "example.de", core.AnalyzeTextRequest{
		Text: strings.Repeat("x", 1<<16),
	})
	assert.NoError(t, err)
}

// TestValidationBoundsElements verifies the element cap for page scans.
func TestValidationBoundsElements(t *testing.T) {
	validator := NewRequestValidator(ValidationConfig{Enabled: true, MaxElements: 2})

	err := validator.ValidateElements(core.AnalyzeDarkPatternsRequest{
		Elements: &core.PageElements{
			Buttons:    []core.ButtonDescriptor{{Text: "a"}, {Text: "b"}},
			TextBlocks: []string{"c"},
		},
	})
	assert.Error(t, err)

	err = validator.ValidateElements(core.AnalyzeDarkPatternsRequest{
		Elements: &core.PageElements{
			Buttons: []core.ButtonDescriptor{{Text: "a"}, {Text: "b"}},
		},
	})
	assert.NoError(t, err)
}
