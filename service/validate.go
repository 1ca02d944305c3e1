package service

import (
	"fmt"

	"github.com/achtung-live/guard-go/core"
)

// ValidationConfig bounds analysis payloads. Oversized payloads are a
// caller bug (a page dumping its whole DOM), not something to scan.
type ValidationConfig struct {
	// Enabled turns payload validation on
	Enabled bool

	// MaxTextLength in bytes for text analysis; 0 means unlimited
	MaxTextLength int

	// MaxFields per form analysis; 0 means unlimited
	MaxFields int

	// MaxElements per page scan, summed over all element kinds
	MaxElements int
}

// RequestValidator checks analysis payloads against configured bounds.
type RequestValidator struct {
	config ValidationConfig
}

// NewRequestValidator creates a new request validator.
func NewRequestValidator(config ValidationConfig) *RequestValidator {
	return &RequestValidator{config: config}
}

// ValidateText bounds a text payload.
func (v *RequestValidator) ValidateText(req core.AnalyzeTextRequest) error {
	if !v.config.Enabled {
		return nil
	}
	if v.config.MaxTextLength > 0 && len(req.Text) > v.config.MaxTextLength {
		return fmt.Errorf("validation: text exceeds maximum length of %d bytes", v.config.MaxTextLength)
	}
	return nil
}

// ValidateForm bounds a form payload.
func (v *RequestValidator) ValidateForm(req core.AnalyzeFormRequest) error {
	if !v.config.Enabled {
		return nil
	}
	if v.config.MaxFields > 0 && len(req.Fields) > v.config.MaxFields {
		return fmt.Errorf("validation: form exceeds maximum of %d fields", v.config.MaxFields)
	}
	return nil
}

// ValidateElements bounds a page-scan payload.
func (v *RequestValidator) ValidateElements(req core.AnalyzeDarkPatternsRequest) error {
	if !v.config.Enabled {
		return nil
	}
	if v.config.MaxElements <= 0 || req.Elements == nil {
		return nil
	}
	total := len(req.Elements.Buttons) + len(req.Elements.Checkboxes) +
		len(req.Elements.TextBlocks) + len(req.Elements.Modals)
	if total > v.config.MaxElements {
		return fmt.Errorf("validation: page scan exceeds maximum of %d elements", v.config.MaxElements)
	}
	return nil
}
