package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrorCategory buckets service errors for the activity trail.
type ErrorCategory string

const (
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryRateLimit  ErrorCategory = "rate_limit"
	ErrorCategoryBackend    ErrorCategory = "backend"
	ErrorCategoryCatalog    ErrorCategory = "catalog"
	ErrorCategoryStorage    ErrorCategory = "storage"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryNetwork    ErrorCategory = "network"
	ErrorCategorySystem     ErrorCategory = "system"
)

// GuardError wraps errors with a category and request ID so log lines
// stay correlatable across the local and remote analysis paths.
type GuardError struct {
	Category    ErrorCategory
	OriginalErr error
	RequestID   string
	Timestamp   time.Time
	Details     map[string]interface{}
}

func (e GuardError) Error() string {
	return fmt.Sprintf("[%s] %s (request: %s)", e.Category, e.OriginalErr.Error(), e.RequestID)
}

func (e GuardError) Unwrap() error {
	return e.OriginalErr
}

func newGuardError(category ErrorCategory, err error, requestID string, details map[string]interface{}) GuardError {
	return GuardError{
		Category:    category,
		OriginalErr: err,
		RequestID:   requestID,
		Timestamp:   time.Now(),
		Details:     details,
	}
}

// ErrorReporter writes structured error lines to the service logger.
type ErrorReporter struct {
	logger *log.Logger
}

// NewErrorReporter creates a new error reporter.
func NewErrorReporter(logger *log.Logger) *ErrorReporter {
	return &ErrorReporter{logger: logger}
}

// ReportError logs an error as a structured JSON line.
func (e *ErrorReporter) ReportError(err error) {
	var guardErr GuardError
	details := map[string]interface{}{}

	if errors.As(err, &guardErr) {
		details = map[string]interface{}{
			"category":   string(guardErr.Category),
			"request_id": guardErr.RequestID,
			"timestamp":  guardErr.Timestamp.Format(time.RFC3339),
		}
		for k, v := range guardErr.Details {
			details[k] = v
		}
	}

	logEntry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"event":     "error",
		"error":     err.Error(),
		"details":   details,
	}

	jsonData, err := json.Marshal(logEntry)
	if err != nil {
		e.logger.Printf("Error marshaling error log: %v", err)
		return
	}

	e.logger.Println(string(jsonData))
}

// categorizeError buckets an error based on its message.
func categorizeError(err error) ErrorCategory {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests"):
		return ErrorCategoryRateLimit
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return ErrorCategoryTimeout
	case strings.Contains(errStr, "network") || strings.Contains(errStr, "connection"):
		return ErrorCategoryNetwork
	case strings.Contains(errStr, "catalog"):
		return ErrorCategoryCatalog
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "validation"):
		return ErrorCategoryValidation
	}
	return ErrorCategorySystem
}
