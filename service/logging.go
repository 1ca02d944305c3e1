package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// RequestLogger writes per-request JSON log lines. Matched values and raw
// page content never reach the log; callers pass sizes and verdicts only.
type RequestLogger struct {
	logger     *log.Logger
	auditLevel string
}

// NewRequestLogger creates a new request logger.
func NewRequestLogger(logger *log.Logger, auditLevel string) *RequestLogger {
	return &RequestLogger{
		logger:     logger,
		auditLevel: auditLevel,
	}
}

// LogRequest logs request details according to the audit level.
func (l *RequestLogger) LogRequest(requestID string, request map[string]interface{}, level string) {
	if level == "minimal" && l.auditLevel == "minimal" {
		return
	}

	safeCopy := make(map[string]interface{})
	for k, v := range request {
		if k == "text" || k == "api_key" || k == "auth_token" {
			safeCopy[k] = "[REDACTED]"
		} else {
			safeCopy[k] = v
		}
	}

	logEntry := map[string]interface{}{
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
		"event":      "request",
		"level":      level,
		"data":       safeCopy,
	}

	jsonData, err := json.Marshal(logEntry)
	if err != nil {
		l.logger.Printf("Error marshaling log entry: %v", err)
		return
	}

	l.logger.Println(string(jsonData))
}

// LogResponse logs response details according to the audit level.
func (l *RequestLogger) LogResponse(requestID string, response interface{}, duration time.Duration, level string) {
	if level == "minimal" && l.auditLevel == "minimal" {
		l.logger.Printf("Request %s completed in %v", requestID, duration)
		return
	}

	logEntry := map[string]interface{}{
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"request_id":  requestID,
		"event":       "response",
		"level":       level,
		"duration_ms": duration.Milliseconds(),
		"data":        response,
	}

	jsonData, err := json.Marshal(logEntry)
	if err != nil {
		l.logger.Printf("Error marshaling log entry: %v", err)
		return
	}

	l.logger.Println(string(jsonData))
}

// generateRequestID produces a timestamp-based request identifier.
func generateRequestID() string {
	now := time.Now()
	return fmt.Sprintf("%d-%x", now.UnixNano(), now.Nanosecond())
}
