package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/achtung-live/guard-go/utils"
)

// ActivityLogLevel defines how much detail activity entries carry.
type ActivityLogLevel string

const (
	// ActivityLogMinimal records only the verdict, never page content
	ActivityLogMinimal ActivityLogLevel = "minimal"

	// ActivityLogStandard records truncated evidence with each entry
	ActivityLogStandard ActivityLogLevel = "standard"

	// ActivityLogVerbose records full finding details
	ActivityLogVerbose ActivityLogLevel = "verbose"
)

// ActivityEntry is one analysis recorded in the activity log. Matched
// values are never stored; only categories, severities and scores are.
type ActivityEntry struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`

	// Kind of analysis: "text", "form", "darkpattern" or "cookie"
	Kind string `json:"kind"`

	// Origin is the page host the analysis ran on, if known
	Origin string `json:"origin,omitempty"`

	Score int    `json:"score"`
	Level string `json:"level"`

	// Categories of the findings, in finding order
	Categories []string `json:"categories,omitempty"`

	// HighestSeverity across all findings of the entry
	HighestSeverity utils.Severity `json:"highestSeverity,omitempty"`

	// Evidence is a truncated sample for standard/verbose levels
	Evidence string `json:"evidence,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// ActivityLoggerConfig configures an ActivityLogger.
type ActivityLoggerConfig struct {
	// Path of the JSONL log file
	Path string

	// Level controls how much detail entries carry
	Level ActivityLogLevel

	// RotationSize in bytes after which the log file rotates
	RotationSize int64

	// RetentionDays is how long rotated files are kept
	RetentionDays int

	// EchoStdout mirrors entries to stdout
	EchoStdout bool
}

// ActivityLogger appends analysis records to a JSONL file with size-based
// rotation and age-based cleanup. Construct one per service instance and
// inject it; there is no package-level logger.
type ActivityLogger struct {
	mu          sync.Mutex
	cfg         ActivityLoggerConfig
	writer      io.Writer
	currentSize int64
}

// NewActivityLogger opens (or creates) the log file and returns a ready
// logger. Zero-valued config fields get conservative defaults.
func NewActivityLogger(cfg ActivityLoggerConfig) (*ActivityLogger, error) {
	if cfg.Path == "" {
		cfg.Path = "activity.log"
	}
	if cfg.Level == "" {
		cfg.Level = ActivityLogStandard
	}
	if cfg.RotationSize <= 0 {
		cfg.RotationSize = 10 * 1024 * 1024
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}

	l := &ActivityLogger{cfg: cfg}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *ActivityLogger) open() error {
	dir := filepath.Dir(l.cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open activity log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat activity log: %w", err)
	}
	l.currentSize = info.Size()

	if l.cfg.EchoStdout {
		l.writer = io.MultiWriter(f, os.Stdout)
	} else {
		l.writer = f
	}
	return nil
}

func (l *ActivityLogger) maybeRotate() error {
	if l.currentSize < l.cfg.RotationSize {
		return nil
	}

	if closer, ok := l.writer.(io.Closer); ok {
		closer.Close()
	}

	rotatedPath := fmt.Sprintf("%s.%s", l.cfg.Path, time.Now().Format("20060102-150405"))
	if err := os.Rename(l.cfg.Path, rotatedPath); err != nil {
		return fmt.Errorf("failed to rotate activity log: %w", err)
	}

	l.cleanupOldLogs()
	return l.open()
}

func (l *ActivityLogger) cleanupOldLogs() {
	dir := filepath.Dir(l.cfg.Path)
	base := filepath.Base(l.cfg.Path)
	cutoff := time.Now().AddDate(0, 0, -l.cfg.RetentionDays)

	files, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return
	}
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(file)
		}
	}
}

// Record appends one entry. Timestamp and request ID are filled in when
// missing, and the entry is trimmed to the configured detail level.
func (l *ActivityLogger) Record(entry ActivityEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.maybeRotate(); err != nil {
		return err
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().Format(time.RFC3339Nano)
	}
	if entry.RequestID == "" {
		entry.RequestID = fmt.Sprintf("%d-%x", time.Now().UnixNano(), time.Now().Nanosecond())
	}

	switch l.cfg.Level {
	case ActivityLogMinimal:
		entry.Categories = nil
		entry.Evidence = ""
	case ActivityLogStandard:
		if len(entry.Evidence) > 100 {
			entry.Evidence = truncateUTF8(entry.Evidence, 100) + "... [truncated]"
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}

	n, err := fmt.Fprintln(l.writer, string(data))
	if err != nil {
		return fmt.Errorf("failed to write activity entry: %w", err)
	}
	l.currentSize += int64(n)
	return nil
}

// RecordFindings builds and appends an entry from an analysis verdict.
func (l *ActivityLogger) RecordFindings(kind, origin string, score int, level string, findings []utils.Finding) error {
	entry := ActivityEntry{
		Kind:   kind,
		Origin: origin,
		Score:  score,
		Level:  level,
	}
	for _, f := range findings {
		entry.Categories = append(entry.Categories, f.Type)
		if severityRank(f.Severity) > severityRank(entry.HighestSeverity) {
			entry.HighestSeverity = f.Severity
		}
	}
	return l.Record(entry)
}

// Close flushes and closes the underlying log file.
func (l *ActivityLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if closer, ok := l.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// truncateUTF8 shortens s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func severityRank(s utils.Severity) int {
	switch s {
	case utils.SeverityCritical:
		return 4
	case utils.SeverityHigh:
		return 3
	case utils.SeverityMedium:
		return 2
	case utils.SeverityLow:
		return 1
	}
	return 0
}
