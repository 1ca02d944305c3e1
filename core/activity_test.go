package core

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/achtung-live/guard-go/utils"
)

// TestActivityLoggerWritesJSONL verifies the entry format and the
// auto-filled fields.
func TestActivityLoggerWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	logger, err := NewActivityLogger(ActivityLoggerConfig{Path: path})
	assert.NoError(t, err)
	defer logger.Close()

	err = logger.RecordFindings("text", "example.de", 40, "medium", []utils.Finding{
		{Type: CategoryEmail, Severity: utils.SeverityHigh, Value: "max@example.de"},
		{Type: CategoryCredentials, Severity: utils.SeverityCritical, Value: "geheim"},
	})
	assert.NoError(t, err)

	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	assert.True(t, scanner.Scan())

	var entry ActivityEntry
	assert.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.NotEmpty(t, entry.RequestID)
	assert.NotEmpty(t, entry.Timestamp)
	assert.Equal(t, "text", entry.Kind)
	assert.Equal(t, "example.de", entry.Origin)
	assert.Equal(t, 40, entry.Score)
	assert.Equal(t, []string{CategoryEmail, CategoryCredentials}, entry.Categories)
	assert.Equal(t, utils.SeverityCritical, entry.HighestSeverity)

	// Matched values never reach the log
	assert.NotContains(t, scanner.Text(), "max@example.de")
	assert.NotContains(t, scanner.Text(), "geheim")
}

// TestActivityLoggerMinimalLevel verifies that minimal entries drop the
// category detail.
func TestActivityLoggerMinimalLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	logger, err := NewActivityLogger(ActivityLoggerConfig{Path: path, Level: ActivityLogMinimal})
	assert.NoError(t, err)
	defer logger.Close()

	err = logger.Record(ActivityEntry{
		Kind:       "form",
		Score:      35,
		Level:      "medium",
		Categories: []string{CategoryHiddenPassword},
		Evidence:   "should disappear",
	})
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var entry ActivityEntry
	assert.NoError(t, json.Unmarshal(data, &entry))
	assert.Empty(t, entry.Categories)
	assert.Empty(t, entry.Evidence)
	assert.Equal(t, 35, entry.Score)
}

// TestActivityLoggerEvidenceTruncation verifies that standard-level
// truncation never splits a multi-byte rune, so log lines stay valid
// UTF-8 and valid JSON.
func TestActivityLoggerEvidenceTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	logger, err := NewActivityLogger(ActivityLoggerConfig{Path: path})
	assert.NoError(t, err)
	defer logger.Close()

	// Byte 100 falls inside the first umlaut
	err = logger.Record(ActivityEntry{
		Kind:     "text",
		Level:    "low",
		Evidence: strings.Repeat("a", 99) + "äöü",
	})
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.True(t, utf8.Valid(data))

	var entry ActivityEntry
	assert.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, strings.Repeat("a", 99)+"... [truncated]", entry.Evidence)
}

// TestActivityLoggerRotation verifies size-based rotation keeps the
// current file small.
func TestActivityLoggerRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activity.log")
	logger, err := NewActivityLogger(ActivityLoggerConfig{Path: path, RotationSize: 200})
	assert.NoError(t, err)
	defer logger.Close()

	for i := 0; i < 20; i++ {
		err := logger.Record(ActivityEntry{Kind: "text", Score: i, Level: "low"})
		assert.NoError(t, err)
	}

	rotated, err := filepath.Glob(path + ".*")
	assert.NoError(t, err)
	assert.NotEmpty(t, rotated)
}
