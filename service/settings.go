package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings controls which analyses run and where. Hosts on the whitelist
// are never analyzed; hosts on the blacklist are always analyzed even
// when a toggle is off.
type Settings struct {
	Enabled              bool     `json:"enabled"`
	LiveTypingGuard      bool     `json:"liveTypingGuard"`
	FormAnalysis         bool     `json:"formAnalysis"`
	DarkPatternDetection bool     `json:"darkPatternDetection"`
	CookieAnalysis       bool     `json:"cookieAnalysis"`
	Whitelist            []string `json:"whitelist,omitempty"`
	Blacklist            []string `json:"blacklist,omitempty"`
}

// DefaultSettings enables everything with empty host lists.
func DefaultSettings() Settings {
	return Settings{
		Enabled:              true,
		LiveTypingGuard:      true,
		FormAnalysis:         true,
		DarkPatternDetection: true,
		CookieAnalysis:       true,
	}
}

// Stats are running counters across all analyses of a service instance.
type Stats struct {
	TextsAnalyzed    int `json:"textsAnalyzed"`
	FormsAnalyzed    int `json:"formsAnalyzed"`
	PagesScanned     int `json:"pagesScanned"`
	BannersAnalyzed  int `json:"bannersAnalyzed"`
	WarningsShown    int `json:"warningsShown"`
	FindingsDetected int `json:"findingsDetected"`
}

// Store persists settings and stats between sessions.
type Store interface {
	LoadSettings() (Settings, error)
	SaveSettings(Settings) error
	LoadStats() (Stats, error)
	SaveStats(Stats) error
}

// MemoryStore is an in-process Store, used in tests and for ephemeral
// service instances.
type MemoryStore struct {
	mu       sync.Mutex
	settings Settings
	stats    Stats
	hasSet   bool
}

// NewMemoryStore returns an empty in-memory store; settings default until
// saved once.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadSettings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSet {
		return DefaultSettings(), nil
	}
	return s.settings, nil
}

func (s *MemoryStore) SaveSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.hasSet = true
	return nil
}

func (s *MemoryStore) LoadStats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, nil
}

func (s *MemoryStore) SaveStats(stats Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

// FileStore persists settings and stats as JSON files in a directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the directory if needed and returns a file-backed
// store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadSettings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings Settings
	if err := s.readJSON("settings.json", &settings); err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, err
	}
	return settings, nil
}

func (s *FileStore) SaveSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON("settings.json", settings)
}

func (s *FileStore) LoadStats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	if err := s.readJSON("stats.json", &stats); err != nil {
		if os.IsNotExist(err) {
			return Stats{}, nil
		}
		return Stats{}, err
	}
	return stats, nil
}

func (s *FileStore) SaveStats(stats Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON("stats.json", stats)
}

func (s *FileStore) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
