package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/achtung-live/guard-go/utils"
)

// RuleDomain selects which classifier a rule set belongs to.
type RuleDomain string

const (
	// DomainText rules scan free text typed into inputs
	DomainText RuleDomain = "text"

	// DomainForm rules flag sensitive form-field names and labels
	DomainForm RuleDomain = "form"

	// DomainDarkPattern rules back the manipulative-design heuristics
	DomainDarkPattern RuleDomain = "darkpattern"

	// DomainCookie rules back the consent-compliance heuristics
	DomainCookie RuleDomain = "cookie"
)

// Locale selects a language-specific rule set. Category identifiers and
// severities are shared across locales so scoring stays locale-independent.
type Locale string

const (
	// LocaleGerman is the base locale; every domain has a German set.
	LocaleGerman Locale = "de"

	// LocaleEnglish rule sets cover English phrasings.
	LocaleEnglish Locale = "en"
)

// Rule kinds. Regex rules carry their own case-sensitivity flag; keyword
// rules always match case-insensitively. Heuristic rules have no pattern
// of their own: the detection logic is structural and lives in the
// classifier, while the rule supplies severity, message and suggestion so
// scoring and wording stay catalog-driven.
const (
	RuleTypeRegex     = "regex"
	RuleTypeKeyword   = "keyword"
	RuleTypeHeuristic = "heuristic"
)

// PatternRule is one declarative detection rule.
type PatternRule struct {
	// Unique identifier for the rule
	ID string `yaml:"id"`

	// Category of the finding this rule produces (email, iban, ...)
	Category string `yaml:"category"`

	// Type of rule: "regex" or "keyword"
	Type string `yaml:"type"`

	// Regex pattern to match
	Pattern string `yaml:"pattern,omitempty"`

	// List of keywords to match (case-insensitive substrings)
	Keywords []string `yaml:"keywords,omitempty"`

	// CaseSensitive disables the default (?i) flag on regex rules
	CaseSensitive bool `yaml:"case_sensitive,omitempty"`

	// Severity tier of findings produced by this rule
	Severity utils.Severity `yaml:"severity"`

	// User-facing message shown with a finding
	Message string `yaml:"message,omitempty"`

	// Remediation hint shown with a finding
	Suggestion string `yaml:"suggestion,omitempty"`

	re *regexp.Regexp
}

// Regexp returns the compiled pattern of a regex rule, or nil for keyword
// rules. Compilation happens once, when the catalog is built or loaded.
func (r *PatternRule) Regexp() *regexp.Regexp {
	return r.re
}

// CatalogMetadata describes a rule catalog.
type CatalogMetadata struct {
	// Version of the catalog
	Version string `yaml:"version"`

	// When the catalog was created
	CreatedAt time.Time `yaml:"created_at"`

	// Last modification time
	UpdatedAt time.Time `yaml:"updated_at"`

	// Description of the catalog
	Description string `yaml:"description"`

	// Author of the catalog
	Author string `yaml:"author"`

	// Hash of the catalog content for integrity verification
	Hash string `yaml:"hash,omitempty"`
}

// Catalog holds the authoritative detection rules per domain and locale.
// It is immutable after construction; classifiers only read from it.
type Catalog struct {
	Metadata CatalogMetadata                  `yaml:"metadata"`
	Rules    map[RuleDomain]map[Locale][]PatternRule `yaml:"rules"`
}

// RulesFor returns the rule set for a domain and locale, in declaration
// order. Locales without their own set fall back to the German base set,
// which keeps form/darkpattern/cookie rules shared across languages.
func (c *Catalog) RulesFor(domain RuleDomain, locale Locale) []PatternRule {
	byLocale, ok := c.Rules[domain]
	if !ok {
		return nil
	}
	if rules, ok := byLocale[locale]; ok {
		return rules
	}
	return byLocale[LocaleGerman]
}

// compile validates every rule and compiles regex patterns. A malformed
// rule is a configuration error reported here, never during a scan.
func (c *Catalog) compile() error {
	for domain, byLocale := range c.Rules {
		for locale, rules := range byLocale {
			for i := range rules {
				rule := &rules[i]
				if rule.ID == "" {
					rule.ID = fmt.Sprintf("%s-%s-%d", domain, locale, i+1)
				}
				if err := validateRule(rule); err != nil {
					return fmt.Errorf("rule %q (%s/%s): %w", rule.ID, domain, locale, err)
				}
				if rule.Type == RuleTypeRegex {
					pattern := rule.Pattern
					if !rule.CaseSensitive {
						pattern = "(?i)" + pattern
					}
					re, err := regexp.Compile(pattern)
					if err != nil {
						return fmt.Errorf("rule %q (%s/%s): invalid pattern: %w", rule.ID, domain, locale, err)
					}
					rule.re = re
				}
			}
		}
	}
	return nil
}

func validateRule(rule *PatternRule) error {
	if rule.Category == "" {
		return fmt.Errorf("missing category")
	}
	switch rule.Type {
	case RuleTypeRegex:
		if rule.Pattern == "" {
			return fmt.Errorf("regex rule has no pattern")
		}
	case RuleTypeKeyword:
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("keyword rule has no keywords")
		}
	case RuleTypeHeuristic:
		// Structural rules carry no pattern or keywords of their own;
		// keyword lists are allowed as classifier inputs.
	default:
		return fmt.Errorf("unknown rule type %q", rule.Type)
	}
	switch rule.Severity {
	case utils.SeverityLow, utils.SeverityMedium, utils.SeverityHigh, utils.SeverityCritical:
	default:
		return fmt.Errorf("unknown severity %q", rule.Severity)
	}
	return nil
}

// NewCatalog builds and compiles a catalog from explicit rule sets. Rule
// slices are copied so concurrent catalogs never share compiled state.
func NewCatalog(metadata CatalogMetadata, rules map[RuleDomain]map[Locale][]PatternRule) (*Catalog, error) {
	cloned := make(map[RuleDomain]map[Locale][]PatternRule, len(rules))
	for domain, byLocale := range rules {
		sets := make(map[Locale][]PatternRule, len(byLocale))
		for locale, ruleSet := range byLocale {
			sets[locale] = append([]PatternRule(nil), ruleSet...)
		}
		cloned[domain] = sets
	}

	catalog := &Catalog{Metadata: metadata, Rules: cloned}
	if err := catalog.compile(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return catalog, nil
}

// LoadCatalog reads a YAML catalog file, validates it and compiles all
// patterns. The content hash is recorded for integrity checking.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := catalog.compile(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	catalog.Metadata.Hash = calculateCatalogHash(data)
	return &catalog, nil
}

// SaveCatalog writes a catalog to a YAML file with an updated content hash.
func SaveCatalog(catalog *Catalog, path string) error {
	catalog.Metadata.UpdatedAt = time.Now()

	data, err := yaml.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	catalog.Metadata.Hash = calculateCatalogHash(data)

	data, err = yaml.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to re-marshal catalog with hash: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}

	return nil
}

func calculateCatalogHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
