package core

import (
	"time"

	"github.com/achtung-live/guard-go/utils"
)

// CatalogBuilder provides a fluent interface for assembling rule catalogs,
// typically to extend the built-in rules with site- or team-specific ones.
type CatalogBuilder struct {
	metadata CatalogMetadata
	rules    map[RuleDomain]map[Locale][]PatternRule
}

// NewCatalogBuilder creates an empty catalog builder.
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{
		metadata: CatalogMetadata{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		rules: map[RuleDomain]map[Locale][]PatternRule{},
	}
}

// FromCatalog seeds the builder with an existing catalog's rules, so the
// built-in sets can be extended instead of replaced.
func FromCatalog(catalog *Catalog) *CatalogBuilder {
	b := NewCatalogBuilder()
	b.metadata = catalog.Metadata
	for domain, byLocale := range catalog.Rules {
		sets := make(map[Locale][]PatternRule, len(byLocale))
		for locale, ruleSet := range byLocale {
			sets[locale] = append([]PatternRule(nil), ruleSet...)
		}
		b.rules[domain] = sets
	}
	return b
}

// WithMetadata sets the catalog metadata.
func (b *CatalogBuilder) WithMetadata(version, description, author string) *CatalogBuilder {
	b.metadata.Version = version
	b.metadata.Description = description
	b.metadata.Author = author
	return b
}

// AddRegexRule appends a regex rule to a domain/locale set.
func (b *CatalogBuilder) AddRegexRule(domain RuleDomain, locale Locale, id, category, pattern string, severity utils.Severity) *CatalogBuilder {
	return b.addRule(domain, locale, PatternRule{
		ID: id, Category: category, Type: RuleTypeRegex,
		Pattern: pattern, Severity: severity,
	})
}

// AddKeywordRule appends a keyword rule to a domain/locale set.
func (b *CatalogBuilder) AddKeywordRule(domain RuleDomain, locale Locale, id, category string, keywords []string, severity utils.Severity) *CatalogBuilder {
	return b.addRule(domain, locale, PatternRule{
		ID: id, Category: category, Type: RuleTypeKeyword,
		Keywords: keywords, Severity: severity,
	})
}

func (b *CatalogBuilder) addRule(domain RuleDomain, locale Locale, rule PatternRule) *CatalogBuilder {
	byLocale, ok := b.rules[domain]
	if !ok {
		byLocale = map[Locale][]PatternRule{}
		b.rules[domain] = byLocale
	}
	byLocale[locale] = append(byLocale[locale], rule)
	return b
}

// ConfigureLastRule configures additional properties of the most recently
// added rule in a domain/locale set.
func (b *CatalogBuilder) ConfigureLastRule(domain RuleDomain, locale Locale) *RuleConfigurator {
	byLocale := b.rules[domain]
	if byLocale == nil || len(byLocale[locale]) == 0 {
		b.addRule(domain, locale, PatternRule{})
		byLocale = b.rules[domain]
	}
	set := byLocale[locale]
	return &RuleConfigurator{
		builder: b,
		rule:    &set[len(set)-1],
	}
}

// Build validates all rules, compiles patterns and returns the catalog.
func (b *CatalogBuilder) Build() (*Catalog, error) {
	b.metadata.UpdatedAt = time.Now()
	return NewCatalog(b.metadata, b.rules)
}

// RuleConfigurator tweaks one rule inside a builder.
type RuleConfigurator struct {
	builder *CatalogBuilder
	rule    *PatternRule
}

// WithMessage sets the user-facing message for the rule's findings.
func (c *RuleConfigurator) WithMessage(message string) *RuleConfigurator {
	c.rule.Message = message
	return c
}

// WithSuggestion sets the remediation hint for the rule's findings.
func (c *RuleConfigurator) WithSuggestion(suggestion string) *RuleConfigurator {
	c.rule.Suggestion = suggestion
	return c
}

// CaseSensitive disables the default case-insensitive matching of a
// regex rule.
func (c *RuleConfigurator) CaseSensitive() *RuleConfigurator {
	c.rule.CaseSensitive = true
	return c
}

// Done returns to the catalog builder.
func (c *RuleConfigurator) Done() *CatalogBuilder {
	return c.builder
}
