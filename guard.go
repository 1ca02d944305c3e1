// Package guard detects personal data, manipulative design and consent
// problems in web content. The one-call functions here run against the
// built-in rule catalog; use core and service directly for custom
// catalogs, remote analysis or persistent settings.
package guard

import (
	"sync"

	"github.com/achtung-live/guard-go/core"
	"github.com/achtung-live/guard-go/utils"
)

var (
	defaultCatalog     *core.Catalog
	defaultRegistry    *core.TrackerRegistry
	defaultCatalogOnce sync.Once
)

func defaults() (*core.Catalog, *core.TrackerRegistry) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = core.DefaultCatalog()
		defaultRegistry = core.DefaultTrackerRegistry()
	})
	return defaultCatalog, defaultRegistry
}

// AnalyzeText scans free text for personal data with the built-in rules.
func AnalyzeText(text string) (*core.TextResult, error) {
	catalog, _ := defaults()
	return core.AnalyzeText(core.AnalyzeTextRequest{Text: text}, catalog)
}

// AnalyzeTextLocale scans free text with the rules for a specific locale.
func AnalyzeTextLocale(text string, locale core.Locale) (*core.TextResult, error) {
	catalog, _ := defaults()
	return core.AnalyzeText(core.AnalyzeTextRequest{Text: text, Locale: locale}, catalog)
}

// AnalyzeForm flags sensitive and suspicious fields in a form definition.
func AnalyzeForm(fields []core.FieldDescriptor) (*core.FormResult, error) {
	catalog, _ := defaults()
	return core.AnalyzeForm(core.AnalyzeFormRequest{Fields: fields}, catalog)
}

// AnalyzeDarkPatterns detects manipulative design in page elements.
func AnalyzeDarkPatterns(elements *core.PageElements) (*core.DarkPatternResult, error) {
	catalog, _ := defaults()
	return core.AnalyzeDarkPatterns(core.AnalyzeDarkPatternsRequest{Elements: elements}, catalog)
}

// AnalyzeCookies checks a consent banner and tracker list for compliance
// problems against the built-in tracker registry.
func AnalyzeCookies(req core.AnalyzeCookiesRequest) (*core.CookieResult, error) {
	catalog, registry := defaults()
	return core.AnalyzeCookies(req, catalog, registry)
}

// Anonymize replaces the findings of a prior text analysis with
// category placeholders.
func Anonymize(text string, findings []utils.Finding) string {
	return core.Anonymize(text, findings)
}
