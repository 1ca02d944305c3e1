package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/achtung-live/guard-go/utils"
)

// FieldDescriptor is the normalized shape of one form field, collected by
// the content script; the classifier never sees the DOM itself.
type FieldDescriptor struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// AnalyzeFormRequest is the normalized payload for a form analysis.
type AnalyzeFormRequest struct {
	Fields []FieldDescriptor `json:"formFields"`
}

// UnusualField explains why one field was flagged.
type UnusualField struct {
	Field          string         `json:"field"`
	Label          string         `json:"label,omitempty"`
	Reason         string         `json:"reason"`
	Severity       utils.Severity `json:"severity"`
	Recommendation string         `json:"recommendation,omitempty"`
}

// FormResult is the verdict for one form analysis.
type FormResult struct {
	FormRiskScore int    `json:"formRiskScore"`
	RiskLevel     string `json:"riskLevel"`

	TotalFields     int               `json:"totalFields"`
	SensitiveFields []FieldDescriptor `json:"sensitiveFields"`
	UnusualFields   []UnusualField    `json:"unusualFields"`
	NormalFields    []string          `json:"normalFields"`

	// DataMinimizationScore is the share of unflagged fields, rounded to
	// two decimals. Reporting only; it never feeds the risk score.
	DataMinimizationScore float64 `json:"dataMinimizationScore"`

	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// ClassifyFields flags sensitive and structurally suspicious fields. Tier
// keyword rules are evaluated in declaration order (critical, high,
// medium) and the first matching tier wins, so a field is never counted
// twice. The hidden-password check is structural and independent of the
// keyword catalog.
func ClassifyFields(fields []FieldDescriptor, rules []PatternRule) (unusual []UnusualField, sensitive []FieldDescriptor, normal []string) {
	var hiddenPassword *PatternRule
	var tiers []*PatternRule
	for i := range rules {
		rule := &rules[i]
		if rule.Category == CategoryHiddenPassword {
			hiddenPassword = rule
			continue
		}
		if rule.Type == RuleTypeKeyword {
			tiers = append(tiers, rule)
		}
	}

	for _, field := range fields {
		searchText := strings.ToLower(field.Name + " " + field.Label)
		flagged := false

		for _, tier := range tiers {
			if matchesAnyKeyword(searchText, tier.Keywords) {
				display := field.Label
				if display == "" {
					display = field.Name
				}
				unusual = append(unusual, UnusualField{
					Field:          field.Name,
					Label:          field.Label,
					Reason:         fmt.Sprintf("%s %s", display, tier.Message),
					Severity:       tier.Severity,
					Recommendation: tier.Suggestion,
				})
				sensitive = append(sensitive, field)
				flagged = true
				break
			}
		}

		// A password input whose name and label say nothing about
		// passwords is hiding what it collects.
		if !flagged && field.Type == "password" && hiddenPassword != nil &&
			!matchesAnyKeyword(searchText, hiddenPassword.Keywords) {
			unusual = append(unusual, UnusualField{
				Field:          field.Name,
				Label:          field.Label,
				Reason:         hiddenPassword.Message,
				Severity:       hiddenPassword.Severity,
				Recommendation: hiddenPassword.Suggestion,
			})
			flagged = true
		}

		if !flagged {
			normal = append(normal, field.Name)
		}
	}

	return unusual, sensitive, normal
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// AnalyzeForm runs the full form path: classification, aggregation,
// warnings and recommendations.
func AnalyzeForm(req AnalyzeFormRequest, catalog *Catalog) (*FormResult, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", ErrInvalidInput)
	}
	if req.Fields == nil {
		return nil, fmt.Errorf("%w: formFields array is required", ErrInvalidInput)
	}

	rules := catalog.RulesFor(DomainForm, LocaleGerman)
	unusual, sensitive, normal := ClassifyFields(req.Fields, rules)

	findings := make([]utils.Finding, 0, len(unusual))
	for _, u := range unusual {
		findings = append(findings, utils.Finding{Type: "unusual_field", Severity: u.Severity})
	}
	score := AggregateScore(findings, FormWeights, ModeRisk)

	total := len(req.Fields)
	minimization := 1.0
	if total > 0 {
		minimization = float64(len(normal)) / float64(total)
	}

	result := &FormResult{
		FormRiskScore:         score,
		RiskLevel:             LevelFor(score, FormRiskLevels),
		TotalFields:           total,
		SensitiveFields:       sensitive,
		UnusualFields:         unusual,
		NormalFields:          normal,
		DataMinimizationScore: math.Round(minimization*100) / 100,
		Warnings:              formWarnings(unusual, total),
		Recommendations:       formRecommendations(unusual),
	}
	if result.SensitiveFields == nil {
		result.SensitiveFields = []FieldDescriptor{}
	}
	if result.UnusualFields == nil {
		result.UnusualFields = []UnusualField{}
	}
	if result.NormalFields == nil {
		result.NormalFields = []string{}
	}
	return result, nil
}

func formWarnings(unusual []UnusualField, totalFields int) []string {
	warnings := []string{}

	for _, f := range unusual {
		if f.Severity == utils.SeverityCritical {
			warnings = append(warnings, "Dieses Formular sammelt kritisch sensible Daten!")
			break
		}
	}
	if len(unusual) >= 3 {
		warnings = append(warnings, fmt.Sprintf("Dieses Formular enthält %d sensible Felder", len(unusual)))
	}
	if totalFields > 0 && len(unusual) > totalFields/2 {
		warnings = append(warnings, "Mehr als die Hälfte der Felder sammelt sensible Daten")
	}

	return warnings
}

func formRecommendations(unusual []UnusualField) []string {
	recommendations := []string{}

	if len(unusual) > 0 {
		recommendations = append(recommendations, "Prüfe die Datenschutzerklärung vor dem Absenden")
	}
	for _, f := range unusual {
		if f.Severity == utils.SeverityCritical {
			recommendations = append(recommendations, "Frage den Anbieter, warum kritische Daten benötigt werden")
			break
		}
	}
	if len(unusual) >= 2 {
		recommendations = append(recommendations, "Erwäge, optionale Felder leer zu lassen")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Formular scheint normal zu sein")
	}

	return recommendations
}
