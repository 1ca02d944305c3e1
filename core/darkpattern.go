package core

import (
	"fmt"
	"strings"

	"github.com/achtung-live/guard-go/utils"
)

// Descriptors for the page elements the content script collects. The
// classifier consumes these; observing the DOM is the caller's job.
type ButtonDescriptor struct {
	Text    string   `json:"text"`
	Classes []string `json:"classes,omitempty"`
}

type CheckboxDescriptor struct {
	Label   string `json:"label,omitempty"`
	Checked bool   `json:"checked"`
	Visible bool   `json:"visible"`
}

type ModalDescriptor struct {
	Type           string `json:"type"`
	HasCloseButton bool   `json:"hasCloseButton"`
}

// PageElements groups everything scraped from one page.
type PageElements struct {
	Buttons    []ButtonDescriptor   `json:"buttons,omitempty"`
	Checkboxes []CheckboxDescriptor `json:"checkboxes,omitempty"`
	TextBlocks []string             `json:"text,omitempty"`
	Modals     []ModalDescriptor    `json:"modals,omitempty"`
}

// AnalyzeDarkPatternsRequest is the normalized payload for a page scan.
type AnalyzeDarkPatternsRequest struct {
	Elements *PageElements `json:"elements"`
}

// DarkPatternResult is the verdict for one page scan.
type DarkPatternResult struct {
	DarkPatternScore int             `json:"darkPatternScore"`
	TrustScore       int             `json:"trustScore"`
	PatternsFound    []utils.Finding `json:"patternsFound"`
	Recommendations  []string        `json:"recommendations"`
}

// ClassifyPage evaluates the dark-pattern heuristics over page element
// descriptors. Each heuristic is independent; findings come out grouped by
// element kind in collection order.
func ClassifyPage(elements *PageElements, rules []PatternRule) []utils.Finding {
	byCategory := make(map[string]*PatternRule, len(rules))
	for i := range rules {
		byCategory[rules[i].Category] = &rules[i]
	}

	var findings []utils.Finding

	negation := byCategory[CategoryNegationKeywords]
	suppressed := byCategory[CategorySuppressedClasses]
	shame := byCategory[CategoryConfirmshamingShame]
	confirmshaming := byCategory[CategoryConfirmshaming]

	for _, btn := range elements.Buttons {
		text := strings.ToLower(btn.Text)

		// Shame language is stronger evidence than the visual heuristic,
		// so it wins when both apply.
		if shame != nil && shame.re.MatchString(text) {
			findings = append(findings, utils.Finding{
				Type:       CategoryConfirmshaming,
				Severity:   shame.Severity,
				Element:    "button",
				Evidence:   btn.Text,
				Message:    shame.Message,
				Suggestion: shame.Suggestion,
			})
			continue
		}

		if confirmshaming == nil || negation == nil || suppressed == nil {
			continue
		}
		isNegative := matchesAnyKeyword(text, negation.Keywords)
		isSuppressedStyle := false
		for _, class := range btn.Classes {
			if matchesAnyKeyword(strings.ToLower(class), suppressed.Keywords) {
				isSuppressedStyle = true
				break
			}
		}
		if isNegative && isSuppressedStyle {
			findings = append(findings, utils.Finding{
				Type:       confirmshaming.Category,
				Severity:   confirmshaming.Severity,
				Element:    "button",
				Evidence:   fmt.Sprintf("%q ist klein oder ausgegraut", btn.Text),
				Message:    confirmshaming.Message,
				Suggestion: confirmshaming.Suggestion,
			})
		}
	}

	hidden := byCategory[CategoryHiddenCheckbox]
	marketing := byCategory[CategoryPreselectedMarketing]
	preselected := byCategory[CategoryPreselectedOption]

	for _, cb := range elements.Checkboxes {
		switch {
		case cb.Checked && !cb.Visible:
			if hidden != nil {
				findings = append(findings, utils.Finding{
					Type:       hidden.Category,
					Severity:   hidden.Severity,
					Element:    "checkbox",
					Evidence:   fmt.Sprintf("%q ist nicht sichtbar aber aktiviert", cb.Label),
					Message:    hidden.Message,
					Suggestion: hidden.Suggestion,
				})
			}
		case cb.Checked && marketing != nil && matchesAnyKeyword(strings.ToLower(cb.Label), marketing.Keywords):
			findings = append(findings, utils.Finding{
				Type:       "preselected_option",
				Severity:   marketing.Severity,
				Element:    "checkbox",
				Evidence:   fmt.Sprintf("%q ist bereits aktiviert", cb.Label),
				Message:    marketing.Message,
				Suggestion: marketing.Suggestion,
			})
		case cb.Checked && preselected != nil:
			findings = append(findings, utils.Finding{
				Type:       preselected.Category,
				Severity:   preselected.Severity,
				Element:    "checkbox",
				Evidence:   fmt.Sprintf("%q ist bereits aktiviert", cb.Label),
				Message:    preselected.Message,
				Suggestion: preselected.Suggestion,
			})
		}
	}

	urgency := byCategory[CategoryFakeUrgency]
	scarcity := byCategory[CategoryFakeScarcity]

	for _, block := range elements.TextBlocks {
		lower := strings.ToLower(block)
		evidence := truncateUTF8(block, 60)
		if urgency != nil && urgency.re.MatchString(lower) {
			findings = append(findings, utils.Finding{
				Type:       urgency.Category,
				Severity:   urgency.Severity,
				Element:    "text",
				Evidence:   evidence,
				Message:    urgency.Message,
				Suggestion: urgency.Suggestion,
			})
		}
		if scarcity != nil && scarcity.re.MatchString(lower) {
			findings = append(findings, utils.Finding{
				Type:       scarcity.Category,
				Severity:   scarcity.Severity,
				Element:    "text",
				Evidence:   evidence,
				Message:    scarcity.Message,
				Suggestion: scarcity.Suggestion,
			})
		}
	}

	roachMotel := byCategory[CategoryRoachMotel]
	for _, modal := range elements.Modals {
		if roachMotel != nil && modal.Type == "exit_intent" && !modal.HasCloseButton {
			findings = append(findings, utils.Finding{
				Type:       roachMotel.Category,
				Severity:   roachMotel.Severity,
				Element:    "modal",
				Evidence:   "Modal hat keinen sichtbaren Schließen-Button",
				Message:    roachMotel.Message,
				Suggestion: roachMotel.Suggestion,
			})
		}
	}

	return findings
}

// AnalyzeDarkPatterns runs the full dark-pattern path and derives the
// trust score as the complement of the pattern score.
func AnalyzeDarkPatterns(req AnalyzeDarkPatternsRequest, catalog *Catalog) (*DarkPatternResult, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", ErrInvalidInput)
	}
	if req.Elements == nil {
		return nil, fmt.Errorf("%w: elements object is required", ErrInvalidInput)
	}

	findings := ClassifyPage(req.Elements, catalog.RulesFor(DomainDarkPattern, LocaleGerman))
	score := AggregateScore(findings, DarkPatternWeights, ModeRisk)

	result := &DarkPatternResult{
		DarkPatternScore: score,
		TrustScore:       100 - score,
		PatternsFound:    findings,
		Recommendations:  recommendationsFromFindings(findings),
	}
	if result.PatternsFound == nil {
		result.PatternsFound = []utils.Finding{}
	}
	if len(result.Recommendations) == 0 {
		result.Recommendations = []string{"Keine offensichtlichen Dark Patterns gefunden"}
	}
	return result, nil
}
