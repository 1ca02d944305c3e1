package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/achtung-live/guard-go/utils"
)

// ErrInvalidInput marks malformed requests (missing payload, nil catalog).
// Well-typed but empty input is never an error; it yields a below-threshold
// result instead.
var ErrInvalidInput = errors.New("invalid input")

// DefaultMinTextLength is the minimum input length before text analysis
// kicks in; shorter input is reported as below threshold, not as clean.
const DefaultMinTextLength = 10

// AnalyzeTextRequest is the normalized payload for a text analysis.
type AnalyzeTextRequest struct {
	Text   string `json:"text"`
	Locale Locale `json:"locale,omitempty"`

	// MinLength overrides DefaultMinTextLength when > 0.
	MinLength int `json:"minLength,omitempty"`

	// WarningThreshold overrides DefaultWarningThreshold when > 0.
	WarningThreshold int `json:"warningThreshold,omitempty"`
}

// TextResult is the verdict for one text analysis.
type TextResult struct {
	RiskScore int    `json:"riskScore"`
	RiskLevel string `json:"riskLevel"`

	// BelowThreshold reports that the input was too short to analyze.
	// Distinct from an empty findings list: callers stay silent on short
	// input but may show a "safe" indicator on analyzed-and-clean input.
	BelowThreshold bool `json:"belowThreshold,omitempty"`

	Findings        []utils.Finding `json:"findings"`
	Recommendations []string        `json:"recommendations"`
	SafeToSend      bool            `json:"safeToSend"`
	WarningMessage  string          `json:"warningMessage,omitempty"`
}

// ClassifyText scans text with the given rules and returns one finding per
// non-overlapping match. Findings are emitted in rule declaration order,
// then by match offset, so identical input always yields identical output.
func ClassifyText(text string, rules []PatternRule) []utils.Finding {
	var findings []utils.Finding

	for i := range rules {
		rule := &rules[i]
		switch rule.Type {
		case RuleTypeRegex:
			locs := rule.re.FindAllStringIndex(text, -1)
			for _, loc := range locs {
				findings = append(findings, utils.Finding{
					Type:       rule.Category,
					Severity:   rule.Severity,
					Value:      text[loc[0]:loc[1]],
					Position:   &utils.Position{Start: loc[0], End: loc[1]},
					Message:    rule.Message,
					Suggestion: rule.Suggestion,
				})
			}
		case RuleTypeKeyword:
			lower, offsets := foldCase(text)
			var spans []utils.Position
			for _, keyword := range rule.Keywords {
				kw := strings.ToLower(keyword)
				if kw == "" {
					continue
				}
				for idx := strings.Index(lower, kw); idx != -1; {
					spans = append(spans, utils.Position{
						Start: offsets[idx],
						End:   offsets[idx+len(kw)],
					})
					next := strings.Index(lower[idx+len(kw):], kw)
					if next == -1 {
						break
					}
					idx += len(kw) + next
				}
			}
			// All keywords of one rule share a category, so their matches
			// sort by offset before entering the findings.
			sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
			for _, span := range spans {
				findings = append(findings, utils.Finding{
					Type:       rule.Category,
					Severity:   rule.Severity,
					Value:      text[span.Start:span.End],
					Position:   &utils.Position{Start: span.Start, End: span.End},
					Message:    rule.Message,
					Suggestion: rule.Suggestion,
				})
			}
		}
	}

	return findings
}

// foldCase lowers text rune by rune and maps every byte of the lowered
// form (plus the end boundary) back to a byte offset in the original, so
// case-insensitive matches can report positions in the caller's text even
// where lowering changes a rune's byte length.
func foldCase(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		low := unicode.ToLower(r)
		for n := utf8.RuneLen(low); n > 0; n-- {
			offsets = append(offsets, i)
		}
		b.WriteRune(low)
	}
	offsets = append(offsets, len(text))
	return b.String(), offsets
}

// AnalyzeText runs the full text path: length gate, classification,
// aggregation and verdict. Pure given its inputs and the catalog.
// Finding positions refer to req.Text exactly as given, so they can be
// fed straight into Anonymize.
func AnalyzeText(req AnalyzeTextRequest, catalog *Catalog) (*TextResult, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", ErrInvalidInput)
	}

	minLength := req.MinLength
	if minLength <= 0 {
		minLength = DefaultMinTextLength
	}
	threshold := req.WarningThreshold
	if threshold <= 0 {
		threshold = DefaultWarningThreshold
	}

	// The gate ignores padding, but the scan runs on the text as given so
	// positions stay valid for the caller.
	if len(strings.TrimSpace(req.Text)) < minLength {
		return &TextResult{
			RiskScore:      0,
			RiskLevel:      RiskLevelLow,
			BelowThreshold: true,
			Findings:       []utils.Finding{},
			SafeToSend:     true,
		}, nil
	}

	locale := req.Locale
	if locale == "" {
		locale = LocaleGerman
	}

	findings := ClassifyText(req.Text, catalog.RulesFor(DomainText, locale))
	score := AggregateScore(findings, TextWeights, ModeRisk)

	result := &TextResult{
		RiskScore:       score,
		RiskLevel:       LevelFor(score, RiskLevels),
		Findings:        findings,
		Recommendations: recommendationsFromFindings(findings),
		SafeToSend:      score < threshold,
	}
	if !result.SafeToSend {
		result.WarningMessage = "Dieser Text enthält sensible Informationen"
	}
	if result.Findings == nil {
		result.Findings = []utils.Finding{}
	}
	return result, nil
}

// recommendationsFromFindings collects distinct suggestions in finding order.
func recommendationsFromFindings(findings []utils.Finding) []string {
	var recommendations []string
	seen := make(map[string]bool)
	for _, f := range findings {
		if f.Suggestion == "" || seen[f.Suggestion] {
			continue
		}
		seen[f.Suggestion] = true
		recommendations = append(recommendations, f.Suggestion)
	}
	return recommendations
}
