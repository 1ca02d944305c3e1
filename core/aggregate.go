package core

import (
	"github.com/achtung-live/guard-go/utils"
)

// ScoreMode selects how findings are folded into a 0-100 score.
type ScoreMode int

const (
	// ModeRisk accumulates severity weights upward from 0 (PII, forms,
	// dark patterns): more findings mean a higher score.
	ModeRisk ScoreMode = iota

	// ModeCompliance deducts severity weights downward from 100 (cookie
	// consent, trust): more findings mean a lower score.
	ModeCompliance
)

// WeightTable maps each severity tier to its score contribution. Every tier
// must have an entry and weights must not decrease with severity.
type WeightTable map[utils.Severity]int

// LevelBand is one row of a threshold table: scores strictly above Min map
// to Level. Bands are evaluated top-down, so tables are declared with the
// highest band first and a catch-all (Min -1) last.
type LevelBand struct {
	Min   int
	Level string
}

// Per-classifier calibration. The tiers differ slightly between domains on
// purpose: a critical PII leak (IBAN, credentials) weighs more than a
// critical structural anomaly on a page.
var (
	// TextWeights scores free-text PII findings.
	TextWeights = WeightTable{
		utils.SeverityCritical: 40,
		utils.SeverityHigh:     25,
		utils.SeverityMedium:   15,
		utils.SeverityLow:      5,
	}

	// FormWeights scores sensitive form-field findings.
	FormWeights = WeightTable{
		utils.SeverityCritical: 35,
		utils.SeverityHigh:     25,
		utils.SeverityMedium:   15,
		utils.SeverityLow:      5,
	}

	// DarkPatternWeights scores manipulative-design findings.
	DarkPatternWeights = WeightTable{
		utils.SeverityCritical: 35,
		utils.SeverityHigh:     25,
		utils.SeverityMedium:   15,
		utils.SeverityLow:      5,
	}

	// CookieWeights is deducted from 100 per consent issue.
	CookieWeights = WeightTable{
		utils.SeverityCritical: 35,
		utils.SeverityHigh:     25,
		utils.SeverityMedium:   15,
		utils.SeverityLow:      5,
	}
)

// Risk level names shared by the risk-mode classifiers.
const (
	RiskLevelLow      = "low"
	RiskLevelMedium   = "medium"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"
)

// Compliance level names for the cookie classifier.
const (
	ComplianceGood   = "good"
	ComplianceMedium = "medium"
	CompliancePoor   = "poor"
)

// RiskLevels is the shared band table for risk-mode scores. The critical
// band exists for presentation (badge color) only; safety gating always
// goes through the warning threshold, never through the level name.
var RiskLevels = []LevelBand{
	{Min: 90, Level: RiskLevelCritical},
	{Min: 70, Level: RiskLevelHigh},
	{Min: 30, Level: RiskLevelMedium},
	{Min: -1, Level: RiskLevelLow},
}

// FormRiskLevels calibrates form scores a little more aggressively: a form
// is already "high" above 60.
var FormRiskLevels = []LevelBand{
	{Min: 60, Level: RiskLevelHigh},
	{Min: 30, Level: RiskLevelMedium},
	{Min: -1, Level: RiskLevelLow},
}

// ComplianceLevels maps deducted scores to a compliance verdict.
var ComplianceLevels = []LevelBand{
	{Min: 70, Level: ComplianceGood},
	{Min: 40, Level: ComplianceMedium},
	{Min: -1, Level: CompliancePoor},
}

// DefaultWarningThreshold is the score at which text stops being safe to
// send. Callers may override it per request.
const DefaultWarningThreshold = 30

// Weight returns the contribution of a severity tier. Unknown tiers score
// like low so a forward-compatible catalog never panics the aggregator.
func (w WeightTable) Weight(severity utils.Severity) int {
	if v, ok := w[severity]; ok {
		return v
	}
	return w[utils.SeverityLow]
}

// AggregateScore folds findings into a single clamped score. Risk mode sums
// upward and caps at 100; compliance mode deducts from 100 and floors at 0.
func AggregateScore(findings []utils.Finding, weights WeightTable, mode ScoreMode) int {
	total := 0
	for _, f := range findings {
		total += weights.Weight(f.Severity)
	}

	switch mode {
	case ModeCompliance:
		score := 100 - total
		if score < 0 {
			score = 0
		}
		return score
	default:
		if total > 100 {
			total = 100
		}
		return total
	}
}

// LevelFor resolves a score against a band table.
func LevelFor(score int, bands []LevelBand) string {
	for _, band := range bands {
		if score > band.Min {
			return band.Level
		}
	}
	// Tables end with a catch-all band; an empty table is a programming error.
	return RiskLevelLow
}
