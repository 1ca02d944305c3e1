package utils

// Severity classifies how serious a single finding is.
type Severity string

const (
	// SeverityLow for findings with little identifying power on their own
	SeverityLow Severity = "low"

	// SeverityMedium for findings that narrow a person down
	SeverityMedium Severity = "medium"

	// SeverityHigh for directly identifying or exploitable data
	SeverityHigh Severity = "high"

	// SeverityCritical for data that must never leave the user's hands
	SeverityCritical Severity = "critical"
)

// Position marks where in the analyzed text a finding was matched.
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Finding represents one concrete detection instance produced by a classifier.
type Finding struct {
	// Classification information
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`

	// Matched value and its location. Value is redacted before it reaches
	// any log sink; it is only carried here so callers can highlight it.
	Value    string    `json:"value,omitempty"`
	Position *Position `json:"position,omitempty"`

	// Human-readable explanation and remediation hint
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`

	// Element names the page element kind the finding refers to, for
	// findings that come from DOM descriptors rather than free text.
	Element string `json:"element,omitempty"`

	// Evidence is a short excerpt backing the finding.
	Evidence string `json:"evidence,omitempty"`
}
