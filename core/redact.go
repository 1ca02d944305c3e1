package core

import (
	"sort"
	"strings"

	"github.com/achtung-live/guard-go/utils"
)

// Placeholders substituted for anonymized findings, keyed by category.
// Categories without an entry fall back to a generic marker.
var anonymizePlaceholders = map[string]string{
	CategoryEmail:       "[E-Mail entfernt]",
	CategoryPhone:       "[Telefonnummer entfernt]",
	CategoryIBAN:        "[IBAN entfernt]",
	CategoryAddress:     "[Adresse entfernt]",
	CategoryPostal:      "[Ort entfernt]",
	CategoryFullName:    "[Name entfernt]",
	CategoryHealth:      "[Gesundheitsdaten entfernt]",
	CategoryCredentials: "[Zugangsdaten entfernt]",
}

const genericPlaceholder = "[Entfernt]"

// Anonymize replaces every positioned finding in text with its category
// placeholder. Findings without a position are skipped; overlapping
// findings collapse into the placeholder of the earliest one.
func Anonymize(text string, findings []utils.Finding) string {
	positioned := make([]utils.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Position != nil {
			positioned = append(positioned, f)
		}
	}
	sort.SliceStable(positioned, func(i, j int) bool {
		return positioned[i].Position.Start < positioned[j].Position.Start
	})

	var builder strings.Builder
	lastIndex := 0

	for _, f := range positioned {
		start, end := f.Position.Start, f.Position.End
		if start < lastIndex || end > len(text) {
			continue
		}
		builder.WriteString(text[lastIndex:start])

		placeholder, ok := anonymizePlaceholders[f.Type]
		if !ok {
			placeholder = genericPlaceholder
		}
		builder.WriteString(placeholder)

		lastIndex = end
	}

	if lastIndex < len(text) {
		builder.WriteString(text[lastIndex:])
	}

	return builder.String()
}

// AnonymizeCategories anonymizes only findings of the given categories;
// an empty category list anonymizes everything.
func AnonymizeCategories(text string, findings []utils.Finding, categories ...string) string {
	if len(categories) == 0 {
		return Anonymize(text, findings)
	}
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}
	filtered := make([]utils.Finding, 0, len(findings))
	for _, f := range findings {
		if wanted[f.Type] {
			filtered = append(filtered, f)
		}
	}
	return Anonymize(text, filtered)
}
