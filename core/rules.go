package core

import (
	"time"

	"github.com/achtung-live/guard-go/utils"
)

// Finding categories produced by the built-in rules. Category identifiers
// are shared across locales; only messages and patterns are localized.
const (
	CategoryEmail       = "email"
	CategoryPhone       = "phone"
	CategoryIBAN        = "iban"
	CategoryAddress     = "address"
	CategoryPostal      = "postal"
	CategoryFullName    = "full_name"
	CategoryHealth      = "health"
	CategoryCredentials = "credentials"

	CategorySensitiveFieldCritical = "sensitive_field_critical"
	CategorySensitiveFieldHigh     = "sensitive_field_high"
	CategorySensitiveFieldMedium   = "sensitive_field_medium"
	CategoryHiddenPassword         = "hidden_password"

	CategoryConfirmshaming       = "confirmshaming"
	CategoryConfirmshamingShame  = "confirmshaming_shame"
	CategoryNegationKeywords     = "negation_keywords"
	CategorySuppressedClasses    = "suppressed_classes"
	CategoryHiddenCheckbox       = "hidden_checkbox"
	CategoryPreselectedMarketing = "preselected_marketing"
	CategoryPreselectedOption    = "preselected_option"
	CategoryFakeUrgency          = "fake_urgency"
	CategoryFakeScarcity         = "fake_scarcity"
	CategoryRoachMotel           = "roach_motel"

	CategoryMissingRejectAll   = "missing_reject_all"
	CategoryDarkPatternConsent = "dark_pattern_consent"
	CategoryUndeclaredTrackers = "undeclared_trackers"
	CategoryCookieLifetime     = "excessive_cookie_lifetime"
)

// German text rules, ported from the production pattern database. The
// phone pattern deliberately matches digit runs inside longer sequences;
// bank data that also looks like a dialable number is double evidence,
// not a false positive.
var textRulesDE = []PatternRule{
	{
		ID: "pii-email", Category: CategoryEmail, Type: RuleTypeRegex,
		Pattern:  `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		Severity: utils.SeverityHigh,
		Message:  "E-Mail-Adresse erkannt", Suggestion: "Verwende eine anonyme E-Mail-Adresse",
	},
	{
		ID: "pii-phone", Category: CategoryPhone, Type: RuleTypeRegex,
		Pattern:  `(\+49|0049|0)\s*\d{2,4}[\s\-/]?\d{3,}[\s\-/]?\d{2,}`,
		Severity: utils.SeverityHigh, CaseSensitive: true,
		Message:  "Telefonnummer erkannt", Suggestion: "Telefonnummer entfernen oder anonymisieren",
	},
	{
		ID: "fin-iban", Category: CategoryIBAN, Type: RuleTypeRegex,
		Pattern:  `[A-Z]{2}\d{2}\s?(?:\d{4}\s?){4,5}\d{0,2}`,
		Severity: utils.SeverityCritical,
		Message:  "IBAN erkannt", Suggestion: "IBAN niemals öffentlich teilen!",
	},
	{
		ID: "pii-address", Category: CategoryAddress, Type: RuleTypeRegex,
		Pattern:  `(Str\.|Straße|Strasse|Weg|Platz|Allee|Ring)\s*[0-9]+`,
		Severity: utils.SeverityMedium,
		Message:  "Mögliche Adresse erkannt", Suggestion: "Vermeide genaue Ortsangaben",
	},
	{
		ID: "pii-postal", Category: CategoryPostal, Type: RuleTypeRegex,
		Pattern:  `\b[0-9]{5}\s+[A-ZÄÖÜ][a-zäöüß]+`,
		Severity: utils.SeverityLow, CaseSensitive: true,
		Message:  "Postleitzahl mit Ort erkannt", Suggestion: "Vermeide genaue Ortsangaben",
	},
	{
		ID: "pii-name-intro", Category: CategoryFullName, Type: RuleTypeRegex,
		Pattern:  `(?i:ich bin|mein name ist|heiße)\s+[A-ZÄÖÜ][a-zäöüß]+\s+[A-ZÄÖÜ][a-zäöüß]+`,
		Severity: utils.SeverityHigh, CaseSensitive: true,
		Message:  "Vollständiger Name erkannt", Suggestion: "Verwende einen Spitznamen oder nur den Vornamen",
	},
	{
		ID: "health-terms", Category: CategoryHealth, Type: RuleTypeRegex,
		Pattern:  `(Diagnose|Krankheit|Medikament|Therapie|Krankenhaus|Operation|Symptom)`,
		Severity: utils.SeverityHigh,
		Message:  "Gesundheitsbezogene Informationen erkannt", Suggestion: "Gesundheitsangaben nur vertraulich teilen",
	},
	{
		ID: "cred-password", Category: CategoryCredentials, Type: RuleTypeRegex,
		Pattern:  `(Passwort|Kennwort|PIN|Zugangscode|Password)\s*[:=]?\s*\S+`,
		Severity: utils.SeverityCritical,
		Message:  "Mögliche Zugangsdaten erkannt", Suggestion: "Zugangsdaten niemals weitergeben",
	},
}

// English text rules share category identifiers and severities with the
// German set, so downstream scoring is locale-independent.
var textRulesEN = []PatternRule{
	{
		ID: "pii-email", Category: CategoryEmail, Type: RuleTypeRegex,
		Pattern:  `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		Severity: utils.SeverityHigh,
		Message:  "Email address detected", Suggestion: "Use a throwaway email address",
	},
	{
		ID: "pii-phone", Category: CategoryPhone, Type: RuleTypeRegex,
		Pattern:  `(\+1|\+44|\+49|0)\s*\d{2,4}[\s\-/.]?\d{3,}[\s\-/.]?\d{2,}`,
		Severity: utils.SeverityHigh, CaseSensitive: true,
		Message:  "Phone number detected", Suggestion: "Remove or anonymize the phone number",
	},
	{
		ID: "fin-iban", Category: CategoryIBAN, Type: RuleTypeRegex,
		Pattern:  `[A-Z]{2}\d{2}\s?(?:\d{4}\s?){4,5}\d{0,2}`,
		Severity: utils.SeverityCritical,
		Message:  "Bank account (IBAN) detected", Suggestion: "Never share an IBAN publicly",
	},
	{
		ID: "pii-address", Category: CategoryAddress, Type: RuleTypeRegex,
		Pattern:  `(Street|St\.|Avenue|Ave\.|Road|Rd\.|Lane|Ln\.)\s*[0-9]+`,
		Severity: utils.SeverityMedium,
		Message:  "Address detected", Suggestion: "Avoid exact location details",
	},
	{
		ID: "pii-name-intro", Category: CategoryFullName, Type: RuleTypeRegex,
		Pattern:  `(?i:i am|i'm|my name is)\s+[A-Z][a-z]+\s+[A-Z][a-z]+`,
		Severity: utils.SeverityHigh, CaseSensitive: true,
		Message:  "Full name detected", Suggestion: "Use a nickname or first name only",
	},
	{
		ID: "health-terms", Category: CategoryHealth, Type: RuleTypeRegex,
		Pattern:  `(diagnosis|disease|medication|therapy|hospital|surgery|symptom)`,
		Severity: utils.SeverityHigh,
		Message:  "Health-related information detected", Suggestion: "Share health details only through trusted channels",
	},
	{
		ID: "cred-password", Category: CategoryCredentials, Type: RuleTypeRegex,
		Pattern:  `(password|PIN|access code|passcode)\s*[:=]?\s*\S+`,
		Severity: utils.SeverityCritical,
		Message:  "Possible credentials detected", Suggestion: "Never hand out credentials",
	},
}

// Form keyword tiers are a mixed German/English list, matching how the
// production catalog ships them; they are shared across locales.
var formRules = []PatternRule{
	{
		ID: "form-critical", Category: CategorySensitiveFieldCritical, Type: RuleTypeKeyword,
		Keywords: []string{"ssn", "social_security", "sozialversicherung", "passport", "ausweis", "tax_id", "steuernummer"},
		Severity: utils.SeverityCritical,
		Message:  "ist eine kritisch sensible Information",
		Suggestion: "Frage nach, warum diese Information benötigt wird",
	},
	{
		ID: "form-high", Category: CategorySensitiveFieldHigh, Type: RuleTypeKeyword,
		Keywords: []string{"mother_maiden", "mädchenname", "credit_card", "kreditkarte", "cvv", "security_code", "birth_place", "geburtsort"},
		Severity: utils.SeverityHigh,
		Message:  "enthält sensible persönliche Daten",
		Suggestion: "Prüfe die Datenschutzerklärung vor dem Ausfüllen",
	},
	{
		ID: "form-medium", Category: CategorySensitiveFieldMedium, Type: RuleTypeKeyword,
		Keywords: []string{"income", "einkommen", "salary", "gehalt", "bank_account", "kontonummer", "insurance", "versicherung"},
		Severity: utils.SeverityMedium,
		Message:  "sammelt finanzielle Daten",
		Suggestion: "Erwäge, ob diese Angabe wirklich nötig ist",
	},
	{
		ID: "form-hidden-password", Category: CategoryHiddenPassword, Type: RuleTypeHeuristic,
		Keywords: []string{"password", "passwort"},
		Severity: utils.SeverityCritical,
		Message:  "Verstecktes Passwortfeld",
		Suggestion: "Frage nach, warum diese Information benötigt wird",
	},
}

// Dark-pattern rules mix regex detectors with heuristic entries whose
// structural checks live in the classifier. German and English trigger
// phrases sit in one set.
var darkPatternRules = []PatternRule{
	{
		ID: "dp-negation", Category: CategoryNegationKeywords, Type: RuleTypeKeyword,
		Keywords: []string{"nein", "nicht", "kein", "ablehnen", "no thanks", "don't", "refuse"},
		Severity: utils.SeverityLow,
	},
	{
		ID: "dp-suppressed", Category: CategorySuppressedClasses, Type: RuleTypeKeyword,
		Keywords: []string{"small", "muted", "link", "secondary", "text-"},
		Severity: utils.SeverityLow,
	},
	{
		ID: "dp-confirmshaming", Category: CategoryConfirmshaming, Type: RuleTypeHeuristic,
		Severity: utils.SeverityMedium,
		Message:  "Ablehn-Button ist visuell unterdrückt",
		Suggestion: "Lass dich nicht von manipulativer Sprache beeinflussen",
	},
	{
		ID: "dp-shame", Category: CategoryConfirmshamingShame, Type: RuleTypeRegex,
		Pattern:  `nein.*hasse|nicht.*möchte|kein.*interesse|verzichte|no.*i hate|don't.*want to save`,
		Severity: utils.SeverityHigh,
		Message:  "Beschämende Sprache für Ablehn-Option",
		Suggestion: "Lass dich nicht von manipulativer Sprache beeinflussen",
	},
	{
		ID: "dp-hidden-checkbox", Category: CategoryHiddenCheckbox, Type: RuleTypeHeuristic,
		Severity: utils.SeverityCritical,
		Message:  "Versteckte, vorab aktivierte Checkbox",
		Suggestion: "Prüfe alle versteckten Checkboxen in den Einstellungen",
	},
	{
		ID: "dp-preselected-marketing", Category: CategoryPreselectedMarketing, Type: RuleTypeKeyword,
		Keywords: []string{"werbung", "newsletter", "partner", "marketing"},
		Severity: utils.SeverityMedium,
		Message:  "Marketing-Zustimmung ist vorausgewählt",
		Suggestion: "Deaktiviere alle vorab angekreuzten Checkboxen",
	},
	{
		ID: "dp-preselected", Category: CategoryPreselectedOption, Type: RuleTypeHeuristic,
		Severity: utils.SeverityLow,
		Message:  "Vorab aktivierte Checkbox",
		Suggestion: "Deaktiviere alle vorab angekreuzten Checkboxen",
	},
	{
		ID: "dp-urgency", Category: CategoryFakeUrgency, Type: RuleTypeRegex,
		Pattern:  `nur noch \d+|letzte chance|endet in|läuft ab|schnell sein|bald vorbei|only \d+ left|last chance|ends in|hurry`,
		Severity: utils.SeverityMedium,
		Message:  "Künstliche Dringlichkeit durch Timer oder Countdown",
		Suggestion: "Ignoriere Countdown-Timer und Knappheitsanzeigen",
	},
	{
		ID: "dp-scarcity", Category: CategoryFakeScarcity, Type: RuleTypeRegex,
		Pattern:  `\d+ andere schauen|andere kaufen|beliebtes produkt|fast ausverkauft|others are viewing|selling fast|almost sold out`,
		Severity: utils.SeverityMedium,
		Message:  "Künstliche Knappheit durch soziale Beweise",
		Suggestion: "Ignoriere Countdown-Timer und Knappheitsanzeigen",
	},
	{
		ID: "dp-roach-motel", Category: CategoryRoachMotel, Type: RuleTypeHeuristic,
		Severity: utils.SeverityHigh,
		Message:  "Exit-Intent Popup ohne einfache Schließmöglichkeit",
		Suggestion: "Drücke ESC oder klicke außerhalb des Popups",
	},
}

// Cookie-consent rules are all heuristics; the classifier evaluates the
// banner and tracker descriptors and looks up severity and wording here.
var cookieRules = []PatternRule{
	{
		ID: "cookie-no-reject", Category: CategoryMissingRejectAll, Type: RuleTypeHeuristic,
		Severity: utils.SeverityHigh,
		Message:  `Kein "Alle ablehnen" Button gefunden`,
		Suggestion: `Suche nach "Einstellungen" oder "Mehr Optionen" im Banner`,
	},
	{
		ID: "cookie-dark-consent", Category: CategoryDarkPatternConsent, Type: RuleTypeHeuristic,
		Severity: utils.SeverityMedium,
		Message:  `"Alle akzeptieren" ist prominent, "Ablehnen" versteckt`,
		Suggestion: "Nutze die Einstellungen-Option im Cookie-Banner",
	},
	{
		ID: "cookie-undeclared", Category: CategoryUndeclaredTrackers, Type: RuleTypeHeuristic,
		Severity: utils.SeverityCritical,
		Message:  "nicht deklarierte Tracker gefunden",
		Suggestion: "Nutze einen Cookie-Blocker für nicht deklarierte Tracker",
	},
	{
		ID: "cookie-lifetime", Category: CategoryCookieLifetime, Type: RuleTypeHeuristic,
		Severity: utils.SeverityMedium,
		Message:  "Cookies mit übermäßig langer Lebensdauer (>1 Jahr)",
		Suggestion: "Lösche Cookies regelmäßig oder nutze den privaten Modus",
	},
}

// DefaultCatalog returns the built-in rule catalog. The built-in rules are
// known-good, so construction never fails; the error path exists for
// user-supplied catalogs loaded from YAML.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(
		CatalogMetadata{
			Version:     "1.0.0",
			CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Description: "Built-in achtung guard detection rules",
			Author:      "achtung.live",
		},
		map[RuleDomain]map[Locale][]PatternRule{
			DomainText: {
				LocaleGerman:  textRulesDE,
				LocaleEnglish: textRulesEN,
			},
			DomainForm:        {LocaleGerman: formRules},
			DomainDarkPattern: {LocaleGerman: darkPatternRules},
			DomainCookie:      {LocaleGerman: cookieRules},
		},
	)
	if err != nil {
		panic("built-in catalog is invalid: " + err.Error())
	}
	return catalog
}
