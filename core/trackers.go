package core

import "strings"

// TrackerInfo describes one known tracking service.
type TrackerInfo struct {
	Name        string `json:"name"`
	Company     string `json:"company"`
	Category    string `json:"category"`
	Risk        string `json:"risk"`
	Description string `json:"description,omitempty"`
}

// TrackerCategoryInfo describes a class of trackers.
type TrackerCategoryInfo struct {
	Risk         string `json:"risk"`
	Description  string `json:"description"`
	GDPRRelevant bool   `json:"gdprRelevant"`
	Warning      string `json:"warning,omitempty"`
}

// TrackerRegistry is a static lookup table of known trackers, keyed by
// domain. Matching is suffix-tolerant: a detected domain counts as known
// when it contains a registry key.
type TrackerRegistry struct {
	Trackers   map[string]TrackerInfo         `json:"trackers"`
	Categories map[string]TrackerCategoryInfo `json:"categories"`
	Version    string                         `json:"version"`
}

// Lookup resolves a detected tracker domain against the registry.
func (r *TrackerRegistry) Lookup(domain string) (TrackerInfo, bool) {
	if info, ok := r.Trackers[domain]; ok {
		return info, true
	}
	for key, info := range r.Trackers {
		if strings.Contains(domain, key) {
			return info, true
		}
	}
	return TrackerInfo{}, false
}

// DefaultTrackerRegistry returns the built-in tracker database, mirroring
// the hosted tracker service's fallback data set.
func DefaultTrackerRegistry() *TrackerRegistry {
	return &TrackerRegistry{
		Version: "1.0",
		Trackers: map[string]TrackerInfo{
			"google-analytics.com":  {Name: "Google Analytics", Company: "Google", Category: "analytics", Risk: "medium", Description: "Web-Analyse-Dienst für Nutzungsstatistiken"},
			"googletagmanager.com":  {Name: "Google Tag Manager", Company: "Google", Category: "analytics", Risk: "medium", Description: "Tag-Management für andere Tracker"},
			"facebook.com":          {Name: "Facebook Pixel", Company: "Meta", Category: "marketing", Risk: "high", Description: "Tracking für Facebook-Werbung und Retargeting"},
			"facebook.net":          {Name: "Facebook SDK", Company: "Meta", Category: "marketing", Risk: "high", Description: "Facebook JavaScript SDK"},
			"doubleclick.net":       {Name: "DoubleClick", Company: "Google", Category: "advertising", Risk: "high", Description: "Google Werbe-Tracking-Netzwerk"},
			"googlesyndication.com": {Name: "Google AdSense", Company: "Google", Category: "advertising", Risk: "high", Description: "Google Werbenetzwerk"},
			"googleadservices.com":  {Name: "Google Ads", Company: "Google", Category: "advertising", Risk: "high", Description: "Google Werbedienste"},
			"hotjar.com":            {Name: "Hotjar", Company: "Hotjar", Category: "session_recording", Risk: "high", Description: "Session Recording und Heatmaps"},
			"mouseflow.com":         {Name: "Mouseflow", Company: "Mouseflow", Category: "session_recording", Risk: "high", Description: "Session Recording"},
			"fullstory.com":         {Name: "FullStory", Company: "FullStory", Category: "session_recording", Risk: "high", Description: "Session Recording mit kompletter Aufzeichnung"},
			"clarity.ms":            {Name: "Microsoft Clarity", Company: "Microsoft", Category: "session_recording", Risk: "high", Description: "Session Recording von Microsoft"},
			"criteo.com":            {Name: "Criteo", Company: "Criteo", Category: "advertising", Risk: "high", Description: "Retargeting-Werbenetzwerk"},
			"adroll.com":            {Name: "AdRoll", Company: "AdRoll", Category: "advertising", Risk: "high", Description: "Retargeting-Werbeplattform"},
			"linkedin.com":          {Name: "LinkedIn Insight", Company: "Microsoft", Category: "marketing", Risk: "medium", Description: "LinkedIn Marketing und Analytics"},
			"twitter.com":           {Name: "Twitter/X Pixel", Company: "X Corp", Category: "marketing", Risk: "medium", Description: "Twitter/X Werbe-Tracking"},
			"tiktok.com":            {Name: "TikTok Pixel", Company: "ByteDance", Category: "marketing", Risk: "high", Description: "TikTok Werbe-Tracking"},
			"segment.com":           {Name: "Segment", Company: "Twilio", Category: "cdp", Risk: "medium", Description: "Customer Data Platform"},
			"mixpanel.com":          {Name: "Mixpanel", Company: "Mixpanel", Category: "analytics", Risk: "medium", Description: "Product Analytics"},
			"amplitude.com":         {Name: "Amplitude", Company: "Amplitude", Category: "analytics", Risk: "medium", Description: "Product Analytics Plattform"},
			"hubspot.com":           {Name: "HubSpot", Company: "HubSpot", Category: "marketing", Risk: "medium", Description: "Marketing Automation"},
		},
		Categories: map[string]TrackerCategoryInfo{
			"analytics":         {Risk: "medium", Description: "Nutzungsanalyse und Statistiken", GDPRRelevant: true},
			"marketing":         {Risk: "high", Description: "Marketing, Retargeting und Werbung", GDPRRelevant: true},
			"advertising":       {Risk: "high", Description: "Werbenetzwerke und Ad-Tracking", GDPRRelevant: true},
			"session_recording": {Risk: "high", Description: "Session Recording", GDPRRelevant: true, Warning: "Diese Tracker können Passwörter und sensible Daten aufzeichnen!"},
			"cdp":               {Risk: "medium", Description: "Customer Data Platforms", GDPRRelevant: true},
			"essential":         {Risk: "low", Description: "Notwendige Funktionen (Login, Warenkorb)", GDPRRelevant: false},
		},
	}
}
