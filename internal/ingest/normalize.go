package ingest

import "strings"

// Canonical display labels for the categorical questions. Raw strings not in
// the table pass through unchanged rather than erroring.
var companySizeLabels = map[string]string{
	"just me":   "Just me",
	"2-10":      "2–10",
	"11-50":     "11–50",
	"51-250":    "51–250",
	"251-1000":  "251–1,000",
	"1001-5000": "1,001–5,000",
	"5001+":     "5,001+",
}

var tenureLabels = map[string]string{
	"less than a year": "Less than 1 year",
	"1-2 years":        "1–2 years",
	"3-5 years":        "3–5 years",
	"6-10 years":       "6–10 years",
	"11+ years":        "11+ years",
}

// NormalizeCompanySize maps a raw company-size answer to its canonical label.
func NormalizeCompanySize(raw string) string {
	if label, ok := companySizeLabels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return label
	}
	return raw
}

// NormalizeTenure maps a raw tenure answer to its canonical label.
func NormalizeTenure(raw string) string {
	if label, ok := tenureLabels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return label
	}
	return raw
}
