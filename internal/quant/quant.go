package quant

import (
	"sort"

	"github.com/noamseg/pollpipe/internal/config"
	"github.com/noamseg/pollpipe/internal/ingest"
)

// RatingBucket is one bar of the headline rating distribution.
type RatingBucket struct {
	Rating int     `json:"rating"`
	Count  int     `json:"count"`
	Pct    float64 `json:"pct"`
	Flex   float64 `json:"flex"` // stacked-bar width, same as Pct
}

// CrossTabRow is the mean rating for one demographic bucket.
type CrossTabRow struct {
	Label    string  `json:"label"`
	Mean     float64 `json:"mean"`
	N        int     `json:"n"`
	BarWidth float64 `json:"bar_width"`
}

// ProfileRow is a headcount for one demographic bucket.
type ProfileRow struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Pct      float64 `json:"pct"`
	BarWidth float64 `json:"bar_width"`
}

// Results holds every quantitative breakdown for one survey.
type Results struct {
	TotalResponses     int            `json:"total_responses"`
	DateRange          string         `json:"date_range"`
	Distribution       []RatingBucket `json:"distribution"`
	ByCompanySize      []CrossTabRow  `json:"by_company_size"`
	ByTenure           []CrossTabRow  `json:"by_tenure"`
	ByRoleLevel        []CrossTabRow  `json:"by_role_level"`
	ProfileCompanySize []ProfileRow   `json:"profile_company_size"`
	ProfileTenure      []ProfileRow   `json:"profile_tenure"`
}

// Analyze runs all quantitative analysis over the respondent records.
func Analyze(respondents []ingest.Respondent, cfg *config.SurveyConfig) *Results {
	total := len(respondents)

	var rated []ingest.Respondent
	for _, r := range respondents {
		if r.Rating != nil {
			rated = append(rated, r)
		}
	}

	scaleKeys := cfg.SortedScaleKeys()
	scaleMax := 5
	if len(scaleKeys) > 0 {
		scaleMax = scaleKeys[len(scaleKeys)-1]
	}

	distribution := make([]RatingBucket, 0, len(scaleKeys))
	for _, key := range scaleKeys {
		count := 0
		for _, r := range rated {
			if *r.Rating == key {
				count++
			}
		}
		pct := 0.0
		if len(rated) > 0 {
			pct = round1(float64(count) / float64(len(rated)) * 100)
		}
		distribution = append(distribution, RatingBucket{Rating: key, Count: count, Pct: pct, Flex: pct})
	}

	return &Results{
		TotalResponses:     total,
		DateRange:          respondentDateRange(respondents),
		Distribution:       distribution,
		ByCompanySize:      crossTab(rated, scaleMax, func(r ingest.Respondent) string { return r.CompanySize }),
		ByTenure:           crossTab(rated, scaleMax, func(r ingest.Respondent) string { return r.Tenure }),
		ByRoleLevel:        crossTab(rated, scaleMax, func(r ingest.Respondent) string { return string(r.RoleLevel) }),
		ProfileCompanySize: profile(respondents, total, func(r ingest.Respondent) string { return r.CompanySize }),
		ProfileTenure:      profile(respondents, total, func(r ingest.Respondent) string { return r.Tenure }),
	}
}

// crossTab groups rated respondents by a demographic label and reports the
// mean rating per group, highest mean first. Groups with equal means keep
// label order for stable output.
func crossTab(rated []ingest.Respondent, scaleMax int, key func(ingest.Respondent) string) []CrossTabRow {
	sums := map[string]int{}
	ns := map[string]int{}
	for _, r := range rated {
		label := key(r)
		if label == "" {
			continue
		}
		sums[label] += *r.Rating
		ns[label]++
	}
	labels := make([]string, 0, len(ns))
	for label := range ns {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([]CrossTabRow, 0, len(labels))
	for _, label := range labels {
		mean := round2(float64(sums[label]) / float64(ns[label]))
		rows = append(rows, CrossTabRow{
			Label:    label,
			Mean:     mean,
			N:        ns[label],
			BarWidth: round1(mean / float64(scaleMax) * 100),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Mean > rows[j].Mean })
	return rows
}

// profile counts respondents per demographic label, largest group first.
// Pct is relative to all respondents; bar width is relative to the largest
// group.
func profile(respondents []ingest.Respondent, total int, key func(ingest.Respondent) string) []ProfileRow {
	counts := map[string]int{}
	for _, r := range respondents {
		if label := key(r); label != "" {
			counts[label]++
		}
	}
	labels := make([]string, 0, len(counts))
	maxCount := 0
	for label, c := range counts {
		labels = append(labels, label)
		if c > maxCount {
			maxCount = c
		}
	}
	sort.Strings(labels)
	sort.SliceStable(labels, func(i, j int) bool { return counts[labels[i]] > counts[labels[j]] })

	rows := make([]ProfileRow, 0, len(labels))
	for _, label := range labels {
		count := counts[label]
		pct := 0.0
		if total > 0 {
			pct = round1(float64(count) / float64(total) * 100)
		}
		bar := 0.0
		if maxCount > 0 {
			bar = round1(float64(count) / float64(maxCount) * 100)
		}
		rows = append(rows, ProfileRow{Label: label, Count: count, Pct: pct, BarWidth: bar})
	}
	return rows
}
