// Package ingest cross-references per-question survey results by user_id
// into unified Respondent records. It infers which question serves which
// semantic role, joins answers across roles, and normalizes field values.
package ingest

import (
	"sort"
	"strings"
	"time"

	"github.com/noamseg/pollpipe/internal/survey"
)

// Respondent is the unified per-person record. It is constructed once,
// fully populated in one pass, and never mutated afterward. Every field
// except UserID and RoleLevel is optional.
type Respondent struct {
	UserID      string     `json:"user_id"`
	Rating      *int       `json:"rating,omitempty"`
	OpenText    string     `json:"open_text,omitempty"`
	JobTitle    string     `json:"job_title,omitempty"`
	RoleLevel   RoleLevel  `json:"role_level"`
	CompanySize string     `json:"company_size,omitempty"`
	Tenure      string     `json:"tenure,omitempty"`
	VotedAt     *time.Time `json:"voted_at,omitempty"`
}

// answerLookup maps question id -> user id -> that user's answer. When a
// user answered a question more than once, the last answer in input order
// wins.
type answerLookup map[string]map[string]survey.Answer

func buildLookup(questions []survey.Question) answerLookup {
	lookup := answerLookup{}
	for _, q := range questions {
		byUser := map[string]survey.Answer{}
		for _, a := range q.Results {
			if a.Deleted {
				continue
			}
			byUser[a.UserID] = a
		}
		lookup[q.ID] = byUser
	}
	return lookup
}

// cohortUserIDs defines the completion cohort: whoever answered the tenure
// question, or, when the survey has no tenure question, whoever answered the
// rating question. With neither role mapped the cohort is empty.
func cohortUserIDs(roles RoleMap, lookup answerLookup) []string {
	var byUser map[string]survey.Answer
	if qid, ok := roles[RoleTenure]; ok {
		byUser = lookup[qid]
	} else if qid, ok := roles[RoleRating]; ok {
		byUser = lookup[qid]
	}
	ids := make([]string, 0, len(byUser))
	for uid := range byUser {
		ids = append(ids, uid)
	}
	sort.Strings(ids)
	return ids
}

// Ingest builds the Respondent list for a document's completion cohort.
// Missing or malformed per-field data degrades to the zero value; only
// structurally invalid documents fail, and those are rejected upstream at
// the decode boundary.
func Ingest(doc *survey.Document) []Respondent {
	roles := ClassifyRoles(doc.Questions)
	lookup := buildLookup(doc.Questions)

	answerFor := func(role Role, uid string) (survey.Answer, bool) {
		qid, ok := roles[role]
		if !ok {
			return survey.Answer{}, false
		}
		a, ok := lookup[qid][uid]
		return a, ok
	}

	var respondents []Respondent
	for _, uid := range cohortUserIDs(roles, lookup) {
		r := Respondent{UserID: uid, RoleLevel: RoleLevelIC}

		if a, ok := answerFor(RoleRating, uid); ok {
			if n, ok := ExtractRating(a.Text); ok {
				rating := n
				r.Rating = &rating
			}
			if ts, ok := a.Time(); ok {
				r.VotedAt = &ts
			}
		}

		if a, ok := answerFor(RoleOpenText, uid); ok {
			if text := strings.TrimSpace(a.Text); text != "" {
				r.OpenText = text
			}
		}

		if a, ok := answerFor(RoleTitle, uid); ok {
			if title := strings.TrimSpace(a.Text); title != "" {
				r.JobTitle = title
				r.RoleLevel = CategorizeRole(title)
			}
		}

		if a, ok := answerFor(RoleCompanySize, uid); ok {
			r.CompanySize = NormalizeCompanySize(a.Text)
		}

		if a, ok := answerFor(RoleTenure, uid); ok {
			r.Tenure = NormalizeTenure(a.Text)
		}

		respondents = append(respondents, r)
	}
	return respondents
}
