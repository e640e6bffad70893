package ingest

import (
	"strings"

	"github.com/noamseg/pollpipe/internal/survey"
)

// Role is a semantic slot a survey question can be inferred to serve.
type Role string

const (
	RoleRating      Role = "rating"
	RoleOpenText    Role = "open_text"
	RoleTitle       Role = "title"
	RoleCompanySize Role = "company_size"
	RoleTenure      Role = "tenure"
)

// RoleMap maps each inferred role to the id of the question serving it.
// A role may be absent; downstream consumers must tolerate that.
type RoleMap map[Role]string

// roleRule pairs a role with its question predicate. The slice order is the
// precedence order when one question satisfies several predicates.
type roleRule struct {
	role  Role
	match func(q survey.Question) bool
}

var roleRules = []roleRule{
	{RoleRating, func(q survey.Question) bool {
		return q.Type == survey.TypeMultipleChoice && IsRatingQuestion(q.LiveAnswers())
	}},
	{RoleOpenText, func(q survey.Question) bool {
		if q.Type != survey.TypeOpenEnded {
			return false
		}
		return !containsAny(strings.ToLower(q.Text), "title", "current role", "your role")
	}},
	{RoleTitle, func(q survey.Question) bool {
		if q.Type != survey.TypeOpenEnded {
			return false
		}
		return containsAny(strings.ToLower(q.Text), "title", "current title", "your role")
	}},
	{RoleCompanySize, func(q survey.Question) bool {
		t := strings.ToLower(q.Text)
		return strings.Contains(t, "size") && strings.Contains(t, "company")
	}},
	{RoleTenure, func(q survey.Question) bool {
		return containsAny(strings.ToLower(q.Text), "how long", "tenure")
	}},
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ClassifyRoles scans questions in order and assigns each role to the first
// question matching its predicate. Once assigned, a role is never
// overwritten, so results stay stable when a survey has several candidate
// questions for the same role.
func ClassifyRoles(questions []survey.Question) RoleMap {
	mapping := RoleMap{}
	for _, q := range questions {
		for _, rule := range roleRules {
			if _, done := mapping[rule.role]; done {
				continue
			}
			if rule.match(q) {
				mapping[rule.role] = q.ID
			}
		}
	}
	return mapping
}
