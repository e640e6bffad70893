package ingest

import (
	"regexp"
	"strings"
)

// RoleLevel is the seniority classification derived from free-text job
// titles. IC is the default when the title is absent or unrecognized.
type RoleLevel string

const (
	RoleLevelFounderCSuite  RoleLevel = "Founder / C-suite"
	RoleLevelVPDirectorHead RoleLevel = "VP / Director / Head"
	RoleLevelGroupPMManager RoleLevel = "Group PM / Manager"
	RoleLevelIC             RoleLevel = "IC"
)

// levelRule groups the patterns for one seniority tier. Evaluation order is
// significant: "VP of Product" must hit the VP tier before any weaker
// pattern can claim it.
type levelRule struct {
	level    RoleLevel
	patterns []*regexp.Regexp
}

var levelRules = []levelRule{
	{RoleLevelFounderCSuite, compileAll(
		`\bfounder\b`, `\bco-founder\b`, `\bcofounder\b`,
		`\bceo\b`, `\bcto\b`, `\bcoo\b`, `\bcpo\b`, `\bcso\b`, `\bcmo\b`, `\bcfo\b`, `\bcro\b`,
		`\bchief\b`, `\bsvp\b`, `\bowner\b`,
	)},
	{RoleLevelVPDirectorHead, compileAll(
		`\bvp\b`, `\bvice president\b`,
		`\bdirector\b`,
		`\bhead of\b`, `\bhead,\b`,
	)},
	{RoleLevelGroupPMManager, compileAll(
		`\bgroup pm\b`, `\bgroup product\b`,
		`\bmanager of product\b`,
		`\bsenior manager\b.*\bproduct\b`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// CategorizeRole classifies a free-text job title into a role level.
// "product owner" is neutralized first so its "owner" substring cannot be
// mistaken for the founder-tier pattern.
func CategorizeRole(title string) RoleLevel {
	if title == "" {
		return RoleLevelIC
	}
	t := strings.ToLower(strings.TrimSpace(title))
	t = strings.ReplaceAll(t, "product owner", "product_owner_excluded")

	for _, rule := range levelRules {
		for _, pat := range rule.patterns {
			if pat.MatchString(t) {
				return rule.level
			}
		}
	}
	return RoleLevelIC
}
