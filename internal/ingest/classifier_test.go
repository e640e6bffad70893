package ingest

import (
	"testing"

	"github.com/noamseg/pollpipe/internal/survey"
)

func ratingQuestion(id string) survey.Question {
	return survey.Question{
		ID:   id,
		Text: "How do you feel about your job?",
		Type: survey.TypeMultipleChoice,
		Results: []survey.Answer{
			{UserID: "u1", Text: "4 - Pretty good"},
			{UserID: "u2", Text: "2 - Not great"},
		},
	}
}

func TestClassifyRoles(t *testing.T) {
	questions := []survey.Question{
		ratingQuestion("q1"),
		{ID: "q2", Text: "Why do you feel that way?", Type: survey.TypeOpenEnded},
		{ID: "q3", Text: "What is your current title?", Type: survey.TypeOpenEnded},
		{ID: "q4", Text: "What size is your company?", Type: survey.TypeMultipleChoice,
			Results: []survey.Answer{{UserID: "u1", Text: "2-10"}}},
		{ID: "q5", Text: "How long have you been in your role?", Type: survey.TypeMultipleChoice,
			Results: []survey.Answer{{UserID: "u1", Text: "1-2 years"}}},
	}
	roles := ClassifyRoles(questions)
	want := RoleMap{
		RoleRating:      "q1",
		RoleOpenText:    "q2",
		RoleTitle:       "q3",
		RoleCompanySize: "q4",
		RoleTenure:      "q5",
	}
	for role, qid := range want {
		if roles[role] != qid {
			t.Fatalf("role %s: got %q, want %q", role, roles[role], qid)
		}
	}
}

func TestClassifyRolesFirstMatchWins(t *testing.T) {
	questions := []survey.Question{
		{ID: "q1", Text: "Anything else to share?", Type: survey.TypeOpenEnded},
		{ID: "q2", Text: "More thoughts?", Type: survey.TypeOpenEnded},
	}
	roles := ClassifyRoles(questions)
	if roles[RoleOpenText] != "q1" {
		t.Fatalf("expected first open-ended question to keep the role, got %q", roles[RoleOpenText])
	}
}

func TestClassifyRolesTitleNotOpenText(t *testing.T) {
	questions := []survey.Question{
		{ID: "q1", Text: "What is your title?", Type: survey.TypeOpenEnded},
	}
	roles := ClassifyRoles(questions)
	if _, ok := roles[RoleOpenText]; ok {
		t.Fatalf("title question must not take the open_text role")
	}
	if roles[RoleTitle] != "q1" {
		t.Fatalf("expected q1 as title question")
	}
}

func TestClassifyRolesAbsent(t *testing.T) {
	roles := ClassifyRoles(nil)
	if len(roles) != 0 {
		t.Fatalf("expected empty role map, got %v", roles)
	}
}

func TestClassifyRolesIgnoresDeletedAnswers(t *testing.T) {
	q := survey.Question{
		ID:   "q1",
		Type: survey.TypeMultipleChoice,
		Results: []survey.Answer{
			{UserID: "u1", Text: "4 - Pretty good", Deleted: true},
			{UserID: "u2", Text: "not a rating"},
		},
	}
	roles := ClassifyRoles([]survey.Question{q})
	if _, ok := roles[RoleRating]; ok {
		t.Fatalf("deleted answers must not influence rating detection")
	}
}
