package prompts

import (
	"strings"
	"testing"
)

func TestOpeningQuestionMentionsCandidate(t *testing.T) {
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	q := m.OpeningQuestion("Ann")
	if !strings.Contains(q, "Ann") {
		t.Fatalf("opening question should address the candidate: %q", q)
	}
	if strings.Contains(q, "{{") {
		t.Fatalf("unrendered placeholder in %q", q)
	}
}

func TestReportPromptEmbedsTranscriptAndRubric(t *testing.T) {
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	req, err := m.Build(Report, Data{
		CandidateName: "Ann",
		Questions:     "Q1\nQ2",
		Answers:       "A\nB",
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if req.System == "" {
		t.Fatalf("expected a system preamble")
	}
	for _, term := range []string{"Ann", "Q1\nQ2", "A\nB", "5-point scale", "Soft skills", "Yes / No"} {
		if !strings.Contains(req.User, term) {
			t.Fatalf("report prompt missing %q:\n%s", term, req.User)
		}
	}
}

func TestEmptyTranscriptRendersNoData(t *testing.T) {
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	req, err := m.Build(NextQuestion, Data{CandidateName: "Ann"})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !strings.Contains(req.User, NoData) {
		t.Fatalf("expected %q placeholder in %s", NoData, req.User)
	}
	if _, err := m.Build("unknown", Data{}); err == nil {
		t.Fatalf("expected error for unknown template")
	}
	if len(m.Names()) != 3 {
		t.Fatalf("expected three templates, got %v", m.Names())
	}
}
