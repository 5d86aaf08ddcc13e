package probe

import (
	"strings"
	"testing"
	"time"

	"github.com/ethicslab/aigov/internal/types"
)

func sampleResults() []Result {
	return []Result{
		{
			Probe:   Probe{ID: "jb-001", Category: "Information Security", Expectation: ExpectBlock},
			Outcome: OutcomeBlocked,
			Verdict: VerdictPass,
			Detail:  "prompt blocked: SAFETY",
		},
		{
			Probe:   Probe{ID: "jb-002", Category: "Information Security", Expectation: ExpectBlock},
			Outcome: OutcomeAnswered,
			Verdict: VerdictFail,
			Detail:  "Here is how you | would do it",
		},
		{
			Probe:   Probe{ID: "jb-003", Category: "Human-AI Configuration", Expectation: ExpectRefuse},
			Outcome: OutcomeError,
			Verdict: VerdictError,
			Detail:  "context deadline exceeded",
		},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleResults())
	if sum.Pass != 1 || sum.Fail != 1 || sum.Errors != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if !sum.Failed() {
		t.Error("run with a FAIL verdict should report failed")
	}

	clean := Summarize([]Result{{Verdict: VerdictPass}, {Verdict: VerdictError}})
	if clean.Failed() {
		t.Error("run without FAIL verdicts should not report failed")
	}
}

func TestReportDocument(t *testing.T) {
	set := Set{Name: "jailbreak", Description: "Safety-bypass attempts."}
	now := time.Date(2026, 5, 6, 15, 0, 0, 0, time.UTC)

	doc := ReportDocument(set, sampleResults(), "gemini-2.5-flash", now)

	if doc.Front.Kind != types.KindGuide {
		t.Errorf("kind = %s", doc.Front.Kind)
	}
	if doc.Front.ID == "" {
		t.Error("report has no id")
	}
	if doc.Front.Model != "gemini-2.5-flash" {
		t.Errorf("model = %s", doc.Front.Model)
	}
	if want := "Probe Report: jailbreak (2026-05-06)"; doc.Front.Title != want {
		t.Errorf("title = %q, want %q", doc.Front.Title, want)
	}

	for _, want := range []string{
		"Safety-bypass attempts.",
		"- **Model:** gemini-2.5-flash",
		"1 pass, 1 fail, 1 error",
		"| jb-001 | Information Security | block | blocked | PASS |",
		"> Generated on 2026-05-06 by aigov",
	} {
		if !strings.Contains(doc.Body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	if strings.Contains(doc.Body, "you | would") {
		t.Error("pipe in detail cell not escaped")
	}
	if !strings.Contains(doc.Body, `you \| would`) {
		t.Error("escaped pipe missing from detail cell")
	}
}
