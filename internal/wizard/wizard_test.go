package wizard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethicslab/aigov/internal/card"
)

func TestRunBlankLinesAcceptDefaults(t *testing.T) {
	input := strings.NewReader("\n\n\n\n\n\n\n")
	var out bytes.Buffer

	answers, err := Run(input, &out, card.ModelPrompts(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	prompts := card.ModelPrompts()
	if len(answers) != len(prompts) {
		t.Fatalf("answer count = %d, want %d", len(answers), len(prompts))
	}
	for i, p := range prompts {
		if answers[i] != p.Default {
			t.Errorf("answer %d = %q, want default %q", i, answers[i], p.Default)
		}
	}
	if answers[0] != "precision-medicine-mcp" {
		t.Errorf("blank name = %q, want precision-medicine-mcp", answers[0])
	}
}

func TestRunVerbatimAnswers(t *testing.T) {
	input := strings.NewReader("triage-assistant\n2.0\nLimited\nConfabulation\nLayered\nSynthetic cohort\nFederated learning\n")
	var out bytes.Buffer

	answers, err := Run(input, &out, card.ModelPrompts(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{
		"triage-assistant",
		"2.0",
		"Limited",
		"Confabulation",
		"Layered",
		"Synthetic cohort",
		"Federated learning",
	}
	for i, w := range want {
		if answers[i] != w {
			t.Errorf("answer %d = %q, want %q", i, answers[i], w)
		}
	}
}

func TestRunWhitespaceOnlyIsBlank(t *testing.T) {
	input := strings.NewReader("   \t \n\n\n\n\n\n\n")
	var out bytes.Buffer

	answers, err := Run(input, &out, card.ModelPrompts(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if answers[0] != "precision-medicine-mcp" {
		t.Errorf("whitespace-only answer = %q, want default", answers[0])
	}
}

func TestRunShowsBracketedDefaults(t *testing.T) {
	input := strings.NewReader("\n\n\n\n\n\n\n")
	var out bytes.Buffer

	if _, err := Run(input, &out, card.ModelPrompts(), Options{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	checks := []string{
		"Model/Agent Name [precision-medicine-mcp]: ",
		"Version [1.0.0]: ",
		"EU AI Act Risk Tier [High]: ",
		"NIST AI 600-1 Safety Category [Data Privacy]: ",
		"Jailbreak Protection Level [High]: ",
		"Data Source [De-identified clinical records]: ",
		"Privacy Protection [Differential privacy]: ",
	}
	pos := -1
	for _, c := range checks {
		idx := strings.Index(text, c)
		if idx < 0 {
			t.Errorf("prompt output missing %q", c)
			continue
		}
		if idx < pos {
			t.Errorf("prompt %q out of order", c)
		}
		pos = idx
	}
}

func TestRunEOFFallsBackToDefaults(t *testing.T) {
	// Two answers, then the pipe closes.
	input := strings.NewReader("my-model\n1.2.3\n")
	var out bytes.Buffer

	answers, err := Run(input, &out, card.ModelPrompts(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if answers[0] != "my-model" || answers[1] != "1.2.3" {
		t.Errorf("explicit answers lost: %v", answers[:2])
	}
	prompts := card.ModelPrompts()
	for i := 2; i < len(prompts); i++ {
		if answers[i] != prompts[i].Default {
			t.Errorf("post-EOF answer %d = %q, want default %q", i, answers[i], prompts[i].Default)
		}
	}
}

func TestRunFinalLineWithoutNewline(t *testing.T) {
	input := strings.NewReader("\n\n\n\n\n\ncustom-privacy")
	var out bytes.Buffer

	answers, err := Run(input, &out, card.ModelPrompts(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := answers[len(answers)-1]; got != "custom-privacy" {
		t.Errorf("unterminated final answer = %q, want custom-privacy", got)
	}
}

func TestRunOverridesSkipPrompts(t *testing.T) {
	input := strings.NewReader("\n\n\n\n\n\n")
	var out bytes.Buffer

	answers, err := Run(input, &out, card.ModelPrompts(), Options{
		Overrides: map[string]string{"name": "override-model"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if answers[0] != "override-model" {
		t.Errorf("override answer = %q", answers[0])
	}
	if strings.Contains(out.String(), "Model/Agent Name") {
		t.Error("overridden prompt was still asked")
	}
}

func TestRunAcceptDefaultsReadsNothing(t *testing.T) {
	input := strings.NewReader("should never be read\n")
	var out bytes.Buffer

	answers, err := Run(input, &out, card.ModelPrompts(), Options{AcceptDefaults: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if answers[0] != "precision-medicine-mcp" {
		t.Errorf("answer = %q, want default", answers[0])
	}
	if out.Len() != 0 {
		t.Errorf("prompts were printed in defaults mode: %q", out.String())
	}
}
