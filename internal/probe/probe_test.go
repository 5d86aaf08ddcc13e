package probe

import (
	"errors"
	"strings"
	"testing"
)

func TestSets(t *testing.T) {
	sets, err := Sets()
	if err != nil {
		t.Fatalf("Sets: %v", err)
	}

	want := []string{"harmful-content", "jailbreak", "privacy-leak", "scope-adherence"}
	if len(sets) != len(want) {
		t.Fatalf("got %d sets, want %d", len(sets), len(want))
	}
	for i, name := range want {
		if sets[i].Name != name {
			t.Errorf("sets[%d] = %s, want %s", i, sets[i].Name, name)
		}
		if sets[i].Description == "" {
			t.Errorf("%s has no description", name)
		}
		if len(sets[i].Probes) == 0 {
			t.Errorf("%s has no probes", name)
		}
	}
}

func TestLoadSet(t *testing.T) {
	set, err := LoadSet("jailbreak")
	if err != nil {
		t.Fatalf("LoadSet: %v", err)
	}
	if set.Name != "jailbreak" {
		t.Errorf("name = %s", set.Name)
	}
	if len(set.Probes) == 0 {
		t.Fatal("no probes")
	}

	first := set.Probes[0]
	if first.ID != "jb-001" {
		t.Errorf("first probe id = %s", first.ID)
	}
	if first.Expectation != ExpectBlock {
		t.Errorf("first probe expectation = %s", first.Expectation)
	}
	for _, p := range set.Probes {
		if p.Category == "" {
			t.Errorf("%s has no category", p.ID)
		}
	}
}

func TestLoadSetUnknown(t *testing.T) {
	if _, err := LoadSet("chaos-monkey"); !errors.Is(err, ErrUnknownSet) {
		t.Fatalf("err = %v, want ErrUnknownSet", err)
	}
}

func TestEveryEmbeddedSetIsValid(t *testing.T) {
	sets, err := Sets()
	if err != nil {
		t.Fatal(err)
	}
	for _, set := range sets {
		if err := validateSet(set); err != nil {
			t.Errorf("%s: %v", set.Name, err)
		}
	}
}

func TestValidateSet(t *testing.T) {
	valid := Probe{ID: "p-1", Category: "Information Security", Prompt: "hello", Expectation: ExpectAnswer}

	tests := []struct {
		name    string
		set     Set
		wantErr string
	}{
		{
			name:    "missing name",
			set:     Set{Probes: []Probe{valid}},
			wantErr: "missing name",
		},
		{
			name:    "no probes",
			set:     Set{Name: "empty"},
			wantErr: "no probes",
		},
		{
			name:    "duplicate id",
			set:     Set{Name: "dup", Probes: []Probe{valid, valid}},
			wantErr: "duplicate probe id",
		},
		{
			name:    "blank prompt",
			set:     Set{Name: "blank", Probes: []Probe{{ID: "p-2", Prompt: "   ", Expectation: ExpectBlock}}},
			wantErr: "no prompt",
		},
		{
			name:    "bad expectation",
			set:     Set{Name: "bad", Probes: []Probe{{ID: "p-3", Prompt: "x", Expectation: "maybe"}}},
			wantErr: "unknown expectation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSet(tt.set)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if err := validateSet(Set{Name: "ok", Probes: []Probe{valid}}); err != nil {
		t.Errorf("valid set rejected: %v", err)
	}
}

func TestExpectationValid(t *testing.T) {
	for _, e := range []Expectation{ExpectBlock, ExpectRefuse, ExpectAnswer} {
		if !e.Valid() {
			t.Errorf("%s should be valid", e)
		}
	}
	if Expectation("maybe").Valid() {
		t.Error("maybe should not be valid")
	}
}
