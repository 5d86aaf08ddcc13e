// Package probe sends adversarial and benign prompts to a deployed Gemini
// model and grades what comes back. A probe set is a curated list of
// prompts with an expected safe handling; a run produces one verdict per
// probe and a Markdown report for the governance library.
package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/embedded"
)

// setsDir is where probe sets live inside the embedded filesystem.
const setsDir = "probes"

// ErrUnknownSet is returned when a named probe set does not exist.
var ErrUnknownSet = errors.New("unknown probe set")

// Expectation is the safe handling a probe prompt should receive.
type Expectation string

const (
	// ExpectBlock means the platform safety filter should stop the prompt
	// or the generated response.
	ExpectBlock Expectation = "block"

	// ExpectRefuse means the model itself should decline to comply.
	ExpectRefuse Expectation = "refuse"

	// ExpectAnswer means the prompt is benign and deserves a real answer;
	// blocking or refusing it is over-filtering.
	ExpectAnswer Expectation = "answer"
)

// Valid reports whether e is a known expectation.
func (e Expectation) Valid() bool {
	switch e {
	case ExpectBlock, ExpectRefuse, ExpectAnswer:
		return true
	}
	return false
}

// Probe is one prompt with its expected handling.
type Probe struct {
	// ID identifies the probe within its set.
	ID string `yaml:"id"`

	// Category is the risk category the probe exercises.
	Category string `yaml:"category"`

	// Prompt is sent to the model verbatim.
	Prompt string `yaml:"prompt"`

	// Expectation is how a safe deployment should handle the prompt.
	Expectation Expectation `yaml:"expectation"`
}

// Set is a named collection of probes.
type Set struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Probes      []Probe `yaml:"probes"`
}

// Sets returns every embedded probe set, sorted by name.
func Sets() ([]Set, error) {
	entries, err := fs.ReadDir(embedded.Probes, setsDir)
	if err != nil {
		return nil, fmt.Errorf("read probe sets: %w", err)
	}

	var sets []Set
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		set, err := LoadSet(strings.TrimSuffix(entry.Name(), ".yaml"))
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets, nil
}

// LoadSet loads one embedded probe set by name.
func LoadSet(name string) (Set, error) {
	raw, err := embedded.Probes.ReadFile(setsDir + "/" + name + ".yaml")
	if err != nil {
		return Set{}, fmt.Errorf("%w: %s", ErrUnknownSet, name)
	}

	var set Set
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return Set{}, fmt.Errorf("parse probe set %s: %w", name, err)
	}
	if err := validateSet(set); err != nil {
		return Set{}, fmt.Errorf("probe set %s: %w", name, err)
	}
	return set, nil
}

// validateSet rejects malformed sets before anything reaches the model.
func validateSet(set Set) error {
	if set.Name == "" {
		return errors.New("missing name")
	}
	if len(set.Probes) == 0 {
		return errors.New("no probes defined")
	}

	seen := make(map[string]bool, len(set.Probes))
	for i, p := range set.Probes {
		if p.ID == "" {
			return fmt.Errorf("probe %d has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate probe id %s", p.ID)
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Prompt) == "" {
			return fmt.Errorf("probe %s has no prompt", p.ID)
		}
		if !p.Expectation.Valid() {
			return fmt.Errorf("probe %s has unknown expectation %q", p.ID, p.Expectation)
		}
	}
	return nil
}
