// Package policy holds the tunable parameters of node selection and
// validation. The compiled-in defaults are the values the engine was
// calibrated with; deployments may override them from a YAML file.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy represents the tunable parameters of retrieval and validation
type Policy struct {
	// SelectionThreshold is the minimum query/title similarity a taxonomy
	// node must exceed to be chosen over the root fallback.
	SelectionThreshold float64 `yaml:"selectionThreshold"`

	// RuleMappingThreshold is the minimum similarity between a normative
	// sentence and some authorized rule field for the sentence to count
	// as grounded.
	RuleMappingThreshold float64 `yaml:"ruleMappingThreshold"`

	// NormativePhrases mark sentences that assert a rule of law and must
	// therefore map back to an authorized authority.
	NormativePhrases []string `yaml:"normativePhrases"`

	// StopWords are dropped from queries before node selection.
	StopWords []string `yaml:"stopWords"`

	// DefaultMaxIterations bounds the generation loop when the request
	// does not specify its own limit.
	DefaultMaxIterations int `yaml:"defaultMaxIterations"`
}

// Default returns the policy the engine was calibrated with
func Default() *Policy {
	return &Policy{
		SelectionThreshold:   0.15,
		RuleMappingThreshold: 0.65,
		NormativePhrases: []string{
			"rule is",
			"court held",
			"must",
			"shall",
			"requires",
			"prohibits",
			"permits",
			"allows",
			"standard requires",
			"test is",
		},
		StopWords: []string{
			"the", "and", "are", "for", "with", "what", "when", "where",
			"which", "who", "whom", "how", "why", "does", "did", "can",
			"could", "would", "should", "will", "about", "under", "into",
			"from", "that", "this", "these", "those", "there", "here",
			"been", "being", "have", "has", "had", "was", "were", "not",
			"but", "they", "them", "their", "then", "than",
		},
		DefaultMaxIterations: 3,
	}
}

// Load reads a policy file and overlays it on the defaults, so a partial
// file only overrides the fields it names
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return p, nil
}

// Validate checks that thresholds are usable fractions and bounds are positive
func (p *Policy) Validate() error {
	if p.SelectionThreshold < 0 || p.SelectionThreshold > 1 {
		return fmt.Errorf("selectionThreshold %v outside [0,1]", p.SelectionThreshold)
	}
	if p.RuleMappingThreshold < 0 || p.RuleMappingThreshold > 1 {
		return fmt.Errorf("ruleMappingThreshold %v outside [0,1]", p.RuleMappingThreshold)
	}
	if p.DefaultMaxIterations < 1 {
		return fmt.Errorf("defaultMaxIterations must be at least 1, got %d", p.DefaultMaxIterations)
	}
	return nil
}

// StopWordSet returns the stop words as a lookup set
func (p *Policy) StopWordSet() map[string]bool {
	set := make(map[string]bool, len(p.StopWords))
	for _, w := range p.StopWords {
		set[w] = true
	}
	return set
}
