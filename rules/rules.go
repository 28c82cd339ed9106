// Package rules defines the declarative rule records evaluated by the
// validation pipeline. Rules are pure configuration data: they are loaded
// once, validated up front, and never mutated by a run. A rule carries its
// kind tag, the phrases it expects to find, an optional confirmation marker,
// and an optional similarity threshold for screenshot matching.
package rules

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Kind selects the evaluator a rule is dispatched to.
type Kind string

const (
	// KindChecklist requires every phrase and the confirmation marker to
	// appear in the extracted document text.
	KindChecklist Kind = "checklist"
	// KindText requires phrase presence only (brand and guardrail checks).
	KindText Kind = "text"
	// KindScreenshot requires OCR text from an embedded image to match an
	// expectation phrase above a similarity threshold.
	KindScreenshot Kind = "screenshot"
)

func (k Kind) valid() bool {
	switch k {
	case KindChecklist, KindText, KindScreenshot:
		return true
	}
	return false
}

// Rule is a single declarative expectation against a document.
type Rule struct {
	ID    string `yaml:"id" json:"id"`
	Kind  Kind   `yaml:"kind" json:"kind"`
	Label string `yaml:"label" json:"label"`
	// Phrases must all be present (or, for screenshot rules, all score at or
	// above the threshold against a single image's OCR text).
	Phrases []string `yaml:"phrases,omitempty" json:"phrases,omitempty"`
	// AnyPhrases is satisfied by any one of its entries. Not valid on
	// checklist rules, which enumerate required phrases only.
	AnyPhrases []string `yaml:"phrases_any,omitempty" json:"phrases_any,omitempty"`
	// Marker is the literal confirmation token a checklist rule demands,
	// e.g. "(YES)". Ignored for other kinds.
	Marker   string `yaml:"marker,omitempty" json:"marker,omitempty"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Hint     string `yaml:"hint,omitempty" json:"hint,omitempty"`
	// Threshold overrides the run's default screenshot match threshold
	// (0-100 scale). Zero means "use the default".
	Threshold int `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

// Set is an ordered collection of rules. Declaration order is significant:
// reports list results in this order.
type Set []Rule

// ConfigError reports a malformed rule. It is raised when a rule set is
// loaded, before any document is processed; it must never surface
// per-document.
type ConfigError struct {
	RuleID string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.RuleID == "" {
		return "rule config: " + e.Reason
	}
	return fmt.Sprintf("rule config: rule %q: %s", e.RuleID, e.Reason)
}

// Validate checks structural soundness of the whole set.
func (s Set) Validate() error {
	if len(s) == 0 {
		return &ConfigError{Reason: "rule set is empty"}
	}
	seen := make(map[string]struct{}, len(s))
	for i, r := range s {
		if r.ID == "" {
			return &ConfigError{Reason: fmt.Sprintf("rule at index %d has no id", i)}
		}
		if _, dup := seen[r.ID]; dup {
			return &ConfigError{RuleID: r.ID, Reason: "duplicate id"}
		}
		seen[r.ID] = struct{}{}
		if !r.Kind.valid() {
			return &ConfigError{RuleID: r.ID, Reason: fmt.Sprintf("unknown kind %q", r.Kind)}
		}
		if len(r.Phrases) == 0 && len(r.AnyPhrases) == 0 {
			return &ConfigError{RuleID: r.ID, Reason: "no required phrases"}
		}
		for _, p := range append(append([]string(nil), r.Phrases...), r.AnyPhrases...) {
			if p == "" {
				return &ConfigError{RuleID: r.ID, Reason: "empty phrase"}
			}
		}
		if r.Kind == KindChecklist && r.Marker == "" {
			return &ConfigError{RuleID: r.ID, Reason: "checklist rule requires a confirmation marker"}
		}
		if r.Kind == KindChecklist && len(r.AnyPhrases) > 0 {
			return &ConfigError{RuleID: r.ID, Reason: "phrases_any is not supported on checklist rules"}
		}
		if r.Threshold < 0 || r.Threshold > 100 {
			return &ConfigError{RuleID: r.ID, Reason: fmt.Sprintf("threshold %d outside 0-100", r.Threshold)}
		}
		if r.Threshold != 0 && r.Kind != KindScreenshot {
			return &ConfigError{RuleID: r.ID, Reason: "threshold is only valid on screenshot rules"}
		}
	}
	return nil
}

// OfKind returns the rules of the given kind, preserving declaration order.
func (s Set) OfKind(kind Kind) Set {
	var out Set
	for _, r := range s {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the rule with the given id.
func (s Set) Find(id string) (Rule, bool) {
	for _, r := range s {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

type ruleFile struct {
	Rules Set `yaml:"rules"`
}

// Parse decodes a YAML rule document and validates it.
func Parse(data []byte) (Set, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("parse yaml: %v", err)}
	}
	if err := f.Rules.Validate(); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

// Load reads a rule set from a YAML file and validates it.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Parse(data)
}
