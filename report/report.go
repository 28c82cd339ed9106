// Package report assembles the per-rule match results into the final
// validation report. Assembly is pure bookkeeping: it orders, counts, and
// decides the overall verdict, and never re-evaluates anything.
package report

import (
	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/rules"
)

// Assemble merges results from the text validator and the screenshot
// analyzer into one report whose Results follow the rule set's declaration
// order. Every rule in the set yields exactly one entry; a rule no evaluator
// reported on (which indicates an upstream bug) appears as an unsatisfied
// placeholder rather than being dropped.
//
// The overall verdict is carried by the checklist rules alone: the document
// passes when every checklist rule is satisfied. Text and screenshot rules
// inform reviewers but do not gate the verdict.
func Assemble(documentID string, set rules.Set, results []evidence.MatchResult) evidence.ValidationReport {
	byRule := make(map[string]evidence.MatchResult, len(results))
	for _, r := range results {
		byRule[r.RuleID] = r
	}

	rep := evidence.ValidationReport{
		DocumentID:  documentID,
		OverallPass: true,
		TotalCount:  len(set),
		Results:     make([]evidence.MatchResult, 0, len(set)),
	}
	for _, rule := range set {
		res, ok := byRule[rule.ID]
		if !ok {
			res = evidence.MatchResult{
				RuleID: rule.ID,
				Kind:   rule.Kind,
				Hint:   rule.Hint,
				Note:   "rule was not evaluated",
			}
		}
		rep.Results = append(rep.Results, res)
		switch {
		case res.Satisfied:
			rep.SatisfiedCount++
		case res.Skipped:
			rep.SkippedCount++
		default:
			rep.MissingCount++
		}
		if rule.Kind == rules.KindChecklist && !res.Satisfied {
			rep.OverallPass = false
		}
	}
	return rep
}
