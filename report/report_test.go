package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/rules"
)

func TestAssembleOrdersResultsByRuleDeclaration(t *testing.T) {
	set := rules.Set{
		{ID: "c1", Kind: rules.KindChecklist},
		{ID: "t1", Kind: rules.KindText},
		{ID: "s1", Kind: rules.KindScreenshot},
	}
	// Results arrive grouped by evaluator, not in declaration order.
	results := []evidence.MatchResult{
		{RuleID: "s1", Kind: rules.KindScreenshot, Satisfied: true},
		{RuleID: "t1", Kind: rules.KindText, Satisfied: true},
		{RuleID: "c1", Kind: rules.KindChecklist, Satisfied: true},
	}
	rep := Assemble("doc-1", set, results)

	require.Len(t, rep.Results, 3)
	assert.Equal(t, "c1", rep.Results[0].RuleID)
	assert.Equal(t, "t1", rep.Results[1].RuleID)
	assert.Equal(t, "s1", rep.Results[2].RuleID)
	assert.Equal(t, "doc-1", rep.DocumentID)
}

func TestAssembleCounts(t *testing.T) {
	set := rules.Set{
		{ID: "c1", Kind: rules.KindChecklist},
		{ID: "t1", Kind: rules.KindText},
		{ID: "s1", Kind: rules.KindScreenshot},
		{ID: "s2", Kind: rules.KindScreenshot},
	}
	results := []evidence.MatchResult{
		{RuleID: "c1", Kind: rules.KindChecklist, Satisfied: true},
		{RuleID: "t1", Kind: rules.KindText},
		{RuleID: "s1", Kind: rules.KindScreenshot, Skipped: true},
		{RuleID: "s2", Kind: rules.KindScreenshot, Satisfied: true},
	}
	rep := Assemble("doc-2", set, results)

	assert.Equal(t, 2, rep.SatisfiedCount)
	assert.Equal(t, 1, rep.MissingCount)
	assert.Equal(t, 1, rep.SkippedCount)
	assert.Equal(t, 4, rep.TotalCount)
}

func TestOverallPassGatedByChecklistOnly(t *testing.T) {
	set := rules.Set{
		{ID: "c1", Kind: rules.KindChecklist},
		{ID: "t1", Kind: rules.KindText},
		{ID: "s1", Kind: rules.KindScreenshot},
	}

	// Text and screenshot misses do not fail the document.
	rep := Assemble("doc", set, []evidence.MatchResult{
		{RuleID: "c1", Kind: rules.KindChecklist, Satisfied: true},
		{RuleID: "t1", Kind: rules.KindText},
		{RuleID: "s1", Kind: rules.KindScreenshot},
	})
	assert.True(t, rep.OverallPass)

	// A single checklist miss fails it.
	rep = Assemble("doc", set, []evidence.MatchResult{
		{RuleID: "c1", Kind: rules.KindChecklist},
		{RuleID: "t1", Kind: rules.KindText, Satisfied: true},
		{RuleID: "s1", Kind: rules.KindScreenshot, Satisfied: true},
	})
	assert.False(t, rep.OverallPass)
}

func TestAssembleFillsUnreportedRules(t *testing.T) {
	set := rules.Set{
		{ID: "c1", Kind: rules.KindChecklist, Hint: "check the checklist"},
	}
	rep := Assemble("doc", set, nil)

	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	assert.False(t, res.Satisfied)
	assert.Equal(t, "rule was not evaluated", res.Note)
	assert.Equal(t, "check the checklist", res.Hint)
	assert.False(t, rep.OverallPass)
	assert.Equal(t, 1, rep.MissingCount)
}
