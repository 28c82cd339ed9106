package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidRuleFile(t *testing.T) {
	data := []byte(`
rules:
  - id: check_backup
    kind: checklist
    label: Backups verified
    phrases:
      - backup restored successfully
    marker: "(YES)"
  - id: brand_name
    kind: text
    phrases:
      - CollectNow
  - id: visual_receipt
    kind: screenshot
    phrases:
      - payment received
    threshold: 65
`)
	set, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, set, 3)
	assert.Equal(t, "check_backup", set[0].ID)
	assert.Equal(t, KindChecklist, set[0].Kind)
	assert.Equal(t, "(YES)", set[0].Marker)
	assert.Equal(t, 65, set[2].Threshold)
}

func TestParseRejectsMalformedSets(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty set",
			yaml: "rules: []",
			want: "rule set is empty",
		},
		{
			name: "missing id",
			yaml: "rules:\n  - kind: text\n    phrases: [x]",
			want: "has no id",
		},
		{
			name: "duplicate id",
			yaml: "rules:\n  - id: a\n    kind: text\n    phrases: [x]\n  - id: a\n    kind: text\n    phrases: [y]",
			want: "duplicate id",
		},
		{
			name: "unknown kind",
			yaml: "rules:\n  - id: a\n    kind: regex\n    phrases: [x]",
			want: "unknown kind",
		},
		{
			name: "no phrases",
			yaml: "rules:\n  - id: a\n    kind: text",
			want: "no required phrases",
		},
		{
			name: "empty phrase",
			yaml: "rules:\n  - id: a\n    kind: text\n    phrases: ['']",
			want: "empty phrase",
		},
		{
			name: "checklist without marker",
			yaml: "rules:\n  - id: a\n    kind: checklist\n    phrases: [x]",
			want: "confirmation marker",
		},
		{
			// A checklist rule with only alternatives would degenerate to
			// marker-only matching, so the combination is rejected up front.
			name: "checklist with phrases_any",
			yaml: "rules:\n  - id: a\n    kind: checklist\n    phrases_any: [database retained, records retained]\n    marker: \"(YES)\"",
			want: "phrases_any is not supported on checklist rules",
		},
		{
			name: "threshold out of range",
			yaml: "rules:\n  - id: a\n    kind: screenshot\n    phrases: [x]\n    threshold: 140",
			want: "outside 0-100",
		},
		{
			name: "threshold on text rule",
			yaml: "rules:\n  - id: a\n    kind: text\n    phrases: [x]\n    threshold: 50",
			want: "only valid on screenshot rules",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("rules: [unclosed"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestOfKindPreservesOrder(t *testing.T) {
	set := Set{
		{ID: "t1", Kind: KindText},
		{ID: "c1", Kind: KindChecklist},
		{ID: "t2", Kind: KindText},
		{ID: "s1", Kind: KindScreenshot},
	}
	texts := set.OfKind(KindText)
	require.Len(t, texts, 2)
	assert.Equal(t, "t1", texts[0].ID)
	assert.Equal(t, "t2", texts[1].ID)
}

func TestFind(t *testing.T) {
	set := Set{{ID: "a", Kind: KindText}, {ID: "b", Kind: KindText}}
	r, ok := set.Find("b")
	require.True(t, ok)
	assert.Equal(t, "b", r.ID)
	_, ok = set.Find("missing")
	assert.False(t, ok)
}

func TestDefaultSetIsValid(t *testing.T) {
	set := Default()
	require.NoError(t, set.Validate())
	assert.NotEmpty(t, set.OfKind(KindChecklist))
	assert.NotEmpty(t, set.OfKind(KindText))
	assert.NotEmpty(t, set.OfKind(KindScreenshot))
	for _, r := range set.OfKind(KindChecklist) {
		assert.Equal(t, "(YES)", r.Marker, "checklist rule %s", r.ID)
	}
}
