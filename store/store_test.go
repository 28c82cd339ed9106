package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/rules"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, pass bool) Run {
	page := 1
	return Run{
		DocumentID:  id,
		Format:      evidence.FormatPDF,
		CompletedAt: time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		Report: evidence.ValidationReport{
			DocumentID:     id,
			OverallPass:    pass,
			SatisfiedCount: 1,
			TotalCount:     1,
			Results: []evidence.MatchResult{{
				RuleID:    "check_retention",
				Kind:      rules.KindChecklist,
				Satisfied: pass,
				Evidence:  "records retained (yes)",
				Page:      &page,
			}},
		},
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRun("doc-1", true)))

	got, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.DocumentID)
	assert.Equal(t, evidence.FormatPDF, got.Format)
	assert.True(t, got.Report.OverallPass)
	require.Len(t, got.Report.Results, 1)
	assert.Equal(t, "check_retention", got.Report.Results[0].RuleID)
	require.NotNil(t, got.Report.Results[0].Page)
	assert.Equal(t, 1, *got.Report.Results[0].Page)
}

func TestGetReturnsLatestRunForDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRun("doc-1", false)))
	require.NoError(t, s.Save(ctx, sampleRun("doc-1", true)))

	got, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, got.Report.OverallPass, "latest run wins")
}

func TestGetMissingRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(ctx, sampleRun(id, true)))
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].DocumentID)
	assert.Equal(t, "b", runs[1].DocumentID)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
