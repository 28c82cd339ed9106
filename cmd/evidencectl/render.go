package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/rules"
	"github.com/wudi/evidencekit/store"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func statusCell(res evidence.MatchResult) string {
	switch {
	case res.Satisfied:
		return passStyle.Render("PASS")
	case res.Skipped:
		return skipStyle.Render("SKIP")
	default:
		return failStyle.Render("MISS")
	}
}

// renderReport produces the human-readable status table for one run.
func renderReport(path string, rep *evidence.ValidationReport, set rules.Set) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Evidence validation: %s", path)))
	b.WriteByte('\n')
	for _, res := range rep.Results {
		label := res.RuleID
		if r, ok := set.Find(res.RuleID); ok && r.Label != "" {
			label = r.Label
		}
		fmt.Fprintf(&b, "  %s  %-52s", statusCell(res), label)
		if res.Page != nil {
			fmt.Fprintf(&b, " %s", dimStyle.Render(fmt.Sprintf("p.%d", *res.Page)))
		}
		if res.Confidence != nil {
			fmt.Fprintf(&b, " %s", dimStyle.Render(fmt.Sprintf("%d%%", *res.Confidence)))
		}
		b.WriteByte('\n')
		if !res.Satisfied && res.Note != "" {
			fmt.Fprintf(&b, "        %s\n", dimStyle.Render(res.Note))
		}
	}
	verdict := failStyle.Render("FAIL")
	if rep.OverallPass {
		verdict = passStyle.Render("PASS")
	}
	summary := fmt.Sprintf("%s  %d satisfied / %d missing / %d skipped of %d checks",
		verdict, rep.SatisfiedCount, rep.MissingCount, rep.SkippedCount, rep.TotalCount)
	b.WriteString(summaryStyle.Render(summary))
	b.WriteByte('\n')
	return b.String()
}

// renderRuns lists stored runs, newest first.
func renderRuns(runs []store.Run) string {
	if len(runs) == 0 {
		return dimStyle.Render("no runs recorded") + "\n"
	}
	var b strings.Builder
	for _, run := range runs {
		verdict := failStyle.Render("FAIL")
		if run.Report.OverallPass {
			verdict = passStyle.Render("PASS")
		}
		fmt.Fprintf(&b, "%s  %-36s %-5s %s  %d/%d satisfied\n",
			verdict,
			run.DocumentID,
			run.Format,
			dimStyle.Render(run.CompletedAt.Format("2006-01-02 15:04:05")),
			run.Report.SatisfiedCount,
			run.Report.TotalCount)
	}
	return b.String()
}
