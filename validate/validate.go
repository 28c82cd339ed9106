// Package validate evaluates checklist and text rules against the extracted
// document text. Matching is substring-based over a normalized corpus with a
// fuzzy fallback; there is no stemming or NLP. Evaluation is pure: the same
// corpus and rule set always produce the same results.
package validate

import (
	"strings"

	"github.com/wudi/evidencekit/evidence"
	"github.com/wudi/evidencekit/rules"
)

// NoteMissingMarker explains a checklist rule whose phrases were found but
// whose confirmation marker was not. Marker absence alone is sufficient to
// mark the rule missing.
const NoteMissingMarker = "missing confirmation marker"

// Validate evaluates every checklist- and text-kind rule in set order.
// Rules of other kinds are ignored. Every given rule produces exactly one
// result, found or not, so callers can always render a full status table.
func Validate(pages []evidence.PageContent, set rules.Set) []evidence.MatchResult {
	corpus := NewCorpus(pages)
	var out []evidence.MatchResult
	for _, rule := range set {
		switch rule.Kind {
		case rules.KindChecklist:
			out = append(out, evaluateChecklist(corpus, rule))
		case rules.KindText:
			out = append(out, evaluateText(corpus, rule))
		}
	}
	return out
}

func evaluateChecklist(corpus *Corpus, rule rules.Rule) evidence.MatchResult {
	res := evidence.MatchResult{RuleID: rule.ID, Kind: rule.Kind, Hint: rule.Hint}
	pos, matchLen, missing := findAll(corpus, rule.Phrases)
	markerPos, markerFound := corpus.find(rule.Marker)
	if len(missing) > 0 {
		res.Note = "missing phrases: " + strings.Join(missing, ", ")
		return res
	}
	if !markerFound {
		res.Note = NoteMissingMarker
		// Still report where the phrase was seen so reviewers can fix the
		// document instead of hunting for it.
		res.Evidence = corpus.snippet(pos, matchLen)
		res.Page = corpus.pageAt(pos)
		return res
	}
	res.Satisfied = true
	// Prefer a snippet anchored on the phrase; fall back to the marker when
	// the phrase position was lost to fuzzy matching.
	anchor, anchorLen := pos, matchLen
	if anchor < 0 {
		anchor, anchorLen = markerPos, len(Normalize(rule.Marker))
	}
	res.Evidence = corpus.snippet(anchor, anchorLen)
	res.Page = corpus.pageAt(anchor)
	return res
}

func evaluateText(corpus *Corpus, rule rules.Rule) evidence.MatchResult {
	res := evidence.MatchResult{RuleID: rule.ID, Kind: rule.Kind, Hint: rule.Hint}
	pos, matchLen, missing := findAll(corpus, rule.Phrases)
	anyPos, anyLen, anyFound := findAny(corpus, rule.AnyPhrases)
	if len(missing) > 0 {
		res.Note = "missing phrases: " + strings.Join(missing, ", ")
		return res
	}
	if !anyFound {
		res.Note = "none of the alternative phrases found: " + strings.Join(rule.AnyPhrases, ", ")
		return res
	}
	res.Satisfied = true
	anchor, anchorLen := pos, matchLen
	if anchor < 0 {
		anchor, anchorLen = anyPos, anyLen
	}
	res.Evidence = corpus.snippet(anchor, anchorLen)
	res.Page = corpus.pageAt(anchor)
	return res
}

// findAll checks that every phrase is present. It returns the position and
// length of the first positioned match (for evidence anchoring) and the list
// of phrases that were not found.
func findAll(corpus *Corpus, phrases []string) (pos, matchLen int, missing []string) {
	pos = -1
	for _, phrase := range phrases {
		p, found := corpus.find(phrase)
		if !found {
			missing = append(missing, phrase)
			continue
		}
		if pos < 0 && p >= 0 {
			pos = p
			matchLen = len(Normalize(phrase))
		}
	}
	return pos, matchLen, missing
}

// findAny reports the first present phrase of the alternatives. An empty
// alternative list counts as found.
func findAny(corpus *Corpus, phrases []string) (pos, matchLen int, found bool) {
	if len(phrases) == 0 {
		return -1, 0, true
	}
	for _, phrase := range phrases {
		if p, ok := corpus.find(phrase); ok {
			return p, len(Normalize(phrase)), true
		}
	}
	return -1, 0, false
}
