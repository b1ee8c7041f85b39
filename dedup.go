package aiquiz

import (
	"strings"

	"github.com/agext/levenshtein"
)

var similarityParams = levenshtein.NewParams()

// DuplicateFilter fuzzy-matches candidate questions against a topic's
// history. The strict pass (ratio > 0.80) runs on normal attempts; the
// relaxed pass (ratio > 0.90, near-exact repeats only) is the final-attempt
// fallback when strict filtering under-yields. Both passes also reject the
// fixed denylist of trivial topics.
type DuplicateFilter struct {
	history []string // normalized question texts
}

// NewDuplicateFilter creates a filter over the given history entries, which
// are expected to be normalized already (see NormalizeQuestion).
func NewDuplicateFilter(history []string) *DuplicateFilter {
	return &DuplicateFilter{history: history}
}

// FilterStrict keeps candidates that pass the 0.80 similarity threshold and
// the denylist.
func (f *DuplicateFilter) FilterStrict(candidates []QuestionRecord) []QuestionRecord {
	return f.filter(candidates, strictThreshold)
}

// FilterRelaxed keeps candidates that pass the 0.90 threshold and the
// denylist, excluding only near-exact repeats.
func (f *DuplicateFilter) FilterRelaxed(candidates []QuestionRecord) []QuestionRecord {
	return f.filter(candidates, relaxedThreshold)
}

func (f *DuplicateFilter) filter(candidates []QuestionRecord, threshold float64) []QuestionRecord {
	kept := make([]QuestionRecord, 0, len(candidates))
	for _, c := range candidates {
		if ContainsForbidden(c.Question) {
			VerboseLog("Filtered (forbidden keyword): %s", truncate(c.Question, 80))
			continue
		}
		if f.isDuplicate(c.Question, threshold) {
			VerboseLog("Filtered (duplicate > %.2f): %s", threshold, truncate(c.Question, 80))
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func (f *DuplicateFilter) isDuplicate(question string, threshold float64) bool {
	normalized := NormalizeQuestion(question)
	for _, prev := range f.history {
		if levenshtein.Similarity(normalized, prev, similarityParams) > threshold {
			return true
		}
	}
	return false
}

// ContainsForbidden reports whether the question text hits the trivial-topic
// denylist.
func ContainsForbidden(question string) bool {
	lower := strings.ToLower(question)
	for _, keyword := range forbiddenKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
