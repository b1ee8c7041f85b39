package aiquiz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(question string) QuestionRecord {
	return QuestionRecord{
		Question:      question,
		Options:       map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"},
		CorrectAnswer: "A",
		Explanation:   "x",
	}
}

func questions(records []QuestionRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Question)
	}
	return out
}

func TestFilterStrict_RejectsNearDuplicate(t *testing.T) {
	f := NewDuplicateFilter([]string{"what is a list in python"})

	kept := f.FilterStrict([]QuestionRecord{
		record("What is a list in Python?"),
		record("What is polymorphism?"),
	})

	assert.Equal(t, []string{"What is polymorphism?"}, questions(kept))
}

func TestFilterStrict_RejectsForbiddenKeywords(t *testing.T) {
	f := NewDuplicateFilter(nil)

	kept := f.FilterStrict([]QuestionRecord{
		record("Explain how a for loop iterates over a slice"),
		record("What does Hello World demonstrate?"),
		record("How does the scheduler preempt goroutines?"),
	})

	assert.Equal(t, []string{"How does the scheduler preempt goroutines?"}, questions(kept))
}

func TestFilterRelaxed_OnlyNearExactRepeats(t *testing.T) {
	// Same prefix with a 15% tail substitution: similarity ~0.85, which is
	// over the strict 0.80 threshold but under the relaxed 0.90.
	prev := strings.Repeat("a", 100)
	candidate := strings.Repeat("a", 85) + strings.Repeat("b", 15)

	f := NewDuplicateFilter([]string{prev})

	assert.Empty(t, f.FilterStrict([]QuestionRecord{record(candidate)}))
	assert.Len(t, f.FilterRelaxed([]QuestionRecord{record(candidate)}), 1)
}

func TestFilterRelaxed_StillRejectsExactRepeat(t *testing.T) {
	f := NewDuplicateFilter([]string{"what is a closure in javascript"})

	kept := f.FilterRelaxed([]QuestionRecord{record("What is a closure in JavaScript")})
	assert.Empty(t, kept)
}

func TestFilterStrict_NormalizesBeforeComparing(t *testing.T) {
	f := NewDuplicateFilter([]string{"what is a channel"})

	kept := f.FilterStrict([]QuestionRecord{record("  WHAT IS A CHANNEL  ")})
	require.Empty(t, kept)
}

func TestContainsForbidden(t *testing.T) {
	assert.True(t, ContainsForbidden("Write a simple loop that counts"))
	assert.True(t, ContainsForbidden("WHILE LOOP semantics"))
	assert.False(t, ContainsForbidden("How does a B-tree rebalance?"))
}
