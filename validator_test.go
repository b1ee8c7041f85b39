package aiquiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPair = `[
  {
    "question": "What is the zero value of a pointer in Go?",
    "options": {"A": "nil", "B": "0", "C": "empty struct", "D": "panic"},
    "correct_answer": "A",
    "explanation": "Pointers default to nil when declared without initialization."
  },
  {
    "question": "Which keyword starts a goroutine?",
    "options": {"A": "async", "B": "go", "C": "spawn", "D": "thread"},
    "correct_answer": "B",
    "explanation": "The go keyword runs a function concurrently."
  }
]`

func TestParseQuestions_Valid(t *testing.T) {
	records, err := ParseQuestions(validPair)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "What is the zero value of a pointer in Go?", records[0].Question)
	assert.Equal(t, "A", records[0].CorrectAnswer)
	assert.Equal(t, "go", records[1].Options["B"])
}

func TestParseQuestions_ToleratesTrailingCommas(t *testing.T) {
	raw := `[
  {
    "question": "Q?",
    "options": {"A": "1", "B": "2", "C": "3", "D": "4",},
    "correct_answer": "C",
    "explanation": "Because.",
  },
]`
	records, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "C", records[0].CorrectAnswer)
}

func TestParseQuestions_ToleratesSurroundingProse(t *testing.T) {
	raw := "Here is your quiz:\n" + validPair + "\nEnjoy!"
	records, err := ParseQuestions(raw)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseQuestions_NoArray(t *testing.T) {
	_, err := ParseQuestions("Sorry, I cannot generate a quiz right now.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON array")
}

func TestParseQuestions_CorruptionMarkerRejectsWholeResponse(t *testing.T) {
	raw := `[
  {
    "question": "Q?",
    "options": "[object Object]",
    "correct_answer": "A",
    "explanation": "x"
  }
]`
	_, err := ParseQuestions(raw)
	require.Error(t, err, "a corruption marker must fail the whole attempt, not a single question")
	assert.Contains(t, err.Error(), "corruption marker")
}

func TestParseQuestions_UndefinedMarker(t *testing.T) {
	raw := `[{"question": "Q?", "options": {"A": "undefined", "B": "2", "C": "3", "D": "4"}, "correct_answer": "A", "explanation": "x"}]`
	_, err := ParseQuestions(raw)
	require.Error(t, err)
}

func TestParseQuestions_StrayNullMarker(t *testing.T) {
	raw := `[{"question": "Q?", "options": {"A": "1", "B": "2", "C": "3", "D": "4"}, "correct_answer": null, "explanation": "x"}]`
	_, err := ParseQuestions(raw)
	require.Error(t, err)
}

func TestParseQuestions_DropsStructurallyInvalidObjects(t *testing.T) {
	raw := `[
  {
    "question": "Missing explanation",
    "options": {"A": "1", "B": "2", "C": "3", "D": "4"},
    "correct_answer": "A"
  },
  {
    "question": "Only three options",
    "options": {"A": "1", "B": "2", "C": "3"},
    "correct_answer": "A",
    "explanation": "x"
  },
  {
    "question": "Wrong option key",
    "options": {"A": "1", "B": "2", "C": "3", "E": "4"},
    "correct_answer": "A",
    "explanation": "x"
  },
  {
    "question": "Bad answer label",
    "options": {"A": "1", "B": "2", "C": "3", "D": "4"},
    "correct_answer": "E",
    "explanation": "x"
  },
  {
    "question": "Numeric option value",
    "options": {"A": 1, "B": "2", "C": "3", "D": "4"},
    "correct_answer": "A",
    "explanation": "x"
  },
  {
    "question": "The survivor",
    "options": {"A": "1", "B": "2", "C": "3", "D": "4"},
    "correct_answer": "D",
    "explanation": "x"
  }
]`
	records, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "The survivor", records[0].Question)
}
