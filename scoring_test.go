package aiquiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateScore(t *testing.T) {
	quiz := []QuestionRecord{
		{CorrectAnswer: "B"},
		{CorrectAnswer: "A"},
	}
	correct, total := CalculateScore(quiz, map[int]string{0: "B", 1: "C"})

	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total)
	assert.Equal(t, 50.0, Percentage(correct, total))
}

func TestCalculateScore_UnansweredCountsWrong(t *testing.T) {
	quiz := []QuestionRecord{
		{CorrectAnswer: "A"},
		{CorrectAnswer: "D"},
		{CorrectAnswer: "C"},
	}
	correct, total := CalculateScore(quiz, map[int]string{2: "C"})

	assert.Equal(t, 1, correct)
	assert.Equal(t, 3, total)
}

func TestScoreMessage_Bands(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "Perfect Score! Outstanding!"},
		{90, "Great Job!"},
		{80, "Great Job!"},
		{75, "Good Effort!"},
		{60, "Good Effort!"},
		{50, "Keep Learning!"},
		{0, "Keep Learning!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreMessage(tt.percentage), "percentage %.0f", tt.percentage)
	}
}

func TestPercentage_EmptyQuiz(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
}
