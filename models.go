package aiquiz

import "time"

// QuestionRecord represents a single multiple-choice question as returned
// by the generation pipeline. Options always has exactly the keys A-D.
type QuestionRecord struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// Quiz represents a complete generated quiz with metadata
type Quiz struct {
	ID           string           `json:"id"`
	Topic        string           `json:"topic"`
	Difficulty   string           `json:"difficulty"`
	Questions    []QuestionRecord `json:"questions"`
	CreatedAt    time.Time        `json:"created_at"`
	NumQuestions int              `json:"num_questions"`
}

// GenerationRequest represents a request to generate a quiz
type GenerationRequest struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty,omitempty"`
	// APIKey is an optional caller-supplied credential. When set, the key
	// pool is bypassed entirely and no rotation happens for this request.
	APIKey string `json:"-"`
}

// ChoiceLabels are the required option keys, in display order.
var ChoiceLabels = []string{"A", "B", "C", "D"}
