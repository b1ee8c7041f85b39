package aiquiz

// CalculateScore counts correct submissions. answers maps question index to
// the submitted choice label; unanswered questions count as incorrect.
func CalculateScore(questions []QuestionRecord, answers map[int]string) (correct, total int) {
	total = len(questions)
	for idx, q := range questions {
		if answers[idx] == q.CorrectAnswer {
			correct++
		}
	}
	return correct, total
}

// Percentage converts a score to 0-100.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// ScoreMessage returns the encouragement for a percentage band.
func ScoreMessage(percentage float64) string {
	switch {
	case percentage == 100:
		return "Perfect Score! Outstanding!"
	case percentage >= 80:
		return "Great Job!"
	case percentage >= 60:
		return "Good Effort!"
	default:
		return "Keep Learning!"
	}
}
