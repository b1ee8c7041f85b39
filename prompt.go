package aiquiz

import (
	"fmt"
	"strings"
)

// BuildPrompt assembles the full generation instruction. numQuestions is the
// already-inflated batch size, not the caller's requested count. history
// holds the recent entries for the topic that the model must avoid.
func BuildPrompt(topic string, numQuestions int, diff Difficulty, history []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are an expert quiz creator. Generate exactly %d multiple-choice questions about %s at %s difficulty.\n\n",
		numQuestions, topic, diff.Label))

	sb.WriteString("OUTPUT CONTRACT - FOLLOW EXACTLY:\n")
	sb.WriteString("1. Your response must be ONLY a JSON array: [question1, question2, ...]\n")
	sb.WriteString("2. Each question is a JSON object with: question, options, correct_answer, explanation\n")
	sb.WriteString("3. options is an object with exactly the keys A, B, C, D\n")
	sb.WriteString("4. ALL values must be simple strings - no nested objects, no null, no undefined\n")
	sb.WriteString("5. correct_answer is one of \"A\", \"B\", \"C\", \"D\"\n")
	sb.WriteString("6. For code questions: put the code in the question text as plain text with \\n line breaks\n")
	sb.WriteString("7. Keep options SHORT and SIMPLE - no code blocks in options\n\n")

	sb.WriteString(fmt.Sprintf("DIFFICULTY REQUIREMENT: %s\n\n", diff.Guidance))

	sb.WriteString("VARIETY REQUIREMENT:\n")
	sb.WriteString("- Generate different questions every time, even for the same topic\n")
	sb.WriteString("- Focus on DIFFERENT aspects and concepts, including real-world scenarios, edge cases, and creative applications\n")
	sb.WriteString("- Avoid the most common/obvious questions that everyone asks\n")
	sb.WriteString("- Test deeper understanding, not memorization\n\n")

	sb.WriteString("FORMAT EXAMPLE:\n")
	sb.WriteString(`[
  {
    "question": "What is the main purpose of Python decorators?",
    "options": {
      "A": "To modify or enhance function behavior",
      "B": "To create new classes",
      "C": "To handle exceptions",
      "D": "To import modules"
    },
    "correct_answer": "A",
    "explanation": "Decorators are used to modify or enhance the behavior of functions or classes."
  }
]`)
	sb.WriteString("\n\nCRITICAL RULES:\n")
	sb.WriteString("- Use PLAIN TEXT only - no backticks, no markdown, no code fences\n")
	sb.WriteString("- NO [object Object], NO undefined, NO null values\n")
	sb.WriteString("- Respond with a clean JSON array and nothing else\n")

	if block := buildAvoidBlock(history); block != "" {
		sb.WriteString(block)
	}

	return sb.String()
}

// buildAvoidBlock renders the recent history as a bulleted exclusion list.
// Entries are sanitized so history text can never read as a structural
// directive or format example inside the prompt.
func buildAvoidBlock(history []string) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > historyPromptLimit {
		history = history[len(history)-historyPromptLimit:]
	}

	var sb strings.Builder
	sb.WriteString("\n\nIMPORTANT - AVOID THESE PREVIOUSLY ASKED QUESTIONS:\n")
	for _, q := range history {
		sb.WriteString("- ")
		sb.WriteString(sanitizeHistoryEntry(q))
		sb.WriteString("\n")
	}
	sb.WriteString("\nYour questions MUST be completely different from the above. Generate fresh, unique questions on different aspects of the topic.")
	return sb.String()
}

var historySanitizer = strings.NewReplacer(
	"{", "(",
	"}", ")",
	"`", "'",
	"\n", " ",
	"\r", " ",
)

func sanitizeHistoryEntry(entry string) string {
	return strings.TrimSpace(historySanitizer.Replace(entry))
}
