package aiquiz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// The upstream model sometimes emits non-string placeholders where the
// contract requires plain strings. Any of these in the raw array aborts the
// whole attempt; in a single leaf value they drop just that question.
var corruptionMarkers = []string{"[object object]", "undefined"}

var (
	trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)
	jsonArrayRE     = regexp.MustCompile(`(?s)\[.*\]`)
	strayNullRE     = regexp.MustCompile(`(?i)[:,\[]\s*null\s*[,}\]]`)
)

// ParseQuestions parses raw model output into structurally valid question
// records. It tolerates near-valid JSON (trailing commas, prose around the
// array) but treats corruption markers at the array level as a hard failure:
// those indicate a degenerate response that a per-question filter cannot
// rescue. Individual objects that fail structural validation are dropped and
// logged, not raised.
func ParseQuestions(raw string) ([]QuestionRecord, error) {
	cleaned := trailingCommaRE.ReplaceAllString(raw, "$1")

	arr := jsonArrayRE.FindString(cleaned)
	if arr == "" {
		return nil, fmt.Errorf("no JSON array in response: %s", truncate(raw, 200))
	}

	if marker := findCorruption(arr); marker != "" {
		return nil, fmt.Errorf("response contains corruption marker %q", marker)
	}

	var objects []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(arr), &objects); err != nil {
		return nil, fmt.Errorf("failed to parse question array: %w", err)
	}

	records := make([]QuestionRecord, 0, len(objects))
	for i, obj := range objects {
		record, err := validateQuestion(obj)
		if err != nil {
			VerboseLog("Dropping question %d: %v", i, err)
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

// validateQuestion enforces the question-option schema on a single object:
// all four fields present, options with exactly the keys A-D, every leaf a
// plain marker-free string.
func validateQuestion(obj map[string]json.RawMessage) (*QuestionRecord, error) {
	question, err := stringField(obj, "question")
	if err != nil {
		return nil, err
	}
	correct, err := stringField(obj, "correct_answer")
	if err != nil {
		return nil, err
	}
	explanation, err := stringField(obj, "explanation")
	if err != nil {
		return nil, err
	}

	rawOptions, ok := obj["options"]
	if !ok {
		return nil, fmt.Errorf("missing field %q", "options")
	}
	var options map[string]string
	if err := json.Unmarshal(rawOptions, &options); err != nil {
		return nil, fmt.Errorf("options is not a string map: %w", err)
	}
	if len(options) != len(ChoiceLabels) {
		return nil, fmt.Errorf("options has %d keys, want %d", len(options), len(ChoiceLabels))
	}
	for _, label := range ChoiceLabels {
		text, ok := options[label]
		if !ok {
			return nil, fmt.Errorf("options missing key %q", label)
		}
		if marker := findCorruption(text); marker != "" {
			return nil, fmt.Errorf("option %s contains marker %q", label, marker)
		}
	}

	if !validChoice(correct) {
		return nil, fmt.Errorf("correct_answer %q is not one of A-D", correct)
	}
	for name, value := range map[string]string{"question": question, "explanation": explanation} {
		if marker := findCorruption(value); marker != "" {
			return nil, fmt.Errorf("%s contains marker %q", name, marker)
		}
	}

	return &QuestionRecord{
		Question:      question,
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   explanation,
	}, nil
}

func stringField(obj map[string]json.RawMessage, name string) (string, error) {
	raw, ok := obj[name]
	if !ok {
		return "", fmt.Errorf("missing field %q", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("field %q is not a string", name)
	}
	return s, nil
}

// findCorruption returns the first corruption marker found in text, or "".
func findCorruption(text string) string {
	lower := strings.ToLower(text)
	for _, marker := range corruptionMarkers {
		if strings.Contains(lower, marker) {
			return marker
		}
	}
	if loc := strayNullRE.FindString(text); loc != "" {
		return "null"
	}
	return ""
}

func validChoice(label string) bool {
	for _, l := range ChoiceLabels {
		if label == l {
			return true
		}
	}
	return false
}
