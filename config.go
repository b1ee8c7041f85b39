package aiquiz

import "time"

// Quiz size limits
const (
	MinQuestions     = 3
	MaxQuestions     = 15
	DefaultQuestions = 5
)

// Generation tuning
const (
	maxAttempts        = 3
	strictThreshold    = 0.80
	relaxedThreshold   = 0.90
	historyPromptLimit = 10  // history entries shown in the avoid-block
	historyTopicLimit  = 100 // history entries kept per topic
	temperatureStep    = 0.2
	temperatureCeiling = 1.0
	DefaultHistoryPath = "quiz_history.json"
	DefaultKeyCooldown = time.Hour
	defaultModel       = "gpt-4o"
)

// Difficulty describes one difficulty level: the user-visible label, a short
// description, the guidance text injected into the generation prompt, and the
// base sampling temperature bound to the level.
type Difficulty struct {
	Label       string
	Description string
	Guidance    string
	Temperature float32
}

// DifficultyLevels lists the supported levels in display order.
var DifficultyLevels = []Difficulty{
	{
		Label:       "Easy",
		Description: "Basic concepts and straightforward questions",
		Guidance: "easy difficulty with straightforward questions suitable for beginners. " +
			"Focus on fundamental concepts and basic understanding.",
		Temperature: 0.3,
	},
	{
		Label:       "Medium",
		Description: "Moderate difficulty with some challenging aspects",
		Guidance: "medium difficulty with balanced, moderately challenging questions. " +
			"Focus on practical understanding and application of intermediate concepts. " +
			"Questions should be clear and concise, not overly verbose. " +
			"Mix different question types: conceptual understanding (30%), practical applications (30%), " +
			"'what is the output of this code' (20%), best practices (10%), and comparisons (10%).",
		Temperature: 0.7,
	},
	{
		Label:       "Hard",
		Description: "Advanced questions requiring deep knowledge",
		Guidance: "hard difficulty with advanced and challenging questions. " +
			"Include complex scenarios, edge cases, and questions that require deep understanding and critical thinking.",
		Temperature: 0.9,
	},
}

// DifficultyFor returns the level matching the given label, falling back to
// Medium for unknown or empty labels.
func DifficultyFor(label string) Difficulty {
	for _, d := range DifficultyLevels {
		if d.Label == label {
			return d
		}
	}
	return DifficultyLevels[1]
}

// forbiddenKeywords denylists trivial beginner topics. A candidate question
// containing any of these (case-insensitive) is always rejected.
var forbiddenKeywords = []string{
	"hello world",
	"variable naming",
	"print statement",
	"basic data type",
	"simple loop",
	"input/output",
	"if statement",
	"for loop",
	"while loop",
	"function definition",
	"list operation",
	"string concatenation",
	"simple arithmetic",
}
