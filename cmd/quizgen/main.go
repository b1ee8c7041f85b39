package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"aiquiz"
)

func main() {
	var (
		topic        = flag.String("topic", "", "Quiz topic (required)")
		numQuestions = flag.Int("questions", aiquiz.DefaultQuestions, "Number of questions to generate (3-15)")
		difficulty   = flag.String("difficulty", "Medium", "Difficulty level (Easy, Medium, Hard)")
		outputFile   = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		apiKey       = flag.String("api-key", "", "Custom API key (bypasses the key pool)")
		historyFile  = flag.String("history", aiquiz.DefaultHistoryPath, "Question history file")
		playMode     = flag.Bool("play", false, "Play the quiz interactively")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	aiquiz.SetVerbose(*verbose)

	if *topic == "" {
		log.Fatal("Topic is required. Use -topic flag.")
	}

	keys := keysFromEnv()
	if len(keys) == 0 && *apiKey == "" {
		log.Fatal("No API keys configured. Set OPENAI_API_KEYS (comma-separated) or use -api-key.")
	}
	pool := aiquiz.NewKeyPool(keys)

	history := aiquiz.NewHistoryStore(*historyFile)
	generator := aiquiz.NewQuizGenerator(pool, history)

	req := aiquiz.GenerationRequest{
		Topic:        *topic,
		NumQuestions: *numQuestions,
		Difficulty:   *difficulty,
		APIKey:       *apiKey,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	quiz, err := generator.GenerateQuiz(ctx, req)
	if err != nil {
		log.Fatalf("Failed to generate quiz: %v", err)
	}

	if *playMode {
		playQuiz(quiz)
		return
	}

	output, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal quiz: %v", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Quiz saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

func keysFromEnv() []string {
	raw := os.Getenv("OPENAI_API_KEYS")
	if raw == "" {
		raw = os.Getenv("OPENAI_API_KEY")
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func playQuiz(quiz *aiquiz.Quiz) {
	fmt.Printf("Quiz: %s (%s, %d questions)\n\n", quiz.Topic, quiz.Difficulty, len(quiz.Questions))

	scanner := bufio.NewScanner(os.Stdin)
	answers := make(map[int]string)

	for i, q := range quiz.Questions {
		fmt.Printf("Question %d/%d:\n%s\n\n", i+1, len(quiz.Questions), q.Question)
		for _, label := range aiquiz.ChoiceLabels {
			fmt.Printf("  %s. %s\n", label, q.Options[label])
		}

		for {
			fmt.Print("\nYour answer (A-D): ")
			if !scanner.Scan() {
				return
			}
			answer := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if answer == "A" || answer == "B" || answer == "C" || answer == "D" {
				answers[i] = answer
				break
			}
			fmt.Println("Please enter A, B, C or D.")
		}

		if answers[i] == q.CorrectAnswer {
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Wrong. The correct answer was %s.\n", q.CorrectAnswer)
		}
		fmt.Printf("Explanation: %s\n\n", q.Explanation)
	}

	correct, total := aiquiz.CalculateScore(quiz.Questions, answers)
	percentage := aiquiz.Percentage(correct, total)
	fmt.Printf("Final score: %d/%d (%.1f%%)\n%s\n", correct, total, percentage, aiquiz.ScoreMessage(percentage))
}
