package aiquiz

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB stores generated quizzes so the web UI can carry a quiz across the
// generate/take/submit round trips.
type DB struct {
	db *sql.DB
}

// OpenDB opens a quiz database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (d *DB) CloseDB() error {
	return d.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (d *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			num_questions INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			quiz_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			question TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			explanation TEXT,
			PRIMARY KEY (quiz_id, question_num),
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// SaveQuiz stores a quiz and its questions in one transaction.
func (d *DB) SaveQuiz(quiz *Quiz) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO quizzes (id, topic, difficulty, num_questions, created_at) VALUES (?, ?, ?, ?, ?)",
		quiz.ID, quiz.Topic, quiz.Difficulty, quiz.NumQuestions, quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}

	for i, q := range quiz.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("failed to marshal options: %w", err)
		}
		_, err = tx.Exec(
			"INSERT INTO questions (quiz_id, question_num, question, options, correct_answer, explanation) VALUES (?, ?, ?, ?, ?, ?)",
			quiz.ID, i, q.Question, string(options), q.CorrectAnswer, q.Explanation,
		)
		if err != nil {
			return fmt.Errorf("failed to insert question %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetQuiz retrieves a quiz with its questions by ID
func (d *DB) GetQuiz(id string) (*Quiz, error) {
	var quiz Quiz
	err := d.db.QueryRow(
		"SELECT id, topic, difficulty, num_questions, created_at FROM quizzes WHERE id = ?",
		id,
	).Scan(&quiz.ID, &quiz.Topic, &quiz.Difficulty, &quiz.NumQuestions, &quiz.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("quiz not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	rows, err := d.db.Query(
		"SELECT question, options, correct_answer, explanation FROM questions WHERE quiz_id = ? ORDER BY question_num",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q QuestionRecord
		var options string
		if err := rows.Scan(&q.Question, &options, &q.CorrectAnswer, &q.Explanation); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal options: %w", err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return &quiz, nil
}

// QuizSummary is a row in the recent-quizzes listing.
type QuizSummary struct {
	ID           string
	Topic        string
	Difficulty   string
	NumQuestions int
	CreatedAt    time.Time
}

// GetRecentQuizzes lists the most recently generated quizzes.
func (d *DB) GetRecentQuizzes(limit int) ([]QuizSummary, error) {
	rows, err := d.db.Query(
		"SELECT id, topic, difficulty, num_questions, created_at FROM quizzes ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []QuizSummary
	for rows.Next() {
		var s QuizSummary
		if err := rows.Scan(&s.ID, &s.Topic, &s.Difficulty, &s.NumQuestions, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, s)
	}
	return quizzes, rows.Err()
}
