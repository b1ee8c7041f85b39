package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"aiquiz"

	"github.com/gorilla/sessions"
)

const sessionName = "aiquiz-session"

type Server struct {
	db        *aiquiz.DB
	store     *sessions.CookieStore
	pool      *aiquiz.KeyPool
	history   *aiquiz.HistoryStore
	generator *aiquiz.QuizGenerator
	templates map[string]*template.Template
}

func main() {
	aiquiz.SetVerbose(os.Getenv("VERBOSE") != "")

	keys := keysFromEnv()
	if len(keys) == 0 {
		log.Fatal("OPENAI_API_KEYS environment variable is required (comma-separated)")
	}

	db, err := aiquiz.OpenDB("./quiz.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "aiquiz-dev-secret"
	}
	store := sessions.NewCookieStore([]byte(secret))

	pool := aiquiz.NewKeyPool(keys)
	history := aiquiz.NewHistoryStore(aiquiz.DefaultHistoryPath)

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"minutes": func(d time.Duration) int {
			return int(d.Minutes())
		},
	}

	templates := make(map[string]*template.Template)
	for _, name := range []string{"home", "quiz", "results", "keys"} {
		templates[name] = template.Must(
			template.New(name).Funcs(funcMap).ParseFiles("templates/base.html", "templates/"+name+".html"))
	}

	server := &Server{
		db:        db,
		store:     store,
		pool:      pool,
		history:   history,
		generator: aiquiz.NewQuizGenerator(pool, history),
		templates: templates,
	}

	http.HandleFunc("/", server.handleHome)
	http.HandleFunc("/quiz/generate", server.handleGenerate)
	http.HandleFunc("/quiz/take", server.handleTake)
	http.HandleFunc("/quiz/submit", server.handleSubmit)
	http.HandleFunc("/keys", server.handleKeys)
	http.HandleFunc("/keys/reset", server.handleKeysReset)
	http.HandleFunc("/history/clear", server.handleHistoryClear)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func keysFromEnv() []string {
	var keys []string
	for _, k := range strings.Split(os.Getenv("OPENAI_API_KEYS"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.templates[name].ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Template error (%s): %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	recent, err := s.db.GetRecentQuizzes(10)
	if err != nil {
		log.Printf("Failed to list quizzes: %v", err)
	}

	s.render(w, "home", map[string]interface{}{
		"Difficulties": aiquiz.DifficultyLevels,
		"MinQuestions": aiquiz.MinQuestions,
		"MaxQuestions": aiquiz.MaxQuestions,
		"DefaultCount": aiquiz.DefaultQuestions,
		"Recent":       recent,
		"Status":       s.pool.Status(),
		"Error":        r.URL.Query().Get("error"),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	count, err := strconv.Atoi(r.FormValue("questions"))
	if err != nil {
		count = aiquiz.DefaultQuestions
	}

	req := aiquiz.GenerationRequest{
		Topic:        strings.TrimSpace(r.FormValue("topic")),
		NumQuestions: count,
		Difficulty:   r.FormValue("difficulty"),
		APIKey:       strings.TrimSpace(r.FormValue("api_key")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	quiz, err := s.generator.GenerateQuiz(ctx, req)
	if err != nil {
		log.Printf("Generation failed: %v", err)
		http.Redirect(w, r, "/?error="+template.URLQueryEscaper(err.Error()), http.StatusSeeOther)
		return
	}

	if err := s.db.SaveQuiz(quiz); err != nil {
		log.Printf("Failed to save quiz: %v", err)
		http.Error(w, "Failed to save quiz", http.StatusInternalServerError)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	session.Values["quiz_id"] = quiz.ID
	session.Save(r, w)

	http.Redirect(w, r, "/quiz/take", http.StatusSeeOther)
}

func (s *Server) handleTake(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.currentQuiz(w, r)
	if !ok {
		return
	}

	s.render(w, "quiz", map[string]interface{}{
		"Quiz":   quiz,
		"Labels": aiquiz.ChoiceLabels,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/quiz/take", http.StatusSeeOther)
		return
	}

	quiz, ok := s.currentQuiz(w, r)
	if !ok {
		return
	}

	answers := make(map[int]string)
	for i := range quiz.Questions {
		if v := r.FormValue(fmt.Sprintf("q_%d", i)); v != "" {
			answers[i] = v
		}
	}

	correct, total := aiquiz.CalculateScore(quiz.Questions, answers)
	percentage := aiquiz.Percentage(correct, total)

	s.render(w, "results", map[string]interface{}{
		"Quiz":       quiz,
		"Answers":    answers,
		"Correct":    correct,
		"Total":      total,
		"Percentage": fmt.Sprintf("%.1f", percentage),
		"Message":    aiquiz.ScoreMessage(percentage),
		"Labels":     aiquiz.ChoiceLabels,
	})
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	s.render(w, "keys", map[string]interface{}{
		"Status": s.pool.Status(),
	})
}

func (s *Server) handleKeysReset(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.pool.ResetAll()
		log.Printf("Key pool reset")
	}
	http.Redirect(w, r, "/keys", http.StatusSeeOther)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := s.history.Clear(); err != nil {
			log.Printf("Failed to clear history: %v", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// currentQuiz loads the session's active quiz, redirecting home when there
// is none.
func (s *Server) currentQuiz(w http.ResponseWriter, r *http.Request) (*aiquiz.Quiz, bool) {
	session, _ := s.store.Get(r, sessionName)
	id, _ := session.Values["quiz_id"].(string)
	if id == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}

	quiz, err := s.db.GetQuiz(id)
	if err != nil {
		log.Printf("Failed to load quiz %s: %v", id, err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return quiz, true
}
