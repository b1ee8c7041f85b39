package aiquiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"
)

// Terminal pipeline errors. Everything else is retried at attempt
// granularity and only surfaced once maxAttempts is exhausted.
var (
	// ErrPoolExhausted means no credential is usable and none can be
	// force-retried. The user must wait for a quota reset or add keys.
	ErrPoolExhausted = errors.New("all API keys have reached their quota limit, please wait for the reset or add more keys")

	// ErrCustomKeyQuota means a caller-supplied credential hit its quota.
	// Rotation is never permitted for user-supplied keys.
	ErrCustomKeyQuota = errors.New("your API key has reached its quota limit, please wait for the reset or supply another key")
)

// QuizGenerator drives the generation pipeline: prompt construction, the LLM
// round trip with credential rotation, response validation, duplicate
// filtering with escalation and relaxed fallback, and the history commit.
type QuizGenerator struct {
	pool    *KeyPool
	history *HistoryStore

	// NewProvider binds a credential to a Provider. Defaults to the OpenAI
	// client; tests swap in mocks.
	NewProvider func(key string) Provider
}

// NewQuizGenerator creates a generator over the given key pool and history.
func NewQuizGenerator(pool *KeyPool, history *HistoryStore) *QuizGenerator {
	return &QuizGenerator{
		pool:    pool,
		history: history,
		NewProvider: func(key string) Provider {
			return NewOpenAIProvider(key)
		},
	}
}

// GenerateQuiz generates exactly req.NumQuestions validated, deduplicated
// questions. Attempts are strictly sequential: each depends on the previous
// result and on updated temperature and key state.
func (g *QuizGenerator) GenerateQuiz(ctx context.Context, req GenerationRequest) (*Quiz, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if req.NumQuestions < MinQuestions || req.NumQuestions > MaxQuestions {
		return nil, fmt.Errorf("number of questions must be between %d and %d", MinQuestions, MaxQuestions)
	}

	diff := DifficultyFor(req.Difficulty)
	temperature := diff.Temperature

	g.history.Load()
	prev := g.history.Questions(req.Topic)
	filter := NewDuplicateFilter(prev)

	key, ok := g.pool.NextAvailable(req.APIKey)
	if !ok {
		return nil, ErrPoolExhausted
	}
	provider := g.NewProvider(key)
	customKey := req.APIKey != ""

	id := generateQuizID()
	glog, err := NewGenerationLogger(id, req)
	if err != nil {
		VerboseLog("Generation log unavailable: %v", err)
	}
	defer glog.Close()

	log.Printf("Starting quiz generation %s: topic=%q questions=%d difficulty=%s", id, req.Topic, req.NumQuestions, diff.Label)

	// Validated candidates accumulate across attempts so uniques from an
	// early short attempt stay salvageable later. Exact-text repeats
	// between batches are collapsed.
	var candidates []QuestionRecord
	seen := make(map[string]bool)
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		batch := req.NumQuestions + oversample(attempt, req.NumQuestions, len(prev) > 0)
		prompt := BuildPrompt(req.Topic, batch, diff, prev)
		glog.LogPrompt(attempt, prompt)

		raw, err := g.complete(ctx, &provider, customKey, prompt, temperature, glog)
		if err != nil {
			if errors.Is(err, ErrPoolExhausted) || errors.Is(err, ErrCustomKeyQuota) {
				return nil, err
			}
			lastErr = err
			glog.Logf("Attempt %d failed: %v\n", attempt, err)
			continue
		}
		glog.LogResponse(attempt, raw)

		records, err := ParseQuestions(raw)
		if err != nil {
			lastErr = fmt.Errorf("could not process model response: %w", err)
			glog.Logf("Attempt %d parse failure: %v\n", attempt, err)
			continue
		}
		for _, r := range records {
			text := NormalizeQuestion(r.Question)
			if !seen[text] {
				seen[text] = true
				candidates = append(candidates, r)
			}
		}

		kept := filter.FilterStrict(candidates)
		glog.LogAttempt(attempt, len(candidates), len(kept), req.NumQuestions)

		if len(kept) >= req.NumQuestions {
			picked := dropCorrupted(sampleQuestions(kept, req.NumQuestions), glog)
			if len(picked) >= req.NumQuestions {
				return g.commit(id, req, diff, picked[:req.NumQuestions], glog)
			}
			// The defense-in-depth scan dropped below target: shortfall.
		}

		if attempt < maxAttempts {
			temperature = escalate(temperature)
			glog.Logf("Shortfall after attempt %d, escalating temperature to %.1f\n", attempt, temperature)
			continue
		}

		// Final attempt: relax the duplicate threshold, then pad from the
		// remaining validated candidates until the target is reached or
		// candidates run out. Availability over purity.
		final := dropCorrupted(padQuestions(filter.FilterRelaxed(candidates), candidates, req.NumQuestions), glog)
		if len(final) == 0 {
			break
		}
		glog.Logf("Relaxed fallback produced %d/%d questions\n", len(final), req.NumQuestions)
		return g.commit(id, req, diff, final, glog)
	}

	if lastErr != nil {
		return nil, fmt.Errorf("unable to generate quiz after %d attempts, please retry (%s)", maxAttempts, truncate(lastErr.Error(), 100))
	}
	return nil, fmt.Errorf("unable to generate quiz after %d attempts, please retry", maxAttempts)
}

// complete performs the LLM round trip, rotating credentials on quota
// failures. Rotation stays within the same attempt and is bounded by the
// pool size so a fully dead pool cannot loop. Caller-supplied keys are never
// rotated away from.
func (g *QuizGenerator) complete(ctx context.Context, provider *Provider, customKey bool, prompt string, temperature float32, glog *GenerationLogger) (string, error) {
	rotations := 0
	for {
		raw, err := (*provider).Complete(ctx, prompt, temperature)
		if err == nil {
			return raw, nil
		}
		if !IsQuotaError(err) {
			return "", err
		}

		g.pool.MarkFailed((*provider).Key())
		if customKey {
			return "", ErrCustomKeyQuota
		}
		if rotations++; rotations > g.pool.Status().Total {
			return "", ErrPoolExhausted
		}

		next, ok := g.pool.NextAvailable("")
		if !ok {
			return "", ErrPoolExhausted
		}
		glog.LogRotation(keySuffix((*provider).Key()), keySuffix(next))
		VerboseLog("Quota hit, switching to next API key (...%s)", keySuffix(next))
		*provider = g.NewProvider(next)
	}
}

// commit appends the accepted questions to history, persists it, and builds
// the final quiz.
func (g *QuizGenerator) commit(id string, req GenerationRequest, diff Difficulty, questions []QuestionRecord, glog *GenerationLogger) (*Quiz, error) {
	texts := make([]string, len(questions))
	for i, q := range questions {
		texts[i] = q.Question
	}
	g.history.Append(req.Topic, texts)
	g.history.Save()

	glog.Logf("Accepted %d questions, history updated\n", len(questions))
	log.Printf("Quiz generation %s complete: %d questions for topic %q", id, len(questions), req.Topic)

	return &Quiz{
		ID:           id,
		Topic:        req.Topic,
		Difficulty:   diff.Label,
		Questions:    questions,
		CreatedAt:    time.Now(),
		NumQuestions: len(questions),
	}, nil
}

// oversample computes how many extra questions to request beyond the target,
// absorbing expected filtering losses. The first attempt inflates modestly;
// retries double the request.
func oversample(attempt, requested int, hasHistory bool) int {
	if attempt == 1 {
		if hasHistory {
			return minInt(5, requested)
		}
		return 2
	}
	return requested
}

// sampleQuestions picks n records by random sampling without replacement.
// The shuffle intentionally discards model order to avoid positional bias.
func sampleQuestions(records []QuestionRecord, n int) []QuestionRecord {
	picked := append([]QuestionRecord(nil), records...)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if len(picked) > n {
		picked = picked[:n]
	}
	return picked
}

// padQuestions tops up the relaxed-pass survivors from the full candidate
// pool. Forbidden-keyword-free candidates are preferred; keyword violators
// are admitted only if the pool is otherwise exhausted.
func padQuestions(kept, candidates []QuestionRecord, n int) []QuestionRecord {
	if len(kept) >= n {
		return sampleQuestions(kept, n)
	}

	included := make(map[string]bool, len(kept))
	for _, q := range kept {
		included[NormalizeQuestion(q.Question)] = true
	}

	result := append([]QuestionRecord(nil), kept...)
	for pass := 0; pass < 2 && len(result) < n; pass++ {
		for _, c := range candidates {
			if len(result) >= n {
				break
			}
			text := NormalizeQuestion(c.Question)
			if included[text] {
				continue
			}
			if pass == 0 && ContainsForbidden(c.Question) {
				continue
			}
			included[text] = true
			result = append(result, c)
		}
	}
	return result
}

// dropCorrupted is a final defense-in-depth scan: any record whose
// serialized form still contains a corruption marker is rejected.
func dropCorrupted(records []QuestionRecord, glog *GenerationLogger) []QuestionRecord {
	clean := make([]QuestionRecord, 0, len(records))
	for _, r := range records {
		serialized, err := json.Marshal(r)
		if err != nil {
			continue
		}
		if marker := findCorruption(string(serialized)); marker != "" {
			glog.Logf("Final scan dropped question with marker %q: %s\n", marker, truncate(r.Question, 80))
			continue
		}
		clean = append(clean, r)
	}
	return clean
}

func escalate(temperature float32) float32 {
	temperature += temperatureStep
	if temperature > temperatureCeiling {
		return temperatureCeiling
	}
	return temperature
}

func generateQuizID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 12)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
