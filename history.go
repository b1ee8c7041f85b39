package aiquiz

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
)

// HistoryStore tracks the text of previously generated questions per topic so
// new quizzes can avoid repeats. Entries are stored lowercased and trimmed,
// capped at the most recent 100 per topic. The backing file is a plain
// topic -> []string JSON document and is treated as a cache: it is safe to
// delete and any read failure just starts the store empty.
type HistoryStore struct {
	mu      sync.Mutex
	path    string
	byTopic map[string][]string
}

// NewHistoryStore creates an empty store backed by the given file path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{
		path:    path,
		byTopic: make(map[string][]string),
	}
}

// Load replaces the in-memory state with the persisted file. Missing or
// unparseable files leave the store empty; history is an optimization, not a
// correctness requirement.
func (h *HistoryStore) Load() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byTopic = make(map[string][]string)

	data, err := os.ReadFile(h.path)
	if err != nil {
		return
	}
	var loaded map[string][]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		VerboseLog("history: ignoring unparseable %s: %v", h.path, err)
		return
	}
	h.byTopic = loaded
}

// Save persists the current state. Best-effort: failures are logged in
// verbose mode and otherwise swallowed.
func (h *HistoryStore) Save() {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.MarshalIndent(h.byTopic, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(h.path, data, 0644); err != nil {
		VerboseLog("history: failed to save %s: %v", h.path, err)
	}
}

// Questions returns a copy of the stored entries for a topic.
func (h *HistoryStore) Questions(topic string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.byTopic[topic]...)
}

// Recent returns up to n of the most recent entries for a topic.
func (h *HistoryStore) Recent(topic string, n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.byTopic[topic]
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return append([]string(nil), entries...)
}

// Append records newly accepted question texts for a topic, normalizing each
// and keeping only the most recent entries up to the per-topic cap.
func (h *HistoryStore) Append(topic string, questions []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.byTopic[topic]
	for _, q := range questions {
		entries = append(entries, NormalizeQuestion(q))
	}
	if len(entries) > historyTopicLimit {
		entries = entries[len(entries)-historyTopicLimit:]
	}
	h.byTopic[topic] = entries
}

// Clear removes all history, in memory and on disk.
func (h *HistoryStore) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byTopic = make(map[string][]string)
	err := os.Remove(h.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// NormalizeQuestion lowercases and trims question text the way history
// entries are stored and compared.
func NormalizeQuestion(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
