package aiquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_LoadMissingFile(t *testing.T) {
	h := NewHistoryStore(filepath.Join(t.TempDir(), "nope.json"))
	h.Load()
	assert.Empty(t, h.Questions("Python"))
}

func TestHistoryStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	h := NewHistoryStore(path)
	h.Load()
	assert.Empty(t, h.Questions("Python"))
}

func TestHistoryStore_AppendNormalizes(t *testing.T) {
	h := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	h.Append("Python", []string{"  What is a Decorator?  "})

	assert.Equal(t, []string{"what is a decorator?"}, h.Questions("Python"))
}

func TestHistoryStore_CapsAtMostRecent100(t *testing.T) {
	h := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))

	var questions []string
	for i := 0; i < 120; i++ {
		questions = append(questions, fmt.Sprintf("question number %d", i))
	}
	h.Append("Python", questions)

	got := h.Questions("Python")
	require.Len(t, got, 100)
	assert.Equal(t, "question number 20", got[0])
	assert.Equal(t, "question number 119", got[99])
}

func TestHistoryStore_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h := NewHistoryStore(path)
	h.Append("Recursion", []string{"what is a base case?", "what is tail recursion?"})
	h.Save()

	reloaded := NewHistoryStore(path)
	reloaded.Load()
	assert.Equal(t, []string{"what is a base case?", "what is tail recursion?"}, reloaded.Questions("Recursion"))
}

func TestHistoryStore_Recent(t *testing.T) {
	h := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	h.Append("Go", []string{"q1", "q2", "q3", "q4"})

	assert.Equal(t, []string{"q3", "q4"}, h.Recent("Go", 2))
	assert.Equal(t, []string{"q1", "q2", "q3", "q4"}, h.Recent("Go", 10))
}

func TestHistoryStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h := NewHistoryStore(path)
	h.Append("Go", []string{"q1"})
	h.Save()

	require.NoError(t, h.Clear())
	assert.Empty(t, h.Questions("Go"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing again is not an error.
	require.NoError(t, h.Clear())
}
