package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ptit-ai/unirag/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_stats.db")
	store, err := NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStoreWithPath failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStoreWithPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_stats.db")

	store, err := NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStoreWithPath failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestIncrement(t *testing.T) {
	store := newTestStore(t)

	if err := store.Increment(ModeQuery); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	count, err := store.GetCountByDate(ModeQuery, today)
	if err != nil {
		t.Fatalf("GetCountByDate failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}

	if err := store.Increment(ModeQuery); err != nil {
		t.Fatalf("Second increment failed: %v", err)
	}

	count, err = store.GetCountByDate(ModeQuery, today)
	if err != nil {
		t.Fatalf("GetCountByDate failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

func TestGetTotalByMode(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := store.Increment(ModeServe); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	total, err := store.GetTotalByMode(ModeServe)
	if err != nil {
		t.Fatalf("GetTotalByMode failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}

	total, err = store.GetTotalByMode(ModeChat)
	if err != nil {
		t.Fatalf("GetTotalByMode failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected total 0 for unused mode, got %d", total)
	}
}

func TestGetAllTotals(t *testing.T) {
	store := newTestStore(t)

	if err := store.Increment(ModeQuery); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := store.Increment(ModeChat); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := store.Increment(ModeChat); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	totals, err := store.GetAllTotals()
	if err != nil {
		t.Fatalf("GetAllTotals failed: %v", err)
	}

	if totals[ModeQuery] != 1 {
		t.Errorf("Expected query total 1, got %d", totals[ModeQuery])
	}
	if totals[ModeChat] != 2 {
		t.Errorf("Expected chat total 2, got %d", totals[ModeChat])
	}
	if totals[ModeServe] != 0 {
		t.Errorf("Expected serve total 0, got %d", totals[ModeServe])
	}
}

func TestIncrementAnswerSource(t *testing.T) {
	store := newTestStore(t)

	sources := []types.AnswerSource{
		types.AnswerSourceKnowledgeBase,
		types.AnswerSourceKnowledgeBase,
		types.AnswerSourceHybrid,
		types.AnswerSourceLLMOnly,
	}
	for _, source := range sources {
		if err := store.IncrementAnswerSource(source); err != nil {
			t.Fatalf("IncrementAnswerSource failed: %v", err)
		}
	}

	totals, err := store.GetAnswerSourceTotals()
	if err != nil {
		t.Fatalf("GetAnswerSourceTotals failed: %v", err)
	}

	if totals[types.AnswerSourceKnowledgeBase] != 2 {
		t.Errorf("Expected knowledge_base total 2, got %d", totals[types.AnswerSourceKnowledgeBase])
	}
	if totals[types.AnswerSourceHybrid] != 1 {
		t.Errorf("Expected hybrid total 1, got %d", totals[types.AnswerSourceHybrid])
	}
	if totals[types.AnswerSourceWebSearch] != 0 {
		t.Errorf("Expected web_search total 0, got %d", totals[types.AnswerSourceWebSearch])
	}
}

func TestCountsPersistAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_stats.db")

	store, err := NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStoreWithPath failed: %v", err)
	}
	if err := store.Increment(ModeQuery); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	total, err := store.GetTotalByMode(ModeQuery)
	if err != nil {
		t.Fatalf("GetTotalByMode failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected total 1 after reopen, got %d", total)
	}
}
