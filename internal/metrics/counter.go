package metrics

import (
	"log"
	"sync"

	"github.com/ptit-ai/unirag/internal/types"
)

var (
	globalStore *Store
	initOnce    sync.Once
	initErr     error
)

// Init initializes the global metrics store. Safe to call multiple times;
// subsequent calls are no-ops.
func Init() error {
	initOnce.Do(func() {
		globalStore, initErr = NewStore()
		if initErr != nil {
			log.Printf("metrics: failed to initialize store: %v", initErr)
		}
	})
	return initErr
}

// RecordInvocation increments the invocation count for the given mode.
// If the store cannot be initialized this is a no-op.
func RecordInvocation(mode Mode) {
	if globalStore == nil {
		if err := Init(); err != nil {
			log.Printf("metrics: cannot record invocation, store not initialized: %v", err)
			return
		}
	}

	if err := globalStore.Increment(mode); err != nil {
		log.Printf("metrics: failed to record invocation for %s: %v", mode, err)
	}
}

// RecordAnswerSource increments the outcome count for the given source.
// If the store cannot be initialized this is a no-op.
func RecordAnswerSource(source types.AnswerSource) {
	if globalStore == nil {
		if err := Init(); err != nil {
			log.Printf("metrics: cannot record answer source, store not initialized: %v", err)
			return
		}
	}

	if err := globalStore.IncrementAnswerSource(source); err != nil {
		log.Printf("metrics: failed to record answer source %s: %v", source, err)
	}
}

// GetStats returns cumulative invocation counts for all modes.
// Returns nil if the store is not initialized.
func GetStats() map[Mode]int64 {
	if globalStore == nil {
		return nil
	}

	stats, err := globalStore.GetAllTotals()
	if err != nil {
		log.Printf("metrics: failed to get stats: %v", err)
		return nil
	}

	return stats
}

// GetAnswerSourceStats returns cumulative outcome counts for all sources.
// Returns nil if the store is not initialized.
func GetAnswerSourceStats() map[types.AnswerSource]int64 {
	if globalStore == nil {
		return nil
	}

	stats, err := globalStore.GetAnswerSourceTotals()
	if err != nil {
		log.Printf("metrics: failed to get answer source stats: %v", err)
		return nil
	}

	return stats
}

// Close closes the global metrics store. Call at application shutdown.
func Close() error {
	if globalStore != nil {
		return globalStore.Close()
	}
	return nil
}

// SetStoreForTesting sets the global store instance for testing purposes.
func SetStoreForTesting(store *Store) {
	globalStore = store
}

// ResetForTesting resets the global state for testing purposes.
func ResetForTesting() {
	if globalStore != nil {
		_ = globalStore.Close()
	}
	globalStore = nil
	initOnce = sync.Once{}
	initErr = nil
}
