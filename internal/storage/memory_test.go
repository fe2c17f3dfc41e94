package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irps-content-analyzer/internal/models"
)

func TestMemoryStoreRecords(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.SaveAnalysisLog(ctx, models.AnalysisLog{URL: "https://a.example"}))
	require.NoError(t, m.SaveBlocked(ctx, sampleQueueRecord()))
	require.NoError(t, m.SaveWaiting(ctx, models.QueueRecord{URL: "https://b.example"}))

	logs := m.AnalysisLogs()
	require.Len(t, logs, 1)
	assert.NotEmpty(t, logs[0].ID)
	assert.False(t, logs[0].AnalyzedAt.IsZero())

	require.Len(t, m.Blocked(), 1)
	assert.Equal(t, "3f0e8f7e-9b52-4c1a-9d7f-5c3e2a1b0c9d", m.Blocked()[0].ID)

	waiting := m.Waiting()
	require.Len(t, waiting, 1)
	assert.NotEmpty(t, waiting[0].ID)
	assert.False(t, waiting[0].CreatedAt.IsZero())
	assert.Equal(t, KindMemory, m.Kind())
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SaveAnalysisLog(ctx, models.AnalysisLog{URL: "https://a.example"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.AnalysisLogs())
}

func TestMemoryStoreConcurrentWrites(t *testing.T) {
	m := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.SaveAnalysisLog(context.Background(), models.AnalysisLog{URL: "https://a.example"})
		}()
	}
	wg.Wait()
	assert.Len(t, m.AnalysisLogs(), 50)
}
