package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"irps-content-analyzer/internal/models"
)

// MemoryStore keeps records in process. It backs DSN-less runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	logs    []models.AnalysisLog
	blocked []models.QueueRecord
	waiting []models.QueueRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Kind() string { return KindMemory }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) SaveAnalysisLog(ctx context.Context, rec models.AnalysisLog) error {
	if err := ctx.Err(); err != nil {
		return wrapPersistence(err)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.logs = append(m.logs, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SaveBlocked(ctx context.Context, rec models.QueueRecord) error {
	return m.saveQueue(ctx, &m.blocked, rec)
}

func (m *MemoryStore) SaveWaiting(ctx context.Context, rec models.QueueRecord) error {
	return m.saveQueue(ctx, &m.waiting, rec)
}

func (m *MemoryStore) saveQueue(ctx context.Context, dst *[]models.QueueRecord, rec models.QueueRecord) error {
	if err := ctx.Err(); err != nil {
		return wrapPersistence(err)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	*dst = append(*dst, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) AnalysisLogs() []models.AnalysisLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.AnalysisLog(nil), m.logs...)
}

func (m *MemoryStore) Blocked() []models.QueueRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.QueueRecord(nil), m.blocked...)
}

func (m *MemoryStore) Waiting() []models.QueueRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.QueueRecord(nil), m.waiting...)
}
