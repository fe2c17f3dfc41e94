// Package storage persists audit rows and queue entries. Every analysis
// writes one analysis_logs row; blocked and waiting dispositions also write
// to their queue table.
package storage

import (
	"context"
	"errors"
	"fmt"

	"irps-content-analyzer/internal/models"
)

// ErrPersistence wraps every failed write. Callers test for it with
// errors.Is to tell storage failures apart from input errors.
var ErrPersistence = errors.New("persistence error")

const (
	KindPostgres = "postgres"
	KindMemory   = "memory"
)

type Store interface {
	SaveAnalysisLog(ctx context.Context, rec models.AnalysisLog) error
	SaveBlocked(ctx context.Context, rec models.QueueRecord) error
	SaveWaiting(ctx context.Context, rec models.QueueRecord) error
	Migrate(ctx context.Context) error
	Kind() string
	Close() error
}

func wrapPersistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
