package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"irps-content-analyzer/internal/models"
)

//go:embed schema.sql
var schemaSQL string

const pingTimeout = 5 * time.Second

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenPostgres connects and pings the database.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// PostgresStore writes through a circuit breaker. Writes are never retried;
// an open breaker fails fast with ErrPersistence.
type PostgresStore struct {
	db      *sqlx.DB
	breaker circuitBreaker
}

func NewPostgresStore(db *sqlx.DB, cfg BreakerConfig) *PostgresStore {
	return &PostgresStore{db: db, breaker: newCircuitBreaker("postgres-store", cfg)}
}

func (s *PostgresStore) Kind() string { return KindPostgres }

func (s *PostgresStore) Close() error { return s.db.Close() }

// Migrate creates the tables when they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrPersistence, err)
	}
	return nil
}

const insertAnalysisLog = `INSERT INTO analysis_logs
	(id, url, analysis_result, confidence_score, detected_keywords, processing_time_ms, ai_model_version,
	 degraded, fetch_failure, analysis_timestamp)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (s *PostgresStore) SaveAnalysisLog(ctx context.Context, rec models.AnalysisLog) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = time.Now().UTC()
	}
	err := s.breaker.Execute(func() error {
		_, err := s.db.ExecContext(ctx, insertAnalysisLog,
			rec.ID, rec.URL, string(rec.AnalysisResult), rec.ConfidenceScore,
			pq.Array(nonNil(rec.DetectedKeywords)), rec.ProcessingTimeMs, rec.ModelVersion,
			rec.Degraded, rec.FetchFailure, rec.AnalyzedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: insert analysis log: %w", ErrPersistence, err)
	}
	return nil
}

// queueTable names a queue and the column holding its insertion time.
type queueTable struct {
	name       string
	timeColumn string
}

var (
	blockedSites = queueTable{name: "blocked_sites", timeColumn: "blocked_at"}
	waitingList  = queueTable{name: "waiting_list", timeColumn: "added_at"}
)

func (s *PostgresStore) SaveBlocked(ctx context.Context, rec models.QueueRecord) error {
	return s.insertQueue(ctx, blockedSites, rec)
}

// SaveWaiting leaves reviewed at its column default of false.
func (s *PostgresStore) SaveWaiting(ctx context.Context, rec models.QueueRecord) error {
	return s.insertQueue(ctx, waitingList, rec)
}

// Only the two queueTable values above reach the query text.
func (s *PostgresStore) insertQueue(ctx context.Context, table queueTable, rec models.QueueRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	details, err := json.Marshal(rec.AnalysisDetails)
	if err != nil {
		return fmt.Errorf("%w: encode analysis details: %w", ErrPersistence, err)
	}
	query := `INSERT INTO ` + table.name + `
	(id, url, detected_content, confidence_score, site_type, detected_language, content_category, analysis_details, ` + table.timeColumn + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	err = s.breaker.Execute(func() error {
		_, err := s.db.ExecContext(ctx, query,
			rec.ID, rec.URL, pq.Array(nonNil(rec.DetectedContent)), rec.ConfidenceScore,
			string(rec.SiteType), string(rec.DetectedLanguage), rec.ContentCategory, string(details), rec.CreatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: insert %s: %w", ErrPersistence, table.name, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
