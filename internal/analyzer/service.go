// Package analyzer runs the fetch, extract, detect, classify, route and
// persist pipeline for one submitted URL.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"irps-content-analyzer/internal/classifier"
	"irps-content-analyzer/internal/language"
	"irps-content-analyzer/internal/models"
	"irps-content-analyzer/internal/parser"
	"irps-content-analyzer/internal/router"
	"irps-content-analyzer/internal/storage"
	"irps-content-analyzer/internal/telemetry"
	"irps-content-analyzer/pkg/logger"
)

const (
	// writes outlive the request so an abandoned call still leaves its audit row
	persistTimeout = 10 * time.Second

	depthDeepScrape = "deep_scrape"
	depthURLOnly    = "url_only"
)

// Fetcher never fails: unreachable pages come back degraded.
type Fetcher interface {
	FetchOrFallback(ctx context.Context, rawURL string) models.RawPage
}

type Service struct {
	fetcher    Fetcher
	parser     *parser.Parser
	classifier *classifier.Classifier
	store      storage.Store
	telemetry  *telemetry.Provider
	log        *logger.Logger
}

type Option func(*Service)

func WithClassifier(c *classifier.Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithTelemetry(p *telemetry.Provider) Option {
	return func(s *Service) { s.telemetry = p }
}

func New(fetcher Fetcher, store storage.Store, opts ...Option) *Service {
	s := &Service{
		fetcher:    fetcher,
		parser:     parser.New(),
		classifier: classifier.New(),
		store:      store,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.telemetry == nil {
		s.telemetry = telemetry.NewProvider(nil)
	}
	return s
}

// Analyze runs the whole pipeline. Fetch failures never surface here. An
// error wrapping storage.ErrPersistence comes with a complete Result.
func (s *Service) Analyze(ctx context.Context, rawURL string) (models.Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return models.Result{}, ErrInvalidURL
	}
	start := time.Now()

	ctx, span := s.telemetry.StartSpan(ctx, "analyzer.Analyze", attribute.String("url", rawURL))
	defer span.End()
	log := s.log.With(logger.String("url", rawURL))

	raw := s.fetch(ctx, rawURL, log)

	_, extractSpan := s.telemetry.StartSpan(ctx, "parser.Extract")
	scraped := s.parser.Extract(raw)
	lang := language.Detect(scraped.Content)
	extractSpan.SetAttributes(attribute.String("language", string(lang)))
	extractSpan.End()

	_, classifySpan := s.telemetry.StartSpan(ctx, "classifier.Classify")
	analysis := s.classifier.Classify(scraped, rawURL, lang)
	classifySpan.End()

	disposition := router.Route(analysis)
	analyzedAt := time.Now().UTC()

	res := models.Result{
		Success:          true,
		AnalysisID:       uuid.NewString(),
		URL:              rawURL,
		Status:           disposition,
		Confidence:       analysis.ConfidenceScore,
		DetectedContent:  analysis.DetectedThreats,
		RiskLevel:        analysis.RiskLevel,
		DetectedLanguage: analysis.DetectedLanguage,
		ContentCategory:  analysis.ContentCategory,
		SiteType:         router.SiteType(rawURL),
		Details:          analysis.Details,
		FetchFailure:     raw.FailureKind,
		ScrapedData: models.ScrapedSummary{
			Title:         scraped.Title,
			ContentLength: utf8.RuneCountInString(scraped.Content),
			ImageCount:    len(scraped.Images),
			LinkCount:     len(scraped.Links),
		},
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		AnalyzedAt:       analyzedAt,
	}
	span.SetAttributes(
		attribute.String("disposition", string(disposition)),
		attribute.String("risk_level", string(analysis.RiskLevel)),
		attribute.Int("confidence", analysis.ConfidenceScore),
	)
	log.Info("analysis complete",
		logger.String("status", string(disposition)),
		logger.String("risk_level", string(analysis.RiskLevel)),
		logger.Int("confidence", analysis.ConfidenceScore),
		logger.String("language", string(lang)),
		logger.Strings("threats", analysis.DetectedThreats),
	)

	err := s.persist(ctx, res, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
	}

	s.telemetry.RecordThreats(ctx, analysis.DetectedThreats)
	s.telemetry.RecordAnalysis(ctx, string(disposition), string(analysis.RiskLevel), string(lang), time.Since(start))
	return res, err
}

func (s *Service) fetch(ctx context.Context, rawURL string, log *logger.Logger) models.RawPage {
	ctx, span := s.telemetry.StartSpan(ctx, "crawler.Fetch")
	defer span.End()

	log.Debugf("fetching %s", rawURL)
	raw := s.fetcher.FetchOrFallback(ctx, rawURL)
	span.SetAttributes(attribute.Bool("degraded", raw.Degraded), attribute.Int("status_code", raw.StatusCode))
	if raw.Degraded {
		log.Warn("fetch degraded to url-only analysis",
			logger.String("kind", raw.FailureKind), logger.String("reason", raw.FailureReason))
		s.telemetry.RecordDegradedFetch(ctx, raw.FailureKind)
	} else {
		log.Debugf("fetched %s in %s", raw.FinalURL, raw.FetchDuration)
	}
	return raw
}

// persist writes the audit row and, for blocked or waiting results, the
// queue row. Both writes are attempted; failures are joined.
func (s *Service) persist(ctx context.Context, res models.Result, log *logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	ctx, span := s.telemetry.StartSpan(ctx, "storage.Persist", attribute.String("store", s.store.Kind()))
	defer span.End()

	var errs []error
	if err := s.store.SaveAnalysisLog(ctx, auditRecord(res)); err != nil {
		errs = append(errs, s.persistFailure(ctx, "analysis_log", err, log))
	}

	switch res.Status {
	case models.Blocked:
		if err := s.store.SaveBlocked(ctx, queueRecord(res, blockedDetails(res))); err != nil {
			errs = append(errs, s.persistFailure(ctx, "blocked_site", err, log))
		}
	case models.Waiting:
		if err := s.store.SaveWaiting(ctx, queueRecord(res, waitingDetails(res))); err != nil {
			errs = append(errs, s.persistFailure(ctx, "waiting_list", err, log))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) persistFailure(ctx context.Context, record string, err error, log *logger.Logger) error {
	if !errors.Is(err, storage.ErrPersistence) {
		err = fmt.Errorf("%w: %s: %w", storage.ErrPersistence, record, err)
	}
	log.Error("persistence failed", logger.String("record", record), logger.Err(err))
	s.telemetry.RecordPersistenceFailure(ctx, record)
	return err
}

func auditRecord(res models.Result) models.AnalysisLog {
	return models.AnalysisLog{
		ID:               res.AnalysisID,
		URL:              res.URL,
		AnalysisResult:   res.Status,
		ConfidenceScore:  res.Confidence,
		DetectedKeywords: res.DetectedContent,
		ProcessingTimeMs: res.ProcessingTimeMs,
		ModelVersion:     models.ModelVersion,
		Degraded:         res.Details.Degraded,
		FetchFailure:     res.FetchFailure,
		AnalyzedAt:       res.AnalyzedAt,
	}
}

func queueRecord(res models.Result, details map[string]any) models.QueueRecord {
	return models.QueueRecord{
		ID:               uuid.NewString(),
		URL:              res.URL,
		DetectedContent:  res.DetectedContent,
		ConfidenceScore:  res.Confidence,
		SiteType:         res.SiteType,
		DetectedLanguage: res.DetectedLanguage,
		ContentCategory:  res.ContentCategory,
		AnalysisDetails:  details,
		CreatedAt:        res.AnalyzedAt,
	}
}

func blockedDetails(res models.Result) map[string]any {
	depth := depthDeepScrape
	if res.Details.Degraded {
		depth = depthURLOnly
	}
	return map[string]any{
		"model":            models.ModelVersion,
		"timestamp":        res.AnalyzedAt.Format(time.RFC3339Nano),
		"analysis_depth":   depth,
		"threat_level":     string(res.RiskLevel),
		"scraping_details": res.Details,
	}
}

func waitingDetails(res models.Result) map[string]any {
	return map[string]any{
		"model":                 models.ModelVersion,
		"timestamp":             res.AnalyzedAt.Format(time.RFC3339Nano),
		"requires_human_review": true,
		"scraping_details":      res.Details,
	}
}
