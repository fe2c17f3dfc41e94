// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"irps-content-analyzer/internal/analyzer"
	"irps-content-analyzer/internal/models"
	"irps-content-analyzer/internal/storage"
	"irps-content-analyzer/pkg/logger"
)

const maxBatchURLs = 100

// Analyzer is the pipeline as seen by the handlers.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (models.Result, error)
	AnalyzeBatch(ctx context.Context, urls []string, concurrency int) []analyzer.BatchItem
}

type Handler struct {
	svc              Analyzer
	storeKind        string
	batchConcurrency int
	log              *logger.Logger
}

func NewHandler(svc Analyzer, storeKind string, batchConcurrency int, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{svc: svc, storeKind: storeKind, batchConcurrency: batchConcurrency, log: log}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

// Analyze handles POST /analyze {"url": "..."}.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorOutcome(c, http.StatusBadRequest, analyzer.ErrInvalidURL.Error(), nil)
		return
	}
	u, err := analyzer.NormalizeURL(req.URL)
	if err != nil {
		errorOutcome(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	res, err := h.svc.Analyze(c.Request.Context(), u)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, analyzer.ErrInvalidURL):
		errorOutcome(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, storage.ErrPersistence):
		errorOutcome(c, http.StatusBadGateway, "analysis completed but could not be saved: "+err.Error(), &res)
	default:
		h.log.Error("analysis failed", logger.String("url", u), logger.Err(err))
		errorOutcome(c, http.StatusInternalServerError, err.Error(), nil)
	}
}

// AnalyzeBatch handles POST /analyze/batch {"urls": [...]}.
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.URLs) == 0 {
		errorOutcome(c, http.StatusBadRequest, "urls must be a non-empty list", nil)
		return
	}
	if len(req.URLs) > maxBatchURLs {
		errorOutcome(c, http.StatusBadRequest, "too many urls in one batch", nil)
		return
	}
	items := h.svc.AnalyzeBatch(c.Request.Context(), req.URLs, h.batchConcurrency)
	c.JSON(http.StatusOK, gin.H{
		"count":   len(items),
		"results": items,
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.storeKind})
}

func errorOutcome(c *gin.Context, code int, msg string, analysis *models.Result) {
	c.AbortWithStatusJSON(code, models.ErrorOutcome{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Analysis:  analysis,
	})
}
