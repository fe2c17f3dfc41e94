package analyzer

import (
	"context"
	"errors"
	"sync"

	"irps-content-analyzer/internal/models"
)

const DefaultBatchConcurrency = 10

// BatchItem is one line of a batch run. Result is set whenever the
// pipeline ran, including runs whose persistence failed.
type BatchItem struct {
	URL    string         `json:"url"`
	Result *models.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// AnalyzeBatch runs independent analyses with bounded concurrency and
// returns items in input order.
func (s *Service) AnalyzeBatch(ctx context.Context, urls []string, concurrency int) []BatchItem {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	results := make([]BatchItem, len(urls))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, u := range urls {
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer func() { <-sem; wg.Done() }()
			results[i] = s.analyzeOne(ctx, u)
		}()
	}
	wg.Wait()
	return results
}

func (s *Service) analyzeOne(ctx context.Context, raw string) BatchItem {
	u, err := NormalizeURL(raw)
	if err != nil {
		return BatchItem{URL: raw, Error: err.Error()}
	}
	res, err := s.Analyze(ctx, u)
	item := BatchItem{URL: u}
	if err != nil {
		item.Error = err.Error()
		if errors.Is(err, ErrInvalidURL) {
			return item
		}
	}
	item.Result = &res
	return item
}
