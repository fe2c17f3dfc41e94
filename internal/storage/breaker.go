package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig trips the breaker after MaxFailures consecutive write
// failures and keeps it open for Timeout.
type BreakerConfig struct {
	MaxFailures uint32
	Timeout     time.Duration
}

type circuitBreaker interface {
	Execute(fn func() error) error
}

type breakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

func newCircuitBreaker(name string, cfg BreakerConfig) circuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a caller giving up says nothing about the database
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &breakerWrapper{breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breakerWrapper) Execute(fn func() error) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", b.breaker.Name(), err)
	}
	return nil
}
