// Package enumerator discovers every profile on the site by walking the id
// space outward from a fixed origin, one direction at a time. Termination
// and retry policy live here, in one inspectable state machine, rather than
// inside fetch loops.
package enumerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"OlympiaTracker/internal/config"
	"OlympiaTracker/internal/domain"
	"OlympiaTracker/internal/ports"
)

// Direction is one of the two independent scan directions.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Ascending {
		return "ascending"
	}
	return "descending"
}

func (d Direction) step() int {
	if d == Ascending {
		return 1
	}
	return -1
}

// Enumerator scans both id ranges to exhaustion. The only stop condition per
// direction is the site's not-found answer; transient failures are retried
// with backoff and, once retries are spent, abort the whole scan as a
// distinct outcome: a network blip never masquerades as end-of-range.
type Enumerator struct {
	fetcher    ports.ProfileFetcher
	origin     int
	maxRetries int
	interval   time.Duration
	logger     *slog.Logger
}

// New wires a profile fetcher with scan configuration.
func New(fetcher ports.ProfileFetcher, cfg config.ScanConfig, logger *slog.Logger) *Enumerator {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 4
	}
	return &Enumerator{
		fetcher:    fetcher,
		origin:     cfg.OriginID,
		maxRetries: maxRetries,
		interval:   500 * time.Millisecond,
		logger:     logger,
	}
}

// Enumerate runs both directions sequentially: ascending from origin+1,
// then descending from origin-1. It returns every discovered character, in
// probe order.
func (e *Enumerator) Enumerate(ctx context.Context) ([]domain.Character, error) {
	var all []domain.Character

	for _, dir := range []Direction{Ascending, Descending} {
		found, err := e.scan(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", dir, err)
		}
		all = append(all, found...)
	}

	e.info("enumeration complete", "characters", len(all))
	return all, nil
}

// scan advances one direction's cursor until the site answers not-found.
// Cancellation is checked between cursors so a long scan stays boundable.
func (e *Enumerator) scan(ctx context.Context, dir Direction) ([]domain.Character, error) {
	var found []domain.Character

	cursor := e.origin + dir.step()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		character, err := e.fetchWithRetry(ctx, cursor)
		if errors.Is(err, domain.ErrNotFound) {
			e.info("direction exhausted", "direction", dir.String(), "cursor", cursor)
			return found, nil
		}
		if err != nil {
			return nil, err
		}

		found = append(found, character)
		cursor += dir.step()
	}
}

// fetchWithRetry probes one id, retrying transient failures with exponential
// backoff. Not-found is permanent by definition and returns immediately.
func (e *Enumerator) fetchWithRetry(ctx context.Context, targetID int) (domain.Character, error) {
	var character domain.Character

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.interval

	operation := func() error {
		var err error
		character, err = e.fetcher.FetchProfile(ctx, targetID)
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			return backoff.Permanent(err)
		}
		e.warn("probe failed, retrying", "target_id", targetID, "error", err)
		return err
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.WithContext(policy, ctx), uint64(e.maxRetries-1)))
	if err != nil {
		return domain.Character{}, err
	}
	return character, nil
}

func (e *Enumerator) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Enumerator) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
