package bus

import (
	"context"
	"errors"
	"log/slog"

	"OlympiaTracker/internal/domain"
	"OlympiaTracker/internal/ports"
)

// CharacterEnumerator is the slice of the scraper context the worker needs
// for full id-space discovery.
type CharacterEnumerator interface {
	Enumerate(ctx context.Context) ([]domain.Character, error)
}

// PageExtractor is the slice of the scraper context serving single-page
// operations.
type PageExtractor interface {
	FetchActivityLog(ctx context.Context) ([]domain.Event, error)
	FetchForumTree(ctx context.Context, section domain.ForumSection) ([]domain.Forum, error)
}

// Client implements ports.Extractor on the coordinator side by forwarding
// each operation over the bus and unpacking the single response.
type Client struct {
	bus *Bus
}

var _ ports.Extractor = (*Client)(nil)

// NewClient wraps a bus into the coordinator-facing extractor.
func NewClient(b *Bus) *Client {
	return &Client{bus: b}
}

// EnumerateCharacters requests a full id-space scan.
func (c *Client) EnumerateCharacters(ctx context.Context) ([]domain.Character, error) {
	res, err := c.bus.Call(ctx, Request{Op: OpEnumerate})
	if err != nil {
		return nil, err
	}
	if res.Err != "" {
		return nil, errors.New(res.Err)
	}
	return res.Characters, nil
}

// FetchActivityLog requests the current territory's log page.
func (c *Client) FetchActivityLog(ctx context.Context) ([]domain.Event, error) {
	res, err := c.bus.Call(ctx, Request{Op: OpActivityLog})
	if err != nil {
		return nil, err
	}
	if res.Err != "" {
		return nil, errors.New(res.Err)
	}
	return res.Events, nil
}

// FetchForumTree requests a fully drained section of the forum.
func (c *Client) FetchForumTree(ctx context.Context, section domain.ForumSection) ([]domain.Forum, error) {
	res, err := c.bus.Call(ctx, Request{Op: OpForumTree, Section: section})
	if err != nil {
		return nil, err
	}
	if res.Err != "" {
		return nil, errors.New(res.Err)
	}
	return res.Forums, nil
}

// Worker serves scrape requests inside the scraper context, one at a time,
// in arrival order. It owns the only references to the live scraper.
type Worker struct {
	bus        *Bus
	enumerator CharacterEnumerator
	extractor  PageExtractor
	logger     *slog.Logger
}

// NewWorker wires the scraper-context halves onto the bus.
func NewWorker(b *Bus, enumerator CharacterEnumerator, extractor PageExtractor, logger *slog.Logger) *Worker {
	return &Worker{bus: b, enumerator: enumerator, extractor: extractor, logger: logger}
}

// Serve pulls requests until the context ends. Each request produces exactly
// one reply; operation errors travel inside the Result, not as Serve errors.
func (w *Worker) Serve(ctx context.Context) error {
	for {
		req, err := w.bus.Next(ctx)
		if err != nil {
			return err
		}

		if w.logger != nil {
			w.logger.Debug("serving scrape request", "op", req.Op, "id", req.ID)
		}
		w.bus.Reply(w.handle(ctx, req))
	}
}

func (w *Worker) handle(ctx context.Context, req Request) Result {
	res := Result{ID: req.ID}

	var err error
	switch req.Op {
	case OpEnumerate:
		res.Characters, err = w.enumerator.Enumerate(ctx)
	case OpActivityLog:
		res.Events, err = w.extractor.FetchActivityLog(ctx)
	case OpForumTree:
		res.Forums, err = w.extractor.FetchForumTree(ctx, req.Section)
	default:
		res.Err = "unknown operation " + string(req.Op)
		return res
	}

	if err != nil {
		res.Err = err.Error()
	}
	return res
}
