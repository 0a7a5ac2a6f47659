// Package bus carries request/response traffic between the two isolated
// execution contexts: the coordinator, which decides what to sync, and the
// scraper, which is the only side allowed to touch the site. Every exchange
// is a single request paired with exactly one response or a timeout; nothing
// streams across the boundary.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"OlympiaTracker/internal/domain"
)

// Op identifies a scrape operation.
type Op string

const (
	OpEnumerate   Op = "enumerate_characters"
	OpActivityLog Op = "fetch_activity_log"
	OpForumTree   Op = "fetch_forum_tree"
)

// Request asks the scraper context to run one operation.
type Request struct {
	ID      string              `json:"id"`
	Op      Op                  `json:"op"`
	Section domain.ForumSection `json:"section,omitempty"`
}

// Result answers exactly one Request, correlated by ID. Err travels as text:
// the contexts share no memory, so no error values cross the boundary.
type Result struct {
	ID         string             `json:"id"`
	Characters []domain.Character `json:"characters,omitempty"`
	Events     []domain.Event     `json:"events,omitempty"`
	Forums     []domain.Forum     `json:"forums,omitempty"`
	Err        string             `json:"err,omitempty"`
}

// Bus is the channel pair between the two contexts, with per-request reply
// routing. One outstanding request per logical operation.
type Bus struct {
	requests chan Request
	timeout  time.Duration

	mu      sync.Mutex
	pending map[string]chan Result
}

// New creates a bus whose calls give up after timeout.
func New(timeout time.Duration) *Bus {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Bus{
		requests: make(chan Request, 1),
		timeout:  timeout,
		pending:  map[string]chan Result{},
	}
}

// Call sends one request and blocks for its response. A missing response
// within the deadline surfaces as domain.ErrBusTimeout; the operation is
// aborted and must be re-triggered by the operator.
func (b *Bus) Call(ctx context.Context, req Request) (Result, error) {
	req.ID = uuid.NewString()

	reply := make(chan Result, 1)
	b.mu.Lock()
	b.pending[req.ID] = reply
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
	}()

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case b.requests <- req:
	case <-timer.C:
		return Result{}, domain.ErrBusTimeout
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case res := <-reply:
		return res, nil
	case <-timer.C:
		return Result{}, domain.ErrBusTimeout
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Next blocks until a request is available or the context ends. The scraper
// worker is the only consumer.
func (b *Bus) Next(ctx context.Context) (Request, error) {
	select {
	case req := <-b.requests:
		return req, nil
	case <-ctx.Done():
		return Request{}, ctx.Err()
	}
}

// Reply routes a result to its waiting caller. Results for requests nobody
// waits on anymore (caller timed out) are dropped.
func (b *Bus) Reply(res Result) {
	b.mu.Lock()
	reply, ok := b.pending[res.ID]
	b.mu.Unlock()
	if !ok {
		return
	}

	select {
	case reply <- res:
	default:
	}
}
