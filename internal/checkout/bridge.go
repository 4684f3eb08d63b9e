// Package checkout bridges the flow engine to the PayDunya hosted
// checkout. The bridge owns no payment state; it relays provider events
// back into waiting flow sessions.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"

	"github.com/ccotek/cocoti-pool-flow/internal/config"
	"github.com/ccotek/cocoti-pool-flow/internal/logger"
)

// OutcomeKind terminal checkout result
type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome checkout result relayed to the flow
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Message string      `json:"message,omitempty"`
}

// Event provider callback event, keyed by the invoice token
type Event struct {
	Ref     string `json:"ref"`
	Kind    string `json:"kind"` // completed, cancelled, failed
	Message string `json:"message,omitempty"`
}

// Processor consumes resolved checkout events
type Processor interface {
	Name() string
	Handle(evt Event, outcome Outcome) error
}

// Config one checkout transaction
type Config struct {
	PublicKey     string
	InvoiceToken  string
	Amount        decimal.Decimal
	Currency      string
	CustomerName  string
	CustomerPhone string
	HostedURL     string // provider-hosted page, used as fallback
}

// Session an opened checkout awaiting its outcome
type Session struct {
	Ref      string
	Config   Config
	Fallback bool // script probe failed; client must redirect to HostedURL

	outcome chan Outcome
	once    sync.Once
}

func (s *Session) resolve(o Outcome) {
	s.once.Do(func() {
		s.outcome <- o
	})
}

// Await blocks until the provider reports an outcome, the context is
// cancelled, or the bridge timeout elapses
func (s *Session) Await(ctx context.Context, timeout time.Duration) (Outcome, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-s.outcome:
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case <-timer.C:
		return Outcome{}, errors.New("checkout timed out waiting for provider outcome")
	}
}

// Bridge dispatches provider events to sessions and processors
type Bridge struct {
	scriptURL  string
	timeout    time.Duration
	httpClient *http.Client
	pool       *ants.Pool

	mu         sync.Mutex
	loaded     map[string]error
	sessions   map[string]*Session
	processors []Processor
}

// New creates a checkout bridge with its dispatch worker pool
func New(cfg config.PayDunyaConfig) (*Bridge, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch pool: %w", err)
	}

	timeout := time.Duration(cfg.CheckoutTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Bridge{
		scriptURL:  cfg.ScriptURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		pool:       pool,
		loaded:     make(map[string]error),
		sessions:   make(map[string]*Session),
	}, nil
}

// Timeout default await timeout
func (b *Bridge) Timeout() time.Duration {
	return b.timeout
}

// RegisterProcessor adds an event processor
func (b *Bridge) RegisterProcessor(p Processor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.processors = append(b.processors, p)
}

// EnsureLoaded probes the checkout script URL, once per URL. Repeat
// calls return the memoized result.
func (b *Bridge) EnsureLoaded(ctx context.Context) error {
	b.mu.Lock()
	if result, ok := b.loaded[b.scriptURL]; ok {
		b.mu.Unlock()
		return result
	}
	b.mu.Unlock()

	err := b.probe(ctx, b.scriptURL)

	b.mu.Lock()
	b.loaded[b.scriptURL] = err
	b.mu.Unlock()
	return err
}

func (b *Bridge) probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("checkout script unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("checkout script unreachable: %s", resp.Status)
	}
	return nil
}

// Open registers a checkout session keyed by the invoice token. When
// the script probe fails the session is flagged for the hosted-URL
// redirect fallback; events still resolve it through the callback.
func (b *Bridge) Open(ctx context.Context, cfg Config) *Session {
	session := &Session{
		Ref:     cfg.InvoiceToken,
		Config:  cfg,
		outcome: make(chan Outcome, 1),
	}

	if err := b.EnsureLoaded(ctx); err != nil {
		logger.Warn("Checkout script probe failed, falling back to hosted checkout: %v", err)
		session.Fallback = true
	}

	b.mu.Lock()
	b.sessions[session.Ref] = session
	b.mu.Unlock()
	return session
}

// Resolve dispatches a provider event to its session and to every
// registered processor on the worker pool
func (b *Bridge) Resolve(evt Event) error {
	b.mu.Lock()
	session, ok := b.sessions[evt.Ref]
	processors := make([]Processor, len(b.processors))
	copy(processors, b.processors)
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown checkout reference: %s", evt.Ref)
	}

	outcome := outcomeFromEvent(evt)

	return b.pool.Submit(func() {
		session.resolve(outcome)
		for _, p := range processors {
			if err := p.Handle(evt, outcome); err != nil {
				logger.Error("Checkout processor %s failed: %v", p.Name(), err)
			}
		}
		// every provider event is terminal for its session; a retry
		// after cancellation opens a fresh session
		b.forget(evt.Ref)
	})
}

func (b *Bridge) forget(ref string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, ref)
}

func outcomeFromEvent(evt Event) Outcome {
	switch evt.Kind {
	case "completed", "success":
		return Outcome{Kind: OutcomeSuccess}
	case "cancelled", "canceled":
		return Outcome{Kind: OutcomeCancelled, Message: "payment cancelled"}
	default:
		message := evt.Message
		if message == "" {
			message = "payment failed"
		}
		return Outcome{Kind: OutcomeFailed, Message: message}
	}
}

// Close releases the dispatch pool
func (b *Bridge) Close() {
	b.pool.Release()
}
