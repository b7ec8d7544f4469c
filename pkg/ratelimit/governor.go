package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"redditstats/pkg/logger"
)

// Response headers the API uses to report quota
const (
	HeaderRemaining = "X-Ratelimit-Remaining"
	HeaderReset     = "X-Ratelimit-Reset"
	HeaderUsed      = "X-Ratelimit-Used"
)

// Defaults for the reference deployment: 90 requests per 60 seconds, back
// off once fewer than 2 requests remain in the window.
const (
	DefaultRequestsPerMinute = 90
	DefaultRemainingFloor    = 2
)

// Clock abstracts time so tests can run without sleeping
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Governor owns the rate state of one transport. It spaces requests at least
// Interval apart and, when a response reports nearly exhausted quota, holds
// the next request back until the server's reset window has passed.
type Governor struct {
	interval       time.Duration
	remainingFloor float64
	clock          Clock
	logger         logger.Logger

	mu          sync.Mutex
	lastRequest time.Time
	forcedWait  time.Duration
}

// Option configures a Governor
type Option func(*Governor)

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(g *Governor) { g.clock = c }
}

// WithLogger sets the logger used to report waits
func WithLogger(l logger.Logger) Option {
	return func(g *Governor) { g.logger = l }
}

// WithRemainingFloor sets the quota level below which the governor backs off
func WithRemainingFloor(floor float64) Option {
	return func(g *Governor) { g.remainingFloor = floor }
}

// NewGovernor creates a governor allowing requestsPerMinute requests per
// minute. Non-positive values fall back to DefaultRequestsPerMinute.
func NewGovernor(requestsPerMinute int, opts ...Option) *Governor {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	g := &Governor{
		interval:       time.Minute / time.Duration(requestsPerMinute),
		remainingFloor: DefaultRemainingFloor,
		clock:          realClock{},
		logger:         logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Interval returns the minimum spacing between two requests
func (g *Governor) Interval() time.Duration {
	return g.interval
}

// Wait blocks until the next request may be sent. A pending forced wait is
// served first and cleared, then the minimum interval since the last
// completed request is enforced. It returns ctx.Err() if ctx is cancelled
// while sleeping.
func (g *Governor) Wait(ctx context.Context) error {
	g.mu.Lock()
	forced := g.forcedWait
	g.forcedWait = 0
	g.mu.Unlock()

	if forced > 0 {
		g.logger.WarnWithFields("request quota nearly exhausted, waiting for reset", map[string]interface{}{
			"wait": forced,
		})
		if err := g.sleep(ctx, forced); err != nil {
			return err
		}
		g.logger.Info("resuming requests")
	}

	g.mu.Lock()
	last := g.lastRequest
	g.mu.Unlock()

	if last.IsZero() {
		return nil
	}

	if elapsed := g.clock.Now().Sub(last); elapsed < g.interval {
		return g.sleep(ctx, g.interval-elapsed)
	}
	return nil
}

// Observe records a completed HTTP transaction. It must be called for every
// response, successful or not.
func (g *Governor) Observe(header http.Header) {
	wait := forcedWaitFrom(header, g.remainingFloor)

	g.mu.Lock()
	g.lastRequest = g.clock.Now()
	g.forcedWait = wait
	g.mu.Unlock()

	if wait > 0 {
		g.logger.DebugWithFields("server signalled low quota", map[string]interface{}{
			"remaining": header.Get(HeaderRemaining),
			"used":      header.Get(HeaderUsed),
			"reset":     header.Get(HeaderReset),
		})
	}
}

// State returns the last request time and the pending forced wait
func (g *Governor) State() (time.Time, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRequest, g.forcedWait
}

func (g *Governor) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.clock.After(d):
		return nil
	}
}

// forcedWaitFrom computes the backoff requested by a response. Missing or
// malformed headers mean no backoff.
func forcedWaitFrom(header http.Header, floor float64) time.Duration {
	if header == nil {
		return 0
	}

	rawRemaining := header.Get(HeaderRemaining)
	if rawRemaining == "" {
		return 0
	}
	remaining, err := strconv.ParseFloat(rawRemaining, 64)
	if err != nil || remaining >= floor {
		return 0
	}

	reset, err := strconv.ParseFloat(header.Get(HeaderReset), 64)
	if err != nil || reset <= 0 {
		return 0
	}
	return time.Duration(reset * float64(time.Second))
}
