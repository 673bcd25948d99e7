package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfloor/api/internal/ledger"
)

// Option configures a core service.
type Option func(*core)

// WithPublisher registers a publisher for committed changes.
func WithPublisher(p Publisher) Option {
	return func(c *core) {
		if p != nil {
			c.publishers = append(c.publishers, p)
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *core) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *core) {
		if now != nil {
			c.now = now
		}
	}
}

// core is shared by every service built on the same store.
type core struct {
	store      *ledger.Store
	publishers Publishers
	metrics    MetricsRecorder
	now        func() time.Time
}

func newCore(store *ledger.Store, opts []Option) core {
	c := core{
		store:   store,
		metrics: nopMetrics{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *core) observe(ctx context.Context, operation string, err error, start time.Time) {
	c.metrics.Observe(ctx, operation, err == nil, time.Since(start))
}

// idHexLen is the number of random hex digits in an id (64 bits).
const idHexLen = 16

// newID returns a prefixed identifier such as TRX-1A2B3C4D5E6F7081.
func newID(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:idHexLen])
}
