// Package availability decides whether the remote store should be tried.
package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ModeProbe   = "probe"
	ModeTTL     = "ttl"
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// Prober checks that the remote resource answers.
type Prober interface {
	Probe(ctx context.Context) error
}

// Strategy reports whether the remote path should be used for the next operation.
type Strategy interface {
	Available(ctx context.Context) bool
}

type alwaysProbe struct {
	prober  Prober
	timeout time.Duration
	logger  *zap.Logger
}

// Always probes before every call, bounded by timeout.
func Always(p Prober, timeout time.Duration, logger *zap.Logger) Strategy {
	return &alwaysProbe{prober: p, timeout: timeout, logger: orNop(logger)}
}

func (a *alwaysProbe) Available(ctx context.Context) bool {
	return probe(ctx, a.prober, a.timeout, a.logger)
}

type cached struct {
	prober  Prober
	timeout time.Duration
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	group     singleflight.Group
	mtx       sync.RWMutex
	checked   time.Time
	available bool
}

// Cached reuses a probe result for ttl. Concurrent callers share a single
// in-flight probe.
func Cached(p Prober, timeout, ttl time.Duration, logger *zap.Logger) Strategy {
	return newCached(p, timeout, ttl, logger, time.Now)
}

func newCached(p Prober, timeout, ttl time.Duration, logger *zap.Logger, now func() time.Time) *cached {
	return &cached{prober: p, timeout: timeout, ttl: ttl, logger: orNop(logger), now: now}
}

func (c *cached) Available(ctx context.Context) bool {
	if ok, fresh := c.last(); fresh {
		return ok
	}

	v, _, _ := c.group.Do("probe", func() (interface{}, error) {
		if ok, fresh := c.last(); fresh {
			return ok, nil
		}
		// The result outlives this caller, so its cancellation must not decide it.
		ok := probe(context.WithoutCancel(ctx), c.prober, c.timeout, c.logger)
		c.mtx.Lock()
		c.available = ok
		c.checked = c.now()
		c.mtx.Unlock()
		return ok, nil
	})
	return v.(bool)
}

func (c *cached) last() (available, fresh bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	if c.checked.IsZero() || c.now().Sub(c.checked) >= c.ttl {
		return false, false
	}
	return c.available, true
}

type forced bool

// Forced always gives the same answer.
func Forced(available bool) Strategy {
	return forced(available)
}

func (f forced) Available(context.Context) bool {
	return bool(f)
}

// New builds the strategy named by mode.
func New(mode string, p Prober, timeout, ttl time.Duration, logger *zap.Logger) (Strategy, error) {
	switch mode {
	case "", ModeProbe:
		return Always(p, timeout, logger), nil
	case ModeTTL:
		return Cached(p, timeout, ttl, logger), nil
	case ModeOnline:
		return Forced(true), nil
	case ModeOffline:
		return Forced(false), nil
	default:
		return nil, fmt.Errorf("unknown availability mode %q", mode)
	}
}

func probe(ctx context.Context, p Prober, timeout time.Duration, logger *zap.Logger) bool {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := p.Probe(ctx); err != nil {
		logger.Debug("remote unavailable", zap.Error(err))
		return false
	}
	return true
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
