// Package connectivity tracks whether the remote store is reachable.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/cron"
)

const (
	ProbeJobName        = "connectivity_probe"
	DefaultProbeTimeout = 5 * time.Second
)

// Pinger is satisfied by remote.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor keeps the result of the last reachability probe. It starts offline,
// so the first successful probe counts as a reconnect.
type Monitor struct {
	pinger  Pinger
	timeout time.Duration
	logger  *slog.Logger

	mu          sync.RWMutex
	online      bool
	lastErr     error
	lastProbe   time.Time
	onReconnect []func(ctx context.Context)
}

type Option func(*Monitor)

func WithProbeTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

func NewMonitor(pinger Pinger, opts ...Option) *Monitor {
	m := &Monitor{
		pinger:  pinger,
		timeout: DefaultProbeTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Online reports the last observed state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Status is a snapshot for display.
type Status struct {
	Online    bool
	LastProbe time.Time
	LastError error
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{Online: m.online, LastProbe: m.lastProbe, LastError: m.lastErr}
}

// OnReconnect registers fn to run on every offline to online transition.
func (m *Monitor) OnReconnect(fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnect = append(m.onReconnect, fn)
}

// Probe pings the remote store once and records the outcome. It never returns
// the ping error, so an unreachable server does not count as a failed job.
func (m *Monitor) Probe(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.pinger.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	m.set(ctx, err == nil, err)
	return nil
}

// SetOnline overrides the observed state, running reconnect callbacks on an
// offline to online transition.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.set(ctx, online, nil)
}

func (m *Monitor) set(ctx context.Context, online bool, probeErr error) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	m.lastErr = probeErr
	m.lastProbe = time.Now()
	callbacks := append([]func(context.Context){}, m.onReconnect...)
	m.mu.Unlock()

	switch {
	case online && !wasOnline:
		m.logger.Info("Remote store reachable")
		for _, fn := range callbacks {
			fn(ctx)
		}
	case !online && wasOnline:
		m.logger.Warn("Remote store unreachable", "error", probeErr)
	}
}

// Register schedules Probe on s every interval.
func (m *Monitor) Register(s *cron.Scheduler, interval time.Duration) error {
	return s.AddJob(ProbeJobName, interval, m.Probe)
}
