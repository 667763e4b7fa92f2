// Package syncer forwards local writes to the remote store and replays the
// ones that could not be delivered.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/syncqueue"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/cron"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/remote"
)

const (
	DrainJobName         = "process_sync_queue"
	DefaultDrainInterval = 5 * time.Minute
	DefaultRemoteTimeout = remote.DefaultTimeout
)

// Reachability is satisfied by connectivity.Monitor. Probe refreshes the
// state reported by Online.
type Reachability interface {
	Online() bool
	Probe(ctx context.Context) error
	OnReconnect(fn func(ctx context.Context))
}

// Scheduler is satisfied by cron.Scheduler.
type Scheduler interface {
	AddJob(name string, interval time.Duration, fn cron.JobFunc) error
	Trigger(name string) bool
}

// LocalStores are the agent's SQLite repositories.
type LocalStores struct {
	Workers    store.LocalCapability[worker.Worker]
	Projects   store.LocalCapability[project.Project]
	Attendance store.LocalCapability[attendance.Attendance]
	Payments   store.LocalCapability[payment.Payment]
}

// RemoteStores are keyed by remote ids. remote.Client provides them.
type RemoteStores struct {
	Workers    store.Capability[worker.Worker]
	Projects   store.Capability[project.Project]
	Attendance store.Capability[attendance.Attendance]
	Payments   store.Capability[payment.Payment]
}

// DrainReport summarises one ProcessSyncQueue run.
type DrainReport struct {
	Replayed int `json:"replayed"`
	Requeued int `json:"requeued"`
	Buried   int `json:"buried"`
	// Skipped is set when the drain did not run: offline, or another drain in
	// progress in this process or another one sharing the database
	Skipped bool `json:"skipped"`
	// Interrupted is set when the remote store dropped out mid-drain
	Interrupted bool `json:"interrupted"`
}

type Option func(*Coordinator)

// WithRemoteTimeout bounds every remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.remoteTimeout = d }
}

// WithMaxAttempts buries an entry after n failed replays. 0 retries forever.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) { c.maxAttempts = n }
}

func WithDrainInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// Coordinator implements store.Syncer for the agent.
type Coordinator struct {
	queue    syncqueue.Queue
	reach    Reachability
	local    LocalStores
	bindings map[store.Kind]binding

	remoteTimeout time.Duration
	maxAttempts   int
	interval      time.Duration
	logger        *slog.Logger

	draining  sync.Mutex
	initOnce  sync.Once
	initError error
}

func NewCoordinator(queue syncqueue.Queue, reach Reachability, local LocalStores, rem RemoteStores, opts ...Option) *Coordinator {
	c := &Coordinator{
		queue:         queue,
		reach:         reach,
		local:         local,
		remoteTimeout: DefaultRemoteTimeout,
		interval:      DefaultDrainInterval,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.bindings = map[store.Kind]binding{
		store.KindWorker: &kindBinding[worker.Worker]{
			local: local.Workers, remote: rem.Workers, outbound: c.workerOutbound,
			withID: func(w worker.Worker, id string) worker.Worker { w.ID = id; return w },
		},
		store.KindProject: &kindBinding[project.Project]{
			local: local.Projects, remote: rem.Projects, outbound: c.projectOutbound,
			withID: func(p project.Project, id string) project.Project { p.ID = id; return p },
		},
		store.KindAttendance: &kindBinding[attendance.Attendance]{
			local: local.Attendance, remote: rem.Attendance, outbound: c.attendanceOutbound,
			withID: func(a attendance.Attendance, id string) attendance.Attendance { a.ID = id; return a },
		},
		store.KindPayment: &kindBinding[payment.Payment]{
			local: local.Payments, remote: rem.Payments, outbound: c.paymentOutbound,
			withID: func(p payment.Payment, id string) payment.Payment { p.ID = id; return p },
		},
	}
	return c
}

// SyncEntity forwards a record that was just written locally. When the remote
// store is unreachable or rejects the call, the write is queued and nil is
// returned. Only validation, local store and queue failures reach the caller.
func (c *Coordinator) SyncEntity(ctx context.Context, record store.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	b, ok := c.bindings[record.Kind()]
	if !ok {
		return fmt.Errorf("no sync binding for kind %q", record.Kind())
	}

	if !c.reach.Online() {
		return c.enqueue(ctx, record, nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	err := b.push(callCtx, record)
	cancel()

	switch {
	case err == nil:
		c.logger.Debug("Record synced", "kind", record.Kind(), "local_id", record.Key())
		return nil
	case isDeferred(err):
		return c.enqueue(ctx, record, err)
	default:
		return err
	}
}

func (c *Coordinator) enqueue(ctx context.Context, record store.Record, cause error) error {
	op := syncqueue.OpCreate
	if record.RemoteKey() != "" {
		op = syncqueue.OpUpdate
	}

	entry, err := syncqueue.NewEntry(op, record)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", record.Kind(), err)
	}
	entry, err = c.queue.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to queue %s %s: %w", record.Kind(), record.Key(), err)
	}

	c.logger.Info("Record queued for sync",
		"kind", entry.Kind, "op", entry.Op, "local_id", entry.LocalID, "seq", entry.Seq, "cause", errString(cause))
	return nil
}

// ProcessSyncQueue replays queued writes in order. It does nothing while
// offline or while another drain runs. Failed entries go back to the tail, or
// to the dead letters once the attempt ceiling is reached. An unreachable
// remote only stops the pass when a fresh reachability check also fails.
func (c *Coordinator) ProcessSyncQueue(ctx context.Context) (DrainReport, error) {
	var report DrainReport

	if !c.reach.Online() {
		report.Skipped = true
		return report, nil
	}
	if !c.draining.TryLock() {
		report.Skipped = true
		return report, nil
	}
	defer c.draining.Unlock()

	entries, err := c.queue.Swap(ctx)
	if errors.Is(err, syncqueue.ErrDrainInProgress) {
		c.logger.Debug("Sync queue is being drained elsewhere")
		report.Skipped = true
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("failed to load sync queue: %w", err)
	}
	if len(entries) == 0 {
		return report, nil
	}

	c.logger.Info("Draining sync queue", "entries", len(entries))

	for _, entry := range entries {
		if ctx.Err() != nil {
			report.Interrupted = true
			return report, c.restore(ctx, ctx.Err())
		}

		replayErr := c.replay(ctx, entry)
		if replayErr == nil {
			if err := c.queue.Ack(ctx, entry.Seq); err != nil {
				return report, c.restore(ctx, err)
			}
			report.Replayed++
			continue
		}

		if errors.Is(replayErr, store.ErrNotFound) {
			c.logger.Warn("Sync target not found", "kind", entry.Kind, "local_id", entry.LocalID, "error", replayErr)
		}

		if err := c.settle(ctx, entry, replayErr, &report); err != nil {
			return report, c.restore(ctx, err)
		}

		if errors.Is(replayErr, remote.ErrUnavailable) && !c.stillOnline(ctx) {
			c.logger.Warn("Remote store dropped out during drain", "seq", entry.Seq, "error", replayErr)
			report.Interrupted = true
			return report, c.restore(ctx, nil)
		}
	}

	c.logger.Info("Sync queue drained", "replayed", report.Replayed, "requeued", report.Requeued, "buried", report.Buried)
	return report, nil
}

// settle requeues a failed entry with its attempt count raised, or buries it
// once the attempt ceiling is reached.
func (c *Coordinator) settle(ctx context.Context, entry syncqueue.Entry, replayErr error, report *DrainReport) error {
	if c.maxAttempts > 0 && entry.Attempts+1 >= c.maxAttempts {
		if err := c.queue.Bury(ctx, entry, replayErr.Error()); err != nil {
			return err
		}
		c.logger.Error("Sync entry buried", "kind", entry.Kind, "local_id", entry.LocalID, "attempts", entry.Attempts+1, "error", replayErr)
		report.Buried++
		return nil
	}

	if _, err := c.queue.Requeue(ctx, entry, replayErr); err != nil {
		return err
	}
	c.logger.Warn("Sync entry requeued", "kind", entry.Kind, "local_id", entry.LocalID, "attempts", entry.Attempts+1, "error", replayErr)
	report.Requeued++
	return nil
}

// stillOnline re-checks reachability after a single call failed to reach the
// remote store. A slow or timed-out call alone does not end the drain.
func (c *Coordinator) stillOnline(ctx context.Context) bool {
	if err := c.reach.Probe(ctx); err != nil {
		return false
	}
	return c.reach.Online()
}

// replay pushes the current state of the entry's record. The operation is
// taken from the record, so an entry whose create already went through is
// replayed as an update.
func (c *Coordinator) replay(ctx context.Context, entry syncqueue.Entry) error {
	b, ok := c.bindings[entry.Kind]
	if !ok {
		return fmt.Errorf("no sync binding for kind %q", entry.Kind)
	}

	record, err := b.current(ctx, entry)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	defer cancel()
	return b.push(callCtx, record)
}

// restore returns unprocessed in-flight entries to pending at their original
// position and passes cause through.
func (c *Coordinator) restore(ctx context.Context, cause error) error {
	if _, err := c.queue.Recover(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// InitSyncListeners registers the periodic drain and the reconnect trigger.
// Only the first call has any effect.
func (c *Coordinator) InitSyncListeners(scheduler Scheduler) error {
	c.initOnce.Do(func() {
		c.initError = scheduler.AddJob(DrainJobName, c.interval, func(ctx context.Context) error {
			_, err := c.ProcessSyncQueue(ctx)
			return err
		})
		if c.initError != nil {
			return
		}
		c.reach.OnReconnect(func(context.Context) {
			scheduler.Trigger(DrainJobName)
		})
	})
	return c.initError
}

// Pending reports how many writes are waiting for the remote store.
func (c *Coordinator) Pending(ctx context.Context) (int, error) {
	return c.queue.Len(ctx)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
