package syncer_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/cron"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/remote"
)

// fakeRemote is an in-memory remote store for one kind.
type fakeRemote[T store.Record] struct {
	mu      sync.Mutex
	prefix  string
	records map[string]T
	next    int
	setID   func(T, string) T
	err     error
	creates int
	updates int
	// beforeCall runs outside the lock on every Create and Update
	beforeCall func()
	// reject fails individual records; checked after err
	reject func(T) error
}

func newFakeRemote[T store.Record](prefix string, setID func(T, string) T) *fakeRemote[T] {
	return &fakeRemote[T]{prefix: prefix, records: map[string]T{}, setID: setID}
}

func (f *fakeRemote[T]) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRemote[T]) Create(_ context.Context, record T) (T, error) {
	if f.beforeCall != nil {
		f.beforeCall()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		var zero T
		return zero, f.err
	}
	if f.reject != nil {
		if err := f.reject(record); err != nil {
			var zero T
			return zero, err
		}
	}
	f.next++
	record = f.setID(record, fmt.Sprintf("%s-%d", f.prefix, f.next))
	f.records[record.Key()] = record
	f.creates++
	return record, nil
}

func (f *fakeRemote[T]) Update(_ context.Context, record T) (T, error) {
	if f.beforeCall != nil {
		f.beforeCall()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		var zero T
		return zero, f.err
	}
	if _, ok := f.records[record.Key()]; !ok {
		var zero T
		return zero, remote.ErrNotFound
	}
	f.records[record.Key()] = record
	f.updates++
	return record, nil
}

func (f *fakeRemote[T]) GetAll(context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]T, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRemote[T]) GetByID(_ context.Context, id string) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.records[id]
	if !ok {
		var zero T
		return zero, remote.ErrNotFound
	}
	return r, nil
}

func (f *fakeRemote[T]) counts() (creates, updates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.updates
}

func (f *fakeRemote[T]) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// stubPinger answers pings until down is set.
type stubPinger struct {
	down atomic.Bool
}

func (p *stubPinger) Ping(context.Context) error {
	if p.down.Load() {
		return remote.ErrUnavailable
	}
	return nil
}

// recordingScheduler captures registrations instead of running jobs.
type recordingScheduler struct {
	mu       sync.Mutex
	jobs     map[string]time.Duration
	fns      map[string]cron.JobFunc
	triggers []string
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{jobs: map[string]time.Duration{}, fns: map[string]cron.JobFunc{}}
}

func (s *recordingScheduler) AddJob(name string, interval time.Duration, fn cron.JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return cron.ErrDuplicateJob
	}
	s.jobs[name] = interval
	s.fns[name] = fn
	return nil
}

func (s *recordingScheduler) Trigger(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.triggers = append(s.triggers, name)
	_, ok := s.jobs[name]
	return ok
}
