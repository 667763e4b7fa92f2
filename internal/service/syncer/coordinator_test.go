package syncer_test

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/syncqueue"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/connectivity"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/remote"
	"github.com/cmlabs-hris/sitecrew-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/sitecrew-go/internal/service/attendance"
	paymentService "github.com/cmlabs-hris/sitecrew-go/internal/service/payment"
	projectService "github.com/cmlabs-hris/sitecrew-go/internal/service/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/service/syncer"
	workerService "github.com/cmlabs-hris/sitecrew-go/internal/service/worker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	ctx     context.Context
	path    string
	queue   syncqueue.Queue
	pinger  *stubPinger
	monitor *connectivity.Monitor
	coord   *syncer.Coordinator

	workers    sqlite.WorkerRepository
	projects   sqlite.ProjectRepository
	attendance sqlite.AttendanceRepository
	payments   sqlite.PaymentRepository

	remoteWorkers    *fakeRemote[worker.Worker]
	remoteProjects   *fakeRemote[project.Project]
	remoteAttendance *fakeRemote[attendance.Attendance]
	remotePayments   *fakeRemote[payment.Payment]

	workerSvc     worker.WorkerService
	projectSvc    project.ProjectService
	attendanceSvc attendance.AttendanceService
	paymentSvc    payment.PaymentService
}

func newHarness(t *testing.T, opts ...syncer.Option) *harness {
	t.Helper()

	path := filepath.Join(t.TempDir(), "agent.db")
	db, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pinger := &stubPinger{}
	h := &harness{
		ctx:        context.Background(),
		path:       path,
		queue:      sqlite.NewSyncQueue(db),
		pinger:     pinger,
		monitor:    connectivity.NewMonitor(pinger),
		workers:    sqlite.NewWorkerRepository(db),
		projects:   sqlite.NewProjectRepository(db),
		attendance: sqlite.NewAttendanceRepository(db),
		payments:   sqlite.NewPaymentRepository(db),

		remoteWorkers: newFakeRemote("wrk", func(w worker.Worker, id string) worker.Worker { w.ID = id; return w }),
		remoteProjects: newFakeRemote("prj", func(p project.Project, id string) project.Project {
			p.ID = id
			return p
		}),
		remoteAttendance: newFakeRemote("att", func(a attendance.Attendance, id string) attendance.Attendance {
			a.ID = id
			return a
		}),
		remotePayments: newFakeRemote("pay", func(p payment.Payment, id string) payment.Payment {
			p.ID = id
			return p
		}),
	}

	h.coord = syncer.NewCoordinator(h.queue, h.monitor,
		syncer.LocalStores{Workers: h.workers, Projects: h.projects, Attendance: h.attendance, Payments: h.payments},
		h.remotes(),
		opts...,
	)

	h.workerSvc = workerService.NewWorkerService(h.workers, h.projects, h.coord)
	h.projectSvc = projectService.NewProjectService(h.projects, h.coord)
	h.attendanceSvc = attendanceService.NewAttendanceService(h.attendance, h.workers, h.projects, h.coord)
	h.paymentSvc = paymentService.NewPaymentService(h.payments, h.workers, h.attendance, h.coord)
	return h
}

func (h *harness) remotes() syncer.RemoteStores {
	return syncer.RemoteStores{
		Workers:    h.remoteWorkers,
		Projects:   h.remoteProjects,
		Attendance: h.remoteAttendance,
		Payments:   h.remotePayments,
	}
}

func (h *harness) pending(t *testing.T) int {
	t.Helper()
	n, err := h.coord.Pending(h.ctx)
	require.NoError(t, err)
	return n
}

func (h *harness) addProject(t *testing.T) project.Project {
	t.Helper()
	p, err := h.projectSvc.Create(h.ctx, project.CreateProjectRequest{Name: "Tower B"})
	require.NoError(t, err)
	return p
}

func (h *harness) addWorker(t *testing.T, name string, projectID *string) worker.Worker {
	t.Helper()
	w, err := h.workerSvc.Create(h.ctx, worker.CreateWorkerRequest{
		Name:       name,
		LabourType: string(worker.LabourTypeMason),
		DailyWage:  decimal.NewFromInt(600),
		ProjectID:  projectID,
	})
	require.NoError(t, err)
	return w
}

func TestSyncEntity_OfflineWriteIsQueuedThenReconciledOnDrain(t *testing.T) {
	h := newHarness(t)

	ravi := h.addWorker(t, "Ravi", nil)
	assert.Equal(t, 1, h.pending(t))
	assert.Equal(t, 0, h.remoteWorkers.len())

	local, err := h.workers.GetByID(h.ctx, ravi.ID)
	require.NoError(t, err)
	assert.Nil(t, local.RemoteID, "record stays local only while offline")

	h.monitor.SetOnline(h.ctx, true)
	report, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, syncer.DrainReport{Replayed: 1}, report)
	assert.Equal(t, 0, h.pending(t))
	assert.Equal(t, 1, h.remoteWorkers.len())

	local, err = h.workers.GetByID(h.ctx, ravi.ID)
	require.NoError(t, err)
	require.NotNil(t, local.RemoteID)

	remoteRavi, err := h.remoteWorkers.GetByID(h.ctx, *local.RemoteID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", remoteRavi.Name)
}

func TestSyncEntity_OnlineWriteReachesRemoteImmediately(t *testing.T) {
	h := newHarness(t)
	h.monitor.SetOnline(h.ctx, true)

	site := h.addProject(t)
	ravi := h.addWorker(t, "Ravi", &site.ID)

	assert.Equal(t, 0, h.pending(t))

	local, err := h.workers.GetByID(h.ctx, ravi.ID)
	require.NoError(t, err)
	require.NotNil(t, local.RemoteID)

	remoteRavi, err := h.remoteWorkers.GetByID(h.ctx, *local.RemoteID)
	require.NoError(t, err)

	localSite, err := h.projects.GetByID(h.ctx, site.ID)
	require.NoError(t, err)
	require.NotNil(t, remoteRavi.ProjectID)
	assert.Equal(t, *localSite.RemoteID, *remoteRavi.ProjectID, "project reference is translated to the remote id")
}

func TestSyncEntity_ValidationErrorsPropagate(t *testing.T) {
	h := newHarness(t)

	err := h.coord.SyncEntity(h.ctx, worker.Worker{ID: "w-1", LabourType: worker.LabourTypeMason})
	require.Error(t, err)
	assert.Equal(t, 0, h.pending(t))
}

func TestSyncEntity_MarkingTwiceKeepsOneRecordEverywhere(t *testing.T) {
	h := newHarness(t)
	h.monitor.SetOnline(h.ctx, true)

	site := h.addProject(t)
	ravi := h.addWorker(t, "Ravi", &site.ID)

	req := attendance.MarkAttendanceRequest{
		WorkerID:       ravi.ID,
		ProjectID:      site.ID,
		AttendanceDate: "2024-03-11",
		Status:         string(attendance.StatusFull),
	}
	first, err := h.attendanceSvc.Mark(h.ctx, req)
	require.NoError(t, err)

	req.Status = string(attendance.StatusHalf)
	second, err := h.attendanceSvc.Mark(h.ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	all, err := h.attendance.GetAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, attendance.StatusHalf, all[0].Status)

	remoteAll, err := h.remoteAttendance.GetAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, remoteAll, 1)
	assert.Equal(t, attendance.StatusHalf, remoteAll[0].Status)
	creates, updates := h.remoteAttendance.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
	assert.Equal(t, 0, h.pending(t))
}

func TestProcessSyncQueue_ServerErrorKeepsEntryUntilItSucceeds(t *testing.T) {
	h := newHarness(t)
	h.monitor.SetOnline(h.ctx, true)

	site := h.addProject(t)
	ravi := h.addWorker(t, "Ravi", &site.ID)

	h.remotePayments.fail(&remote.StatusError{StatusCode: http.StatusInternalServerError})

	p, err := h.paymentSvc.Create(h.ctx, payment.CreatePaymentRequest{
		WorkerID:    ravi.ID,
		ProjectID:   site.ID,
		PaymentDate: "2024-03-15",
		Amount:      decimal.NewFromInt(3000),
		PaymentType: string(payment.TypeWage),
	})
	require.NoError(t, err, "remote failures never reach the caller")
	assert.Equal(t, 1, h.pending(t))

	report, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Requeued)
	assert.Equal(t, 1, h.pending(t))

	entries, err := h.queue.LoadAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Attempts)
	require.NotNil(t, entries[0].LastError)

	h.remotePayments.fail(nil)
	report, err = h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Replayed)
	assert.Equal(t, 0, h.pending(t))

	local, err := h.payments.GetByID(h.ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, local.RemoteID)
	remotePayment, err := h.remotePayments.GetByID(h.ctx, *local.RemoteID)
	require.NoError(t, err)
	assert.True(t, remotePayment.Amount.Equal(decimal.NewFromInt(3000)))
}

func TestProcessSyncQueue_OfflineIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.addWorker(t, "Ravi", nil)

	report, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, 1, h.pending(t))
	assert.Equal(t, 0, h.remoteWorkers.len())
}

func TestProcessSyncQueue_ReplaysDependentsAfterTheirReferences(t *testing.T) {
	h := newHarness(t)

	site := h.addProject(t)
	ravi := h.addWorker(t, "Ravi", &site.ID)
	assert.Equal(t, 2, h.pending(t))

	h.monitor.SetOnline(h.ctx, true)

	// Ravi is still local only, so his attendance cannot be sent yet.
	_, err := h.attendanceSvc.Mark(h.ctx, attendance.MarkAttendanceRequest{
		WorkerID:       ravi.ID,
		ProjectID:      site.ID,
		AttendanceDate: "2024-03-11",
		Status:         string(attendance.StatusFull),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, h.pending(t))

	report, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Replayed)
	assert.Equal(t, 0, h.pending(t))

	localRavi, err := h.workers.GetByID(h.ctx, ravi.ID)
	require.NoError(t, err)
	remoteAll, err := h.remoteAttendance.GetAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, remoteAll, 1)
	assert.Equal(t, *localRavi.RemoteID, remoteAll[0].WorkerID)
}

func TestProcessSyncQueue_ReplayOfReconciledCreateBecomesUpdate(t *testing.T) {
	h := newHarness(t)
	h.monitor.SetOnline(h.ctx, true)

	ravi := h.addWorker(t, "Ravi", nil)
	local, err := h.workers.GetByID(h.ctx, ravi.ID)
	require.NoError(t, err)

	// A create entry that was delivered but never acknowledged.
	entry, err := syncqueue.NewEntry(syncqueue.OpCreate, ravi)
	require.NoError(t, err)
	_, err = h.queue.Append(h.ctx, entry)
	require.NoError(t, err)

	report, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Replayed)

	creates, updates := h.remoteWorkers.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
	assert.Equal(t, 1, h.remoteWorkers.len())
	_, err = h.remoteWorkers.GetByID(h.ctx, *local.RemoteID)
	assert.NoError(t, err)
}

func TestProcessSyncQueue_BuriesAfterMaxAttempts(t *testing.T) {
	h := newHarness(t, syncer.WithMaxAttempts(2))
	h.monitor.SetOnline(h.ctx, true)
	h.remoteProjects.fail(&remote.StatusError{StatusCode: http.StatusUnprocessableEntity, Message: "bad project"})

	h.addProject(t)
	assert.Equal(t, 1, h.pending(t))

	report, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Requeued)

	report, err = h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Buried)
	assert.Equal(t, 0, h.pending(t))

	dead, err := h.queue.Dead(h.ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].Reason, "bad project")
}

func TestProcessSyncQueue_StopsWhenRemoteDropsOut(t *testing.T) {
	h := newHarness(t)
	h.addWorker(t, "Ravi", nil)
	h.addWorker(t, "Suresh", nil)

	before, err := h.queue.LoadAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, before, 2)

	h.monitor.SetOnline(h.ctx, true)
	h.remoteWorkers.fail(remote.ErrUnavailable)
	h.pinger.down.Store(true)

	report, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.True(t, report.Interrupted)
	assert.Equal(t, 1, report.Requeued)
	assert.False(t, h.monitor.Online())

	after, err := h.queue.LoadAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, after, 2)

	// Suresh was never tried and keeps its place; Ravi moved behind it
	assert.Equal(t, before[1].Seq, after[0].Seq)
	assert.Equal(t, 0, after[0].Attempts)
	assert.Equal(t, before[0].LocalID, after[1].LocalID)
	assert.Equal(t, 1, after[1].Attempts)
	require.NotNil(t, after[1].LastError)
}

func TestProcessSyncQueue_TimedOutEntryDoesNotBlockTheRest(t *testing.T) {
	h := newHarness(t, syncer.WithMaxAttempts(2))
	ravi := h.addWorker(t, "Ravi", nil)
	suresh := h.addWorker(t, "Suresh", nil)

	h.monitor.SetOnline(h.ctx, true)
	h.remoteWorkers.reject = func(w worker.Worker) error {
		if w.Name == "Ravi" {
			return fmt.Errorf("%w: %v", remote.ErrUnavailable, context.DeadlineExceeded)
		}
		return nil
	}

	report, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.False(t, report.Interrupted)
	assert.Equal(t, 1, report.Replayed)
	assert.Equal(t, 1, report.Requeued)
	assert.True(t, h.monitor.Online())

	got, err := h.workers.GetByID(h.ctx, suresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.RemoteID)

	pending, err := h.queue.LoadAll(h.ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ravi.ID, pending[0].LocalID)
	assert.Equal(t, 1, pending[0].Attempts)

	// The ceiling applies to timeouts like any other failure
	report, err = h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Buried)
	assert.Equal(t, 0, h.pending(t))

	dead, err := h.queue.Dead(h.ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, ravi.ID, dead[0].LocalID)
}

func TestProcessSyncQueue_SecondProcessLeavesLiveDrainAlone(t *testing.T) {
	h := newHarness(t)
	h.addWorker(t, "Ravi", nil)
	h.monitor.SetOnline(h.ctx, true)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.remoteWorkers.beforeCall = func() {
		once.Do(func() { close(entered) })
		<-release
	}

	done := make(chan syncer.DrainReport)
	go func() {
		report, _ := h.coord.ProcessSyncQueue(h.ctx)
		done <- report
	}()
	<-entered

	// A one-shot command opening the same database while the daemon drains
	db, err := sqlite.Open(h.path)
	require.NoError(t, err)
	defer db.Close()

	queue := sqlite.NewSyncQueue(db)
	recovered, err := queue.Recover(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, recovered)

	monitor := connectivity.NewMonitor(&stubPinger{})
	monitor.SetOnline(h.ctx, true)
	other := syncer.NewCoordinator(queue, monitor,
		syncer.LocalStores{
			Workers:    sqlite.NewWorkerRepository(db),
			Projects:   sqlite.NewProjectRepository(db),
			Attendance: sqlite.NewAttendanceRepository(db),
			Payments:   sqlite.NewPaymentRepository(db),
		},
		h.remotes(),
	)
	second, err := other.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.True(t, second.Skipped)

	close(release)
	first := <-done
	assert.Equal(t, 1, first.Replayed)

	creates, _ := h.remoteWorkers.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 0, h.pending(t))
}

func TestProcessSyncQueue_ConcurrentDrainIsSkipped(t *testing.T) {
	h := newHarness(t)
	h.addWorker(t, "Ravi", nil)
	h.monitor.SetOnline(h.ctx, true)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.remoteWorkers.beforeCall = func() {
		once.Do(func() { close(entered) })
		<-release
	}

	done := make(chan syncer.DrainReport)
	go func() {
		report, _ := h.coord.ProcessSyncQueue(h.ctx)
		done <- report
	}()

	<-entered
	second, err := h.coord.ProcessSyncQueue(h.ctx)
	require.NoError(t, err)
	assert.True(t, second.Skipped)

	close(release)
	first := <-done
	assert.Equal(t, 1, first.Replayed)
	assert.Equal(t, 0, h.pending(t))
}

func TestInitSyncListeners_RegistersOnceAndDrainsOnReconnect(t *testing.T) {
	h := newHarness(t, syncer.WithDrainInterval(time.Minute))
	scheduler := newRecordingScheduler()

	require.NoError(t, h.coord.InitSyncListeners(scheduler))
	require.NoError(t, h.coord.InitSyncListeners(scheduler))
	assert.Equal(t, map[string]time.Duration{syncer.DrainJobName: time.Minute}, scheduler.jobs)

	h.addWorker(t, "Ravi", nil)
	h.monitor.SetOnline(h.ctx, true)
	assert.Equal(t, []string{syncer.DrainJobName}, scheduler.triggers)

	require.NoError(t, scheduler.fns[syncer.DrainJobName](h.ctx))
	assert.Equal(t, 0, h.pending(t))
}
