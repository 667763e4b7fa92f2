package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/syncqueue"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
)

// remoteRef maps a local id to the remote id of the record it names.
func remoteRef[T store.Record](ctx context.Context, local store.Capability[T], kind store.Kind, localID string) (string, error) {
	rec, err := local.GetByID(ctx, localID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: %s %s is missing locally", syncqueue.ErrUnreconciledReference, kind, localID)
		}
		return "", err
	}
	if rec.RemoteKey() == "" {
		return "", fmt.Errorf("%w: %s %s", syncqueue.ErrUnreconciledReference, kind, localID)
	}
	return rec.RemoteKey(), nil
}

func (c *Coordinator) workerOutbound(ctx context.Context, w worker.Worker) (worker.Worker, error) {
	w.RemoteID = nil
	if w.ProjectID != nil && *w.ProjectID != "" {
		id, err := remoteRef(ctx, c.local.Projects, store.KindProject, *w.ProjectID)
		if err != nil {
			return worker.Worker{}, err
		}
		w.ProjectID = &id
	}
	return w, nil
}

func (c *Coordinator) projectOutbound(_ context.Context, p project.Project) (project.Project, error) {
	p.RemoteID = nil
	return p, nil
}

func (c *Coordinator) attendanceOutbound(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	a.RemoteID = nil
	workerID, err := remoteRef(ctx, c.local.Workers, store.KindWorker, a.WorkerID)
	if err != nil {
		return attendance.Attendance{}, err
	}
	projectID, err := remoteRef(ctx, c.local.Projects, store.KindProject, a.ProjectID)
	if err != nil {
		return attendance.Attendance{}, err
	}
	a.WorkerID, a.ProjectID = workerID, projectID
	return a, nil
}

func (c *Coordinator) paymentOutbound(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	p.RemoteID = nil
	workerID, err := remoteRef(ctx, c.local.Workers, store.KindWorker, p.WorkerID)
	if err != nil {
		return payment.Payment{}, err
	}
	projectID, err := remoteRef(ctx, c.local.Projects, store.KindProject, p.ProjectID)
	if err != nil {
		return payment.Payment{}, err
	}
	p.WorkerID, p.ProjectID = workerID, projectID
	return p, nil
}
