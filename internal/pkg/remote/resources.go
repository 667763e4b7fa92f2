package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/attendance"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
)

// resource implements store.Capability over one REST collection.
type resource[T store.Record] struct {
	c    *Client
	path string
	// listQuery is sent with GetAll
	listQuery url.Values
	// createBody and updateBody build request payloads from a record
	createBody func(T) any
	updateBody func(T) any
	// updateInPlace sends updates as a POST to the collection (server-side upsert)
	updateInPlace bool
}

func (r *resource[T]) Create(ctx context.Context, record T) (T, error) {
	var out T
	err := r.c.doJSON(ctx, http.MethodPost, r.path, nil, r.createBody(record), &out)
	return out, err
}

func (r *resource[T]) Update(ctx context.Context, record T) (T, error) {
	var out T
	if r.updateInPlace {
		err := r.c.doJSON(ctx, http.MethodPost, r.path, nil, r.updateBody(record), &out)
		return out, err
	}
	err := r.c.doJSON(ctx, http.MethodPut, r.path+"/"+url.PathEscape(record.Key()), nil, r.updateBody(record), &out)
	return out, err
}

func (r *resource[T]) GetAll(ctx context.Context) ([]T, error) {
	out := []T{}
	err := r.c.doJSON(ctx, http.MethodGet, r.path, r.listQuery, nil, &out)
	return out, err
}

func (r *resource[T]) GetByID(ctx context.Context, id string) (T, error) {
	var out T
	err := r.c.doJSON(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// Workers is keyed by remote worker id; references inside records must already be remote ids.
func (c *Client) Workers() store.Capability[worker.Worker] {
	body := func(w worker.Worker) any { return worker.FromWorker(w) }
	return &resource[worker.Worker]{c: c, path: "/api/workers", createBody: body, updateBody: body}
}

func (c *Client) Projects() store.Capability[project.Project] {
	body := func(p project.Project) any { return project.FromProject(p) }
	return &resource[project.Project]{
		c:          c,
		path:       "/api/projects",
		listQuery:  url.Values{"include_inactive": {"true"}},
		createBody: body,
		updateBody: body,
	}
}

// Attendance updates go through the server's (worker, date) upsert.
func (c *Client) Attendance() store.Capability[attendance.Attendance] {
	body := func(a attendance.Attendance) any { return attendance.FromAttendance(a) }
	return &resource[attendance.Attendance]{
		c:             c,
		path:          "/api/attendance",
		listQuery:     url.Values{"start_date": {"1970-01-01"}, "end_date": {"9999-12-31"}},
		createBody:    body,
		updateBody:    body,
		updateInPlace: true,
	}
}

// Payments only send status and notes on update.
func (c *Client) Payments() store.Capability[payment.Payment] {
	return &resource[payment.Payment]{
		c:          c,
		path:       "/api/payments",
		createBody: func(p payment.Payment) any { return payment.FromPayment(p) },
		updateBody: func(p payment.Payment) any {
			return payment.UpdatePaymentRequest{Status: string(p.Status), Notes: p.Notes}
		},
	}
}
