package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/worker"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	calls int
	url   string
	err   error
}

func (f *fakeUploader) UploadPhoto(_ context.Context, _, _ string, r io.Reader) (remote.PhotoUpload, error) {
	f.calls++
	if _, err := io.ReadAll(r); err != nil {
		return remote.PhotoUpload{}, err
	}
	if f.err != nil {
		return remote.PhotoUpload{}, f.err
	}
	return remote.PhotoUpload{PhotoURL: f.url}, nil
}

func writePhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ravi.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600))
	return path
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestAttachPhoto_OfflineSavesWithoutPhoto(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{url: "http://cdn/photos/ravi.png"}
	var req worker.CreateWorkerRequest

	err := attachPhoto(ctx, discard, false, up, writePhoto(t), &req)
	require.NoError(t, err)
	assert.Zero(t, up.calls)
	assert.Nil(t, req.PhotoURL)
}

func TestAttachPhoto_OnlineStoresUploadedURL(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{url: "http://cdn/photos/ravi.png"}
	var req worker.CreateWorkerRequest

	err := attachPhoto(ctx, discard, true, up, writePhoto(t), &req)
	require.NoError(t, err)
	assert.Equal(t, 1, up.calls)
	require.NotNil(t, req.PhotoURL)
	assert.Equal(t, "http://cdn/photos/ravi.png", *req.PhotoURL)
}

func TestAttachPhoto_ServerDroppingOutIsNotFatal(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{err: remote.ErrUnavailable}
	var req worker.CreateWorkerRequest

	err := attachPhoto(ctx, discard, true, up, writePhoto(t), &req)
	require.NoError(t, err)
	assert.Nil(t, req.PhotoURL)
}

func TestAttachPhoto_RejectedUploadFails(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{err: errors.New("remote returned 413")}
	var req worker.CreateWorkerRequest

	err := attachPhoto(ctx, discard, true, up, writePhoto(t), &req)
	assert.Error(t, err)
}

func TestAttachPhoto_MissingFileFailsEvenOffline(t *testing.T) {
	ctx := context.Background()
	var req worker.CreateWorkerRequest

	err := attachPhoto(ctx, discard, false, &fakeUploader{}, filepath.Join(t.TempDir(), "nope.png"), &req)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAttachPhoto_NoPhoto(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{}
	var req worker.CreateWorkerRequest

	require.NoError(t, attachPhoto(ctx, discard, true, up, "", &req))
	assert.Zero(t, up.calls)
}
