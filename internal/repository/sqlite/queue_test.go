package sqlite_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/syncqueue"
	"github.com/cmlabs-hris/sitecrew-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(kind store.Kind, op syncqueue.Op, localID string) syncqueue.Entry {
	payload, _ := json.Marshal(map[string]string{"id": localID})
	return syncqueue.Entry{Kind: kind, Op: op, LocalID: localID, Payload: payload}
}

func localIDs(entries []syncqueue.Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.LocalID
	}
	return ids
}

func TestSyncQueue_SurvivesRestart(t *testing.T) {
	db, path := openTestDB(t)
	ctx := context.Background()
	q := sqlite.NewSyncQueue(db)

	for _, id := range []string{"w1", "p1", "a1"} {
		_, err := q.Append(ctx, entry(store.KindWorker, syncqueue.OpCreate, id))
		require.NoError(t, err)
	}
	before, err := q.LoadAll(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	after, err := sqlite.NewSyncQueue(reopened).LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "p1", "a1"}, localIDs(after))
	assert.Equal(t, before, after)
}

func TestSyncQueue_AppendRejectsMalformedEntry(t *testing.T) {
	db, _ := openTestDB(t)
	q := sqlite.NewSyncQueue(db)

	_, err := q.Append(context.Background(), syncqueue.Entry{Kind: "invoice", Op: syncqueue.OpCreate, LocalID: "x", Payload: []byte(`{}`)})
	assert.Error(t, err)

	_, err = q.Append(context.Background(), syncqueue.Entry{Kind: store.KindWorker, Op: syncqueue.OpCreate, LocalID: "x", Payload: []byte(`{`)})
	assert.Error(t, err)
}

func TestSyncQueue_SwapHidesInflightEntries(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	q := sqlite.NewSyncQueue(db)

	_, err := q.Append(ctx, entry(store.KindWorker, syncqueue.OpCreate, "w1"))
	require.NoError(t, err)
	_, err = q.Append(ctx, entry(store.KindPayment, syncqueue.OpCreate, "pay1"))
	require.NoError(t, err)

	batch, err := q.Swap(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "pay1"}, localIDs(batch))

	// A concurrent drain sees nothing
	second, err := q.Swap(ctx)
	require.NoError(t, err)
	assert.Empty(t, second)

	// Writes during the drain stay pending
	_, err = q.Append(ctx, entry(store.KindWorker, syncqueue.OpUpdate, "w1"))
	require.NoError(t, err)
	pending, err := q.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, localIDs(pending))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSyncQueue_AckAndRequeue(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	q := sqlite.NewSyncQueue(db)

	for _, id := range []string{"a", "b", "c"} {
		_, err := q.Append(ctx, entry(store.KindAttendance, syncqueue.OpCreate, id))
		require.NoError(t, err)
	}
	batch, err := q.Swap(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	require.NoError(t, q.Ack(ctx, batch[0].Seq))
	requeued, err := q.Requeue(ctx, batch[1], errors.New("remote returned 500"))
	require.NoError(t, err)
	require.NoError(t, q.Ack(ctx, batch[2].Seq))

	assert.Greater(t, requeued.Seq, batch[2].Seq)
	assert.Equal(t, 1, requeued.Attempts)
	require.NotNil(t, requeued.LastError)
	assert.Equal(t, "remote returned 500", *requeued.LastError)

	pending, err := q.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].LocalID)
	assert.Equal(t, 1, pending[0].Attempts)

	assert.ErrorIs(t, q.Ack(ctx, batch[0].Seq), syncqueue.ErrEntryNotFound)
}

func TestSyncQueue_RecoverAfterInterruptedDrain(t *testing.T) {
	db, path := openTestDB(t)
	ctx := context.Background()
	// Claims of a process that died long ago
	q := sqlite.NewSyncQueue(db, sqlite.WithLeaseTTL(-time.Minute))

	_, err := q.Append(ctx, entry(store.KindWorker, syncqueue.OpCreate, "first"))
	require.NoError(t, err)
	_, err = q.Swap(ctx)
	require.NoError(t, err)
	_, err = q.Append(ctx, entry(store.KindWorker, syncqueue.OpCreate, "second"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	rq := sqlite.NewSyncQueue(reopened)

	n, err := rq.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := rq.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, localIDs(pending))
}

func TestSyncQueue_ReplaceAll(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	q := sqlite.NewSyncQueue(db)

	_, err := q.Append(ctx, entry(store.KindWorker, syncqueue.OpCreate, "old"))
	require.NoError(t, err)

	require.NoError(t, q.ReplaceAll(ctx, []syncqueue.Entry{
		entry(store.KindProject, syncqueue.OpCreate, "p"),
		entry(store.KindWorker, syncqueue.OpUpdate, "w"),
	}))

	pending, err := q.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "w"}, localIDs(pending))

	require.NoError(t, q.ReplaceAll(ctx, nil))
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSyncQueue_BuryAndRevive(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	q := sqlite.NewSyncQueue(db)

	_, err := q.Append(ctx, entry(store.KindPayment, syncqueue.OpUpdate, "pay1"))
	require.NoError(t, err)
	batch, err := q.Swap(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	require.NoError(t, q.Bury(ctx, batch[0], "remote record not found"))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	dead, err := q.Dead(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "pay1", dead[0].LocalID)
	assert.Equal(t, "remote record not found", dead[0].Reason)

	revived, err := q.Revive(ctx, dead[0].Seq)
	require.NoError(t, err)
	assert.Equal(t, "pay1", revived.LocalID)
	assert.Zero(t, revived.Attempts)

	dead, err = q.Dead(ctx)
	require.NoError(t, err)
	assert.Empty(t, dead)

	_, err = q.Revive(ctx, 999)
	assert.ErrorIs(t, err, syncqueue.ErrEntryNotFound)
}

func TestSyncQueue_LiveClaimIsOwnedByOneHandle(t *testing.T) {
	db, path := openTestDB(t)
	ctx := context.Background()
	daemon := sqlite.NewSyncQueue(db)

	for _, id := range []string{"w1", "w2"} {
		_, err := daemon.Append(ctx, entry(store.KindWorker, syncqueue.OpCreate, id))
		require.NoError(t, err)
	}
	batch, err := daemon.Swap(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	other, err := sqlite.Open(path)
	require.NoError(t, err)
	defer other.Close()
	cli := sqlite.NewSyncQueue(other)

	n, err := cli.Recover(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = cli.Swap(ctx)
	assert.ErrorIs(t, err, syncqueue.ErrDrainInProgress)

	pending, err := cli.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The owner gives back what it did not finish
	require.NoError(t, daemon.Ack(ctx, batch[0].Seq))
	n, err = daemon.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	taken, err := cli.Swap(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"w2"}, localIDs(taken))
}

func TestSyncQueue_SwapTakesOverExpiredClaim(t *testing.T) {
	db, path := openTestDB(t)
	ctx := context.Background()
	dead := sqlite.NewSyncQueue(db, sqlite.WithLeaseTTL(-time.Minute))

	_, err := dead.Append(ctx, entry(store.KindPayment, syncqueue.OpCreate, "pay1"))
	require.NoError(t, err)
	_, err = dead.Swap(ctx)
	require.NoError(t, err)
	_, err = dead.Append(ctx, entry(store.KindPayment, syncqueue.OpCreate, "pay2"))
	require.NoError(t, err)

	other, err := sqlite.Open(path)
	require.NoError(t, err)
	defer other.Close()

	batch, err := sqlite.NewSyncQueue(other).Swap(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pay1", "pay2"}, localIDs(batch))
}

func TestSyncQueue_ClosedDatabaseIsStorageUnavailable(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	q := sqlite.NewSyncQueue(db)

	_, err := q.Append(ctx, entry(store.KindWorker, syncqueue.OpCreate, "w1"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = q.Append(ctx, entry(store.KindWorker, syncqueue.OpCreate, "w2"))
	assert.ErrorIs(t, err, syncqueue.ErrStorageUnavailable)

	_, err = q.LoadAll(ctx)
	assert.ErrorIs(t, err, syncqueue.ErrStorageUnavailable)

	_, err = q.Swap(ctx)
	assert.ErrorIs(t, err, syncqueue.ErrStorageUnavailable)

	_, err = q.Recover(ctx)
	assert.ErrorIs(t, err, syncqueue.ErrStorageUnavailable)

	_, err = q.Len(ctx)
	assert.ErrorIs(t, err, syncqueue.ErrStorageUnavailable)
}

func TestOpen_FailsWhenParentIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))

	db, err := sqlite.Open(filepath.Join(blocker, "agent.db"))
	assert.Error(t, err)
	assert.Nil(t, db)
}
