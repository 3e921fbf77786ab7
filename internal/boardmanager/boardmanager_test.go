package boardmanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nxy7/viban/internal/datalayer"
	"github.com/nxy7/viban/internal/hookrunner"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/semaphore"
	"github.com/nxy7/viban/internal/store"
	"github.com/nxy7/viban/internal/taskactor"
)

func newTestManager(t *testing.T) (*Manager, *datalayer.Layer) {
	t.Helper()
	db, err := store.InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	bus := registry.NewEventBus()
	reg := registry.New()
	l := datalayer.New(db, bus)
	deps := taskactor.Deps{Store: l, Bus: bus, Hooks: hookrunner.New(nil, time.Second, time.Second), Semaphore: semaphore.New(nil)}
	return New(l, bus, reg, deps, nil), l
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestManager_NotifyBoardCreated_IsIdempotent(t *testing.T) {
	m, l := newTestManager(t)
	b, err := l.CreateBoard("B")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m.NotifyBoardCreated(ctx, b.ID)
	m.NotifyBoardCreated(ctx, b.ID)
	m.NotifyBoardCreated(ctx, b.ID)

	require.Equal(t, []string{b.ID}, m.ListBoards())
}

func TestManager_CreateThenDelete_RoundTrips(t *testing.T) {
	m, l := newTestManager(t)
	b, err := l.CreateBoard("B")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m.NotifyBoardCreated(ctx, b.ID)
	waitUntil(t, time.Second, func() bool { return len(m.ListBoards()) == 1 })

	m.NotifyBoardDeleted(b.ID)
	require.Empty(t, m.ListBoards())

	_, ok := m.reg.Lookup(registry.BoardSupervisorKey(b.ID))
	require.False(t, ok)
	_, ok = m.reg.Lookup(registry.BoardActorKey(b.ID))
	require.False(t, ok)
}

func TestManager_Reconcile_PicksUpBoardsWrittenExternally(t *testing.T) {
	m, l := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, m.Reconcile(ctx))
	require.Empty(t, m.ListBoards())

	b, err := l.CreateBoard("B")
	require.NoError(t, err)

	require.NoError(t, m.Reconcile(ctx))
	require.Equal(t, []string{b.ID}, m.ListBoards())

	require.NoError(t, l.DeleteBoard(b.ID))
	require.NoError(t, m.Reconcile(ctx))
	require.Empty(t, m.ListBoards())
}

func TestManager_Boot_StartsSupervisorsForExistingBoards(t *testing.T) {
	m, l := newTestManager(t)
	b, err := l.CreateBoard("B")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, m.Boot(ctx))
	waitUntil(t, time.Second, func() bool { return len(m.ListBoards()) == 1 })
	require.Equal(t, []string{b.ID}, m.ListBoards())
}
