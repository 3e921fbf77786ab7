package taskactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nxy7/viban/internal/datalayer"
	"github.com/nxy7/viban/internal/hookrunner"
	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/queue"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/semaphore"
	"github.com/nxy7/viban/internal/store"
	"github.com/nxy7/viban/internal/systemhooks"
)

// fakeAsyncSystemHooks stands in for a system hook that backgrounds an
// executor: it returns Await immediately and publishes executor_completed
// on bus shortly after, without shelling out to a real agent CLI.
type fakeAsyncSystemHooks struct {
	bus      *registry.EventBus
	exitCode int
}

func (f *fakeAsyncSystemHooks) Run(ctx context.Context, ch models.ColumnHook, execCtx hookrunner.ExecContext) queue.Result {
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.bus.Publish(models.ExecutorCompletedTopic(execCtx.TaskID), f.exitCode)
	}()
	return queue.Result{Await: true}
}

func newTestLayer(t *testing.T) (*datalayer.Layer, *registry.EventBus) {
	t.Helper()
	db, err := store.InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	bus := registry.NewEventBus()
	return datalayer.New(db, bus), bus
}

func newTestDeps(t *testing.T, l *datalayer.Layer, bus *registry.EventBus) Deps {
	t.Helper()
	sys := systemhooks.New(bus, time.Second, "")
	return Deps{
		Store:     l,
		Bus:       bus,
		Hooks:     hookrunner.New(sys, 2*time.Second, 2*time.Second),
		Worktrees: nil,
		Semaphore: semaphore.New(nil),
	}
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

func runActor(t *testing.T, a *Actor) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)
	t.Cleanup(func() {
		cancel()
		a.Stop()
		select {
		case <-a.Done():
		case <-time.After(time.Second):
		}
	})
	return cancel
}

func TestActor_TransparentHookCompletesWithoutChangingAgentStatus(t *testing.T) {
	l, bus := newTestLayer(t)
	deps := newTestDeps(t, l, bus)

	b, err := l.CreateBoard("B")
	require.NoError(t, err)
	col, err := l.CreateColumn(b.ID, "Todo", 0, models.ColumnSettings{HooksEnabled: true})
	require.NoError(t, err)
	_, err = l.CreateColumn(b.ID, "To Review", 1, models.ColumnSettings{})
	require.NoError(t, err)

	hook, err := l.CreateHook(models.Hook{BoardID: b.ID, Name: "noop", Kind: models.HookKindScript, Command: "true"})
	require.NoError(t, err)
	_, err = l.AttachHook(models.ColumnHook{ColumnID: col.ID, HookID: hook.ID, Position: 0, Transparent: true})
	require.NoError(t, err)

	task, err := l.CreateTask(col.ID, "t1", "")
	require.NoError(t, err)

	a := New(b.ID, task.ID, deps)
	runActor(t, a)

	waitUntil(t, time.Second, func() bool {
		hist, err := l.HookExecutions().HistoryForTask(task.ID, 0, time.Time{})
		return err == nil && len(hist) == 1 && hist[0].Status.IsTerminal()
	})

	hist, err := l.HookExecutions().HistoryForTask(task.ID, 0, time.Time{})
	require.NoError(t, err)
	require.Equal(t, models.HookExecutionCompleted, hist[0].Status) // no worktree provisioned: the runner skips the script and the entry is logged as completed

	fresh, err := l.GetTask(task.ID)
	require.NoError(t, err)
	require.Equal(t, models.AgentStatusIdle, fresh.AgentStatus)
}

func TestActor_NonTransparentHookFailureMovesTaskToReview(t *testing.T) {
	l, bus := newTestLayer(t)
	deps := newTestDeps(t, l, bus)

	b, err := l.CreateBoard("B")
	require.NoError(t, err)
	col, err := l.CreateColumn(b.ID, "Todo", 0, models.ColumnSettings{HooksEnabled: true})
	require.NoError(t, err)
	review, err := l.CreateColumn(b.ID, "To Review", 1, models.ColumnSettings{})
	require.NoError(t, err)

	hook, err := l.CreateHook(models.Hook{BoardID: b.ID, Name: "boom", Kind: models.HookKindScript, Command: "exit 1"})
	require.NoError(t, err)
	_, err = l.AttachHook(models.ColumnHook{ColumnID: col.ID, HookID: hook.ID, Position: 0})
	require.NoError(t, err)

	task, err := l.CreateTask(col.ID, "t1", "")
	require.NoError(t, err)
	// Give the task a worktree directly so the script actually runs (and fails)
	// instead of being skipped for a missing directory.
	task.WorktreePath = t.TempDir()
	require.NoError(t, l.SaveTask(task))

	a := New(b.ID, task.ID, deps)
	runActor(t, a)

	waitUntil(t, time.Second, func() bool {
		fresh, err := l.GetTask(task.ID)
		return err == nil && fresh.ColumnID == review.ID
	})

	fresh, err := l.GetTask(task.ID)
	require.NoError(t, err)
	require.Equal(t, models.AgentStatusError, fresh.AgentStatus)
	require.NotEmpty(t, fresh.ErrorMessage)
}

func TestActor_ExecuteOnceHookDoesNotRerunOnReentry(t *testing.T) {
	l, bus := newTestLayer(t)
	deps := newTestDeps(t, l, bus)

	b, err := l.CreateBoard("B")
	require.NoError(t, err)
	col, err := l.CreateColumn(b.ID, "Todo", 0, models.ColumnSettings{HooksEnabled: true})
	require.NoError(t, err)
	other, err := l.CreateColumn(b.ID, "Doing", 1, models.ColumnSettings{HooksEnabled: true})
	require.NoError(t, err)
	_, err = l.CreateColumn(b.ID, "To Review", 2, models.ColumnSettings{})
	require.NoError(t, err)

	hook, err := l.CreateHook(models.Hook{BoardID: b.ID, Name: "once", Kind: models.HookKindScript, Command: "true"})
	require.NoError(t, err)
	ch, err := l.AttachHook(models.ColumnHook{ColumnID: col.ID, HookID: hook.ID, Position: 0, ExecuteOnce: true, Transparent: true})
	require.NoError(t, err)

	task, err := l.CreateTask(col.ID, "t1", "")
	require.NoError(t, err)

	a := New(b.ID, task.ID, deps)
	runActor(t, a)

	waitUntil(t, time.Second, func() bool {
		fresh, err := l.GetTask(task.ID)
		return err == nil && fresh.HasExecuted(ch.ID)
	})

	// Move back to the same column; the execute_once hook must not fire again.
	fresh, err := l.GetTask(task.ID)
	require.NoError(t, err)
	fresh.ColumnID = other.ID
	require.NoError(t, l.SaveTask(fresh))
	a.NotifyTaskUpdated(fresh)

	waitUntil(t, time.Second, func() bool {
		t2, err := l.GetTask(task.ID)
		return err == nil && t2.ColumnID == other.ID
	})

	fresh2, err := l.GetTask(task.ID)
	require.NoError(t, err)
	fresh2.ColumnID = col.ID
	require.NoError(t, l.SaveTask(fresh2))
	a.NotifyTaskUpdated(fresh2)

	waitUntil(t, time.Second, func() bool {
		hist, err := l.HookExecutions().HistoryForTask(task.ID, 0, time.Time{})
		return err == nil && len(hist) >= 1
	})

	time.Sleep(50 * time.Millisecond)
	hist, err := l.HookExecutions().HistoryForTask(task.ID, 0, time.Time{})
	require.NoError(t, err)
	require.Len(t, hist, 1, "execute_once hook must not re-queue on a later re-entry into the same column")
}

func TestActor_AwaitExecutorHookMovesTaskToReviewOnCompletion(t *testing.T) {
	l, bus := newTestLayer(t)

	fakeSys := &fakeAsyncSystemHooks{bus: bus, exitCode: 0}
	deps := Deps{
		Store:     l,
		Bus:       bus,
		Hooks:     hookrunner.New(fakeSys, 2*time.Second, 2*time.Second),
		Worktrees: nil,
		Semaphore: semaphore.New(nil),
	}

	b, err := l.CreateBoard("B")
	require.NoError(t, err)
	col, err := l.CreateColumn(b.ID, "In Progress", 0, models.ColumnSettings{HooksEnabled: true})
	require.NoError(t, err)
	review, err := l.CreateColumn(b.ID, "To Review", 1, models.ColumnSettings{})
	require.NoError(t, err)

	_, err = l.AttachHook(models.ColumnHook{ColumnID: col.ID, HookID: systemhooks.SlugExecuteAI, Position: 0})
	require.NoError(t, err)

	task, err := l.CreateTask(col.ID, "t1", "")
	require.NoError(t, err)

	a := New(b.ID, task.ID, deps)
	runActor(t, a)

	waitUntil(t, time.Second, func() bool {
		hist, err := l.HookExecutions().HistoryForTask(task.ID, 0, time.Time{})
		return err == nil && len(hist) == 1 && hist[0].Status == models.HookExecutionRunning
	})

	waitUntil(t, time.Second, func() bool {
		fresh, err := l.GetTask(task.ID)
		return err == nil && fresh.ColumnID == review.ID
	})

	fresh, err := l.GetTask(task.ID)
	require.NoError(t, err)
	require.Equal(t, models.AgentStatusIdle, fresh.AgentStatus)
	require.Equal(t, "Completed successfully", fresh.AgentStatusMessage)

	hist, err := l.HookExecutions().HistoryForTask(task.ID, 0, time.Time{})
	require.NoError(t, err)
	require.Equal(t, models.HookExecutionCompleted, hist[0].Status)
}

func TestActor_PublishesHookExecutedOnBoardTopic(t *testing.T) {
	l, bus := newTestLayer(t)
	deps := newTestDeps(t, l, bus)

	b, err := l.CreateBoard("B")
	require.NoError(t, err)
	col, err := l.CreateColumn(b.ID, "Todo", 0, models.ColumnSettings{HooksEnabled: true})
	require.NoError(t, err)
	_, err = l.CreateColumn(b.ID, "To Review", 1, models.ColumnSettings{})
	require.NoError(t, err)

	hook, err := l.CreateHook(models.Hook{BoardID: b.ID, Name: "noop", Kind: models.HookKindScript, Command: "true"})
	require.NoError(t, err)
	_, err = l.AttachHook(models.ColumnHook{ColumnID: col.ID, HookID: hook.ID, Position: 0, Transparent: true})
	require.NoError(t, err)

	sub := bus.Subscribe(models.BoardTopic(b.ID))
	defer bus.Unsubscribe(sub)

	task, err := l.CreateTask(col.ID, "t1", "")
	require.NoError(t, err)

	a := New(b.ID, task.ID, deps)
	runActor(t, a)

	select {
	case ev := <-sub.C:
		payload, ok := ev.Payload.(models.HookExecuted)
		require.True(t, ok)
		require.Equal(t, hook.ID, payload.HookID)
		require.Equal(t, "noop", payload.HookName)
		require.Equal(t, task.ID, payload.TaskID)
		require.Equal(t, col.ID, payload.TriggeringColumnID)
		require.Equal(t, "ok", payload.Result)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for HookExecuted on board topic")
	}
}
