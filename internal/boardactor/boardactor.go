// Package boardactor implements BoardActor (C6): the per-board process that
// tracks which columns belong to its board and keeps exactly one TaskActor
// alive for every task currently in one of those columns.
package boardactor

import (
	"context"
	"log/slog"
	"time"

	"github.com/nxy7/viban/internal/datalayer"
	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/taskactor"
)

// reconcileInterval bounds how stale BoardActor's view of its own board can
// get when a task or column is written by a process other than this one
// (vibanctl talks to the database directly, not through this EventBus).
const reconcileInterval = 5 * time.Second

type runningTask struct {
	actor  *taskactor.Actor
	cancel context.CancelFunc
}

// Actor owns the set of TaskActors for one board. All of its state is
// touched only from the Run goroutine.
type Actor struct {
	boardID string
	store   datalayer.Store
	bus     *registry.EventBus
	reg     *registry.Registry
	deps    taskactor.Deps
	logger  *slog.Logger

	stop chan struct{}
	done chan struct{}

	columnIDs map[string]struct{}
	tasks     map[string]*runningTask
}

// New returns an Actor for boardID. taskDeps is shared, unmodified, by every
// TaskActor this board spawns.
func New(boardID string, store datalayer.Store, bus *registry.EventBus, reg *registry.Registry, taskDeps taskactor.Deps, logger *slog.Logger) *Actor {
	return &Actor{
		boardID:   boardID,
		store:     store,
		bus:       bus,
		reg:       reg,
		deps:      taskDeps,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		columnIDs: make(map[string]struct{}),
		tasks:     make(map[string]*runningTask),
	}
}

func (a *Actor) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default().With("board_id", a.boardID)
	}
	return a.logger.With("board_id", a.boardID)
}

// Done closes once Run returns.
func (a *Actor) Done() <-chan struct{} { return a.done }

// Stop asks Run to return, terminating every TaskActor it owns.
func (a *Actor) Stop() {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
}

// Run loads the board's columns and existing tasks, spawns a TaskActor for
// each in-scope task, and then reacts to task/column lifecycle events until
// ctx is cancelled or Stop is called.
func (a *Actor) Run(ctx context.Context) error {
	defer close(a.done)

	if err := a.refreshColumns(); err != nil {
		return err
	}
	if err := a.spawnExisting(ctx); err != nil {
		return err
	}

	taskSub := a.bus.Subscribe(models.TopicTaskUpdates)
	defer a.bus.Unsubscribe(taskSub)
	boardSub := a.bus.Subscribe(models.BoardLifecycleTopic(a.boardID))
	defer a.bus.Unsubscribe(boardSub)

	if a.reg != nil {
		a.reg.Register(registry.BoardActorKey(a.boardID), a)
	}

	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.stopAll()
			return nil
		case <-a.stop:
			a.stopAll()
			return nil
		case ev := <-taskSub.C:
			a.handleTaskUpdate(ctx, ev)
		case ev := <-boardSub.C:
			a.handleBoardUpdate(ev)
		case <-ticker.C:
			a.reconcile(ctx)
		}
	}
}

// reconcile picks up board and task mutations written by a process other
// than this one's EventBus publisher (e.g. vibanctl writing directly to
// the database): it refreshes the column set, spawns TaskActors for
// in-scope tasks this board doesn't yet track, and terminates ones for
// tasks that moved out of scope or were deleted without a matching event.
func (a *Actor) reconcile(ctx context.Context) {
	if err := a.refreshColumns(); err != nil {
		a.log().Error("reconcile: refresh columns", "error", err)
		return
	}

	tasks, err := a.store.ListTasksForBoard(a.boardID)
	if err != nil {
		a.log().Error("reconcile: list tasks", "error", err)
		return
	}
	live := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		live[t.ID] = struct{}{}
		if !a.inScope(t.ColumnID) {
			if a.tracked(t.ID) {
				a.terminate(t.ID)
			}
			continue
		}
		if rt, ok := a.tasks[t.ID]; ok {
			rt.actor.NotifyTaskUpdated(t)
		} else {
			a.spawn(ctx, t.ID)
		}
	}
	for id := range a.tasks {
		if _, ok := live[id]; !ok {
			a.terminate(id)
		}
	}
}

func (a *Actor) refreshColumns() error {
	cols, err := a.store.ListColumnsForBoard(a.boardID)
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[c.ID] = struct{}{}
	}
	a.columnIDs = set
	return nil
}

func (a *Actor) spawnExisting(ctx context.Context) error {
	tasks, err := a.store.ListTasksForBoard(a.boardID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if a.inScope(t.ColumnID) && !a.tracked(t.ID) {
			a.spawn(ctx, t.ID)
		}
	}
	return nil
}

func (a *Actor) inScope(columnID string) bool {
	_, ok := a.columnIDs[columnID]
	return ok
}

func (a *Actor) tracked(taskID string) bool {
	_, ok := a.tasks[taskID]
	return ok
}

func (a *Actor) spawn(ctx context.Context, taskID string) {
	childCtx, cancel := context.WithCancel(ctx)
	actor := taskactor.New(a.boardID, taskID, a.deps)
	a.tasks[taskID] = &runningTask{actor: actor, cancel: cancel}
	if a.reg != nil {
		a.reg.Register(registry.TaskActorKey(taskID), actor)
	}
	go actor.Run(childCtx)
}

func (a *Actor) terminate(taskID string) {
	rt, ok := a.tasks[taskID]
	if !ok {
		return
	}
	rt.actor.Stop()
	rt.cancel()
	delete(a.tasks, taskID)
	if a.reg != nil {
		a.reg.Unregister(registry.TaskActorKey(taskID))
	}
}

func (a *Actor) stopAll() {
	for id := range a.tasks {
		a.terminate(id)
	}
	if a.reg != nil {
		a.reg.Unregister(registry.BoardActorKey(a.boardID))
	}
}

func (a *Actor) handleTaskUpdate(ctx context.Context, ev registry.Event) {
	update, ok := ev.Payload.(datalayer.TaskUpdate)
	if !ok || update.Task == nil {
		return
	}

	switch update.Kind {
	case models.EventKindTaskCreated:
		if a.inScope(update.Task.ColumnID) && !a.tracked(update.Task.ID) {
			a.spawn(ctx, update.Task.ID)
		}
	case models.EventKindTaskDeleted:
		a.terminate(update.Task.ID)
	default:
		if !a.inScope(update.Task.ColumnID) {
			return
		}
		rt, ok := a.tasks[update.Task.ID]
		if !ok {
			a.spawn(ctx, update.Task.ID)
			return
		}
		rt.actor.NotifyTaskUpdated(update.Task)
	}
}

func (a *Actor) handleBoardUpdate(ev registry.Event) {
	update, ok := ev.Payload.(datalayer.BoardUpdate)
	if !ok {
		return
	}
	switch update.Kind {
	case models.EventKindColumnCreated, models.EventKindColumnDeleted:
		if err := a.refreshColumns(); err != nil {
			a.log().Error("refresh columns", "error", err)
		}
	}
}
