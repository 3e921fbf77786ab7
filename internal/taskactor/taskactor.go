// Package taskactor implements TaskActor (C5): the single-threaded process
// that owns one task's command queue, hook execution, column-change
// protocol, and executor-completion handling for as long as the task exists.
package taskactor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/nxy7/viban/internal/datalayer"
	"github.com/nxy7/viban/internal/hookrunner"
	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/queue"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/semaphore"
	"github.com/nxy7/viban/internal/systemhooks"
	"github.com/nxy7/viban/internal/worktree"
)

// Deps bundles an Actor's collaborators. One set of Deps is shared by every
// TaskActor a BoardActor spawns.
type Deps struct {
	Store     datalayer.Store
	Bus       *registry.EventBus
	Hooks     *hookrunner.Runner
	Worktrees *worktree.Manager
	Semaphore *semaphore.ColumnSemaphore
	Logger    *slog.Logger
}

type message struct {
	taskUpdated       *models.Task
	executorStarted   *executorStartedPayload
	executorCompleted *int
}

type executorStartedPayload struct {
	columnHookID       string
	rowID              string
	executeOnce        bool
	hookID             string
	hookName           string
	triggeringColumnID string
}

// Actor owns exactly one task id's lifecycle for as long as Run executes.
// Its internal state is touched only from the Run goroutine; everything
// else communicates through the Notify* methods and the mailbox.
type Actor struct {
	deps    Deps
	boardID string
	taskID  string

	mailbox chan message
	stop    chan struct{}
	done    chan struct{}

	queue *queue.Queue

	currentColumnID            string
	worktreePath               string
	worktreeBranch             string
	currentHookName            string
	executorRunning            bool
	awaitingHookID             string
	awaitingHookRowID          string
	awaitingExecuteOnce        bool
	awaitingHookDomainID       string
	awaitingHookName           string
	awaitingTriggeringColumnID string
	pendingAdmission           bool

	wakeSub *registry.Subscription
	execSub *registry.Subscription
}

// New returns an Actor for taskID on boardID. Call Run to start it.
func New(boardID, taskID string, deps Deps) *Actor {
	return &Actor{
		deps:    deps,
		boardID: boardID,
		taskID:  taskID,
		queue:   queue.New(),
		mailbox: make(chan message, 32),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (a *Actor) TaskID() string { return a.taskID }

// Done closes once Run returns.
func (a *Actor) Done() <-chan struct{} { return a.done }

// Stop asks Run to return at its next opportunity.
func (a *Actor) Stop() {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
}

// NotifyTaskUpdated delivers a fresh snapshot of the task, e.g. after a
// drag-and-drop move landed through the data layer directly.
func (a *Actor) NotifyTaskUpdated(t *models.Task) {
	a.send(message{taskUpdated: t})
}

// NotifyExecutorStartedExternally records that a system hook backgrounded an
// executor process for columnHookID (logged as rowID) and that completion
// will arrive asynchronously on models.ExecutorCompletedTopic(taskID).
func (a *Actor) NotifyExecutorStartedExternally(columnHookID, rowID, hookID, hookName, triggeringColumnID string, executeOnce bool) {
	a.send(message{executorStarted: &executorStartedPayload{
		columnHookID:       columnHookID,
		rowID:              rowID,
		executeOnce:        executeOnce,
		hookID:             hookID,
		hookName:           hookName,
		triggeringColumnID: triggeringColumnID,
	}})
}

// NotifyExecutorCompleted reports the exit code of a backgrounded executor.
func (a *Actor) NotifyExecutorCompleted(exitCode int) {
	code := exitCode
	a.send(message{executorCompleted: &code})
}

func (a *Actor) send(msg message) {
	select {
	case a.mailbox <- msg:
	case <-a.stop:
	}
}

func (a *Actor) log() *slog.Logger {
	logger := a.deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("task_id", a.taskID, "board_id", a.boardID)
}

// Run drives the actor's main loop until ctx is cancelled or Stop is called.
// It is meant to be launched as its own goroutine by a BoardActor.
func (a *Actor) Run(ctx context.Context) {
	defer close(a.done)

	task, err := a.deps.Store.GetTask(a.taskID)
	if err != nil {
		a.log().Error("load task", "error", err)
		return
	}
	a.currentColumnID = task.ColumnID
	a.worktreePath = task.WorktreePath
	a.worktreeBranch = task.WorktreeBranch

	if task.WorktreePath == "" && a.deps.Worktrees != nil {
		path, branch, werr := a.deps.Worktrees.Create(ctx, a.boardID, a.taskID, task.CustomBranchName)
		if werr != nil {
			a.log().Warn("create worktree", "error", werr)
		} else {
			task.WorktreePath, task.WorktreeBranch = path, branch
			a.worktreePath, a.worktreeBranch = path, branch
			if serr := a.deps.Store.SaveTask(task); serr != nil {
				a.log().Warn("persist worktree", "error", serr)
			}
		}
	}

	a.wakeSub = a.deps.Bus.Subscribe(models.TaskExecuteTopic(a.taskID))
	defer a.deps.Bus.Unsubscribe(a.wakeSub)

	a.resolveEntryCommands(task)
	a.drainQueue(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		case msg := <-a.mailbox:
			a.handleMessage(ctx, msg)
			a.drainQueue(ctx)
		case <-a.wakeSub.C:
			if a.pendingAdmission {
				a.pendingAdmission = false
				if t, terr := a.deps.Store.GetTask(a.taskID); terr == nil {
					a.resolveEntryCommands(t)
				}
			}
			a.drainQueue(ctx)
		}
	}
}

func (a *Actor) handleMessage(ctx context.Context, msg message) {
	switch {
	case msg.taskUpdated != nil:
		a.onTaskUpdated(ctx, msg.taskUpdated)
	case msg.executorStarted != nil:
		a.onExecutorStarted(msg.executorStarted)
	case msg.executorCompleted != nil:
		a.onExecutorCompleted(*msg.executorCompleted)
	}
}

func (a *Actor) onTaskUpdated(ctx context.Context, t *models.Task) {
	if t.ColumnID == a.currentColumnID {
		return
	}
	old := a.currentColumnID
	a.onColumnChanged(ctx, old, t.ColumnID, t)
}

func (a *Actor) onExecutorStarted(p *executorStartedPayload) {
	a.beginAwaitingExecutor(p.columnHookID, p.rowID, p.hookID, p.hookName, p.triggeringColumnID, p.executeOnce)
}

// beginAwaitingExecutor arms the actor to resume via onExecutorCompleted once
// models.ExecutorCompletedTopic(taskID) fires, whether the caller reached
// here synchronously (a hook_entry that returned Await) or asynchronously
// (NotifyExecutorStartedExternally).
func (a *Actor) beginAwaitingExecutor(columnHookID, rowID, hookID, hookName, triggeringColumnID string, executeOnce bool) {
	a.executorRunning = true
	a.awaitingHookID = columnHookID
	a.awaitingHookRowID = rowID
	a.awaitingExecuteOnce = executeOnce
	a.awaitingHookDomainID = hookID
	a.awaitingHookName = hookName
	a.awaitingTriggeringColumnID = triggeringColumnID

	if a.execSub != nil {
		return
	}
	sub := a.deps.Bus.Subscribe(models.ExecutorCompletedTopic(a.taskID))
	a.execSub = sub
	go func() {
		for ev := range sub.C {
			code, ok := ev.Payload.(int)
			if !ok {
				continue
			}
			select {
			case a.mailbox <- message{executorCompleted: &code}:
			case <-a.stop:
				return
			}
		}
	}()
}

// onExecutorCompleted implements §4.5.3. If no hook is currently awaiting an
// executor (e.g. a column change already cleared it), this is a no-op: the
// signal belongs to a pipeline this task has already left.
func (a *Actor) onExecutorCompleted(exitCode int) {
	a.executorRunning = false
	if a.execSub != nil {
		a.deps.Bus.Unsubscribe(a.execSub)
		a.execSub = nil
	}

	if a.awaitingHookID == "" {
		a.log().Debug("executor completed with no awaiting hook", "exit_code", exitCode)
		return
	}

	hookID := a.awaitingHookID
	rowID := a.awaitingHookRowID
	executeOnce := a.awaitingExecuteOnce
	hookDomainID := a.awaitingHookDomainID
	hookName := a.awaitingHookName
	triggeringColumnID := a.awaitingTriggeringColumnID
	a.awaitingHookID = ""
	a.awaitingHookRowID = ""
	a.awaitingExecuteOnce = false
	a.awaitingHookDomainID = ""
	a.awaitingHookName = ""
	a.awaitingTriggeringColumnID = ""
	a.currentHookName = ""

	outcome := "ok"
	if rowID != "" {
		if exitCode == 0 {
			_ = a.deps.Store.HookExecutions().Complete(rowID)
		} else {
			outcome = "error"
			_ = a.deps.Store.HookExecutions().Fail(rowID, fmt.Sprintf("executor exited with code %d", exitCode))
		}
	}
	a.publishHookExecuted(models.Hook{ID: hookDomainID, Name: hookName}, triggeringColumnID, outcome, nil)

	if task, err := a.deps.Store.GetTask(a.taskID); err == nil {
		if exitCode == 0 {
			task.AgentStatus = models.AgentStatusIdle
			task.AgentStatusMessage = "Completed successfully"
			if executeOnce {
				task.MarkExecuted(hookID)
			}
		} else {
			task.AgentStatus = models.AgentStatusError
			task.AgentStatusMessage = fmt.Sprintf("Failed with exit code %d", exitCode)
		}
		task.InProgress = false
		if err := a.deps.Store.SaveTask(task); err != nil {
			a.log().Warn("save task after executor completion", "error", err)
		}
	}

	a.queue.CompleteCurrent()

	if reviewID, err := a.toReviewColumnID(); err == nil && reviewID != "" {
		a.queue.PushFront(queue.NewMoveTask(reviewID, nil))
	}
}

// drainQueue pops and runs commands until the queue is empty, idle-awaiting
// an executor, or interrupted mid-batch.
func (a *Actor) drainQueue(ctx context.Context) {
	for {
		if a.awaitingHookID != "" {
			return
		}
		cmd := a.queue.Pop()
		if cmd == nil {
			if err := a.deps.Store.HookExecutions().ClearQueueSnapshot(a.taskID); err != nil {
				a.log().Warn("clear queue snapshot", "error", err)
			}
			return
		}

		result := a.executeCommand(ctx, cmd)
		if result.Await {
			return
		}

		var next queue.Next
		if cmd.OnComplete != nil {
			next = cmd.OnComplete(result)
		}
		a.queue.CompleteCurrent()

		for i := len(next.Requeue) - 1; i >= 0; i-- {
			a.queue.PushFront(next.Requeue[i])
		}
	}
}

func (a *Actor) executeCommand(ctx context.Context, cmd *queue.Command) queue.Result {
	switch cmd.Kind {
	case queue.KindHookEntry:
		return a.runHookEntry(ctx, cmd)
	case queue.KindMoveTask:
		return a.runMoveTask(ctx, cmd)
	case queue.KindNotifySemaphoreLeave:
		return a.runNotifySemaphoreLeave(cmd)
	default:
		return queue.Result{Err: fmt.Errorf("unknown command kind %q", cmd.Kind)}
	}
}

// runHookEntry runs one hook_entry command to completion, or, for a system
// hook that backgrounds an executor, arms the actor to resume via
// onExecutorCompleted when that executor finishes.
func (a *Actor) runHookEntry(ctx context.Context, cmd *queue.Command) queue.Result {
	ch, hook := cmd.ColumnHook, cmd.Hook

	rowID, err := a.deps.Store.HookExecutions().Queue(a.taskID, ch.ID, hook.ID, hook.Name, a.currentColumnID, ch.HookSettings)
	if err != nil {
		return queue.Result{Err: fmt.Errorf("queue hook execution: %w", err)}
	}
	if err := a.deps.Store.HookExecutions().Start(rowID); err != nil {
		a.log().Warn("start hook execution", "error", err)
	}

	task, err := a.deps.Store.GetTask(a.taskID)
	if err != nil {
		_ = a.deps.Store.HookExecutions().Fail(rowID, "task_not_found")
		a.currentHookName = ""
		return queue.Result{Err: fmt.Errorf("task_not_found: %w", err)}
	}

	a.currentHookName = hook.Name
	if !ch.Transparent {
		task.AgentStatus = models.AgentStatusExecuting
		task.AgentStatusMessage = "Executing " + hook.Name
		task.InProgress = true
		if err := a.deps.Store.SaveTask(task); err != nil {
			a.log().Warn("save task before hook", "error", err)
		}
	}

	execCtx := hookrunner.ExecContext{
		TaskID:             a.taskID,
		WorktreePath:       a.worktreePath,
		ColumnID:           a.currentColumnID,
		TriggeringColumnID: a.currentColumnID,
	}
	result := a.deps.Hooks.Run(ctx, hook, ch, execCtx)

	if result.Await {
		// The hook started an asynchronous executor; its HookExecution row
		// stays "running" until executor_completed arrives. Do not complete
		// the command — drainQueue leaves it current.
		a.beginAwaitingExecutor(ch.ID, rowID, hook.ID, hook.Name, a.currentColumnID, ch.ExecuteOnce)
		return result
	}
	a.currentHookName = ""

	if result.Err != nil {
		_ = a.deps.Store.HookExecutions().Fail(rowID, result.Err.Error())
		a.publishHookExecuted(hook, a.currentColumnID, "error", nil)
		return result
	}

	if err := a.deps.Store.HookExecutions().Complete(rowID); err != nil {
		a.log().Warn("complete hook execution", "error", err)
	}

	if fresh, ferr := a.deps.Store.GetTask(a.taskID); ferr == nil {
		task = fresh
	}
	if ch.ExecuteOnce {
		task.MarkExecuted(ch.ID)
	}
	if !ch.Transparent && task.AgentStatus == models.AgentStatusExecuting {
		task.AgentStatus = models.AgentStatusIdle
		task.AgentStatusMessage = ""
		task.InProgress = false
	}
	if err := a.deps.Store.SaveTask(task); err != nil {
		a.log().Warn("save task after hook", "error", err)
	}

	a.publishHookExecuted(hook, a.currentColumnID, "ok", hookEffects(ch))

	return result
}

// publishHookExecuted notifies UI clients that hook ran to completion, the
// wire format documented for BoardTopic.
func (a *Actor) publishHookExecuted(hook models.Hook, triggeringColumnID, outcome string, effects map[string]any) {
	if a.deps.Bus == nil {
		return
	}
	a.deps.Bus.Publish(models.BoardTopic(a.boardID), models.HookExecuted{
		HookID:             hook.ID,
		HookName:           hook.Name,
		TaskID:             a.taskID,
		TriggeringColumnID: triggeringColumnID,
		Result:             outcome,
		Effects:            effects,
	})
}

// hookEffects surfaces the subset of a column hook's settings that the UI
// needs to react to visibly, e.g. a sound to play.
func hookEffects(ch *models.ColumnHook) map[string]any {
	if sound, ok := ch.HookSettings.PlaySound(); ok {
		return map[string]any{"play_sound": map[string]any{"sound": sound.Sound}}
	}
	return nil
}

func (a *Actor) runMoveTask(ctx context.Context, cmd *queue.Command) queue.Result {
	if err := a.performMove(ctx, cmd.TargetColumnID); err != nil {
		return queue.Result{Err: err}
	}
	return queue.Result{}
}

func (a *Actor) runNotifySemaphoreLeave(cmd *queue.Command) queue.Result {
	a.deps.Semaphore.TaskLeftColumn(cmd.ColumnID, a.taskID)
	return queue.Result{}
}

// performMove moves the task to newColumnID, idempotent if it is already
// there (§4.5.2).
func (a *Actor) performMove(ctx context.Context, newColumnID string) error {
	task, err := a.deps.Store.GetTask(a.taskID)
	if err != nil {
		return err
	}
	if task.ColumnID == newColumnID {
		return nil
	}
	old := task.ColumnID
	task.ColumnID = newColumnID
	if err := a.deps.Store.SaveTask(task); err != nil {
		return err
	}
	a.onColumnChanged(ctx, old, newColumnID, task)
	return nil
}

// onColumnChanged implements §4.5.4.
func (a *Actor) onColumnChanged(ctx context.Context, oldColumnID, newColumnID string, task *models.Task) {
	if a.executorRunning {
		a.executorRunning = false
		if a.execSub != nil {
			a.deps.Bus.Unsubscribe(a.execSub)
			a.execSub = nil
		}
	}
	a.awaitingHookID = ""
	a.awaitingHookRowID = ""
	a.awaitingExecuteOnce = false
	a.awaitingHookDomainID = ""
	a.awaitingHookName = ""
	a.awaitingTriggeringColumnID = ""
	a.currentHookName = ""
	a.queue.Clear()

	if active, err := a.deps.Store.HookExecutions().ActiveForTask(a.taskID); err == nil {
		for _, e := range active {
			_ = a.deps.Store.HookExecutions().Cancel(e.ID, models.SkipReasonColumnChange)
		}
	} else {
		a.log().Warn("list active hook executions on column change", "error", err)
	}

	a.queue.Push(queue.NewNotifySemaphoreLeave(oldColumnID, nil))
	a.currentColumnID = newColumnID
	a.resolveEntryCommands(task)
}

type resolvedHook struct {
	ch   *models.ColumnHook
	hook models.Hook
}

type skippedHook struct {
	ch     *models.ColumnHook
	hook   models.Hook
	reason string
}

// resolveEntryCommands implements §4.5.5, including the ColumnSemaphore gate
// that must admit the task into newColumn before any entry hook runs.
func (a *Actor) resolveEntryCommands(task *models.Task) {
	column, err := a.deps.Store.GetColumn(a.currentColumnID)
	if err != nil {
		a.log().Error("load column for entry resolution", "error", err)
		return
	}

	if a.deps.Semaphore != nil {
		admit := a.deps.Semaphore.Acquire(a.currentColumnID, a.taskID, semaphore.MaxConcurrentFor(column.Settings))
		if admit == semaphore.Queued {
			a.pendingAdmission = true
			return
		}
	}
	a.pendingAdmission = false

	columnHooks, err := a.deps.Store.ListColumnHooks(a.currentColumnID)
	if err != nil {
		a.log().Error("list column hooks for entry resolution", "error", err)
		return
	}

	inError := task.AgentStatus == models.AgentStatusError
	var toRun []resolvedHook
	var toSkip []skippedHook

	for _, ch := range columnHooks {
		if ch.ExecuteOnce && task.HasExecuted(ch.ID) {
			continue
		}
		hook, herr := a.resolveHook(ch)
		if herr != nil {
			if ferr := a.logUnknownHook(ch); ferr != nil {
				a.log().Warn("log unknown hook", "column_hook_id", ch.ID, "error", ferr)
			}
			continue
		}

		switch {
		case !column.Settings.HooksEnabled:
			toSkip = append(toSkip, skippedHook{ch, hook, models.SkipReasonDisabled})
		case inError && !ch.Transparent:
			toSkip = append(toSkip, skippedHook{ch, hook, models.SkipReasonError})
		default:
			toRun = append(toRun, resolvedHook{ch, hook})
		}
	}

	a.saveSnapshotAndSkips(toRun, toSkip)

	cmds := make([]*queue.Command, 0, len(toRun))
	for _, r := range toRun {
		cmds = append(cmds, a.buildHookEntryCommand(r.ch, r.hook))
	}
	a.queue.PushAll(cmds)
}

func (a *Actor) saveSnapshotAndSkips(toRun []resolvedHook, toSkip []skippedHook) {
	snapshot := make([]models.QueueSnapshotEntry, 0, len(toRun))
	now := time.Now().UTC()
	for _, r := range toRun {
		snapshot = append(snapshot, models.QueueSnapshotEntry{
			ColumnHookID: r.ch.ID,
			HookName:     r.hook.Name,
			Status:       models.HookExecutionPending,
			QueuedAt:     now,
		})
	}
	if err := a.deps.Store.HookExecutions().SaveQueueSnapshot(a.taskID, snapshot); err != nil {
		a.log().Error("save queue snapshot", "error", err)
	}

	for _, s := range toSkip {
		rowID, err := a.deps.Store.HookExecutions().Queue(a.taskID, s.ch.ID, s.hook.ID, s.hook.Name, a.currentColumnID, s.ch.HookSettings)
		if err != nil {
			a.log().Error("queue skipped hook execution", "error", err)
			continue
		}
		if err := a.deps.Store.HookExecutions().Skip(rowID, s.reason); err != nil {
			a.log().Error("skip hook execution", "error", err)
		}
	}
}

func (a *Actor) resolveHook(ch *models.ColumnHook) (models.Hook, error) {
	if models.IsSystemID(ch.HookID) {
		return models.Hook{ID: ch.HookID, Name: ch.HookID, Kind: models.HookKindSystem}, nil
	}
	hook, err := a.deps.Store.GetHook(ch.HookID)
	if err != nil {
		return models.Hook{}, err
	}
	return *hook, nil
}

// logUnknownHook implements the unknown_hook error kind from §7: logged
// failed and skipped, never fatal to the actor.
func (a *Actor) logUnknownHook(ch *models.ColumnHook) error {
	rowID, err := a.deps.Store.HookExecutions().Queue(a.taskID, ch.ID, ch.HookID, ch.HookID, a.currentColumnID, ch.HookSettings)
	if err != nil {
		return err
	}
	return a.deps.Store.HookExecutions().Fail(rowID, "unknown_hook")
}

func (a *Actor) buildHookEntryCommand(ch *models.ColumnHook, hook models.Hook) *queue.Command {
	chCopy, hookCopy := *ch, hook
	onComplete := func(res queue.Result) queue.Next {
		return a.onHookEntryComplete(&chCopy, hookCopy, res)
	}
	return queue.NewHookEntry(chCopy, hookCopy, onComplete, nil)
}

func (a *Actor) onHookEntryComplete(ch *models.ColumnHook, hook models.Hook, res queue.Result) queue.Next {
	if res.Err != nil {
		return a.onHookFailure(ch, res.Err)
	}
	if ch.HookID == systemhooks.SlugMoveTask {
		return a.onMoveTaskHookResult(res.Output)
	}
	return queue.Next{}
}

func (a *Actor) onMoveTaskHookResult(output string) queue.Next {
	next, named, err := systemhooks.ParseMoveTarget(output)
	if err != nil {
		a.log().Warn("malformed move-task result", "error", err)
		return queue.Next{}
	}
	target := named
	if next {
		nc, nerr := a.resolveNextColumnID()
		if nerr != nil {
			a.log().Warn("resolve next column for move-task", "error", nerr)
			return queue.Next{}
		}
		target = nc
	}
	return queue.Next{Requeue: []*queue.Command{queue.NewMoveTask(target, nil)}}
}

// onHookFailure implements the non-transparent/transparent split of §4.5.1's
// error branch. The failed hook's own HookExecution row was already marked
// failed by runHookEntry.
func (a *Actor) onHookFailure(ch *models.ColumnHook, hookErr error) queue.Next {
	if ch.Transparent {
		return queue.Next{}
	}

	if task, err := a.deps.Store.GetTask(a.taskID); err == nil {
		task.AgentStatus = models.AgentStatusError
		task.ErrorMessage = hookErr.Error()
		task.InProgress = false
		if err := a.deps.Store.SaveTask(task); err != nil {
			a.log().Warn("save task on hook failure", "error", err)
		}
	}

	if active, err := a.deps.Store.HookExecutions().ActiveForTask(a.taskID); err == nil {
		for _, e := range active {
			_ = a.deps.Store.HookExecutions().Cancel(e.ID, models.SkipReasonError)
		}
	}
	a.queue.Clear()

	if reviewID, err := a.toReviewColumnID(); err == nil && reviewID != "" {
		return queue.Next{Requeue: []*queue.Command{queue.NewMoveTask(reviewID, nil)}}
	}
	return queue.Next{}
}

func (a *Actor) toReviewColumnID() (string, error) {
	cols, err := a.deps.Store.ListColumnsForBoard(a.boardID)
	if err != nil {
		return "", err
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, "To Review") {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("board %s has no \"To Review\" column", a.boardID)
}

func (a *Actor) resolveNextColumnID() (string, error) {
	cols, err := a.deps.Store.ListColumnsForBoard(a.boardID)
	if err != nil {
		return "", err
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	for i, c := range cols {
		if c.ID == a.currentColumnID {
			if i+1 < len(cols) {
				return cols[i+1].ID, nil
			}
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("current column %s not found on board %s", a.currentColumnID, a.boardID)
}
