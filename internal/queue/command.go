// Package queue implements the per-task command queue: a FIFO of commands
// plus a single "current" slot and an interruption flag. It performs no I/O
// of its own; TaskActor pops commands and hands them to the HookRunner,
// WorktreeManager, or ColumnSemaphore.
package queue

import (
	"container/list"
	"sync"

	"github.com/nxy7/viban/internal/models"
)

// Kind discriminates the command variants a TaskActor can enqueue.
type Kind string

const (
	KindHookEntry             Kind = "hook_entry"
	KindMoveTask              Kind = "move_task"
	KindNotifySemaphoreLeave  Kind = "notify_semaphore_leave"
)

// Result is whatever a command's execution produced; TaskActor interprets
// it according to the command's Kind.
type Result struct {
	Output  string
	Skipped bool
	Err     error

	// Await reports that a hook_entry started an asynchronous executor
	// instead of completing synchronously. The HookExecution row stays
	// "running" and the command stays current until executor_completed
	// arrives on the task's executor-completed topic.
	Await bool
}

// Next tells the queue what to do after a command completes: either accept
// the result as-is, or splice a new set of commands onto the front of the
// pending queue before continuing (e.g. an entry hook fanning out into the
// remaining hooks for a column).
type Next struct {
	Requeue  []*Command
	RunAgain bool
}

// Command is one tagged queue entry.
type Command struct {
	Kind Kind

	// hook_entry
	ColumnHook models.ColumnHook
	Hook       models.Hook

	// move_task
	TargetColumnID string

	// notify_semaphore_leave
	ColumnID string

	OnComplete func(Result) Next
	OnError    func(error)
}

// NewHookEntry builds a hook_entry command.
func NewHookEntry(ch models.ColumnHook, hook models.Hook, onComplete func(Result) Next, onError func(error)) *Command {
	return &Command{Kind: KindHookEntry, ColumnHook: ch, Hook: hook, OnComplete: onComplete, OnError: onError}
}

// NewMoveTask builds a move_task command.
func NewMoveTask(targetColumnID string, onComplete func(Result) Next) *Command {
	return &Command{Kind: KindMoveTask, TargetColumnID: targetColumnID, OnComplete: onComplete}
}

// NewNotifySemaphoreLeave builds a notify_semaphore_leave command.
func NewNotifySemaphoreLeave(columnID string, onComplete func(Result) Next) *Command {
	return &Command{Kind: KindNotifySemaphoreLeave, ColumnID: columnID, OnComplete: onComplete}
}

// Queue is a FIFO of pending commands plus a current slot, safe for
// concurrent use. TaskActor is single-threaded in practice, but the mutex
// makes length/current safe to read from a status-reporting goroutine.
type Queue struct {
	mu          sync.Mutex
	pending     *list.List
	current     *Command
	interrupted bool
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{pending: list.New()}
}

// Push appends cmd to the back of the pending queue.
func (q *Queue) Push(cmd *Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending.PushBack(cmd)
}

// PushFront inserts cmd at the front of the pending queue, ahead of
// everything not yet popped.
func (q *Queue) PushFront(cmd *Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending.PushFront(cmd)
}

// PushAll appends cmds, in order, to the back of the pending queue.
func (q *Queue) PushAll(cmds []*Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, c := range cmds {
		q.pending.PushBack(c)
	}
}

// Pop atomically removes the head of the pending queue and marks it
// current. Returns nil if the pending queue is empty; it does not clear an
// existing current command.
func (q *Queue) Pop() *Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.pending.Front()
	if front == nil {
		return nil
	}
	q.pending.Remove(front)
	cmd := front.Value.(*Command)
	q.current = cmd
	return cmd
}

// CompleteCurrent clears the current slot. It is a no-op if nothing is current.
func (q *Queue) CompleteCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = nil
}

// Clear drops all pending commands. It never touches the current command:
// a command already fetched by Pop runs to completion regardless.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending.Init()
}

// Interrupt sets the interrupted flag. TaskActor checks this after the
// current command completes to decide whether to abandon the remaining
// pending queue (e.g. on a column change).
func (q *Queue) Interrupt() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.interrupted = true
}

// Interrupted reports and clears the interruption flag.
func (q *Queue) Interrupted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	v := q.interrupted
	q.interrupted = false
	return v
}

// RemoveType drops every pending command of the given kind. The current
// command, if any, is untouched.
func (q *Queue) RemoveType(kind Kind) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for e := q.pending.Front(); e != nil; {
		next := e.Next()
		if e.Value.(*Command).Kind == kind {
			q.pending.Remove(e)
		}
		e = next
	}
}

// Length returns the number of pending (not-yet-popped) commands.
func (q *Queue) Length() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}

// Current returns the command currently being executed, or nil.
func (q *Queue) Current() *Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Snapshot returns pending commands in FIFO order, for building a queue
// snapshot without draining the queue. The current command is not included;
// callers that need it should call Current separately.
func (q *Queue) Snapshot() []*Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Command, 0, q.pending.Len())
	for e := q.pending.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Command))
	}
	return out
}
