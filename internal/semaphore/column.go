// Package semaphore implements per-column concurrency admission: at most N
// tasks run in a column at once, with fair FIFO admission of the rest.
package semaphore

import (
	"container/list"
	"sync"

	"github.com/nxy7/viban/internal/models"
)

// Notifier is called when a waiter is admitted, so the caller can publish
// the task's execute topic on the EventBus.
type Notifier interface {
	NotifyAdmitted(columnID, taskID string)
}

type columnState struct {
	running map[string]struct{}
	waiters *list.List // of string task ids, FIFO
}

// ColumnSemaphore tracks running and waiting task ids per column, keyed by
// each column's current MaxConcurrentTasks setting.
type ColumnSemaphore struct {
	mu       sync.Mutex
	columns  map[string]*columnState
	notifier Notifier
}

// New returns an empty semaphore. notifier may be nil if the caller polls
// task_left_column's return value instead of being pushed notifications.
func New(notifier Notifier) *ColumnSemaphore {
	return &ColumnSemaphore{columns: make(map[string]*columnState), notifier: notifier}
}

func (s *ColumnSemaphore) state(columnID string) *columnState {
	st, ok := s.columns[columnID]
	if !ok {
		st = &columnState{running: make(map[string]struct{}), waiters: list.New()}
		s.columns[columnID] = st
	}
	return st
}

// AdmitResult is the outcome of an Acquire call.
type AdmitResult string

const (
	Granted AdmitResult = "granted"
	Queued  AdmitResult = "queued"
)

// Acquire requests a concurrency slot in columnID for taskID. maxConcurrent
// is nil for "no cap" (always grants) and 0 for "never admit".
func (s *ColumnSemaphore) Acquire(columnID, taskID string, maxConcurrent *int) AdmitResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(columnID)

	if _, ok := st.running[taskID]; ok {
		return Granted
	}
	for e := st.waiters.Front(); e != nil; e = e.Next() {
		if e.Value.(string) == taskID {
			return Queued
		}
	}

	if maxConcurrent == nil || len(st.running) < *maxConcurrent {
		st.running[taskID] = struct{}{}
		return Granted
	}

	st.waiters.PushBack(taskID)
	return Queued
}

// TaskLeftColumn removes taskID from running or waiters. If a slot frees
// and a waiter is pending, the oldest waiter is admitted and its task id is
// returned so the caller can publish its execute topic on the EventBus.
func (s *ColumnSemaphore) TaskLeftColumn(columnID, taskID string) (admitted string, ok bool) {
	nextTaskID, admit := s.releaseAndPromote(columnID, taskID)
	if admit && s.notifier != nil {
		s.notifier.NotifyAdmitted(columnID, nextTaskID)
	}
	return nextTaskID, admit
}

func (s *ColumnSemaphore) releaseAndPromote(columnID, taskID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.columns[columnID]
	if !exists {
		return "", false
	}

	wasRunning := false
	if _, running := st.running[taskID]; running {
		delete(st.running, taskID)
		wasRunning = true
	} else {
		for e := st.waiters.Front(); e != nil; e = e.Next() {
			if e.Value.(string) == taskID {
				st.waiters.Remove(e)
				break
			}
		}
	}

	if !wasRunning {
		return "", false
	}

	front := st.waiters.Front()
	if front == nil {
		return "", false
	}
	st.waiters.Remove(front)
	nextTaskID := front.Value.(string)
	st.running[nextTaskID] = struct{}{}
	return nextTaskID, true
}

// RunningCount returns the number of task ids currently running in columnID.
func (s *ColumnSemaphore) RunningCount(columnID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.columns[columnID]
	if !ok {
		return 0
	}
	return len(st.running)
}

// WaiterCount returns the number of task ids currently waiting in columnID.
func (s *ColumnSemaphore) WaiterCount(columnID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.columns[columnID]
	if !ok {
		return 0
	}
	return st.waiters.Len()
}

// MaxConcurrentFor extracts the effective cap from column settings, mirroring
// the nil-vs-zero distinction in models.ColumnSettings.
func MaxConcurrentFor(settings models.ColumnSettings) *int {
	return settings.MaxConcurrentTasks
}
