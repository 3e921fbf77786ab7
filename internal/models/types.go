// Package models defines the domain types shared by the execution substrate:
// boards, columns, hooks, column attachments, tasks, and the durable hook
// execution log. These mirror the entities owned by the external Kanban
// data layer; the core consumes them through the narrow repository
// interfaces in internal/datalayer.
package models

import "time"

// HookKind identifies how a Hook is executed.
type HookKind string

const (
	HookKindScript HookKind = "script"
	HookKindAgent  HookKind = "agent"
	HookKindSystem HookKind = "system"
)

// AgentStatus is the task's current execution status as surfaced on its card.
type AgentStatus string

const (
	AgentStatusIdle           AgentStatus = "idle"
	AgentStatusThinking       AgentStatus = "thinking"
	AgentStatusExecuting      AgentStatus = "executing"
	AgentStatusError          AgentStatus = "error"
	AgentStatusWaitingForUser AgentStatus = "waiting_for_user"
)

// HookExecutionStatus is the lifecycle state of one HookExecution row.
type HookExecutionStatus string

const (
	HookExecutionPending   HookExecutionStatus = "pending"
	HookExecutionRunning   HookExecutionStatus = "running"
	HookExecutionCompleted HookExecutionStatus = "completed"
	HookExecutionFailed    HookExecutionStatus = "failed"
	HookExecutionCancelled HookExecutionStatus = "cancelled"
	HookExecutionSkipped   HookExecutionStatus = "skipped"
)

// IsTerminal reports whether the execution has reached a terminal status.
func (s HookExecutionStatus) IsTerminal() bool {
	switch s {
	case HookExecutionCompleted, HookExecutionFailed, HookExecutionCancelled, HookExecutionSkipped:
		return true
	default:
		return false
	}
}

// IsActive reports whether the execution is pending or running.
func (s HookExecutionStatus) IsActive() bool {
	return s == HookExecutionPending || s == HookExecutionRunning
}

// Board owns columns and hooks.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ColumnSettings controls hook gating and concurrency for a column.
type ColumnSettings struct {
	HooksEnabled bool `json:"hooks_enabled"`
	// MaxConcurrentTasks is nil when the column has no concurrency cap
	// (ColumnSemaphore.Acquire always grants). A value of 0 means the
	// column never admits a task.
	MaxConcurrentTasks *int `json:"max_concurrent_tasks,omitempty"`
}

// Column belongs to a Board; Position orders columns left to right.
type Column struct {
	ID       string         `json:"id"`
	BoardID  string         `json:"board_id"`
	Name     string         `json:"name"`
	Position int            `json:"position"`
	Settings ColumnSettings `json:"settings"`
}

// Hook is a reusable action definition attached to columns via ColumnHook.
// Built-in system hooks live in the process-wide system-hook registry keyed
// by ids of the form "system:<slug>" and are never rows in the data layer.
type Hook struct {
	ID                 string   `json:"id"`
	BoardID            string   `json:"board_id"`
	Name               string   `json:"name"`
	Kind               HookKind `json:"kind"`
	Command            string   `json:"command,omitempty"`
	AgentPrompt        string   `json:"agent_prompt,omitempty"`
	AgentExecutor      string   `json:"agent_executor,omitempty"`
	DefaultExecuteOnce bool     `json:"default_execute_once"`
	DefaultTransparent bool     `json:"default_transparent"`
}

// IsSystemID reports whether id names a built-in system hook rather than a
// data-layer row.
func IsSystemID(id string) bool {
	return len(id) > len("system:") && id[:len("system:")] == "system:"
}

// ColumnHook is a specific, ordered attachment of a Hook to a Column.
type ColumnHook struct {
	ID           string       `json:"id"`
	ColumnID     string       `json:"column_id"`
	HookID       string       `json:"hook_id"`
	Position     int          `json:"position"`
	ExecuteOnce  bool         `json:"execute_once"`
	Transparent  bool         `json:"transparent"`
	Removable    bool         `json:"removable"`
	HookSettings HookSettings `json:"hook_settings,omitempty"`
}

// Task is exclusively mutated by exactly one TaskActor while that actor is
// alive; everything else reads it through the data layer.
type Task struct {
	ID                 string      `json:"id"`
	ColumnID           string      `json:"column_id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	AgentStatus        AgentStatus `json:"agent_status"`
	AgentStatusMessage string      `json:"agent_status_message,omitempty"`
	InProgress         bool        `json:"in_progress"`
	ErrorMessage       string      `json:"error_message,omitempty"`
	WorktreePath       string      `json:"worktree_path,omitempty"`
	WorktreeBranch     string      `json:"worktree_branch,omitempty"`
	CustomBranchName   string      `json:"custom_branch_name,omitempty"`
	// ExecutedHooks tracks column_hook_ids for which execute_once has
	// already fired for this task. Only ever grows.
	ExecutedHooks map[string]struct{} `json:"-"`
	MessageQueue  []string            `json:"message_queue,omitempty"`
	PRURL         string              `json:"pr_url,omitempty"`
	PRNumber      int                 `json:"pr_number,omitempty"`
	// Version supports optimistic concurrency on update_task calls issued
	// from outside the owning TaskActor.
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasExecuted reports whether columnHookID is recorded in ExecutedHooks.
func (t *Task) HasExecuted(columnHookID string) bool {
	if t.ExecutedHooks == nil {
		return false
	}
	_, ok := t.ExecutedHooks[columnHookID]
	return ok
}

// MarkExecuted records columnHookID as executed. Idempotent.
func (t *Task) MarkExecuted(columnHookID string) {
	if t.ExecutedHooks == nil {
		t.ExecutedHooks = make(map[string]struct{})
	}
	t.ExecutedHooks[columnHookID] = struct{}{}
}

// CloneExecutedHooks returns a copy of the executed-hooks set, safe to hand
// to callers outside the owning TaskActor.
func (t *Task) CloneExecutedHooks() map[string]struct{} {
	out := make(map[string]struct{}, len(t.ExecutedHooks))
	for k := range t.ExecutedHooks {
		out[k] = struct{}{}
	}
	return out
}

// HookExecution is one row of the append-mostly hook execution log (C10).
type HookExecution struct {
	ID                 string              `json:"id"`
	TaskID             string              `json:"task_id"`
	ColumnHookID       string              `json:"column_hook_id,omitempty"`
	HookID             string              `json:"hook_id"`
	HookName           string              `json:"hook_name"`
	TriggeringColumnID string              `json:"triggering_column_id"`
	Status             HookExecutionStatus `json:"status"`
	SkipReason         string              `json:"skip_reason,omitempty"`
	ErrorMessage       string              `json:"error_message,omitempty"`
	HookSettings       HookSettings        `json:"hook_settings,omitempty"`
	QueuedAt           time.Time           `json:"queued_at"`
	StartedAt          *time.Time          `json:"started_at,omitempty"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
}

// Skip/cancel reasons recorded on terminal HookExecution rows.
const (
	SkipReasonDisabled     = "disabled"
	SkipReasonError        = "error"
	SkipReasonColumnChange = "column_change"
	SkipReasonExecuteOnce  = "execute_once"
)

// QueueSnapshotEntry is one line of a task's pending queue snapshot — the
// authoritative "about to happen / running now" view consumed by the UI.
type QueueSnapshotEntry struct {
	ColumnHookID string              `json:"column_hook_id"`
	HookName     string              `json:"hook_name"`
	Status       HookExecutionStatus `json:"status"`
	QueuedAt     time.Time           `json:"queued_at"`
}
