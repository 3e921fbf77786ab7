package models

// Topic names published to the process-wide EventBus (C9). Subscribers
// match on exact topic string; per-task and per-board topics are built with
// the Task*Topic/BoardTopic helpers below.
const (
	TopicTaskUpdates = "task:updates"
	// TopicTaskExecute notifies a task's own TaskActor mailbox; built with TaskExecuteTopic.
	TopicTaskExecutePrefix = "task:"
	TopicTaskExecuteSuffix = ":execute"
	// TopicExecutorCompleted is built with ExecutorCompletedTopic.
	TopicExecutorCompletedPrefix = "executor:"
	TopicExecutorCompletedSuffix = ":completed"
	// TopicBoardLifecyclePrefix is built with BoardLifecycleTopic. Internal
	// plumbing only (column create/delete fan-out to BoardActor) — distinct
	// from the UI-facing BoardTopic below.
	TopicBoardLifecyclePrefix = "board:"
	TopicBoardLifecycleSuffix = ":lifecycle"
	// TopicBoardPrefix is built with BoardTopic.
	TopicBoardPrefix = "kanban_lite:board:"
)

// TaskExecuteTopic returns the per-task "entry hook ready to run" topic.
func TaskExecuteTopic(taskID string) string {
	return TopicTaskExecutePrefix + taskID + TopicTaskExecuteSuffix
}

// ExecutorCompletedTopic returns the per-task external-executor-completion topic.
func ExecutorCompletedTopic(taskID string) string {
	return TopicExecutorCompletedPrefix + taskID + TopicExecutorCompletedSuffix
}

// BoardLifecycleTopic returns the per-board topic BoardActor watches for
// column create/delete so it can refresh its column set.
func BoardLifecycleTopic(boardID string) string {
	return TopicBoardLifecyclePrefix + boardID + TopicBoardLifecycleSuffix
}

// BoardTopic returns the per-board UI-facing topic hook-executed
// notifications (HookExecuted) are published on.
func BoardTopic(boardID string) string {
	return TopicBoardPrefix + boardID
}

// EventKind values carried on TopicTaskUpdates and BoardLifecycleTopic payloads.
const (
	EventKindTaskCreated         = "task_created"
	EventKindTaskUpdated         = "task_updated"
	EventKindTaskDeleted         = "task_deleted"
	EventKindTaskMoved           = "task_moved"
	EventKindTaskErrored         = "task_errored"
	EventKindBoardCreated        = "board_created"
	EventKindBoardDeleted        = "board_deleted"
	EventKindColumnCreated       = "column_created"
	EventKindColumnDeleted       = "column_deleted"
	EventKindHookExecutionQueued    = "hook_execution_queued"
	EventKindHookExecutionStarted   = "hook_execution_started"
	EventKindHookExecutionCompleted = "hook_execution_completed"
	EventKindHookExecutionFailed    = "hook_execution_failed"
	EventKindHookExecutionCancelled = "hook_execution_cancelled"
	EventKindHookExecutionSkipped   = "hook_execution_skipped"
	EventKindExecutorStarted     = "executor_started"
	EventKindExecutorCompleted   = "executor_completed"
)

// HookExecuted is the payload TaskActor publishes on BoardTopic after a hook
// runs to completion, the wire format UI clients read off that topic.
type HookExecuted struct {
	HookID             string         `json:"hook_id"`
	HookName           string         `json:"hook_name"`
	TaskID             string         `json:"task_id"`
	TriggeringColumnID string         `json:"triggering_column_id"`
	Result             string         `json:"result"` // "ok" | "error"
	Effects            map[string]any `json:"effects,omitempty"`
}
