// Package systemhooks implements the built-in hooks addressed by
// "system:<slug>" ids: system:execute-ai, system:refine-prompt,
// system:play-sound, and system:move-task. These never have a Hook row in
// the data layer — HookRunner dispatches to this registry whenever a
// ColumnHook's hook kind is "system".
package systemhooks

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/nxy7/viban/internal/hookrunner"
	"github.com/nxy7/viban/internal/llm"
	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/queue"
	"github.com/nxy7/viban/internal/registry"
)

const (
	SlugExecuteAI    = "system:execute-ai"
	SlugRefinePrompt = "system:refine-prompt"
	SlugPlaySound    = "system:play-sound"
	SlugMoveTask     = "system:move-task"
)

// Handler implements one system hook.
type Handler func(ctx context.Context, columnHook models.ColumnHook, execCtx hookrunner.ExecContext) queue.Result

// Registry dispatches a system hook id to its Handler.
type Registry struct {
	handlers map[string]Handler
}

// New builds a Registry with the standard four system hooks wired in. bus is
// used by system:execute-ai to publish executor_completed once its
// backgrounded agent run finishes. agentTimeout bounds system:execute-ai and
// system:refine-prompt; soundPlayer is the command used to play a sound file
// (e.g. "afplay" or "paplay"), empty disables the hook.
func New(bus *registry.EventBus, agentTimeout time.Duration, soundPlayer string) *Registry {
	r := &Registry{handlers: map[string]Handler{}}
	r.handlers[SlugExecuteAI] = executeAIHandler(bus, agentTimeout)
	r.handlers[SlugRefinePrompt] = refinePromptHandler(agentTimeout)
	r.handlers[SlugPlaySound] = playSoundHandler(soundPlayer)
	r.handlers[SlugMoveTask] = moveTaskHandler
	return r
}

// Run dispatches columnHook.HookID to its handler.
func (r *Registry) Run(ctx context.Context, columnHook models.ColumnHook, execCtx hookrunner.ExecContext) queue.Result {
	h, ok := r.handlers[columnHook.HookID]
	if !ok {
		return queue.Result{Err: fmt.Errorf("unknown system hook %q", columnHook.HookID)}
	}
	return h(ctx, columnHook, execCtx)
}

// executeAIHandler starts the task's configured agent against its worktree
// in the background and returns immediately with Await set, using whatever
// agent executor the column_hook settings name ("executor" key), defaulting
// to claude. The agent's exit is reported later as exit code 0 (success) or
// 1 (failure) on bus, topic models.ExecutorCompletedTopic(task_id) — the
// asynchronous executor invocation TaskActor suspends the hook_entry on.
func executeAIHandler(bus *registry.EventBus, timeout time.Duration) Handler {
	return func(ctx context.Context, ch models.ColumnHook, execCtx hookrunner.ExecContext) queue.Result {
		executor, _ := ch.HookSettings["executor"].(string)
		prompt, _ := ch.HookSettings["prompt"].(string)
		if prompt == "" {
			prompt = "Continue working on this task."
		}

		runner, err := llm.NewRunner(executor)
		if err != nil {
			return queue.Result{Err: fmt.Errorf("system:execute-ai: %w", err)}
		}

		taskID := execCtx.TaskID
		go func() {
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			exitCode := 0
			if _, err := runner.Extract(runCtx, prompt); err != nil {
				exitCode = 1
			}
			bus.Publish(models.ExecutorCompletedTopic(taskID), exitCode)
		}()

		return queue.Result{Await: true}
	}
}

// refinePromptHandler asks an agent to rewrite a draft prompt into a
// clearer one before it is handed to system:execute-ai downstream.
func refinePromptHandler(timeout time.Duration) Handler {
	return func(ctx context.Context, ch models.ColumnHook, execCtx hookrunner.ExecContext) queue.Result {
		draft, _ := ch.HookSettings["draft"].(string)
		if draft == "" {
			return queue.Result{Skipped: true}
		}
		executor, _ := ch.HookSettings["executor"].(string)

		runner, err := llm.NewRunner(executor)
		if err != nil {
			return queue.Result{Err: fmt.Errorf("system:refine-prompt: %w", err)}
		}

		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		refinePrompt := "Rewrite the following instruction to be clearer and more actionable, " +
			"preserving its intent exactly. Reply with only the rewritten instruction.\n\n" + draft
		out, err := runner.Extract(runCtx, refinePrompt)
		if err != nil {
			return queue.Result{Err: fmt.Errorf("system:refine-prompt: %w", err)}
		}
		return queue.Result{Output: out}
	}
}

// playSoundHandler shells out to the configured sound player with the
// path named by the column_hook's "sound" setting.
func playSoundHandler(player string) Handler {
	return func(ctx context.Context, ch models.ColumnHook, execCtx hookrunner.ExecContext) queue.Result {
		settings, ok := ch.HookSettings.PlaySound()
		if !ok {
			return queue.Result{Skipped: true}
		}
		if player == "" {
			return queue.Result{Skipped: true}
		}
		if _, err := exec.LookPath(player); err != nil {
			return queue.Result{Err: fmt.Errorf("system:play-sound: player %q not found: %w", player, err)}
		}

		cmd := exec.CommandContext(ctx, player, settings.Sound) //nolint:gosec // G204: player is operator-configured, sound is operator-configured settings
		cmd.Stdout = nil
		cmd.Stderr = nil
		if err := cmd.Run(); err != nil {
			return queue.Result{Err: fmt.Errorf("system:play-sound: %w", err)}
		}
		return queue.Result{}
	}
}

// moveTaskHandler resolves the move target from settings and reports it via
// Output in the "next"/"named:<id>" convention TaskActor's OnComplete
// callback parses to enqueue the real move_task command.
func moveTaskHandler(ctx context.Context, ch models.ColumnHook, execCtx hookrunner.ExecContext) queue.Result {
	target, ok := ch.HookSettings.MoveTask()
	if !ok {
		return queue.Result{Err: errors.New("system:move-task: no target configured")}
	}
	if target.Target.Next {
		return queue.Result{Output: "next"}
	}
	if target.Target.Named == "" {
		return queue.Result{Err: errors.New("system:move-task: empty named target")}
	}
	return queue.Result{Output: "named:" + target.Target.Named}
}

// ParseMoveTarget decodes the convention moveTaskHandler writes to Output.
func ParseMoveTarget(output string) (next bool, namedColumnID string, err error) {
	if output == "next" {
		return true, "", nil
	}
	const prefix = "named:"
	if len(output) > len(prefix) && output[:len(prefix)] == prefix {
		return false, output[len(prefix):], nil
	}
	return false, "", fmt.Errorf("malformed move-task output %q", output)
}
