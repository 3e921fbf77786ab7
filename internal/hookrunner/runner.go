// Package hookrunner dispatches a single hook_entry command to its concrete
// implementation (C2): a shell script, an external AI agent CLI, or a
// built-in system hook. It knows nothing about the CommandQueue or
// TaskActor that drives it — Run is a pure "execute one hook" operation.
package hookrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/nxy7/viban/internal/llm"
	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/queue"
)

// processExitWaitTime is how long Run waits for SIGTERM to take effect
// before escalating to SIGKILL.
const processExitWaitTime = 5 * time.Second

// ExecContext is the task-specific environment a hook executes in.
type ExecContext struct {
	TaskID              string
	WorktreePath        string
	ColumnID            string
	TriggeringColumnID  string
}

// SystemHookRunner executes a built-in system hook (system:execute-ai,
// system:refine-prompt, system:play-sound, system:move-task). Implemented by
// internal/systemhooks; declared here to avoid an import cycle.
type SystemHookRunner interface {
	Run(ctx context.Context, columnHook models.ColumnHook, execCtx ExecContext) queue.Result
}

// Runner dispatches hooks by Kind.
type Runner struct {
	scriptTimeout time.Duration
	agentTimeout  time.Duration
	systemHooks   SystemHookRunner
}

// New returns a Runner. scriptTimeout and agentTimeout bound script and
// agent hook execution respectively; system hooks manage their own timeouts.
func New(systemHooks SystemHookRunner, scriptTimeout, agentTimeout time.Duration) *Runner {
	return &Runner{scriptTimeout: scriptTimeout, agentTimeout: agentTimeout, systemHooks: systemHooks}
}

// Run executes hook (attached via columnHook) and returns its result.
func (r *Runner) Run(ctx context.Context, hook models.Hook, columnHook models.ColumnHook, execCtx ExecContext) queue.Result {
	switch hook.Kind {
	case models.HookKindScript:
		return r.runScript(ctx, hook, execCtx)
	case models.HookKindAgent:
		return r.runAgent(ctx, hook, execCtx)
	case models.HookKindSystem:
		if r.systemHooks == nil {
			return queue.Result{Err: fmt.Errorf("no system hook registry configured for %s", columnHook.HookID)}
		}
		return r.systemHooks.Run(ctx, columnHook, execCtx)
	default:
		return queue.Result{Err: fmt.Errorf("unknown hook kind %q", hook.Kind)}
	}
}

func (r *Runner) runScript(parent context.Context, hook models.Hook, execCtx ExecContext) queue.Result {
	if hook.Command == "" {
		return queue.Result{Err: errors.New("script hook has no command")}
	}

	if info, err := os.Stat(execCtx.WorktreePath); execCtx.WorktreePath == "" || err != nil || !info.IsDir() {
		return queue.Result{Skipped: true}
	}

	// A plain (uncancelled) context so timeout is handled via explicit
	// SIGTERM-then-SIGKILL escalation rather than exec's default SIGKILL-only
	// cancellation, matching the escalation used for spawned agent processes.
	cmd := exec.Command("sh", "-c", hook.Command) //nolint:gosec // G204: operator-configured hook command, not task-derived
	cmd.Dir = execCtx.WorktreePath
	cmd.Env = append(os.Environ(), "VIBAND_TASK_ID="+execCtx.TaskID, "VIBAND_COLUMN_ID="+execCtx.ColumnID)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		return queue.Result{Err: fmt.Errorf("script hook %q: start: %w", hook.Name, err)}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return queue.Result{Output: out.String(), Err: fmt.Errorf("script hook %q: %w", hook.Name, err)}
		}
		return queue.Result{Output: out.String()}
	case <-parent.Done():
		killCommandProcess(cmd, done)
		return queue.Result{Err: fmt.Errorf("script hook %q: cancelled: %w", hook.Name, parent.Err())}
	case <-time.After(r.scriptTimeout):
		killCommandProcess(cmd, done)
		return queue.Result{Err: fmt.Errorf("script hook %q timed out after %s", hook.Name, r.scriptTimeout)}
	}
}

func (r *Runner) runAgent(parent context.Context, hook models.Hook, execCtx ExecContext) queue.Result {
	runner, err := llm.NewRunner(hook.AgentExecutor)
	if err != nil {
		return queue.Result{Err: fmt.Errorf("agent hook %q: %w", hook.Name, err)}
	}

	ctx, cancel := context.WithTimeout(parent, r.agentTimeout)
	defer cancel()

	out, err := runner.Extract(ctx, hook.AgentPrompt)
	if err != nil {
		return queue.Result{Err: fmt.Errorf("agent hook %q: %w", hook.Name, err)}
	}
	return queue.Result{Output: out}
}

// killCommandProcess sends SIGTERM and escalates to SIGKILL after
// processExitWaitTime if done (which receives the owning goroutine's Wait
// result) has not fired by then.
func killCommandProcess(cmd *exec.Cmd, done <-chan error) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		slog.Default().Warn("SIGTERM failed, escalating to SIGKILL", "error", err)
	}
	select {
	case <-done:
		return
	case <-time.After(processExitWaitTime):
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		slog.Default().Warn("SIGKILL failed", "error", err)
	}
}
