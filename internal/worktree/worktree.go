// Package worktree manages the one-worktree-per-task git lifecycle (C3):
// creating a branch and checkout for a task entering its first worktree
// column, and tearing it down once the task leaves for good.
package worktree

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitError carries raw git output for callers that need to surface it
// verbatim (hook failure messages, CLI diagnostics) rather than a
// collapsed Go error string.
type GitError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s: %s", e.Command, e.Stderr)
	}
	return fmt.Sprintf("git %s: %v", e.Command, e.Err)
}

func (e *GitError) Unwrap() error { return e.Err }

// Manager drives git worktree operations against a single base repository.
// repoDir is the primary checkout; worktrees are created under
// base/<boardID>/<taskID>.
type Manager struct {
	repoDir string
	base    string
}

// NewManager returns a Manager rooted at repoDir, creating worktrees under base.
func NewManager(repoDir, base string) *Manager {
	return &Manager{repoDir: repoDir, base: base}
}

func (m *Manager) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = m.repoDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		command := ""
		for _, a := range args {
			if !strings.HasPrefix(a, "-") {
				command = a
				break
			}
		}
		return "", &GitError{
			Command: command, Args: args,
			Stdout: strings.TrimSpace(stdout.String()),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// PathFor returns the worktree path a task with taskID on board boardID
// would occupy: <base>/<boardID>/<taskID>.
func (m *Manager) PathFor(boardID, taskID string) string {
	return filepath.Join(m.base, boardID, taskID)
}

// Create adds a new worktree at PathFor(boardID, taskID) on a new branch. If
// branchName is empty, a branch named task/<taskID> is created.
func (m *Manager) Create(ctx context.Context, boardID, taskID, branchName string) (path, branch string, err error) {
	branch = branchName
	if branch == "" {
		branch = "task/" + taskID
	}
	path = m.PathFor(boardID, taskID)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", "", fmt.Errorf("ensure worktree base: %w", err)
	}

	if _, err := m.run(ctx, "worktree", "add", "-b", branch, path); err != nil {
		return "", "", fmt.Errorf("create worktree: %w", err)
	}
	return path, branch, nil
}

// Remove deletes the worktree at path and its backing branch. force is
// passed through to `git worktree remove` for worktrees with uncommitted
// changes the caller has already decided to discard.
func (m *Manager) Remove(ctx context.Context, path, branch string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = append(args, "--force")
	}
	if _, err := m.run(ctx, args...); err != nil {
		return fmt.Errorf("remove worktree: %w", err)
	}
	if branch == "" {
		return nil
	}
	deleteFlag := "-d"
	if force {
		deleteFlag = "-D"
	}
	if _, err := m.run(ctx, "branch", deleteFlag, branch); err != nil {
		return fmt.Errorf("delete branch %s: %w", branch, err)
	}
	return nil
}

// Prune removes administrative worktree entries whose checkout directories
// were deleted outside of git (a crashed task cleanup, manual rm -rf).
func (m *Manager) Prune(ctx context.Context) error {
	if _, err := m.run(ctx, "worktree", "prune"); err != nil {
		return fmt.Errorf("prune worktrees: %w", err)
	}
	return nil
}

// Exists reports whether path currently appears in `git worktree list`.
func (m *Manager) Exists(ctx context.Context, path string) (bool, error) {
	out, err := m.run(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("list worktrees: %w", err)
	}
	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		abs = path
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "worktree ") {
			if strings.TrimPrefix(line, "worktree ") == abs {
				return true, nil
			}
		}
	}
	return false, nil
}

// HasUncommittedChanges reports whether the worktree at path has pending
// changes that a cleanup should not silently discard.
func (m *Manager) HasUncommittedChanges(ctx context.Context, path string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", path, "status", "--porcelain")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return false, &GitError{Command: "status", Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()) != "", nil
}
