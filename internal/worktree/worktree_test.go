package worktree

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		require.NoError(t, cmd.Run(), out.String())
	}
	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644))
	run("add", ".")
	run("commit", "-m", "init")
	return dir
}

func TestManager_CreateAndRemove(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := initTestRepo(t)
	base := t.TempDir()
	m := NewManager(repo, base)
	ctx := context.Background()

	path, branch, err := m.Create(ctx, "board_1", "task_1", "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "board_1", "task_1"), path)
	require.Equal(t, "task/task_1", branch)

	exists, err := m.Exists(ctx, path)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, m.Remove(ctx, path, branch, false))

	exists, err = m.Exists(ctx, path)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestManager_CustomBranchName(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := initTestRepo(t)
	base := t.TempDir()
	m := NewManager(repo, base)
	ctx := context.Background()

	_, branch, err := m.Create(ctx, "board_1", "task_2", "feature/custom")
	require.NoError(t, err)
	require.Equal(t, "feature/custom", branch)
}
