package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/viband/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "viband"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# viband configuration
# Run: vibanctl --help

# Optional: override the SQLite database location.
# Can also be set via VIBAND_DB_PATH or --db-path.
# db_path: ~/.config/viband/viband.db

# Optional: override the base directory under which per-task git worktrees
# are created (<worktree_base>/<board_id>/<task_id>/).
# Can also be set via VIBAND_WORKTREE_BASE.
# worktree_base: ~/.local/share/viband/worktrees

# Optional: the primary git checkout that per-task worktrees branch from.
# Defaults to the daemon's working directory.
# Can also be set via VIBAND_REPO_DIR.
# repo_dir: ~/src/myproject
`
