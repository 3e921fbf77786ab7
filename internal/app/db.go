package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// GetDBPath resolves the database path.
// Order of precedence:
// 1) CLI override (e.g. --db-path)
// 2) Environment variable: VIBAND_DB_PATH
// 3) config.yaml: db_path
// 4) Default: ~/.config/viband/viband.db
// Returns an absolute path and ensures the parent directory exists.
func GetDBPath() (string, error) {
	if override := getDBPathOverride(); override != "" {
		return EnsureParentDir(override)
	}

	if envPath := os.Getenv("VIBAND_DB_PATH"); envPath != "" {
		return EnsureParentDir(envPath)
	}

	cfg, err := LoadSettings()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DBPath != "" {
		return EnsureParentDir(cfg.DBPath)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return EnsureParentDir(filepath.Join(configDir, "viband.db"))
}

// GetWorktreeBase resolves the base directory under which per-task git
// worktrees are created. Precedence mirrors GetDBPath: env var, then
// config.yaml, then a default under the user's home data directory.
func GetWorktreeBase() (string, error) {
	if envPath := os.Getenv("VIBAND_WORKTREE_BASE"); envPath != "" {
		return envPath, nil
	}

	cfg, err := LoadSettings()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.WorktreeBase != "" {
		return cfg.WorktreeBase, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "viband", "worktrees"), nil
}

// GetRepoDir resolves the primary git checkout that per-task worktrees are
// created from. Precedence: env var, then config.yaml, then the process's
// current working directory.
func GetRepoDir() (string, error) {
	if envPath := os.Getenv("VIBAND_REPO_DIR"); envPath != "" {
		return envPath, nil
	}

	cfg, err := LoadSettings()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.RepoDir != "" {
		return cfg.RepoDir, nil
	}

	return os.Getwd()
}

// ResolveDBPathDetailed returns the resolved DB path along with the source of that decision.
// This is for debugging/reporting; normal code should use GetDBPath.
func ResolveDBPathDetailed() (path string, source string, err error) {
	if override := getDBPathOverride(); override != "" {
		resolvedPath, ensureErr := EnsureParentDir(override)
		return resolvedPath, "cli(--db-path)", ensureErr
	}

	if envPath := os.Getenv("VIBAND_DB_PATH"); envPath != "" {
		resolvedPath, ensureErr := EnsureParentDir(envPath)
		return resolvedPath, "env(VIBAND_DB_PATH)", ensureErr
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine config directory: %w", err)
	}

	// Config file order must match LoadSettings.
	configPaths := []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "viband", "config.yaml"),
		"config.yaml",
	}

	for _, p := range configPaths {
		s, loadErr := loadSettingsFile(p)
		if loadErr == nil {
			if s.DBPath != "" {
				resolvedPath, ensureErr := EnsureParentDir(s.DBPath)
				return resolvedPath, fmt.Sprintf("config(%s)", p), ensureErr
			}
			// File exists but no db_path set; keep looking.
			continue
		}
		if errors.Is(loadErr, os.ErrNotExist) {
			continue
		}
		return "", "", fmt.Errorf("failed to load config %s: %w", p, loadErr)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	resolved, err := EnsureParentDir(filepath.Join(configDir, "viband.db"))
	return resolved, "default(~/.config/viband/viband.db)", err
}

// EnsureParentDir creates the parent directory of path if it does not exist.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return path, nil
}
