package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath                  string `yaml:"db_path"`
	WorktreeBase            string `yaml:"worktree_base"`
	RepoDir                 string `yaml:"repo_dir"`
	DefaultMaxConcurrent    int    `yaml:"default_max_concurrent_tasks"`
	ExecutorTimeoutSeconds  int    `yaml:"executor_timeout_seconds"`
	HookTimeoutSeconds      int    `yaml:"hook_timeout_seconds"`
	EventLogRetentionDays   int    `yaml:"event_log_retention_days"`
}

// ExecutionSettings are effective runtime values used by the execution
// substrate (HookRunner timeouts, semaphore defaults, log retention).
// Invalid or missing config values fall back to safe defaults.
type ExecutionSettings struct {
	DefaultMaxConcurrent  int
	HookTimeout           time.Duration
	ExecutorTimeout       time.Duration
	EventLogRetentionDays int
}

const (
	defaultMaxConcurrentTasks    = 1
	defaultHookTimeoutSeconds    = 600
	defaultExecutorTimeoutSecs   = 3600
	defaultEventLogRetentionDays = 90
)

// EffectiveExecutionSettings returns validated execution settings with
// defaults applied for anything unset or out of range.
func EffectiveExecutionSettings() ExecutionSettings {
	cfg := ExecutionSettings{
		DefaultMaxConcurrent:  defaultMaxConcurrentTasks,
		HookTimeout:           defaultHookTimeoutSeconds * time.Second,
		ExecutorTimeout:       defaultExecutorTimeoutSecs * time.Second,
		EventLogRetentionDays: defaultEventLogRetentionDays,
	}

	s, err := LoadSettings()
	if err != nil {
		return cfg
	}

	if s.DefaultMaxConcurrent > 0 {
		cfg.DefaultMaxConcurrent = s.DefaultMaxConcurrent
	}
	if s.HookTimeoutSeconds > 0 {
		cfg.HookTimeout = time.Duration(s.HookTimeoutSeconds) * time.Second
	}
	if s.ExecutorTimeoutSeconds > 0 {
		cfg.ExecutorTimeout = time.Duration(s.ExecutorTimeoutSeconds) * time.Second
	}
	if s.EventLogRetentionDays > 0 {
		cfg.EventLogRetentionDays = s.EventLogRetentionDays
	}

	return cfg
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// dbPathOverrideMu and dbPathOverride implement a mutex-protected process-wide override for CLI --db-path.
// These globals are required by the sync.Once pattern and the RWMutex pattern; they cannot be avoided.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/viband/config.yaml
// 2) /etc/viband/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately (see GetDBPath, GetWorktreeBase).
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		if s, err := loadSettingsFile(filepath.Join(dir, "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile(filepath.Join(string(os.PathSeparator), "etc", "viband", "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile("config.yaml"); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
