// Command viband is the long-running execution substrate: it keeps one
// BoardSupervisor (and in turn one TaskActor per in-progress task) alive per
// board, driving hook execution, worktree lifecycle, and per-column
// concurrency admission until it receives SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nxy7/viban/internal/app"
	"github.com/nxy7/viban/internal/boardmanager"
	"github.com/nxy7/viban/internal/datalayer"
	"github.com/nxy7/viban/internal/hookrunner"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/semaphore"
	"github.com/nxy7/viban/internal/store"
	"github.com/nxy7/viban/internal/systemhooks"
	"github.com/nxy7/viban/internal/taskactor"
	"github.com/nxy7/viban/internal/worktree"
)

var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	logger := slog.Default()

	if err := app.EnsureConfigDir(); err != nil {
		logger.Error("failed to prepare config directory", "error", err.Error())
		os.Exit(1)
	}

	if err := run(logger); err != nil {
		logger.Error("viband exited with error", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return err
	}
	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	worktreeBase, err := app.GetWorktreeBase()
	if err != nil {
		return err
	}

	execSettings := app.EffectiveExecutionSettings()

	bus := registry.NewEventBus()
	reg := registry.New()
	layer := datalayer.New(db, bus)

	notifier := semaphore.NewEventBusNotifier(bus)
	sem := semaphore.New(notifier)

	sysHooks := systemhooks.New(bus, execSettings.ExecutorTimeout, os.Getenv("VIBAND_SOUND_PLAYER"))
	hooks := hookrunner.New(sysHooks, execSettings.HookTimeout, execSettings.ExecutorTimeout)

	repoDir, err := app.GetRepoDir()
	if err != nil {
		return err
	}
	wt := worktree.NewManager(repoDir, worktreeBase)

	deps := taskactor.Deps{
		Store:     layer,
		Bus:       bus,
		Hooks:     hooks,
		Worktrees: wt,
		Semaphore: sem,
		Logger:    logger,
	}

	mgr := boardmanager.New(layer, bus, reg, deps, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("viband starting", "version", version, "db_path", dbPath, "worktree_base", worktreeBase)
	if err := mgr.Boot(ctx); err != nil {
		return err
	}
	go mgr.RunReconcileLoop(ctx)

	<-ctx.Done()
	logger.Info("viband shutting down")

	shutdownDone := make(chan struct{})
	go func() {
		mgr.Stop()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out, exiting anyway")
	}

	return nil
}
