// Package boardmanager implements BoardManager (C8): the single process-wide
// actor that starts (and idempotently restarts) one BoardSupervisor per
// board, and tears one down when its board is deleted.
package boardmanager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nxy7/viban/internal/boardsupervisor"
	"github.com/nxy7/viban/internal/datalayer"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/taskactor"
)

// reconcileInterval bounds how stale the manager's board set can get when
// boards are created or deleted by a process other than this one
// (vibanctl talks to the database directly, not through this EventBus).
const reconcileInterval = 5 * time.Second

type supervisorHandle struct {
	sup    *boardsupervisor.Supervisor
	cancel context.CancelFunc
}

// Manager tracks one BoardSupervisor per managed board id.
type Manager struct {
	store  datalayer.Store
	bus    *registry.EventBus
	reg    *registry.Registry
	deps   taskactor.Deps
	logger *slog.Logger

	mu          sync.Mutex
	supervisors map[string]*supervisorHandle
}

// New returns an empty Manager. Call Boot to recover existing boards on
// process start, then NotifyBoardCreated/NotifyBoardDeleted as boards come
// and go.
func New(store datalayer.Store, bus *registry.EventBus, reg *registry.Registry, taskDeps taskactor.Deps, logger *slog.Logger) *Manager {
	m := &Manager{
		store:       store,
		bus:         bus,
		reg:         reg,
		deps:        taskDeps,
		logger:      logger,
		supervisors: make(map[string]*supervisorHandle),
	}
	if reg != nil {
		reg.Register(registry.BoardManagerKey(), m)
	}
	return m
}

func (m *Manager) log() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Boot starts a BoardSupervisor for every board that already exists in the
// data layer. Safe to call once at process start.
func (m *Manager) Boot(ctx context.Context) error {
	boards, err := m.store.ListBoards()
	if err != nil {
		return err
	}
	for _, b := range boards {
		m.NotifyBoardCreated(ctx, b.ID)
	}
	return nil
}

// NotifyBoardCreated starts a BoardSupervisor for boardID if one is not
// already running. Idempotent.
func (m *Manager) NotifyBoardCreated(ctx context.Context, boardID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.supervisors[boardID]; ok {
		return
	}

	sup := boardsupervisor.New(boardID, m.store, m.bus, m.reg, m.deps, m.logger)
	childCtx, cancel := context.WithCancel(ctx)
	m.supervisors[boardID] = &supervisorHandle{sup: sup, cancel: cancel}
	if m.reg != nil {
		m.reg.Register(registry.BoardSupervisorKey(boardID), sup)
	}

	m.log().Info("starting board supervisor", "board_id", boardID)
	go sup.Run(childCtx)
}

// NotifyBoardDeleted stops boardID's supervisor, if any, and removes its
// registry entries. Idempotent.
func (m *Manager) NotifyBoardDeleted(boardID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.supervisors[boardID]
	if !ok {
		return
	}
	h.sup.Stop()
	h.cancel()
	delete(m.supervisors, boardID)

	if m.reg != nil {
		m.reg.Unregister(registry.BoardSupervisorKey(boardID))
		m.reg.Unregister(registry.BoardActorKey(boardID))
	}
}

// Reconcile lists boards from the store and starts/stops supervisors so the
// managed set matches it exactly — picking up boards created or deleted by
// a process other than this one.
func (m *Manager) Reconcile(ctx context.Context) error {
	boards, err := m.store.ListBoards()
	if err != nil {
		return err
	}
	live := make(map[string]struct{}, len(boards))
	for _, b := range boards {
		live[b.ID] = struct{}{}
		m.NotifyBoardCreated(ctx, b.ID)
	}
	for _, id := range m.ListBoards() {
		if _, ok := live[id]; !ok {
			m.NotifyBoardDeleted(id)
		}
	}
	return nil
}

// RunReconcileLoop calls Reconcile on reconcileInterval until ctx is
// cancelled. Intended to run as its own goroutine alongside Boot.
func (m *Manager) RunReconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Reconcile(ctx); err != nil {
				m.log().Error("reconcile boards", "error", err)
			}
		}
	}
}

// ListBoards returns the ids of every board currently under management.
func (m *Manager) ListBoards() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.supervisors))
	for id := range m.supervisors {
		out = append(out, id)
	}
	return out
}

// Stop tears down every supervisor this manager started.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, h := range m.supervisors {
		h.sup.Stop()
		h.cancel()
		delete(m.supervisors, id)
	}
}
