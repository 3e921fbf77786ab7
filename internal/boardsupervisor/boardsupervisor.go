// Package boardsupervisor implements BoardSupervisor (C7): the single
// failure domain around one board's BoardActor (which in turn owns that
// board's TaskActors). A crash restarts the whole pair from a fresh
// BoardActor, since BoardActor's in-memory task_pids map is unrecoverable on
// its own.
package boardsupervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nxy7/viban/internal/boardactor"
	"github.com/nxy7/viban/internal/datalayer"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/taskactor"
)

// Supervisor restarts a board's BoardActor with exponential backoff whenever
// it exits abnormally (a panic or an error returned from Run).
type Supervisor struct {
	boardID string
	store   datalayer.Store
	bus     *registry.EventBus
	reg     *registry.Registry
	deps    taskactor.Deps
	logger  *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// New returns a Supervisor for boardID. Call Run to start it.
func New(boardID string, store datalayer.Store, bus *registry.EventBus, reg *registry.Registry, taskDeps taskactor.Deps, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		boardID: boardID,
		store:   store,
		bus:     bus,
		reg:     reg,
		deps:    taskDeps,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *Supervisor) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default().With("board_id", s.boardID)
	}
	return s.logger.With("board_id", s.boardID)
}

// Done closes once Run returns.
func (s *Supervisor) Done() <-chan struct{} { return s.done }

// Stop asks Run to return after its current BoardActor stops.
func (s *Supervisor) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// Run restarts a fresh BoardActor until ctx is cancelled, Stop is called, or
// a BoardActor returns cleanly (which only happens on ctx cancellation or
// Stop, both already handled).
func (s *Supervisor) Run(ctx context.Context) {
	defer close(s.done)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		default:
		}

		if err := s.runOnce(ctx); err != nil {
			s.log().Error("board actor crashed, restarting", "error", err)
			wait := b.NextBackOff()
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
		return
	}
}

func (s *Supervisor) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	// Cancelling actorCtx on any exit stops the TaskActors this BoardActor
	// spawned, so a restart begins from a fresh pair.
	actorCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := boardactor.New(s.boardID, s.store, s.bus, s.reg, s.deps, s.logger)
	if s.reg != nil {
		s.reg.Register(registry.BoardSupervisorKey(s.boardID), s)
	}
	runErr := a.Run(actorCtx)
	if runErr != nil {
		return runErr
	}
	return nil
}
