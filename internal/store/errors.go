package store

import (
	"fmt"
	"strconv"

	"github.com/nxy7/viban/internal/models"
)

// RecoverableError is an alias for models.RecoverableError, retained so
// callers can reference store.RecoverableError without importing models
// directly.
type RecoverableError = models.RecoverableError

// VersionConflictError is returned when an optimistic-concurrency update to
// a Task fails because Version no longer matches the stored row.
type VersionConflictError struct {
	Entity  string
	ID      string
	Version int
}

func (e *VersionConflictError) Error() string {
	return "version conflict: record was modified by another process"
}
func (e *VersionConflictError) ErrorCode() string { return "VERSION_CONFLICT" }
func (e *VersionConflictError) Context() map[string]string {
	return map[string]string{
		"entity":  e.Entity,
		"id":      e.ID,
		"version": strconv.Itoa(e.Version),
	}
}
func (e *VersionConflictError) SuggestedAction() string {
	return "reload the record and retry with its current version"
}
func (e *VersionConflictError) Is(target error) bool { return target == ErrVersionConflict }

// IdempotencyInProgressError is returned when a migration or write lock is
// already held by another process.
type IdempotencyInProgressError struct {
	Operation string
}

func (e *IdempotencyInProgressError) Error() string { return "operation already in progress" }
func (e *IdempotencyInProgressError) ErrorCode() string { return "IDEMPOTENCY_IN_PROGRESS" }
func (e *IdempotencyInProgressError) Context() map[string]string {
	return map[string]string{"operation": e.Operation}
}
func (e *IdempotencyInProgressError) SuggestedAction() string {
	return "wait for the concurrent operation to finish and retry"
}
func (e *IdempotencyInProgressError) Is(target error) bool {
	return target == ErrIdempotencyInProgress
}

// NotFoundError is returned when a lookup by id finds no row.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
func (e *NotFoundError) ErrorCode() string { return "NOT_FOUND" }
func (e *NotFoundError) Context() map[string]string {
	return map[string]string{"entity": e.Entity, "id": e.ID}
}
func (e *NotFoundError) SuggestedAction() string {
	return fmt.Sprintf("verify the %s id and retry", e.Entity)
}
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Sentinel errors matched by the RecoverableError wrapper types' Is methods
// and by RetryWithBackoff's retryability check.
var (
	ErrNotFound              = fmt.Errorf("not found")
	ErrIdempotencyInProgress = fmt.Errorf("operation already in progress")
)
