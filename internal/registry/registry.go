// Package registry provides an O(1) process-wide lookup from stable actor
// keys to actor handles, and a topic-addressed publish/subscribe event bus.
package registry

import "sync"

// Key identifies one actor handle slot. Kind is one of the fixed registry
// kinds below; ID is empty for the singleton BoardManager.
type Key struct {
	Kind KeyKind
	ID   string
}

// KeyKind enumerates the registry's fixed handle categories.
type KeyKind string

const (
	KindBoardManager    KeyKind = "board_manager"
	KindBoardSupervisor KeyKind = "board_supervisor"
	KindBoardActor      KeyKind = "board_actor"
	KindTaskSupervisor  KeyKind = "task_supervisor"
	KindTaskActor       KeyKind = "task_actor"
)

// BoardManagerKey is the single process-wide BoardManager slot.
func BoardManagerKey() Key { return Key{Kind: KindBoardManager} }

// BoardSupervisorKey identifies a board's supervisor.
func BoardSupervisorKey(boardID string) Key { return Key{Kind: KindBoardSupervisor, ID: boardID} }

// BoardActorKey identifies a board's actor.
func BoardActorKey(boardID string) Key { return Key{Kind: KindBoardActor, ID: boardID} }

// TaskSupervisorKey identifies a board's TaskActor group supervisor.
func TaskSupervisorKey(boardID string) Key { return Key{Kind: KindTaskSupervisor, ID: boardID} }

// TaskActorKey identifies a task's actor.
func TaskActorKey(taskID string) Key { return Key{Kind: KindTaskActor, ID: taskID} }

// Handle is an opaque reference to a registered actor. Any type may satisfy
// it; the registry neither dereferences nor inspects handles.
type Handle any

// Registry is a concurrency-safe map from Key to Handle.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]Handle
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[Key]Handle)}
}

// Register inserts or overwrites the handle for key.
func (r *Registry) Register(key Key, handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = handle
}

// InsertIfAbsent registers handle for key only if nothing is registered yet.
// Returns the handle actually stored (the existing one on a race loser) and
// whether this call inserted it.
func (r *Registry) InsertIfAbsent(key Key, handle Handle) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[key]; ok {
		return existing, false
	}
	r.entries[key] = handle
	return handle, true
}

// Unregister removes key, if present.
func (r *Registry) Unregister(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Lookup returns the handle for key and whether it was found. A missing
// entry returns (nil, false) — the not_found sentinel.
func (r *Registry) Lookup(key Key) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.entries[key]
	return h, ok
}

// Keys returns all keys of the given kind, for iteration (e.g. BoardManager
// listing all board supervisors on boot recovery).
func (r *Registry) Keys(kind KeyKind) []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Key
	for k := range r.entries {
		if k.Kind == kind {
			out = append(out, k)
		}
	}
	return out
}
