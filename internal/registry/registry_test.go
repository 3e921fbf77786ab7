package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_LookupMissingReturnsNotFoundSentinel(t *testing.T) {
	r := New()
	h, ok := r.Lookup(TaskActorKey("task_1"))
	require.False(t, ok)
	require.Nil(t, h)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	r.Register(BoardActorKey("board_1"), "handle-a")

	h, ok := r.Lookup(BoardActorKey("board_1"))
	require.True(t, ok)
	require.Equal(t, "handle-a", h)
}

func TestRegistry_InsertIfAbsent(t *testing.T) {
	r := New()

	stored, inserted := r.InsertIfAbsent(BoardManagerKey(), "first")
	require.True(t, inserted)
	require.Equal(t, "first", stored)

	stored, inserted = r.InsertIfAbsent(BoardManagerKey(), "second")
	require.False(t, inserted)
	require.Equal(t, "first", stored)
}

func TestRegistry_Unregister(t *testing.T) {
	r := New()
	key := TaskActorKey("task_1")
	r.Register(key, "handle")

	r.Unregister(key)
	_, ok := r.Lookup(key)
	require.False(t, ok)
}

func TestRegistry_KeysFiltersByKind(t *testing.T) {
	r := New()
	r.Register(BoardActorKey("b1"), "a")
	r.Register(BoardActorKey("b2"), "b")
	r.Register(TaskActorKey("t1"), "c")

	keys := r.Keys(KindBoardActor)
	require.Len(t, keys, 2)
}

func TestRegistry_ConcurrentInsertIfAbsent_OnlyOneWinner(t *testing.T) {
	r := New()
	key := BoardSupervisorKey("board_x")

	var wg sync.WaitGroup
	wins := make([]bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, inserted := r.InsertIfAbsent(key, n)
			wins[n] = inserted
		}(i)
	}
	wg.Wait()

	count := 0
	for _, w := range wins {
		if w {
			count++
		}
	}
	require.Equal(t, 1, count)
}
