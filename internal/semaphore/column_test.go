package semaphore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestColumnSemaphore_NilMaxAlwaysGrants(t *testing.T) {
	s := New(nil)
	for i := 0; i < 50; i++ {
		require.Equal(t, Granted, s.Acquire("col", string(rune('a'+i%26)), nil))
	}
}

func TestColumnSemaphore_ZeroMaxNeverAdmits(t *testing.T) {
	s := New(nil)
	zero := intPtr(0)
	require.Equal(t, Queued, s.Acquire("col", "t1", zero))
	require.Equal(t, 0, s.RunningCount("col"))
	require.Equal(t, 1, s.WaiterCount("col"))
}

func TestColumnSemaphore_CapsRunningAndQueuesRest(t *testing.T) {
	s := New(nil)
	max := intPtr(2)

	require.Equal(t, Granted, s.Acquire("col", "t1", max))
	require.Equal(t, Granted, s.Acquire("col", "t2", max))
	require.Equal(t, Queued, s.Acquire("col", "t3", max))
	require.Equal(t, 2, s.RunningCount("col"))
	require.Equal(t, 1, s.WaiterCount("col"))
}

func TestColumnSemaphore_ReacquireIsIdempotent(t *testing.T) {
	s := New(nil)
	max := intPtr(1)

	require.Equal(t, Granted, s.Acquire("col", "t1", max))
	require.Equal(t, Granted, s.Acquire("col", "t1", max))
	require.Equal(t, 1, s.RunningCount("col"))
}

func TestColumnSemaphore_TaskLeftColumn_PromotesOldestWaiter(t *testing.T) {
	s := New(nil)
	max := intPtr(1)

	require.Equal(t, Granted, s.Acquire("col", "t1", max))
	require.Equal(t, Queued, s.Acquire("col", "t2", max))
	require.Equal(t, Queued, s.Acquire("col", "t3", max))

	admitted, ok := s.TaskLeftColumn("col", "t1")
	require.True(t, ok)
	require.Equal(t, "t2", admitted)
	require.Equal(t, 1, s.RunningCount("col"))
	require.Equal(t, 1, s.WaiterCount("col"))
}

type fakeNotifier struct {
	mu       sync.Mutex
	admitted []string
}

func (f *fakeNotifier) NotifyAdmitted(columnID, taskID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admitted = append(f.admitted, taskID)
}

func TestColumnSemaphore_NotifiesOnPromotion(t *testing.T) {
	notifier := &fakeNotifier{}
	s := New(notifier)
	max := intPtr(1)

	require.Equal(t, Granted, s.Acquire("col", "t1", max))
	require.Equal(t, Queued, s.Acquire("col", "t2", max))

	_, ok := s.TaskLeftColumn("col", "t1")
	require.True(t, ok)
	require.Equal(t, []string{"t2"}, notifier.admitted)
}

func TestColumnSemaphore_NeverExceedsCapUnderConcurrency(t *testing.T) {
	s := New(nil)
	max := intPtr(3)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			s.Acquire("col", id, max)
		}(i)
	}
	wg.Wait()

	require.LessOrEqual(t, s.RunningCount("col"), 3)
	require.Equal(t, 30, s.RunningCount("col")+s.WaiterCount("col"))
}
