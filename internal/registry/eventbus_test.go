package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recvWithTimeout(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestEventBus_PublishDeliversToSubscriber(t *testing.T) {
	bus := NewEventBus()
	sub := bus.Subscribe("task:updates")

	bus.Publish("task:updates", "payload-1")

	ev := recvWithTimeout(t, sub.C)
	require.Equal(t, "task:updates", ev.Topic)
	require.Equal(t, "payload-1", ev.Payload)
}

func TestEventBus_PreservesPerPublisherOrder(t *testing.T) {
	bus := NewEventBus()
	sub := bus.Subscribe("task:updates")

	for i := 0; i < 10; i++ {
		bus.Publish("task:updates", i)
	}

	for i := 0; i < 10; i++ {
		ev := recvWithTimeout(t, sub.C)
		require.Equal(t, i, ev.Payload)
	}
}

func TestEventBus_MultipleSubscribersEachGetEveryEvent(t *testing.T) {
	bus := NewEventBus()
	a := bus.Subscribe("kanban_lite:board:b1")
	b := bus.Subscribe("kanban_lite:board:b1")

	bus.Publish("kanban_lite:board:b1", "hook-ran")

	require.Equal(t, "hook-ran", recvWithTimeout(t, a.C).Payload)
	require.Equal(t, "hook-ran", recvWithTimeout(t, b.C).Payload)
}

func TestEventBus_UnsubscribeStopsDeliveryAndClosesChannel(t *testing.T) {
	bus := NewEventBus()
	sub := bus.Subscribe("task:updates")

	bus.Unsubscribe(sub)
	bus.Publish("task:updates", "should-not-arrive")

	select {
	case _, open := <-sub.C:
		require.False(t, open, "channel should be closed after unsubscribe drains")
	case <-time.After(2 * time.Second):
		t.Fatal("expected channel to close after unsubscribe")
	}
}

func TestEventBus_TopicIsolation(t *testing.T) {
	bus := NewEventBus()
	taskSub := bus.Subscribe("task:updates")
	boardSub := bus.Subscribe("kanban_lite:board:b1")

	bus.Publish("kanban_lite:board:b1", "board-event")

	ev := recvWithTimeout(t, boardSub.C)
	require.Equal(t, "board-event", ev.Payload)

	select {
	case <-taskSub.C:
		t.Fatal("task:updates subscriber should not receive board events")
	case <-time.After(100 * time.Millisecond):
	}
}
