package semaphore

import (
	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/registry"
)

// EventBusNotifier publishes a task's execute topic on bus when the
// semaphore admits it off the waiter queue, waking the TaskActor blocked
// on that subscription in resolveEntryCommands.
type EventBusNotifier struct {
	bus *registry.EventBus
}

// NewEventBusNotifier returns a Notifier that wakes waiting TaskActors via bus.
func NewEventBusNotifier(bus *registry.EventBus) *EventBusNotifier {
	return &EventBusNotifier{bus: bus}
}

func (n *EventBusNotifier) NotifyAdmitted(columnID, taskID string) {
	n.bus.Publish(models.TaskExecuteTopic(taskID), struct{}{})
}
