package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// EventGeometryChanged is pushed whenever a system alters obstacle geometry.
const EventGeometryChanged = "geometry_changed"

// GeometryChange is the Data of an EventGeometryChanged event.
type GeometryChange struct {
	Entity Entity
	Reason string
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
