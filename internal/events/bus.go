// Package events provides an in-process pub/sub bus for dispatch runtime
// events: role assignments, dispatch decisions, task completions, critic
// feedback, and persistence flushes.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

const (
	EventRoleAssigned      EventType = "role.assigned"
	EventAgentDispatched   EventType = "agent.dispatched"
	EventTaskCompleted     EventType = "task.completed"
	EventFeedbackRecorded  EventType = "feedback.recorded"
	EventCollectionFlushed EventType = "collection.flushed"
)

// Event represents one runtime event.
type Event struct {
	ID        string
	Type      EventType
	Source    string
	Payload   interface{}
	Timestamp time.Time
}

// NewEvent creates a new event with the given type and payload.
func NewEvent(eventType EventType, source string, payload interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

type subscriber struct {
	id    string
	types map[EventType]bool // empty means all types
	ch    chan *Event
}

// Bus fans events out to subscribers. Delivery is non-blocking: an event a
// subscriber cannot accept immediately is dropped and counted.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber

	published uint64
	dropped   uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]*subscriber),
	}
}

// Subscribe registers a subscriber for the given event types (all types when
// none are given) and returns the subscription id and delivery channel.
func (b *Bus) Subscribe(buffer int, types ...EventType) (string, <-chan *Event) {
	if buffer <= 0 {
		buffer = 16
	}

	sub := &subscriber{
		id:    uuid.New().String(),
		types: make(map[EventType]bool, len(types)),
		ch:    make(chan *Event, buffer),
	}
	for _, t := range types {
		sub.types[t] = true
	}

	b.mu.Lock()
	b.subscribers[sub.id] = sub
	b.mu.Unlock()

	return sub.id, sub.ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	b.mu.Unlock()

	if ok {
		close(sub.ch)
	}
}

// Publish delivers the event to every interested subscriber without
// blocking. A nil bus is safe to publish to.
func (b *Bus) Publish(event *Event) {
	if b == nil || event == nil {
		return
	}

	atomic.AddUint64(&b.published, 1)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if len(sub.types) > 0 && !sub.types[event.Type] {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			atomic.AddUint64(&b.dropped, 1)
		}
	}
}

// Published returns the total number of events published.
func (b *Bus) Published() uint64 {
	return atomic.LoadUint64(&b.published)
}

// Dropped returns the number of deliveries dropped due to full subscriber
// channels.
func (b *Bus) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}
