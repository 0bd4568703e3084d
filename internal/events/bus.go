package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventTypeAny subscribes a handler to every event type
const EventTypeAny EventType = "*"

type subscription struct {
	id      SubscriptionID
	handler EventHandler
}

// BusStats counts what went through a bus
type BusStats struct {
	Published int64
	Delivered int64
	Dropped   int64 // published after Stop
	Panics    int64 // recovered handler panics
}

// DefaultEventBus delivers events on a single goroutine, one at a time, so
// every subscriber sees events in publish order. A slow handler delays the
// fleet only once the queue is full.
type DefaultEventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscription
	nextSubID   SubscriptionID

	queue    chan Event
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	published, delivered, dropped, panics atomic.Int64

	// OnPanic, when set, is told about recovered handler panics. Set it
	// before the first Publish.
	OnPanic func(event Event, recovered any)
}

// NewEventBus creates a bus with a queue of bufferSize events
func NewEventBus(bufferSize int) *DefaultEventBus {
	bus := &DefaultEventBus{
		subscribers: make(map[EventType][]subscription),
		nextSubID:   1,
		queue:       make(chan Event, bufferSize),
		stopCh:      make(chan struct{}),
	}

	bus.wg.Add(1)
	go bus.run()

	return bus
}

// Subscribe registers a handler for one event type, or every type with
// EventTypeAny
func (eb *DefaultEventBus) Subscribe(eventType EventType, handler EventHandler) SubscriptionID {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := eb.nextSubID
	eb.nextSubID++
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (eb *DefaultEventBus) Unsubscribe(id SubscriptionID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for eventType, subs := range eb.subscribers {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			eb.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish queues an event, blocking while the queue is full. Events
// published after Stop are counted as dropped.
func (eb *DefaultEventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-eb.stopCh:
		eb.dropped.Add(1)
		return
	default:
	}

	select {
	case eb.queue <- event:
		eb.published.Add(1)
	case <-eb.stopCh:
		eb.dropped.Add(1)
	}
}

// Stop delivers what is already queued and stops the bus. Safe to call twice.
func (eb *DefaultEventBus) Stop() {
	eb.stopOnce.Do(func() { close(eb.stopCh) })
	eb.wg.Wait()
}

// Stats returns delivery counters
func (eb *DefaultEventBus) Stats() BusStats {
	return BusStats{
		Published: eb.published.Load(),
		Delivered: eb.delivered.Load(),
		Dropped:   eb.dropped.Load(),
		Panics:    eb.panics.Load(),
	}
}

// GetSubscriberCount returns the number of handlers for an event type,
// including EventTypeAny subscribers
func (eb *DefaultEventBus) GetSubscriberCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	n := len(eb.subscribers[eventType])
	if eventType != EventTypeAny {
		n += len(eb.subscribers[EventTypeAny])
	}
	return n
}

func (eb *DefaultEventBus) run() {
	defer eb.wg.Done()

	for {
		select {
		case event := <-eb.queue:
			eb.deliver(event)
		case <-eb.stopCh:
			for {
				select {
				case event := <-eb.queue:
					eb.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (eb *DefaultEventBus) deliver(event Event) {
	eb.mu.RLock()
	typed := eb.subscribers[event.Type]
	wildcard := eb.subscribers[EventTypeAny]
	handlers := make([]EventHandler, 0, len(typed)+len(wildcard))
	for _, sub := range typed {
		handlers = append(handlers, sub.handler)
	}
	for _, sub := range wildcard {
		handlers = append(handlers, sub.handler)
	}
	eb.mu.RUnlock()

	for _, handler := range handlers {
		eb.call(handler, event)
	}
}

func (eb *DefaultEventBus) call(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			eb.panics.Add(1)
			if eb.OnPanic != nil {
				eb.OnPanic(event, r)
			}
		}
	}()

	handler(event)
	eb.delivered.Add(1)
}
