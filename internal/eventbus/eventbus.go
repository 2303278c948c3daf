package eventbus

import (
	"runtime/debug"
	"sync"

	"greptui/internal/domain"
	"greptui/internal/logging"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventSearchSubmitted = domain.EventSearchSubmitted
	EventSearchCompleted = domain.EventSearchCompleted
	EventSearchFailed    = domain.EventSearchFailed
	EventSearchDiscarded = domain.EventSearchDiscarded
	EventError           = domain.EventError
	EventConfigLoaded    = domain.EventConfigLoaded
	EventConfigSaved     = domain.EventConfigSaved
	EventHistorySaved    = domain.EventHistorySaved
)

// Re-export domain event types
type SearchSubmittedEvent = domain.SearchSubmittedEvent
type SearchCompletedEvent = domain.SearchCompletedEvent
type SearchFailedEvent = domain.SearchFailedEvent
type SearchDiscardedEvent = domain.SearchDiscardedEvent
type ErrorEvent = domain.ErrorEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent
type HistorySavedEvent = domain.HistorySavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	handlerWg sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

var log = logging.NewLogger("eventbus")

// New creates a new event bus
func New() EventBus {
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. It never blocks; when the
// queue is full the event is dropped.
func (b *bus) Publish(event DomainEvent) {
	log.WithField("event", event.Type()).Debug("publishing event")

	select {
	case b.eventChan <- event:
	default:
		log.WithField("event", event.Type()).Warn("event bus channel full, dropping event")
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher after delivering queued events and waits for
// running handlers to return
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.wg.Wait()
		b.handlerWg.Wait()
	})
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.deliver(event)
		case <-b.quit:
			for {
				select {
				case event := <-b.eventChan:
					b.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (b *bus) deliver(event DomainEvent) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[event.Type()]))
	copy(subs, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, s := range subs {
		b.handlerWg.Add(1)
		go func(h EventHandler) {
			defer b.handlerWg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("event", event.Type()).Errorf("event handler panic: %v\n%s", r, debug.Stack())
				}
			}()
			h(event)
		}(s.handler)
	}
}

// NullBus discards every event. Used where no subscribers exist, e.g. tests.
type NullBus struct{}

func (NullBus) Publish(DomainEvent) {}

func (NullBus) Subscribe(EventType, EventHandler) func() { return func() {} }

func (NullBus) Close() {}
