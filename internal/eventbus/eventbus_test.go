package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan SearchCompletedEvent, 1)
	b.Subscribe(EventSearchCompleted, func(e DomainEvent) {
		if ev, ok := e.(SearchCompletedEvent); ok {
			got <- ev
		}
	})

	b.Publish(SearchCompletedEvent{Seq: 7, Lines: 3})

	select {
	case ev := <-got:
		assert.Equal(t, uint64(7), ev.Seq)
		assert.Equal(t, 3, ev.Lines)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()

	var mu sync.Mutex
	calls := 0
	unsubscribe := b.Subscribe(EventSearchFailed, func(DomainEvent) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	unsubscribe()

	b.Publish(SearchFailedEvent{Seq: 1, Message: "boom"})
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestCloseFlushesQueuedEvents(t *testing.T) {
	b := New()

	var mu sync.Mutex
	var seqs []uint64
	b.Subscribe(EventSearchSubmitted, func(e DomainEvent) {
		mu.Lock()
		seqs = append(seqs, e.(SearchSubmittedEvent).Seq)
		mu.Unlock()
	})

	for i := uint64(1); i <= 5; i++ {
		b.Publish(SearchSubmittedEvent{Seq: i})
	}
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seqs, 5)
	assert.ElementsMatch(t, []uint64{1, 2, 3, 4, 5}, seqs)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	b := New()

	done := make(chan struct{})
	b.Subscribe(EventError, func(DomainEvent) { panic("handler bug") })
	b.Subscribe(EventError, func(DomainEvent) { close(done) })

	b.Publish(ErrorEvent{Message: "x"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler not called")
	}
	b.Close()
}

func TestNullBus(t *testing.T) {
	var b EventBus = NullBus{}
	unsubscribe := b.Subscribe(EventError, func(DomainEvent) { t.Fatal("called") })
	b.Publish(ErrorEvent{})
	unsubscribe()
	b.Close()
}
