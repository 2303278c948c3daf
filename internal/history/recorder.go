package history

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"greptui/internal/domain"
	"greptui/internal/eventbus"
	"greptui/internal/logging"
)

// Recorder appends every successfully completed search to the store. It
// runs on the event bus, off the UI loop.
type Recorder struct {
	store *Store
	bus   eventbus.EventBus
	log   *logrus.Entry
	now   func() time.Time

	mu          sync.Mutex
	entries     []Entry
	unsubscribe func()
}

// NewRecorder starts recording completed searches. entries is the history
// loaded at startup.
func NewRecorder(store *Store, bus eventbus.EventBus, entries []Entry) *Recorder {
	r := &Recorder{
		store:   store,
		bus:     bus,
		log:     logging.NewLogger("history"),
		now:     time.Now,
		entries: append([]Entry(nil), entries...),
	}
	r.unsubscribe = bus.Subscribe(eventbus.EventSearchCompleted, r.handle)
	return r
}

func (r *Recorder) handle(event eventbus.DomainEvent) {
	ev, ok := event.(eventbus.SearchCompletedEvent)
	if !ok {
		return
	}
	r.Record(ev.Query)
}

// Record stores q unless it repeats the newest entry
func (r *Recorder) Record(q domain.Query) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.entries); n > 0 && r.entries[n-1].Query().Equal(q) {
		return
	}
	r.entries = r.store.trim(append(r.entries, EntryFor(q, r.now())))

	if err := r.store.Save(r.entries); err != nil {
		r.log.WithError(err).WithField("path", r.store.Path()).Warn("failed to save history")
		r.bus.Publish(eventbus.ErrorEvent{Message: "failed to save history", Err: err})
		return
	}
	r.log.WithField("entries", len(r.entries)).Debug("history saved")
	r.bus.Publish(eventbus.HistorySavedEvent{Entries: len(r.entries)})
}

// Entries returns a copy of the recorded history
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Close stops recording
func (r *Recorder) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}
