package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchSubmitted EventType = "SearchSubmitted"
	EventSearchCompleted EventType = "SearchCompleted"
	EventSearchFailed    EventType = "SearchFailed"
	EventSearchDiscarded EventType = "SearchDiscarded"
	EventError           EventType = "Error"
	EventConfigLoaded    EventType = "ConfigLoaded"
	EventConfigSaved     EventType = "ConfigSaved"
	EventHistorySaved    EventType = "HistorySaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchSubmittedEvent is emitted when a search request starts running
type SearchSubmittedEvent struct {
	Seq   uint64
	Query Query
}

func (e SearchSubmittedEvent) Type() EventType { return EventSearchSubmitted }

// SearchCompletedEvent is emitted when the latest search finished successfully
type SearchCompletedEvent struct {
	Seq       uint64
	Query     Query
	Lines     int
	Truncated bool
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when the latest search failed
type SearchFailedEvent struct {
	Seq     uint64
	Query   Query
	Message string
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// SearchDiscardedEvent is emitted when a superseded outcome is dropped
type SearchDiscardedEvent struct {
	Seq    uint64
	Latest uint64
}

func (e SearchDiscardedEvent) Type() EventType { return EventSearchDiscarded }

// ErrorEvent is emitted when a background operation fails
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path    string
	Default bool // no file was found
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// HistorySavedEvent is emitted after the search history file is written
type HistorySavedEvent struct {
	Entries int
}

func (e HistorySavedEvent) Type() EventType { return EventHistorySaved }
