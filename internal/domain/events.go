package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventIndexReady         EventType = "IndexReady"
	EventSearchInitialized  EventType = "SearchInitialized"
	EventSearchInitFailed   EventType = "SearchInitFailed"
	EventInitRetryScheduled EventType = "InitRetryScheduled"
	EventSearchPerformed    EventType = "SearchPerformed"
	EventSearchFailed       EventType = "SearchFailed"
	EventNavigated          EventType = "Navigated"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
	EventError              EventType = "Error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// IndexReadyEvent is emitted when the index source signals the serialized index is available
type IndexReadyEvent struct {
	Source string
}

func (e IndexReadyEvent) Type() EventType { return EventIndexReady }

// SearchInitializedEvent is emitted after a successful widget initialization
type SearchInitializedEvent struct {
	Documents int
	Attempt   int
}

func (e SearchInitializedEvent) Type() EventType { return EventSearchInitialized }

// InitFailureReason classifies why an initialization attempt failed
type InitFailureReason string

const (
	InitMissingElements InitFailureReason = "missing-elements"
	InitMissingIndex    InitFailureReason = "missing-index"
	InitLoadFailed      InitFailureReason = "load-failed"
)

// SearchInitFailedEvent is emitted when an initialization attempt fails
type SearchInitFailedEvent struct {
	Reason  InitFailureReason
	Message string
	Attempt int
}

func (e SearchInitFailedEvent) Type() EventType { return EventSearchInitFailed }

// InitRetryScheduledEvent is emitted when the scheduler arms a fallback attempt
type InitRetryScheduledEvent struct {
	Attempt int
	DelayMs int64
}

func (e InitRetryScheduledEvent) Type() EventType { return EventInitRetryScheduled }

// SearchPerformedEvent is emitted for every query that reached the index
type SearchPerformedEvent struct {
	Query   string
	Results int
}

func (e SearchPerformedEvent) Type() EventType { return EventSearchPerformed }

// SearchFailedEvent is emitted when the index faulted during a query
type SearchFailedEvent struct {
	Query string
	Err   error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// NavigatedEvent is emitted when a result was selected and the location changed
type NavigatedEvent struct {
	Ref string
	URL string
}

func (e NavigatedEvent) Type() EventType { return EventNavigated }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	IndexPath string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }
