package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	// Fleet pass events
	EventTypePassStarted   EventType = "pass.started"
	EventTypePassCompleted EventType = "pass.completed"
	EventTypeBatchFinished EventType = "batch.finished"

	// Account run events
	EventTypeAccountStarted   EventType = "account.started"
	EventTypeAccountCompleted EventType = "account.completed"
	EventTypeAccountFailed    EventType = "account.failed"
)

// Event represents a system event with metadata
type Event struct {
	Type      EventType              // Type of event
	Source    string                 // Component that emitted event
	Timestamp time.Time              // When the event occurred
	Data      map[string]interface{} // Event-specific data
}

// EventHandler is a function that processes an event
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// EventBus defines the interface for event pub/sub
type EventBus interface {
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID
	Unsubscribe(id SubscriptionID)
	Publish(event Event)
	Stop()
}

// NewPassStartedEvent creates a fleet pass started event
func NewPassStartedEvent(passID string, pass, accounts int) Event {
	return Event{
		Type:      EventTypePassStarted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"pass_id":  passID,
			"pass":     pass,
			"accounts": accounts,
		},
	}
}

// NewPassCompletedEvent creates a fleet pass completed event
func NewPassCompletedEvent(passID string, succeeded, failed int, elapsed time.Duration) Event {
	return Event{
		Type:      EventTypePassCompleted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"pass_id":   passID,
			"succeeded": succeeded,
			"failed":    failed,
			"elapsed":   elapsed.String(),
		},
	}
}

// NewBatchFinishedEvent creates a batch finished event
func NewBatchFinishedEvent(passID string, first, size, failed int) Event {
	return Event{
		Type:      EventTypeBatchFinished,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"pass_id": passID,
			"first":   first,
			"size":    size,
			"failed":  failed,
		},
	}
}

// NewAccountStartedEvent creates an account started event
func NewAccountStartedEvent(passID string, accountIndex int, proxy string) Event {
	return Event{
		Type:      EventTypeAccountStarted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"pass_id": passID,
			"account": accountIndex,
			"proxy":   proxy,
		},
	}
}

// NewAccountCompletedEvent creates an account completed event
func NewAccountCompletedEvent(passID string, accountIndex int, elapsed time.Duration) Event {
	return Event{
		Type:      EventTypeAccountCompleted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"pass_id": passID,
			"account": accountIndex,
			"elapsed": elapsed.String(),
		},
	}
}

// NewAccountFailedEvent creates an account failed event
func NewAccountFailedEvent(passID string, accountIndex int, err error) Event {
	return Event{
		Type:      EventTypeAccountFailed,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"pass_id": passID,
			"account": accountIndex,
			"error":   err.Error(),
		},
	}
}
