package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jordanella.com/animix-go/internal/events"
)

// EventLogger subscribes to the event bus and appends every fleet event to a
// JSON-lines file under the log directory.
type EventLogger struct {
	logger   *Logger
	eventBus events.EventBus
	subs     []events.SubscriptionID
	logFile  *os.File
}

// NewEventLogger creates a new event logger
func NewEventLogger(eventBus events.EventBus, logDir string) (*EventLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, fmt.Sprintf("events_%s.log", timestamp))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := NewLogger("EventLogger").SetOutput(logFile)

	el := &EventLogger{
		logger:   logger,
		eventBus: eventBus,
		logFile:  logFile,
	}
	el.subs = append(el.subs, eventBus.Subscribe(events.EventTypeAny, el.handleEvent))

	return el, nil
}

func (el *EventLogger) handleEvent(event events.Event) {
	context := map[string]interface{}{
		"event_type": string(event.Type),
		"source":     event.Source,
	}
	for k, v := range event.Data {
		context[k] = v
	}

	el.logger.InfoWithContext(fmt.Sprintf("Event: %s", event.Type), context)
}

// Close unsubscribes and closes the log file
func (el *EventLogger) Close() error {
	for _, id := range el.subs {
		el.eventBus.Unsubscribe(id)
	}
	el.subs = nil
	if el.logFile != nil {
		return el.logFile.Close()
	}
	return nil
}
