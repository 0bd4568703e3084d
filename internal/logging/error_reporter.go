package logging

import (
	"fmt"
	"sync"
	"time"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	ErrorCategoryAccount   ErrorCategory = "account"
	ErrorCategoryNetwork   ErrorCategory = "network"
	ErrorCategoryProxy     ErrorCategory = "proxy"
	ErrorCategorySession   ErrorCategory = "session"
	ErrorCategoryTimeout   ErrorCategory = "timeout"
	ErrorCategoryDatabase  ErrorCategory = "database"
	ErrorCategoryScheduler ErrorCategory = "scheduler"
)

// ErrorSeverity represents the severity of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// ErrorReport is one collected failure
type ErrorReport struct {
	Timestamp    time.Time              `json:"timestamp"`
	Category     ErrorCategory          `json:"category"`
	Severity     ErrorSeverity          `json:"severity"`
	Component    string                 `json:"component"`
	AccountIndex int                    `json:"account_index"`
	Message      string                 `json:"message"`
	Error        error                  `json:"error"`
	Context      map[string]interface{} `json:"context,omitempty"`
}

// ErrorCallback is called when an error is reported
type ErrorCallback func(report *ErrorReport)

// ErrorReporter aggregates per-account failures for end-of-batch reporting.
// History is bounded; the oldest entries are dropped first.
type ErrorReporter struct {
	logger         *Logger
	errorHistory   []*ErrorReport
	errorHistoryMu sync.RWMutex
	maxHistory     int

	callbacks   map[ErrorSeverity][]ErrorCallback
	callbacksMu sync.RWMutex
}

// NewErrorReporter creates a new error reporter
func NewErrorReporter() *ErrorReporter {
	return &ErrorReporter{
		logger:       NewLogger("ErrorReporter"),
		errorHistory: make([]*ErrorReport, 0),
		maxHistory:   1000,
		callbacks:    make(map[ErrorSeverity][]ErrorCallback),
	}
}

// SetLogger sets the logger for the error reporter
func (er *ErrorReporter) SetLogger(logger *Logger) {
	er.logger = logger
}

// Report records an error report
func (er *ErrorReporter) Report(report *ErrorReport) {
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}

	er.logError(report)
	er.addToHistory(report)
	er.invokeCallbacks(report)
}

// SeverityFor returns the default severity of an account failure category.
// Transport problems usually clear up on the next pass.
func SeverityFor(category ErrorCategory) ErrorSeverity {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryProxy:
		return ErrorSeverityMedium
	case ErrorCategoryScheduler:
		return ErrorSeverityLow
	default:
		return ErrorSeverityHigh
	}
}

// ReportAccountError reports a failed account run
func (er *ErrorReporter) ReportAccountError(category ErrorCategory, accountIndex int, message string, err error) {
	er.Report(&ErrorReport{
		Category:     category,
		Severity:     SeverityFor(category),
		Component:    "account",
		AccountIndex: accountIndex,
		Message:      message,
		Error:        err,
	})
}

func (er *ErrorReporter) logError(report *ErrorReport) {
	context := map[string]interface{}{
		"category": string(report.Category),
		"severity": string(report.Severity),
	}
	if report.AccountIndex > 0 {
		context["account"] = report.AccountIndex
	}
	for k, v := range report.Context {
		context[k] = v
	}

	switch report.Severity {
	case ErrorSeverityCritical:
		er.logger.FatalWithContext(report.Message, report.Error, context)
	case ErrorSeverityHigh:
		er.logger.ErrorWithContext(report.Message, report.Error, context)
	case ErrorSeverityMedium:
		if report.Error != nil {
			context["error"] = report.Error.Error()
		}
		er.logger.WarnWithContext(report.Message, context)
	default:
		er.logger.InfoWithContext(report.Message, context)
	}
}

func (er *ErrorReporter) addToHistory(report *ErrorReport) {
	er.errorHistoryMu.Lock()
	defer er.errorHistoryMu.Unlock()

	er.errorHistory = append(er.errorHistory, report)
	if len(er.errorHistory) > er.maxHistory {
		er.errorHistory = er.errorHistory[len(er.errorHistory)-er.maxHistory:]
	}
}

func (er *ErrorReporter) invokeCallbacks(report *ErrorReport) {
	er.callbacksMu.RLock()
	callbacks := er.callbacks[report.Severity]
	er.callbacksMu.RUnlock()

	for _, callback := range callbacks {
		callback(report)
	}
}

// OnError registers a callback for a specific error severity
func (er *ErrorReporter) OnError(severity ErrorSeverity, callback ErrorCallback) {
	er.callbacksMu.Lock()
	defer er.callbacksMu.Unlock()

	er.callbacks[severity] = append(er.callbacks[severity], callback)
}

// GetRecentErrors returns the N most recent errors
func (er *ErrorReporter) GetRecentErrors(n int) []*ErrorReport {
	er.errorHistoryMu.RLock()
	defer er.errorHistoryMu.RUnlock()

	if n > len(er.errorHistory) {
		n = len(er.errorHistory)
	}
	start := len(er.errorHistory) - n
	result := make([]*ErrorReport, n)
	copy(result, er.errorHistory[start:])
	return result
}

// GetErrorStats returns counts by severity and category
func (er *ErrorReporter) GetErrorStats() map[string]int {
	er.errorHistoryMu.RLock()
	defer er.errorHistoryMu.RUnlock()

	stats := map[string]int{"total": len(er.errorHistory)}
	for _, report := range er.errorHistory {
		stats[fmt.Sprintf("severity_%s", report.Severity)]++
		stats[fmt.Sprintf("category_%s", report.Category)]++
	}
	return stats
}

// Clear clears the error history
func (er *ErrorReporter) Clear() {
	er.errorHistoryMu.Lock()
	defer er.errorHistoryMu.Unlock()

	er.errorHistory = make([]*ErrorReport, 0)
}
