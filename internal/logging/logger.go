package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log message
type LogLevel string

const (
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelSuccess LogLevel = "SUCCESS"
	LogLevelCustom  LogLevel = "CUSTOM"
	LogLevelWarn    LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelFatal   LogLevel = "FATAL"
)

// levelRank orders levels for filtering. Success and Custom are narration
// variants of Info and filter the same way.
var levelRank = map[LogLevel]int{
	LogLevelDebug:   0,
	LogLevelInfo:    1,
	LogLevelSuccess: 1,
	LogLevelCustom:  1,
	LogLevelWarn:    2,
	LogLevelError:   3,
	LogLevelFatal:   4,
}

// ParseLevel converts a settings value into a LogLevel, defaulting to INFO
func ParseLevel(s string) LogLevel {
	switch LogLevel(s) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelFatal:
		return LogLevel(s)
	}
	switch s {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	}
	return LogLevelInfo
}

// Logger provides structured logging functionality
type Logger struct {
	component string
	minLevel  LogLevel
	outputs   []io.Writer
	mu        sync.Mutex
	zl        zerolog.Logger
}

// NewConsoleWriter returns the human-readable writer used for stdout narration
func NewConsoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// NewLogger creates a new logger for a specific component
func NewLogger(component string) *Logger {
	l := &Logger{
		component: component,
		minLevel:  LogLevelInfo,
		outputs:   []io.Writer{NewConsoleWriter(os.Stdout)},
	}
	l.rebuild()
	return l
}

// rebuild recreates the zerolog logger after outputs change. Caller holds mu
// or has exclusive access.
func (l *Logger) rebuild() {
	var w io.Writer
	switch len(l.outputs) {
	case 0:
		w = io.Discard
	case 1:
		w = l.outputs[0]
	default:
		w = zerolog.MultiLevelWriter(l.outputs...)
	}
	l.zl = zerolog.New(w).With().Timestamp().Str("component", l.component).Logger()
}

// SetMinLevel sets the minimum log level to output
func (l *Logger) SetMinLevel(level LogLevel) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
	return l
}

// AddOutput adds an output writer for logs
func (l *Logger) AddOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs, w)
	l.rebuild()
	return l
}

// SetOutput replaces all outputs with w
func (l *Logger) SetOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = []io.Writer{w}
	l.rebuild()
	return l
}

// Component returns the component name the logger was created with
func (l *Logger) Component() string {
	return l.component
}

// log writes a log entry
func (l *Logger) log(level LogLevel, message string, err error, context map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.shouldLog(level) {
		return
	}

	ev := l.zl.WithLevel(toZerolog(level))
	switch level {
	case LogLevelSuccess:
		ev = ev.Str("result", "success")
	case LogLevelCustom:
		ev = ev.Str("kind", "detail")
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if len(context) > 0 {
		ev = ev.Fields(context)
	}
	ev.Msg(message)
}

func toZerolog(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		// WithLevel never exits the process, unlike zerolog's Fatal()
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// shouldLog checks if a log level should be output
func (l *Logger) shouldLog(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

// Debug logs a debug message
func (l *Logger) Debug(message string) {
	l.log(LogLevelDebug, message, nil, nil)
}

// DebugWithContext logs a debug message with context
func (l *Logger) DebugWithContext(message string, context map[string]interface{}) {
	l.log(LogLevelDebug, message, nil, context)
}

// Info logs an info message
func (l *Logger) Info(message string) {
	l.log(LogLevelInfo, message, nil, nil)
}

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(message string, context map[string]interface{}) {
	l.log(LogLevelInfo, message, nil, context)
}

// Success logs a completed action
func (l *Logger) Success(message string) {
	l.log(LogLevelSuccess, message, nil, nil)
}

// Warn logs a warning message
func (l *Logger) Warn(message string) {
	l.log(LogLevelWarn, message, nil, nil)
}

// WarnWithContext logs a warning message with context
func (l *Logger) WarnWithContext(message string, context map[string]interface{}) {
	l.log(LogLevelWarn, message, nil, context)
}

// Error logs an error message
func (l *Logger) Error(message string, err error) {
	l.log(LogLevelError, message, err, nil)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(message string, err error, context map[string]interface{}) {
	l.log(LogLevelError, message, err, context)
}

// Fatal logs a fatal error message. It does not exit.
func (l *Logger) Fatal(message string, err error) {
	l.log(LogLevelFatal, message, err, nil)
}

// FatalWithContext logs a fatal error message with context
func (l *Logger) FatalWithContext(message string, err error, context map[string]interface{}) {
	l.log(LogLevelFatal, message, err, context)
}

// WithContext returns a log function that includes context
func (l *Logger) WithContext(context map[string]interface{}) *ContextLogger {
	return &ContextLogger{
		logger:  l,
		context: context,
	}
}

// ContextLogger is a logger with pre-set context
type ContextLogger struct {
	logger  *Logger
	context map[string]interface{}
}

// With returns a copy of the context logger with extra fields merged in
func (cl *ContextLogger) With(extra map[string]interface{}) *ContextLogger {
	merged := make(map[string]interface{}, len(cl.context)+len(extra))
	for k, v := range cl.context {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &ContextLogger{logger: cl.logger, context: merged}
}

// Debug logs a debug message with pre-set context
func (cl *ContextLogger) Debug(message string) {
	cl.logger.log(LogLevelDebug, message, nil, cl.context)
}

// Info logs an info message with pre-set context
func (cl *ContextLogger) Info(message string) {
	cl.logger.log(LogLevelInfo, message, nil, cl.context)
}

// Success logs a completed action with pre-set context
func (cl *ContextLogger) Success(message string) {
	cl.logger.log(LogLevelSuccess, message, nil, cl.context)
}

// Custom logs a detail line (drawn pets, bred pets) with pre-set context
func (cl *ContextLogger) Custom(message string) {
	cl.logger.log(LogLevelCustom, message, nil, cl.context)
}

// Warn logs a warning message with pre-set context
func (cl *ContextLogger) Warn(message string) {
	cl.logger.log(LogLevelWarn, message, nil, cl.context)
}

// Error logs an error message with pre-set context
func (cl *ContextLogger) Error(message string, err error) {
	cl.logger.log(LogLevelError, message, err, cl.context)
}

// Fatal logs a fatal error message with pre-set context
func (cl *ContextLogger) Fatal(message string, err error) {
	cl.logger.log(LogLevelFatal, message, err, cl.context)
}

// Discard returns a context logger that writes nowhere, for tests and tools
func Discard() *ContextLogger {
	l := &Logger{component: "discard", minLevel: LogLevelFatal}
	l.rebuild()
	return l.WithContext(nil)
}
