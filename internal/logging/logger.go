package logging

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"jobscribe/internal/logging/types"
)

// registry is shared between a logger and every logger derived from it
type registry struct {
	mu       sync.RWMutex
	adapters map[string]types.LogAdapter
	level    LogLevel
}

// MultiLogger fans every entry out to all registered adapters
type MultiLogger struct {
	reg     *registry
	context context.Context
	fields  map[string]interface{}
}

// NewMultiLogger creates a new MultiLogger instance
func NewMultiLogger() *MultiLogger {
	return &MultiLogger{
		reg: &registry{
			adapters: make(map[string]types.LogAdapter),
			level:    InfoLevel,
		},
		context: context.Background(),
		fields:  make(map[string]interface{}),
	}
}

func (l *MultiLogger) Debug(message string, fields ...map[string]interface{}) {
	l.Log(DebugLevel, message, fields...)
}

func (l *MultiLogger) Info(message string, fields ...map[string]interface{}) {
	l.Log(InfoLevel, message, fields...)
}

func (l *MultiLogger) Warn(message string, fields ...map[string]interface{}) {
	l.Log(WarnLevel, message, fields...)
}

func (l *MultiLogger) Error(message string, fields ...map[string]interface{}) {
	l.Log(ErrorLevel, message, fields...)
}

// Fatal logs the message, flushes the adapters and exits
func (l *MultiLogger) Fatal(message string, fields ...map[string]interface{}) {
	l.Log(FatalLevel, message, fields...)
	l.Close()
	os.Exit(1)
}

// Log logs a message at the specified level
func (l *MultiLogger) Log(level LogLevel, message string, fields ...map[string]interface{}) {
	l.reg.mu.RLock()
	defer l.reg.mu.RUnlock()

	if level < l.reg.level {
		return
	}

	entry := &types.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Context:   l.context,
		Fields:    l.mergeFields(fields...),
	}

	names := make([]string, 0, len(l.reg.adapters))
	for name := range l.reg.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := l.reg.adapters[name].Write(entry); err != nil {
			// stderr, so a broken adapter cannot recurse into itself
			fmt.Fprintf(os.Stderr, "logging adapter %s error: %v\n", name, err)
		}
	}
}

// WithContext returns a logger bound to ctx
func (l *MultiLogger) WithContext(ctx context.Context) Logger {
	return &MultiLogger{reg: l.reg, context: ctx, fields: l.copyFields()}
}

// WithField returns a logger that always adds key=value
func (l *MultiLogger) WithField(key string, value interface{}) Logger {
	fields := l.copyFields()
	fields[key] = value
	return &MultiLogger{reg: l.reg, context: l.context, fields: fields}
}

// WithFields returns a logger that always adds the given fields
func (l *MultiLogger) WithFields(fields map[string]interface{}) Logger {
	merged := l.copyFields()
	for k, v := range fields {
		merged[k] = v
	}
	return &MultiLogger{reg: l.reg, context: l.context, fields: merged}
}

// SetLevel sets the minimum log level for this logger and its derivatives
func (l *MultiLogger) SetLevel(level LogLevel) {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()
	l.reg.level = level
}

func (l *MultiLogger) GetLevel() LogLevel {
	l.reg.mu.RLock()
	defer l.reg.mu.RUnlock()
	return l.reg.level
}

// AddAdapter registers an adapter; names must be unique
func (l *MultiLogger) AddAdapter(adapter types.LogAdapter) error {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	name := adapter.Name()
	if _, exists := l.reg.adapters[name]; exists {
		return fmt.Errorf("adapter %s already exists", name)
	}

	l.reg.adapters[name] = adapter
	return nil
}

// RemoveAdapter closes and unregisters an adapter
func (l *MultiLogger) RemoveAdapter(adapterName string) error {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	adapter, exists := l.reg.adapters[adapterName]
	if !exists {
		return fmt.Errorf("adapter %s not found", adapterName)
	}

	if err := adapter.Close(); err != nil {
		return fmt.Errorf("failed to close adapter %s: %w", adapterName, err)
	}

	delete(l.reg.adapters, adapterName)
	return nil
}

// Close closes all adapters
func (l *MultiLogger) Close() error {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	var failures []string
	for name, adapter := range l.reg.adapters {
		if err := adapter.Close(); err != nil {
			failures = append(failures, fmt.Sprintf("adapter %s: %v", name, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("failed to close adapters: %s", strings.Join(failures, ", "))
	}
	return nil
}

func (l *MultiLogger) copyFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return fields
}

func (l *MultiLogger) mergeFields(additional ...map[string]interface{}) map[string]interface{} {
	fields := l.copyFields()
	for _, fieldMap := range additional {
		for k, v := range fieldMap {
			fields[k] = v
		}
	}
	return fields
}

// ParseLogLevel parses a string log level, falling back to InfoLevel
func ParseLogLevel(levelStr string) LogLevel {
	level, _ := types.ParseLevel(levelStr)
	return level
}
