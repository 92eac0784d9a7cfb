package security

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Severity levels for audit events.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Event is one append-only audit log entry.
type Event struct {
	Type        string
	Description string
	Severity    Severity
	Timestamp   time.Time
}

// Sink persists audit events. The store implements it; failures are
// logged and swallowed because audit logging is fire-and-forget.
type Sink interface {
	InsertSecurityEvent(evt Event) error
}

// Logger records audit events to the structured log and, when a sink is
// attached, to the persistence store.
type Logger struct {
	log  *logrus.Logger
	sink Sink
}

// NewLogger builds a JSON-formatted logrus logger at the given level.
func NewLogger(level string) *Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return &Logger{log: log}
}

// WrapLogger reuses an existing logrus instance.
func WrapLogger(log *logrus.Logger) *Logger {
	return &Logger{log: log}
}

// AttachSink adds a persistence sink for audit events.
func (l *Logger) AttachSink(sink Sink) {
	l.sink = sink
}

// Logrus exposes the underlying structured logger for stage logging.
func (l *Logger) Logrus() *logrus.Logger {
	return l.log
}

// Event records one audit event. It never returns an error: a broken
// sink must not take the pipeline down with it.
func (l *Logger) Event(eventType, description string, severity Severity) {
	entry := l.log.WithFields(logrus.Fields{
		"event_type": eventType,
		"severity":   string(severity),
	})
	switch severity {
	case SeverityCritical, SeverityError:
		entry.Error(description)
	case SeverityWarning:
		entry.Warn(description)
	default:
		entry.Info(description)
	}

	if l.sink == nil {
		return
	}
	evt := Event{
		Type:        eventType,
		Description: description,
		Severity:    severity,
		Timestamp:   time.Now().UTC(),
	}
	if err := l.sink.InsertSecurityEvent(evt); err != nil {
		l.log.WithField("event_type", eventType).Warnf("audit event not persisted: %v", err)
	}
}

// RateLimiter is a sliding one-minute window counter per key.
type RateLimiter struct {
	mu        sync.Mutex
	maxPerMin int
	requests  map[string][]time.Time
}

// NewRateLimiter allows up to maxPerMin requests per key per minute.
func NewRateLimiter(maxPerMin int) *RateLimiter {
	if maxPerMin < 1 {
		maxPerMin = 60
	}
	return &RateLimiter{
		maxPerMin: maxPerMin,
		requests:  map[string][]time.Time{},
	}
}

// Allow reports whether the key may make another request now, and
// records the request if so.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)
	kept := r.requests[key][:0]
	for _, t := range r.requests[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.requests[key] = kept

	if len(kept) >= r.maxPerMin {
		return false
	}
	r.requests[key] = append(kept, now)
	return true
}
