package security

import (
	"errors"
	"testing"
)

type recordingSink struct {
	events []Event
	err    error
}

func (r *recordingSink) InsertSecurityEvent(evt Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func TestEventReachesSink(t *testing.T) {
	l := NewLogger("panic")
	sink := &recordingSink{}
	l.AttachSink(sink)

	l.Event("generation_started", "generation 1", SeverityInfo)
	l.Event("store_failure", "db down", SeverityError)

	if len(sink.events) != 2 {
		t.Fatalf("sink received %d events, want 2", len(sink.events))
	}
	if sink.events[1].Severity != SeverityError || sink.events[1].Type != "store_failure" {
		t.Errorf("event fields wrong: %+v", sink.events[1])
	}
	if sink.events[0].Timestamp.IsZero() {
		t.Error("event timestamp not set")
	}
}

func TestEventSurvivesBrokenSink(t *testing.T) {
	l := NewLogger("panic")
	l.AttachSink(&recordingSink{err: errors.New("sink down")})
	// must not panic or propagate
	l.Event("anything", "broken sink", SeverityCritical)
}

func TestEventWithoutSink(t *testing.T) {
	l := NewLogger("panic")
	l.Event("anything", "no sink attached", SeverityWarning)
}

func TestNewLoggerBadLevelDefaultsToInfo(t *testing.T) {
	l := NewLogger("not-a-level")
	if l.Logrus() == nil {
		t.Fatal("logger must always be usable")
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3)
	for i := 0; i < 3; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow("client") {
		t.Error("fourth request inside the window should be denied")
	}
	// other keys are independent
	if !rl.Allow("other") {
		t.Error("separate key must have its own window")
	}
}

func TestRateLimiterDefaultsBadLimit(t *testing.T) {
	rl := NewRateLimiter(0)
	if !rl.Allow("x") {
		t.Error("zero limit should default, not deny everything")
	}
}
