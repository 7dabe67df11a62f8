package audit

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
}

func TestDispatcherDeliversAndFlushesOnClose(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "login_success"})
	}
	d.Close()

	if got := sink.count.Load(); got != 10 {
		t.Fatalf("expected 10 delivered after Close, got %d", got)
	}
	if d.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", d.Dropped())
	}
}

func TestDispatcherDisabledReturnsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}

	// All methods are nil-safe.
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("expected zero drops on nil dispatcher")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event is consumed by the blocked sink, one fills the buffer,
	// everything after that is dropped.
	deadline := time.After(time.Second)
	for d.Dropped() == 0 {
		d.Emit(context.Background(), Event{EventType: "login_failure"})
		select {
		case <-deadline:
			t.Fatal("dispatcher never reported a drop")
		default:
		}
	}

	close(sink.gate)
	d.Close()
}

func TestDispatcherEmitAfterCloseIsNoOp(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	d.Close()

	d.Emit(context.Background(), Event{EventType: "logout"})
	if got := sink.count.Load(); got != 0 {
		t.Fatalf("expected no delivery after Close, got %d", got)
	}
}

func TestJSONWriterSinkShape(t *testing.T) {
	var buf strings.Builder
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{
		Timestamp: time.Unix(59, 0).UTC(),
		EventType: "login_success",
		UserID:    "u1",
		IP:        "203.0.113.9",
		Success:   true,
		Metadata:  map[string]string{"second_factor": "totp"},
	})

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("output is not one JSON object per line: %v", err)
	}
	if decoded["event_type"] != "login_success" || decoded["user_id"] != "u1" {
		t.Fatalf("unexpected payload: %s", line)
	}
	if decoded["success"] != true {
		t.Fatalf("expected success true: %s", line)
	}
}

func TestChannelSinkDeliversInOrder(t *testing.T) {
	sink := NewChannelSink(4)
	for _, et := range []string{"a", "b", "c"} {
		sink.Emit(context.Background(), Event{EventType: et})
	}
	for _, want := range []string{"a", "b", "c"} {
		ev := <-sink.Events()
		if ev.EventType != want {
			t.Fatalf("expected %s, got %s", want, ev.EventType)
		}
	}
}
