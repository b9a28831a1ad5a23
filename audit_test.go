package abcookie

import (
	"bytes"
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

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func auditTestConfig() AuditConfig {
	return AuditConfig{
		Enabled:    true,
		BufferSize: 16,
		DropIfFull: true,
	}
}

func TestAuditDispatcherDeliversEvents(t *testing.T) {
	sink := NewChannelSink(16)
	d := newAuditDispatcher(auditTestConfig(), sink)

	d.Emit(context.Background(), AuditEvent{EventType: auditEventAssign, Success: true})

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventAssign {
			t.Fatalf("event type = %q", event.EventType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}

	d.Close()
}

func TestAuditDispatcherDrainsOnClose(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 64, DropIfFull: true}, sink)

	const emitted = 50
	for i := 0; i < emitted; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventAssign})
	}
	d.Close()

	if got := sink.Count(); got+int64(d.Dropped()) != emitted {
		t.Fatalf("delivered %d + dropped %d != %d", got, d.Dropped(), emitted)
	}
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// The sink is blocked, so after the buffer fills every further emit
	// must drop rather than stall the caller.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventAssign})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected drops with a blocked sink")
	}

	close(sink.gate)
	d.Close()
}

func TestAuditDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("disabled audit config must yield a nil dispatcher")
	}
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestAuditDispatcherCloseIdempotent(t *testing.T) {
	d := newAuditDispatcher(auditTestConfig(), &countingSink{})
	d.Close()
	d.Close()
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		EventType: auditEventCookieIssued,
		SubjectID: "user-1",
		Variant:   "B",
		Success:   true,
	})
	sink.Emit(context.Background(), AuditEvent{
		EventType: auditEventValidateRejected,
		Error:     string(auditErrForged),
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line not valid JSON: %v", err)
	}
	if first.EventType != auditEventCookieIssued || first.Variant != "B" {
		t.Fatalf("round-trip mismatch: %+v", first)
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrInvalidVariant, auditErrInvalidVariant},
		{ErrExperimentIDInvalid, auditErrInvalidExperiment},
		{ErrSubjectIDMissing, auditErrMissingSubject},
		{ErrTokenInvalid, auditErrTokenInvalid},
		{errMalformedPayload, auditErrMalformed},
		{errForgedSignature, auditErrForged},
		{errStaleAssignment, auditErrStale},
	}
	for _, tc := range cases {
		if got := auditErrorCode(tc.err); got != tc.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
