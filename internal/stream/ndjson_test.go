package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNDJSONFrameFormat(t *testing.T) {
	var buf bytes.Buffer
	e := NewNDJSON(&buf)

	if err := e.Status(StatusEvent{Total: 3, Remaining: 3}); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if err := e.Message(MessageEvent{MessageID: "m1", Content: "hi", Cached: true}); err != nil {
		t.Fatalf("Message: %v", err)
	}
	if err := e.Complete(CompleteEvent{Total: 3, Generated: 1}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}

	// Each line is "name: json" with a decodable payload.
	wantNames := []string{EventStatus, EventMessage, EventComplete}
	for i, ln := range lines {
		name, body, ok := strings.Cut(ln, ": ")
		if !ok || name != wantNames[i] {
			t.Fatalf("line %d = %q, want %q prefix", i, ln, wantNames[i])
		}
		if !json.Valid([]byte(body)) {
			t.Fatalf("line %d payload is not valid JSON: %q", i, body)
		}
	}

	var msg MessageEvent
	_, body, _ := strings.Cut(lines[1], ": ")
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if msg.MessageID != "m1" || !msg.Cached {
		t.Fatalf("message = %+v", msg)
	}
}

func TestNDJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	e := NewNDJSON(&buf)
	if err := e.Message(MessageEvent{MessageID: "m1"}); err != nil {
		t.Fatalf("Message: %v", err)
	}
	out := buf.String()
	// Client-facing casing is part of the wire contract.
	for _, key := range []string{`"messageId"`, `"cached"`, `"prospect"`, `"match"`} {
		if !strings.Contains(out, key) {
			t.Fatalf("frame missing %s: %q", key, out)
		}
	}
}

// failAfterWriter errors on every write after the first n.
type failAfterWriter struct {
	n      int
	writes int
}

func (w *failAfterWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > w.n {
		return 0, errors.New("broken pipe")
	}
	return len(p), nil
}

func TestNDJSONLatchesAfterWriteFailure(t *testing.T) {
	w := &failAfterWriter{n: 1}
	e := NewNDJSON(w)

	if err := e.Status(StatusEvent{}); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if err := e.Status(StatusEvent{}); !errors.Is(err, ErrClientGone) {
		t.Fatalf("second frame err = %v, want ErrClientGone", err)
	}
	// Latched: no further writes are attempted.
	if err := e.Complete(CompleteEvent{}); !errors.Is(err, ErrClientGone) {
		t.Fatalf("latched frame err = %v, want ErrClientGone", err)
	}
	if w.writes != 2 {
		t.Fatalf("writes = %d, want 2", w.writes)
	}
}

func TestRecorderFailAfter(t *testing.T) {
	r := &Recorder{FailAfter: 2}
	if err := r.Status(StatusEvent{}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := r.Message(MessageEvent{}); err != nil {
		t.Fatalf("second: %v", err)
	}
	if err := r.Complete(CompleteEvent{}); !errors.Is(err, ErrClientGone) {
		t.Fatalf("third err = %v, want ErrClientGone", err)
	}
	if len(r.Order) != 2 {
		t.Fatalf("recorded = %v", r.Order)
	}
}
