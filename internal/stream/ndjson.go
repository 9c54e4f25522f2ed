// NDJSON transport adapter for the pipeline event protocol.
//
// Frames are newline-delimited "event-name: json-payload" lines, flushed after
// every write so consumers see results as each batch lands rather than when
// the response ends.
package stream

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ContentType is the MIME type set on streaming responses.
const ContentType = "application/x-ndjson"

// ErrClientGone reports that the consumer disconnected mid-stream. Work
// already persisted stays; the pipeline just stops producing.
var ErrClientGone = errors.New("stream consumer disconnected")

// NDJSONEmitter writes pipeline events as NDJSON frames to an HTTP response
// (or any writer), flushing after each frame when the writer supports it.
//
// It is not safe for concurrent use; the pipeline is strictly sequential so
// no synchronization is needed.
type NDJSONEmitter struct {
	w       io.Writer
	flusher http.Flusher
	failed  bool
}

// NewNDJSON wraps w in an emitter. When w also implements http.Flusher each
// frame is flushed to the client immediately.
func NewNDJSON(w io.Writer) *NDJSONEmitter {
	e := &NDJSONEmitter{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// Status implements Emitter.
func (e *NDJSONEmitter) Status(ev StatusEvent) error { return e.frame(EventStatus, ev) }

// Message implements Emitter.
func (e *NDJSONEmitter) Message(ev MessageEvent) error { return e.frame(EventMessage, ev) }

// Complete implements Emitter.
func (e *NDJSONEmitter) Complete(ev CompleteEvent) error { return e.frame(EventComplete, ev) }

// frame serializes one "name: payload\n" line. After the first write failure
// the emitter is latched as failed: the connection is gone and there is no
// replay buffer, so every later call short-circuits with ErrClientGone.
func (e *NDJSONEmitter) frame(name string, payload any) error {
	if e.failed {
		return ErrClientGone
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	buf := make([]byte, 0, len(name)+2+len(body)+1)
	buf = append(buf, name...)
	buf = append(buf, ':', ' ')
	buf = append(buf, body...)
	buf = append(buf, '\n')
	if _, err := e.w.Write(buf); err != nil {
		e.failed = true
		return ErrClientGone
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// Recorder captures events in order for tests.
type Recorder struct {
	Statuses  []StatusEvent
	Messages  []MessageEvent
	Completes []CompleteEvent
	Order     []string // event names in emission order

	// FailAfter, when > 0, makes every emit after that many events fail with
	// ErrClientGone, simulating a consumer disconnect.
	FailAfter int
	emitted   int
}

// Status implements Emitter.
func (r *Recorder) Status(e StatusEvent) error {
	if err := r.tick(); err != nil {
		return err
	}
	r.Statuses = append(r.Statuses, e)
	r.Order = append(r.Order, EventStatus)
	return nil
}

// Message implements Emitter.
func (r *Recorder) Message(e MessageEvent) error {
	if err := r.tick(); err != nil {
		return err
	}
	r.Messages = append(r.Messages, e)
	r.Order = append(r.Order, EventMessage)
	return nil
}

// Complete implements Emitter.
func (r *Recorder) Complete(e CompleteEvent) error {
	if err := r.tick(); err != nil {
		return err
	}
	r.Completes = append(r.Completes, e)
	r.Order = append(r.Order, EventComplete)
	return nil
}

func (r *Recorder) tick() error {
	if r.FailAfter > 0 && r.emitted >= r.FailAfter {
		return ErrClientGone
	}
	r.emitted++
	return nil
}
