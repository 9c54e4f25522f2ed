// Package stream defines the typed event protocol the generation pipeline
// pushes to its caller, and transport adapters that carry it over the wire.
//
// The pipeline produces a single ordered, append-only sequence of three event
// shapes: status snapshots, per-message results, and a terminal completion
// summary. The pipeline is written against the Emitter interface so the wire
// protocol (NDJSON over chunked HTTP) stays out of the business logic and
// tests can capture events with a Recorder.
package stream

// Event names as they appear on the wire.
const (
	EventStatus   = "status"
	EventMessage  = "message"
	EventComplete = "complete"
)

// ProspectView is the subset of a prospect echoed with each message event.
type ProspectView struct {
	ID       string `json:"id"`
	Company  string `json:"company"`
	JobTitle string `json:"job_title"`
	Location string `json:"location,omitempty"`
}

// MatchView identifies the contact the message is addressed to.
type MatchView struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// StatusEvent is a progress snapshot, emitted once at the start of streaming
// and again after each batch completes.
type StatusEvent struct {
	Total     int `json:"total"`     // prospects requested (after resolution filtering is reflected in Remaining)
	Generated int `json:"generated"` // messages emitted so far, cached included
	Remaining int `json:"remaining"` // queue items not yet processed
	Processed int `json:"processed"` // queue items attempted, failures included
}

// MessageEvent carries one finished draft. Cached drafts are emitted before
// any batch runs; generated drafts follow batch by batch.
type MessageEvent struct {
	Prospect  ProspectView `json:"prospect"`
	Match     MatchView    `json:"match"`
	Content   string       `json:"content"`
	Subject   string       `json:"subject,omitempty"`
	MessageID string       `json:"messageId"`
	Cached    bool         `json:"cached"`
}

// QuotaView summarizes daily quota consumption in the completion event.
type QuotaView struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// CompleteEvent terminates the stream. Generated counts every message the
// stream carried; NewlyGenerated excludes cache hits.
type CompleteEvent struct {
	Total          int       `json:"total"`
	Generated      int       `json:"generated"`
	NewlyGenerated int       `json:"newlyGenerated"`
	Quota          QuotaView `json:"quota"`
}

// Emitter is the one-way event channel between the pipeline and a consumer.
//
// Implementations must preserve call order. An error from any method tells the
// pipeline the consumer is gone: it should stop issuing generation-service
// calls but must not roll back work already persisted.
type Emitter interface {
	Status(e StatusEvent) error
	Message(e MessageEvent) error
	Complete(e CompleteEvent) error
}
