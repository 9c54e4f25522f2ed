package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-outreach-backend/internal/services"
	"github.com/tbourn/go-outreach-backend/internal/stream"
)

// fakeOutreach drives the emitter with a scripted event sequence or fails
// before streaming.
type fakeOutreach struct {
	generateParams   *services.GenerateParams
	regenerateParams *services.RegenerateParams

	err    error // returned before any emission
	script func(emit stream.Emitter)
}

func (f *fakeOutreach) Generate(ctx context.Context, params services.GenerateParams, emit stream.Emitter) error {
	f.generateParams = &params
	if f.err != nil {
		return f.err
	}
	if f.script != nil {
		f.script(emit)
	}
	return nil
}

func (f *fakeOutreach) Regenerate(ctx context.Context, params services.RegenerateParams, emit stream.Emitter) error {
	f.regenerateParams = &params
	if f.err != nil {
		return f.err
	}
	if f.script != nil {
		f.script(emit)
	}
	return nil
}

func newOutreachRouter(svc OutreachService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", "u1") })
	h := NewOutreach(svc)
	r.POST("/outreach/generate", h.Generate)
	r.POST("/outreach/regenerate", h.Regenerate)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate_StreamsNDJSON(t *testing.T) {
	svc := &fakeOutreach{script: func(emit stream.Emitter) {
		_ = emit.Status(stream.StatusEvent{Total: 1, Remaining: 1})
		_ = emit.Message(stream.MessageEvent{MessageID: "m1", Content: "hi"})
		_ = emit.Complete(stream.CompleteEvent{Total: 1, Generated: 1, NewlyGenerated: 1})
	}}
	r := newOutreachRouter(svc)

	w := postJSON(t, r, "/outreach/generate", `{"customInstructions":"short","mentionJobInMessages":true,"prospectIds":["p1"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != stream.ContentType {
		t.Fatalf("content type = %q, want %q", ct, stream.ContentType)
	}
	if buffering := w.Header().Get("X-Accel-Buffering"); buffering != "no" {
		t.Fatalf("X-Accel-Buffering = %q", buffering)
	}

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("frames = %d, want 3: %q", len(lines), w.Body.String())
	}
	for _, want := range []string{"status: ", "message: ", "complete: "} {
		found := false
		for _, ln := range lines {
			if strings.HasPrefix(ln, want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("no %q frame in %q", want, w.Body.String())
		}
	}

	// The handler passes the authenticated user and the request verbatim.
	p := svc.generateParams
	if p == nil || p.UserID != "u1" || p.CustomInstructions != "short" || !p.MentionJob || len(p.ProspectIDs) != 1 {
		t.Fatalf("params = %+v", p)
	}
}

func TestGenerate_QuotaExceededIs429(t *testing.T) {
	svc := &fakeOutreach{err: &services.QuotaExceededError{Limit: 25, Used: 25}}
	r := newOutreachRouter(svc)

	w := postJSON(t, r, "/outreach/generate", `{}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q, want JSON error envelope", ct)
	}

	var resp struct {
		Code    string       `json:"code"`
		Details QuotaDetails `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp.Code != ErrCodeQuotaExceeded {
		t.Fatalf("code = %q", resp.Code)
	}
	if resp.Details.Limit != 25 || resp.Details.Used != 25 || resp.Details.Remaining != 0 {
		t.Fatalf("details = %+v", resp.Details)
	}
}

func TestGenerate_MissingProfileIs400(t *testing.T) {
	svc := &fakeOutreach{err: services.ErrMissingProfile}
	r := newOutreachRouter(svc)

	w := postJSON(t, r, "/outreach/generate", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), ErrCodeMissingProfile) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestGenerate_BadJSONIs400(t *testing.T) {
	svc := &fakeOutreach{}
	r := newOutreachRouter(svc)

	w := postJSON(t, r, "/outreach/generate", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if svc.generateParams != nil {
		t.Fatalf("service called on invalid input")
	}
}

func TestGenerate_InternalErrorIs500(t *testing.T) {
	svc := &fakeOutreach{err: context.DeadlineExceeded}
	r := newOutreachRouter(svc)

	w := postJSON(t, r, "/outreach/generate", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestRegenerate_RequiresMessageIds(t *testing.T) {
	svc := &fakeOutreach{}
	r := newOutreachRouter(svc)

	for _, body := range []string{`{}`, `{"messageIds":[]}`} {
		w := postJSON(t, r, "/outreach/regenerate", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, w.Code)
		}
	}
	if svc.regenerateParams != nil {
		t.Fatalf("service called without message ids")
	}
}

func TestRegenerate_NoMessagesIs400(t *testing.T) {
	svc := &fakeOutreach{err: services.ErrNoMessages}
	r := newOutreachRouter(svc)

	w := postJSON(t, r, "/outreach/regenerate", `{"messageIds":["m1"]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegenerate_PassesOptionsThrough(t *testing.T) {
	svc := &fakeOutreach{script: func(emit stream.Emitter) {
		_ = emit.Complete(stream.CompleteEvent{})
	}}
	r := newOutreachRouter(svc)

	w := postJSON(t, r, "/outreach/regenerate",
		`{"messageIds":["m1","m2"],"autoGenerate":true,"feedback":"warmer","customInstructions":"ci","mentionJobInMessages":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	p := svc.regenerateParams
	if p == nil || p.UserID != "u1" || len(p.MessageIDs) != 2 || !p.AutoGenerate ||
		p.Feedback != "warmer" || p.CustomInstructions != "ci" || !p.MentionJob {
		t.Fatalf("params = %+v", p)
	}
}
