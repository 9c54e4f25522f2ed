// Outreach HTTP handlers.
//
// This file exposes the streaming generation endpoints:
//   - POST /outreach/generate     (first-time generation for prospects)
//   - POST /outreach/regenerate   (rework existing drafts)
//
// Both respond with an NDJSON push stream once admission succeeds. Fatal
// pre-stream conditions (quota exhausted, missing profile, nothing to rework)
// come back as plain JSON errors; after the first frame the pipeline owns the
// connection and always runs the request to its complete event.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-outreach-backend/internal/http/middleware"
	"github.com/tbourn/go-outreach-backend/internal/services"
	"github.com/tbourn/go-outreach-backend/internal/stream"
)

//
// Service contracts (context-aware)
//

// OutreachService defines the streaming generation operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OutreachService interface {
	// Generate produces first-time drafts for the user's prospects, pushing
	// progress to emit.
	Generate(ctx context.Context, params services.GenerateParams, emit stream.Emitter) error
	// Regenerate reworks existing drafts in place, pushing progress to emit.
	Regenerate(ctx context.Context, params services.RegenerateParams, emit stream.Emitter) error
}

//
// DTOs
//

// GenerateRequest is the JSON payload for first-time generation.
type GenerateRequest struct {
	// CustomInstructions optionally steer tone and content; also part of the
	// day-scoped cache key.
	CustomInstructions string `json:"customInstructions" example:"keep it under 120 words, casual tone"`
	// MentionJobInMessages selects the relationship-building style when false.
	MentionJobInMessages bool `json:"mentionJobInMessages"`
	// ProspectIds restricts generation to these prospects; empty means all.
	ProspectIds []string `json:"prospectIds"`
}

// RegenerateRequest is the JSON payload for reworking existing drafts.
type RegenerateRequest struct {
	// MessageIds are the drafts to rework.
	MessageIds []string `json:"messageIds" binding:"required,min=1"`
	// AutoGenerate asks for a spontaneously different take; ignored when
	// Feedback is present.
	AutoGenerate bool `json:"autoGenerate"`
	// Feedback is free-text direction for the rewrite.
	Feedback             string `json:"feedback" example:"too formal, mention the Berlin office"`
	CustomInstructions   string `json:"customInstructions"`
	MentionJobInMessages bool   `json:"mentionJobInMessages"`
}

//
// Handlers
//

// OutreachHandlers groups the streaming endpoints around one pipeline.
type OutreachHandlers struct {
	svc OutreachService
}

// NewOutreach constructs OutreachHandlers bound to the given pipeline.
func NewOutreach(svc OutreachService) *OutreachHandlers {
	return &OutreachHandlers{svc: svc}
}

// Generate godoc
// @ID          generateOutreach
// @Summary     Generate outreach messages (NDJSON stream)
// @Description Streams status, message, and complete events as drafts are produced. Cached drafts arrive first and do not consume quota.
// @Tags        Outreach
// @Accept      json
// @Produce     x-ndjson
//
// @Param       X-User-ID  header  string  false "User ID (when no auth resolver is configured)"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Generation options"
//
// @Success     200  {string}  string  "NDJSON event stream"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing candidate profile"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     429  {object}  handlers.ErrorResponse  "Daily quota exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /outreach/generate [post]
func (h *OutreachHandlers) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	params := services.GenerateParams{
		UserID:             middleware.UserID(c),
		CustomInstructions: req.CustomInstructions,
		ProspectIDs:        req.ProspectIds,
		MentionJob:         req.MentionJobInMessages,
	}

	emit := openStream(c)
	if err := h.svc.Generate(c.Request.Context(), params, emit); err != nil {
		streamError(c, err)
	}
}

// Regenerate godoc
// @ID          regenerateOutreach
// @Summary     Regenerate existing drafts (NDJSON stream)
// @Description Rewrites the given drafts in place and streams the results. With autoGenerate and no feedback the inputs are varied for a different take.
// @Tags        Outreach
// @Accept      json
// @Produce     x-ndjson
//
// @Param       X-User-ID  header  string  false "User ID (when no auth resolver is configured)"  example(user123)
// @Param       body       body    handlers.RegenerateRequest  true  "Regeneration options"
//
// @Success     200  {string}  string  "NDJSON event stream"
// @Failure     400  {object}  handlers.ErrorResponse  "No reworkable drafts"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     429  {object}  handlers.ErrorResponse  "Daily quota exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /outreach/regenerate [post]
func (h *OutreachHandlers) Regenerate(c *gin.Context) {
	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.MessageIds) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "messageIds required")
		return
	}

	params := services.RegenerateParams{
		UserID:             middleware.UserID(c),
		MessageIDs:         req.MessageIds,
		AutoGenerate:       req.AutoGenerate,
		Feedback:           req.Feedback,
		CustomInstructions: req.CustomInstructions,
		MentionJob:         req.MentionJobInMessages,
	}

	emit := openStream(c)
	if err := h.svc.Regenerate(c.Request.Context(), params, emit); err != nil {
		streamError(c, err)
	}
}

// openStream prepares the response for NDJSON delivery. Headers are written
// lazily on the first frame, so a pipeline that fails before emitting anything
// can still answer with a plain error response.
func openStream(c *gin.Context) stream.Emitter {
	c.Header("Content-Type", stream.ContentType)
	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no") // nginx: do not buffer the stream
	return stream.NewNDJSON(c.Writer)
}

// streamError maps pre-stream pipeline errors onto the error envelope. The
// pipeline guarantees these only occur before the first frame, so the staged
// stream headers can still be replaced.
func streamError(c *gin.Context, err error) {
	c.Writer.Header().Del("Content-Type")
	c.Writer.Header().Del("X-Accel-Buffering")
	switch e := err.(type) {
	case *services.QuotaExceededError:
		failWith(c, http.StatusTooManyRequests, ErrCodeQuotaExceeded,
			"daily generation quota exceeded",
			QuotaDetails{Limit: e.Limit, Used: e.Used, Remaining: e.Remaining()})
		return
	}
	switch err {
	case services.ErrMissingProfile:
		fail(c, http.StatusBadRequest, ErrCodeMissingProfile, "no candidate profile on record; complete your profile first")
	case services.ErrNoMessages:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "none of the requested drafts can be reworked")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeGenerateFailed, err.Error())
	}
}
