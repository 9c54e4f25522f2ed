// Message HTTP handlers.
//
// This file exposes the stored-draft endpoints:
//   - GET /messages               (list, paginated, newest first)
//   - PUT /messages/{id}/approve  (mark a draft approved / unapproved)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-outreach-backend/internal/domain"
	"github.com/tbourn/go-outreach-backend/internal/http/middleware"
	"github.com/tbourn/go-outreach-backend/internal/services"
	"github.com/tbourn/go-outreach-backend/internal/utils"
)

// MessageService defines stored-draft operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MessageService interface {
	// ListPage returns a page of the user's drafts and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.GeneratedMessage, int64, error)
	// SetApproved flips the approved flag on a draft the user owns.
	SetApproved(ctx context.Context, userID, messageID string, approved bool) error
}

//
// DTOs
//

// ApproveRequest is the JSON payload for approving or unapproving a draft.
type ApproveRequest struct {
	Approved bool `json:"approved"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListMessagesResponse wraps a page of drafts and pagination information.
type ListMessagesResponse struct {
	Messages   []domain.GeneratedMessage `json:"messages"`
	Pagination Pagination                `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

//
// Handlers
//

// MessageHandlers groups the stored-draft endpoints.
type MessageHandlers struct {
	svc MessageService
}

// NewMessages constructs MessageHandlers bound to the given service.
func NewMessages(svc MessageService) *MessageHandlers {
	return &MessageHandlers{svc: svc}
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List generated messages (paginated)
// @Description Returns a page of the user's drafts, newest first.
// @Tags        Messages
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (when no auth resolver is configured)"  example(user123)
// @Param       page       query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListMessagesResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages [get]
func (h *MessageHandlers) ListMessages(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.svc.ListPage(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// ApproveMessage godoc
// @ID          approveMessage
// @Summary     Approve or unapprove a draft
// @Description Sets the approved flag on a draft owned by the current user.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (when no auth resolver is configured)"  example(user123)
// @Param       id         path    string  true  "Message ID (UUID)"  format(uuid)
// @Param       body       body    handlers.ApproveRequest  true  "Approval state"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id}/approve [put]
func (h *MessageHandlers) ApproveMessage(c *gin.Context) {
	msgID := c.Param("id")
	if _, err := uuid.Parse(msgID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message id must be a UUID")
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.svc.SetApproved(c.Request.Context(), middleware.UserID(c), msgID, req.Approved)
	switch err {
	case nil:
		c.Status(http.StatusNoContent)
	case services.ErrMessageNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
