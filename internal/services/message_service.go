// Draft management: the read/approve surface the rest of the product uses to
// browse generated messages. Thin pass-through over the repo layer with
// ownership enforcement and pagination defaults.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-outreach-backend/internal/domain"
	"github.com/tbourn/go-outreach-backend/internal/repo"
)

// MessageService exposes stored drafts outside the streaming pipeline.
type MessageService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// ListPage returns a page of the user's drafts, newest first, plus the total
// count. Invalid page/pageSize values fall back to defaults.
func (s *MessageService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.GeneratedMessage, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMessages(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.GeneratedMessage{}, 0, nil
	}

	items, err := repo.ListMessagesPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// SetApproved flips the approved flag on a draft the user owns.
func (s *MessageService) SetApproved(ctx context.Context, userID, messageID string, approved bool) error {
	err := repo.SetMessageApproved(ctx, s.DB, messageID, userID, approved)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMessageNotFound
	}
	return err
}
