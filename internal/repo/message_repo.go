// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// GeneratedMessage model: cache-key lookups, creation, in-place regeneration
// updates, and the read/approve surface used by the message management API.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-outreach-backend/internal/domain"
)

// FindCachedMessage looks up an existing draft for the exact cache key
// (user, prospect, instructions, day). Returns (nil, nil) on a cache miss so
// callers can distinguish "no row" from a DB failure.
func FindCachedMessage(ctx context.Context, db *gorm.DB, userID, prospectID, instructions, day string) (*domain.GeneratedMessage, error) {
	var m domain.GeneratedMessage
	err := db.WithContext(ctx).
		Where("user_id = ? AND prospect_id = ? AND custom_instructions = ? AND generation_day = ?",
			userID, prospectID, instructions, day).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateGeneratedMessage inserts a new draft row with a UUID primary key and
// UTC timestamp.
func CreateGeneratedMessage(ctx context.Context, db *gorm.DB, m *domain.GeneratedMessage) (*domain.GeneratedMessage, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateGeneratedMessage rewrites the draft's content, subject, and structured
// detail in place, keeping the same row id. Returns ErrNotFound when no row
// was touched (message missing or not owned by userID).
func UpdateGeneratedMessage(ctx context.Context, db *gorm.DB, id, userID string, content, subject string, detail domain.MessageDetail) error {
	res := db.WithContext(ctx).
		Model(&domain.GeneratedMessage{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"content":                   content,
			"subject":                   subject,
			"detail_subject":            detail.Subject,
			"detail_selected_highlight": detail.SelectedHighlight,
			"detail_selected_challenge": detail.SelectedChallenge,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMessagesByIDs fetches the user's drafts by primary key. Missing or
// foreign ids are silently omitted; callers compare lengths when that matters.
func GetMessagesByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]domain.GeneratedMessage, error) {
	if len(ids) == 0 {
		return []domain.GeneratedMessage{}, nil
	}
	var out []domain.GeneratedMessage
	err := db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&out).Error
	return out, err
}

// CountMessages returns the total number of drafts owned by userID.
func CountMessages(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.GeneratedMessage{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListMessagesPage returns a paginated slice of the user's drafts, newest
// first. Use CountMessages to obtain the total for pagination metadata.
func ListMessagesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.GeneratedMessage, error) {
	var out []domain.GeneratedMessage
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SetMessageApproved flips the approved flag on a draft owned by userID.
// Returns ErrNotFound when the row is missing or not owned.
func SetMessageApproved(ctx context.Context, db *gorm.DB, id, userID string, approved bool) error {
	res := db.WithContext(ctx).
		Model(&domain.GeneratedMessage{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
