// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-side repository functions for the
// generation inputs: prospects, their selected contacts, per-prospect
// challenges, and the candidate profile.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only query
// composition.
//
// Error semantics:
//   - When a record is not found, functions either return ErrNotFound (single
//     lookups) or simply omit the row (bulk lookups returning maps).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-outreach-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetCandidateProfile fetches the user's highlight text. Returns ErrNotFound
// when the user has no profile row.
func GetCandidateProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.CandidateProfile, error) {
	var p domain.CandidateProfile
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProspects returns the user's prospects, restricted to ids when the slice
// is non-empty, ordered by creation time ascending so downstream batching is
// deterministic.
func ListProspects(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]domain.Prospect, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	var out []domain.Prospect
	err := q.Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

// ListProspectsByIDs fetches prospects by primary key regardless of order,
// keyed by id. Used by the regeneration path after resolving message rows.
func ListProspectsByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) (map[string]domain.Prospect, error) {
	out := make(map[string]domain.Prospect, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Prospect
	err := db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// GetMatches returns the selected contact per prospect, keyed by prospect id.
// Prospects without a selection are absent from the map.
func GetMatches(ctx context.Context, db *gorm.DB, prospectIDs []string) (map[string]domain.ProspectMatch, error) {
	out := make(map[string]domain.ProspectMatch, len(prospectIDs))
	if len(prospectIDs) == 0 {
		return out, nil
	}
	var rows []domain.ProspectMatch
	err := db.WithContext(ctx).
		Where("prospect_id IN ?", prospectIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ProspectID] = m
	}
	return out, nil
}

// ListChallenges returns all challenges for the given prospects, grouped by
// prospect id. Prospects with no challenges are absent from the map.
func ListChallenges(ctx context.Context, db *gorm.DB, prospectIDs []string) (map[string][]domain.Challenge, error) {
	out := make(map[string][]domain.Challenge, len(prospectIDs))
	if len(prospectIDs) == 0 {
		return out, nil
	}
	var rows []domain.Challenge
	err := db.WithContext(ctx).
		Where("prospect_id IN ?", prospectIDs).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, ch := range rows {
		out[ch.ProspectID] = append(out[ch.ProspectID], ch)
	}
	return out, nil
}
