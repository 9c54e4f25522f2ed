// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the DailyQuota
// and FeatureUsage counters.
//
// DailyQuota is deliberately read-then-write (GetDailyQuota at admission,
// SaveDailyQuota at commit). Two concurrent requests for the same user can
// interleave between the two calls and undercount; see DESIGN.md before
// "fixing" this here.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-outreach-backend/internal/domain"
)

// GetDailyQuota returns the user's quota row for day. A missing row is not an
// error: a zeroed DailyQuota is returned so callers treat "never generated
// today" and "count = 0" identically.
func GetDailyQuota(ctx context.Context, db *gorm.DB, userID, day string) (*domain.DailyQuota, error) {
	var q domain.DailyQuota
	err := db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.DailyQuota{UserID: userID, Day: day, Count: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// SaveDailyQuota persists an absolute count for (userID, day), creating the
// row on first use per day.
func SaveDailyQuota(ctx context.Context, db *gorm.DB, userID, day string, count int) error {
	q := domain.DailyQuota{
		UserID:    userID,
		Day:       day,
		Count:     count,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{"count": count}),
	}).Create(&q).Error
}

// IncrementFeatureUsage adds n to the weekly usage counter for (userID,
// feature, weekStart), creating the row when absent. The increment is a single
// upsert so concurrent requests cannot lose updates.
func IncrementFeatureUsage(ctx context.Context, db *gorm.DB, userID, feature, weekStart string, n int) error {
	if n <= 0 {
		return nil
	}
	row := domain.FeatureUsage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Feature:   feature,
		WeekStart: weekStart,
		Count:     n,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "feature"}, {Name: "week_start"}},
		DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("count + ?", n)}),
	}).Create(&row).Error
}

// GetFeatureUsage returns the weekly counter, zeroed when absent.
func GetFeatureUsage(ctx context.Context, db *gorm.DB, userID, feature, weekStart string) (*domain.FeatureUsage, error) {
	var u domain.FeatureUsage
	err := db.WithContext(ctx).
		Where("user_id = ? AND feature = ? AND week_start = ?", userID, feature, weekStart).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.FeatureUsage{UserID: userID, Feature: feature, WeekStart: weekStart, Count: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
