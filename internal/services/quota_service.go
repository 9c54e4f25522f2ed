// Quota ledger and usage recorder.
//
// The daily quota is check-then-commit across a whole request: CheckAndReserve
// admits or rejects before any resolution work, Commit persists the final
// count once the batches are done. The two steps are separate reads/writes
// with no lock — concurrent requests from the same user can undercount. That
// gap is deliberate and documented (DESIGN.md); do not fold this into an
// atomic increment without revisiting the completion-event accounting.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-outreach-backend/internal/domain"
	"github.com/tbourn/go-outreach-backend/internal/repo"
)

// FeatureOutreach is the usage-ledger feature key for this pipeline.
const FeatureOutreach = "outreach_generation"

// QuotaRepo is the persistence contract the quota service needs. The repo
// package provides the production implementation; tests inject fakes.
type QuotaRepo interface {
	GetDailyQuota(ctx context.Context, db *gorm.DB, userID, day string) (*domain.DailyQuota, error)
	SaveDailyQuota(ctx context.Context, db *gorm.DB, userID, day string, count int) error
	IncrementFeatureUsage(ctx context.Context, db *gorm.DB, userID, feature, weekStart string, n int) error
}

// quotaRepoShim adapts the repo free functions to QuotaRepo.
type quotaRepoShim struct{}

func (quotaRepoShim) GetDailyQuota(ctx context.Context, db *gorm.DB, userID, day string) (*domain.DailyQuota, error) {
	return repo.GetDailyQuota(ctx, db, userID, day)
}

func (quotaRepoShim) SaveDailyQuota(ctx context.Context, db *gorm.DB, userID, day string, count int) error {
	return repo.SaveDailyQuota(ctx, db, userID, day, count)
}

func (quotaRepoShim) IncrementFeatureUsage(ctx context.Context, db *gorm.DB, userID, feature, weekStart string, n int) error {
	return repo.IncrementFeatureUsage(ctx, db, userID, feature, weekStart, n)
}

// QuotaService gates generation against the per-user daily ceiling and
// records weekly feature usage at the end of each request.
type QuotaService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the quota repository used by this service.
	Repo QuotaRepo
	// Limit is the hard daily ceiling on newly generated messages.
	Limit int
}

// NewQuotaService constructs a QuotaService bound to the repo package.
func NewQuotaService(db *gorm.DB, limit int) *QuotaService {
	return &QuotaService{DB: db, Repo: quotaRepoShim{}, Limit: limit}
}

// CheckAndReserve admits a request for day, returning the current count. When
// the ceiling is already reached it returns a *QuotaExceededError and the
// request must be rejected before any resolution work.
func (s *QuotaService) CheckAndReserve(ctx context.Context, userID, day string) (int, error) {
	q, err := s.Repo.GetDailyQuota(ctx, s.DB, userID, day)
	if err != nil {
		return 0, err
	}
	if q.Count >= s.Limit {
		return q.Count, &QuotaExceededError{Limit: s.Limit, Used: q.Count}
	}
	return q.Count, nil
}

// Commit persists current+delta at the end of a request cycle and returns the
// new count. Read-then-write, once per request.
func (s *QuotaService) Commit(ctx context.Context, userID, day string, delta int) (int, error) {
	q, err := s.Repo.GetDailyQuota(ctx, s.DB, userID, day)
	if err != nil {
		return 0, err
	}
	next := q.Count + delta
	if err := s.Repo.SaveDailyQuota(ctx, s.DB, userID, day, next); err != nil {
		return 0, err
	}
	return next, nil
}

// RecordUsage bumps the weekly feature counter by the number of newly
// generated (non-cached) messages. Called once per request, after Commit.
func (s *QuotaService) RecordUsage(ctx context.Context, userID, weekStart string, n int) error {
	return s.Repo.IncrementFeatureUsage(ctx, s.DB, userID, FeatureOutreach, weekStart, n)
}
