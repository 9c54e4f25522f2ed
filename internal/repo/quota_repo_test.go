package repo

import (
	"context"
	"testing"
)

func TestGetDailyQuota_MissingRowIsZero(t *testing.T) {
	db := testDB(t)
	q, err := GetDailyQuota(context.Background(), db, "u1", "2026-08-27")
	if err != nil {
		t.Fatalf("GetDailyQuota: %v", err)
	}
	if q.UserID != "u1" || q.Day != "2026-08-27" || q.Count != 0 {
		t.Fatalf("got %+v, want zeroed row", q)
	}
}

func TestSaveDailyQuota_Upsert(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := SaveDailyQuota(ctx, db, "u1", "2026-08-27", 5); err != nil {
		t.Fatalf("first save: %v", err)
	}
	q, _ := GetDailyQuota(ctx, db, "u1", "2026-08-27")
	if q.Count != 5 {
		t.Fatalf("count = %d, want 5", q.Count)
	}

	// Second save for the same (user, day) replaces the count, no new row.
	if err := SaveDailyQuota(ctx, db, "u1", "2026-08-27", 9); err != nil {
		t.Fatalf("second save: %v", err)
	}
	q, _ = GetDailyQuota(ctx, db, "u1", "2026-08-27")
	if q.Count != 9 {
		t.Fatalf("count = %d, want 9", q.Count)
	}

	// Days are independent buckets.
	if err := SaveDailyQuota(ctx, db, "u1", "2026-08-28", 1); err != nil {
		t.Fatalf("next-day save: %v", err)
	}
	q, _ = GetDailyQuota(ctx, db, "u1", "2026-08-27")
	if q.Count != 9 {
		t.Fatalf("previous day disturbed: %d", q.Count)
	}
}

func TestIncrementFeatureUsage_Accumulates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := IncrementFeatureUsage(ctx, db, "u1", "outreach_generation", "2026-08-24", 3); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if err := IncrementFeatureUsage(ctx, db, "u1", "outreach_generation", "2026-08-24", 2); err != nil {
		t.Fatalf("second increment: %v", err)
	}

	u, err := GetFeatureUsage(ctx, db, "u1", "outreach_generation", "2026-08-24")
	if err != nil {
		t.Fatalf("GetFeatureUsage: %v", err)
	}
	if u.Count != 5 {
		t.Fatalf("count = %d, want 5", u.Count)
	}
}

func TestIncrementFeatureUsage_ZeroIsNoop(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := IncrementFeatureUsage(ctx, db, "u1", "outreach_generation", "2026-08-24", 0); err != nil {
		t.Fatalf("zero increment: %v", err)
	}
	u, err := GetFeatureUsage(ctx, db, "u1", "outreach_generation", "2026-08-24")
	if err != nil {
		t.Fatalf("GetFeatureUsage: %v", err)
	}
	if u.Count != 0 {
		t.Fatalf("count = %d, want 0", u.Count)
	}
}
