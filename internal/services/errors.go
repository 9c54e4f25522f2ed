// Package services implements the outreach generation pipeline: quota
// gating, input/cache resolution, batch orchestration against the generation
// service, persistence, and event emission. This file centralizes the
// service-level error taxonomy.
//
// Only QuotaExceededError and ErrMissingProfile are fatal: they abort the
// request before any streaming begins and are translated to HTTP statuses by
// the handler layer. Everything else degrades gracefully inside the stream —
// per-prospect skips are silent, per-group failures are logged and skipped,
// and the request still ends with a complete event.
package services

import (
	"errors"
	"fmt"
)

// ErrMissingProfile is returned when the candidate has no highlight text.
// The precondition is global: without highlights nothing can be generated,
// so the whole request fails before streaming.
var ErrMissingProfile = errors.New("candidate profile has no highlights")

// ErrNoMessages is returned by the regeneration path when none of the
// requested message ids belong to the user.
var ErrNoMessages = errors.New("no messages found for the given ids")

// ErrMessageNotFound indicates that the requested draft does not exist or is
// not accessible to the current user.
var ErrMessageNotFound = errors.New("message not found")

// QuotaExceededError rejects a request whose user has exhausted the daily
// generation quota. It carries the numbers the 429 response body needs.
type QuotaExceededError struct {
	Limit int
	Used  int
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily generation quota exceeded (%d/%d)", e.Used, e.Limit)
}

// Remaining returns the unused allowance, never negative.
func (e *QuotaExceededError) Remaining() int {
	if e.Used >= e.Limit {
		return 0
	}
	return e.Limit - e.Used
}
