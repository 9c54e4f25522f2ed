// Package domain defines the persistence models for the outreach pipeline:
// prospects and their selected contacts, conversation challenges, candidate
// profiles, generated message drafts, and the quota/usage counters. These
// types are mapped with GORM and form the core data layer of the application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Prospect represents a saved job/company opportunity the user wants outreach
// generated for. Prospects are produced by an external search/matching
// subsystem; this service only reads them.
//
// Company and JobTitle are the required generation inputs; a prospect missing
// either is excluded from generation.
type Prospect struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      string         `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_prospects"`
	Company     string         `json:"company"     gorm:"type:varchar(255);not null"`
	JobTitle    string         `json:"job_title"   gorm:"type:varchar(255);not null"`
	Location    string         `json:"location"    gorm:"type:varchar(255)"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Prospect.
func (Prospect) TableName() string { return "prospects" }

// ProspectMatch records the contact person selected as the outreach recipient
// for a prospect. A prospect without a match cannot be generated for.
type ProspectMatch struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	ProspectID   string         `json:"prospect_id"   gorm:"type:char(36);not null;uniqueIndex:ux_match_prospect"`
	ContactName  string         `json:"contact_name"  gorm:"type:varchar(255);not null"`
	ContactTitle string         `json:"contact_title" gorm:"type:varchar(255)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`

	// Prospect is the opportunity this contact was matched against.
	Prospect Prospect `json:"-" gorm:"foreignKey:ProspectID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ProspectMatch.
func (ProspectMatch) TableName() string { return "prospect_matches" }

// Challenge is a plausible business pain-point attached to a prospect, used
// as a conversational hook in generated messages. A prospect has zero or more;
// zero excludes it from generation.
type Challenge struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	ProspectID  string         `json:"prospect_id"  gorm:"type:char(36);not null;index:idx_prospect_challenges"`
	Text        string         `json:"text"         gorm:"type:text;not null"`
	WhyRelevant string         `json:"why_relevant" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`

	Prospect Prospect `json:"-" gorm:"foreignKey:ProspectID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Challenge.
func (Challenge) TableName() string { return "challenges" }

// CandidateProfile holds the user's highlight text: one skill/achievement per
// line. The pipeline requires a non-empty profile before any generation.
type CandidateProfile struct {
	UserID     string         `json:"user_id"    gorm:"type:varchar(64);primaryKey"`
	Highlights string         `json:"highlights" gorm:"type:text;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for CandidateProfile.
func (CandidateProfile) TableName() string { return "candidate_profiles" }

// MessageDetail captures the structured pieces of a generated draft: the
// subject line and which highlight/challenge the generator chose to build the
// message around. Stored alongside the draft so regeneration can vary them.
type MessageDetail struct {
	Subject           string `json:"subject"            gorm:"column:subject;type:varchar(255)"`
	SelectedHighlight string `json:"selected_highlight" gorm:"column:selected_highlight;type:text"`
	SelectedChallenge string `json:"selected_challenge" gorm:"column:selected_challenge;type:text"`
}

// GeneratedMessage is a persisted outreach draft.
//
// The tuple (user_id, prospect_id, custom_instructions, generation_day) is the
// cache key: at most one row should exist per tuple, and a same-day repeat
// request reuses the stored row instead of calling the generation service.
// The index below supports the lookup; it is intentionally non-unique — the
// check-then-insert race is a documented gap (see DESIGN.md).
//
// Regeneration rewrites Content/Subject/Detail in place on the same row; rows
// are never deleted by the pipeline.
type GeneratedMessage struct {
	ID                 string         `json:"id"                  gorm:"type:char(36);primaryKey"`
	UserID             string         `json:"user_id"             gorm:"type:varchar(64);not null;index:idx_msg_cache_key,priority:1"`
	ProspectID         string         `json:"prospect_id"         gorm:"type:char(36);not null;index:idx_msg_cache_key,priority:2"`
	Content            string         `json:"content"             gorm:"type:text;not null"`
	Subject            string         `json:"subject"             gorm:"type:varchar(255)"`
	CustomInstructions string         `json:"custom_instructions" gorm:"type:text;index:idx_msg_cache_key,priority:3"`
	GenerationDay      string         `json:"generation_day"      gorm:"type:char(10);not null;index:idx_msg_cache_key,priority:4"` // "2006-01-02"
	Detail             MessageDetail  `json:"detail"              gorm:"embedded;embeddedPrefix:detail_"`
	Approved           bool           `json:"approved"            gorm:"not null;default:false"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-"                   gorm:"index"`

	Prospect Prospect `json:"-" gorm:"foreignKey:ProspectID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for GeneratedMessage.
func (GeneratedMessage) TableName() string { return "generated_messages" }

// DailyQuota counts how many messages a user generated on a given day. A row
// is created on first use per day and incremented thereafter; it is never
// decremented.
type DailyQuota struct {
	UserID    string    `json:"user_id" gorm:"type:varchar(64);primaryKey"`
	Day       string    `json:"day"     gorm:"type:char(10);primaryKey"` // "2006-01-02"
	Count     int       `json:"count"   gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for DailyQuota.
func (DailyQuota) TableName() string { return "daily_quotas" }

// FeatureUsage is a weekly aggregate counter per user and feature, incremented
// by the number of newly generated (non-cached) messages in a request.
type FeatureUsage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_usage_user_feature_week,priority:1"`
	Feature   string    `json:"feature"    gorm:"type:varchar(64);not null;uniqueIndex:ux_usage_user_feature_week,priority:2"`
	WeekStart string    `json:"week_start" gorm:"type:char(10);not null;uniqueIndex:ux_usage_user_feature_week,priority:3"` // Monday, "2006-01-02"
	Count     int       `json:"count"      gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for FeatureUsage.
func (FeatureUsage) TableName() string { return "feature_usage" }

// DayKey formats t (in UTC) as the canonical day string used by the cache key
// and the daily quota.
func DayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// WeekStartKey returns the Monday of t's week (UTC) in day-key format, used to
// bucket FeatureUsage rows.
func WeekStartKey(t time.Time) string {
	t = t.UTC()
	wd := int(t.Weekday())
	if wd == 0 { // Sunday belongs to the week that started the previous Monday
		wd = 7
	}
	return t.AddDate(0, 0, -(wd - 1)).Format("2006-01-02")
}
