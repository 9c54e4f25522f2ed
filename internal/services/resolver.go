// Input and cache resolution.
//
// The resolver turns a requested prospect set (or, for regeneration, a set of
// existing drafts) into the pipeline's working set: the candidate highlight
// text, the prospects that actually have a selected contact and at least one
// challenge, and an up-front split into cache hits and the generation queue.
// The cache lookup happens once, for the whole set, so cached drafts can be
// emitted before the first batch runs.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-outreach-backend/internal/domain"
	"github.com/tbourn/go-outreach-backend/internal/repo"
)

// WorkItem is one prospect's bundle of generation inputs. Existing is the
// stored draft: a same-day cache hit on the generate path, or the row to be
// rewritten on the regenerate path.
type WorkItem struct {
	Prospect   domain.Prospect
	Match      domain.ProspectMatch
	Challenges []domain.Challenge
	Existing   *domain.GeneratedMessage
}

// ResolvedSet is the resolver's output: cached items emit immediately, Queue
// goes to the batch orchestrator. Requested counts every prospect (or draft)
// the caller asked about, including ones silently excluded for missing
// match/challenge data.
type ResolvedSet struct {
	Highlights string
	Cached     []WorkItem
	Queue      []WorkItem
	Requested  int
}

// InputRepo is the read-side contract the resolver needs. The repo package
// provides the production implementation; tests inject fakes.
type InputRepo interface {
	GetCandidateProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.CandidateProfile, error)
	ListProspects(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]domain.Prospect, error)
	ListProspectsByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) (map[string]domain.Prospect, error)
	GetMatches(ctx context.Context, db *gorm.DB, prospectIDs []string) (map[string]domain.ProspectMatch, error)
	ListChallenges(ctx context.Context, db *gorm.DB, prospectIDs []string) (map[string][]domain.Challenge, error)
	FindCachedMessage(ctx context.Context, db *gorm.DB, userID, prospectID, instructions, day string) (*domain.GeneratedMessage, error)
	GetMessagesByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]domain.GeneratedMessage, error)
}

// inputRepoShim adapts the repo free functions to InputRepo.
type inputRepoShim struct{}

func (inputRepoShim) GetCandidateProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.CandidateProfile, error) {
	return repo.GetCandidateProfile(ctx, db, userID)
}

func (inputRepoShim) ListProspects(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]domain.Prospect, error) {
	return repo.ListProspects(ctx, db, userID, ids)
}

func (inputRepoShim) ListProspectsByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) (map[string]domain.Prospect, error) {
	return repo.ListProspectsByIDs(ctx, db, userID, ids)
}

func (inputRepoShim) GetMatches(ctx context.Context, db *gorm.DB, prospectIDs []string) (map[string]domain.ProspectMatch, error) {
	return repo.GetMatches(ctx, db, prospectIDs)
}

func (inputRepoShim) ListChallenges(ctx context.Context, db *gorm.DB, prospectIDs []string) (map[string][]domain.Challenge, error) {
	return repo.ListChallenges(ctx, db, prospectIDs)
}

func (inputRepoShim) FindCachedMessage(ctx context.Context, db *gorm.DB, userID, prospectID, instructions, day string) (*domain.GeneratedMessage, error) {
	return repo.FindCachedMessage(ctx, db, userID, prospectID, instructions, day)
}

func (inputRepoShim) GetMessagesByIDs(ctx context.Context, db *gorm.DB, userID string, ids []string) ([]domain.GeneratedMessage, error) {
	return repo.GetMessagesByIDs(ctx, db, userID, ids)
}

// Resolver assembles the pipeline's inputs from the data store.
type Resolver struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the read-side repository used by this resolver.
	Repo InputRepo
}

// NewResolver constructs a Resolver bound to the repo package.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{DB: db, Repo: inputRepoShim{}}
}

// ResolveForGeneration builds the working set for a first-generation request.
// prospectIDs may be empty, meaning "all of the user's prospects". Prospects
// without a match or without challenges are silently excluded; no event is
// ever emitted for them. An empty result after filtering is not an error.
//
// Returns ErrMissingProfile when the candidate has no highlight text.
func (r *Resolver) ResolveForGeneration(ctx context.Context, userID string, prospectIDs []string, instructions, day string) (*ResolvedSet, error) {
	highlights, err := r.highlights(ctx, userID)
	if err != nil {
		return nil, err
	}

	prospects, err := r.Repo.ListProspects(ctx, r.DB, userID, prospectIDs)
	if err != nil {
		return nil, err
	}

	set := &ResolvedSet{Highlights: highlights, Requested: len(prospects)}
	if len(prospects) == 0 {
		return set, nil
	}

	ids := make([]string, 0, len(prospects))
	for _, p := range prospects {
		ids = append(ids, p.ID)
	}
	matches, err := r.Repo.GetMatches(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	challenges, err := r.Repo.ListChallenges(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range prospects {
		if !generatable(p) {
			continue
		}
		m, ok := matches[p.ID]
		if !ok {
			continue
		}
		chs := challenges[p.ID]
		if len(chs) == 0 {
			continue
		}
		item := WorkItem{Prospect: p, Match: m, Challenges: chs}

		cached, err := r.Repo.FindCachedMessage(ctx, r.DB, userID, p.ID, instructions, day)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			item.Existing = cached
			set.Cached = append(set.Cached, item)
			continue
		}
		set.Queue = append(set.Queue, item)
	}
	return set, nil
}

// ResolveForRegeneration builds the working set for a regenerate request. All
// resolvable drafts go to the queue — regeneration always calls the service —
// and each WorkItem carries the stored row so the writer updates it in place.
//
// Drafts whose ids are unknown (or owned by someone else), and drafts whose
// prospect lost its match or challenges, are silently excluded. Returns
// ErrNoMessages when nothing resolves, ErrMissingProfile without highlights.
func (r *Resolver) ResolveForRegeneration(ctx context.Context, userID string, messageIDs []string) (*ResolvedSet, error) {
	highlights, err := r.highlights(ctx, userID)
	if err != nil {
		return nil, err
	}

	msgs, err := r.Repo.GetMessagesByIDs(ctx, r.DB, userID, messageIDs)
	if err != nil {
		return nil, err
	}
	set := &ResolvedSet{Highlights: highlights, Requested: len(messageIDs)}
	if len(msgs) == 0 {
		return nil, ErrNoMessages
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ProspectID)
	}
	prospects, err := r.Repo.ListProspectsByIDs(ctx, r.DB, userID, ids)
	if err != nil {
		return nil, err
	}
	matches, err := r.Repo.GetMatches(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	challenges, err := r.Repo.ListChallenges(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}

	for i := range msgs {
		msg := msgs[i]
		p, ok := prospects[msg.ProspectID]
		if !ok || !generatable(p) {
			continue
		}
		m, ok := matches[p.ID]
		if !ok {
			continue
		}
		chs := challenges[p.ID]
		if len(chs) == 0 {
			continue
		}
		set.Queue = append(set.Queue, WorkItem{
			Prospect:   p,
			Match:      m,
			Challenges: chs,
			Existing:   &msg,
		})
	}
	return set, nil
}

// highlights loads the candidate profile, mapping an absent or blank profile
// to ErrMissingProfile.
func (r *Resolver) highlights(ctx context.Context, userID string) (string, error) {
	p, err := r.Repo.GetCandidateProfile(ctx, r.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrMissingProfile
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(p.Highlights) == "" {
		return "", ErrMissingProfile
	}
	return p.Highlights, nil
}

// generatable reports whether a prospect carries the required fields.
func generatable(p domain.Prospect) bool {
	return strings.TrimSpace(p.Company) != "" && strings.TrimSpace(p.JobTitle) != ""
}

// nameCaser normalizes contact names for prompt payloads ("aNNA" → "Anna").
var nameCaser = cases.Title(language.English)

// ContactFirstName extracts and normalizes the first name from a contact's
// full display name. Falls back to "there" so prompts never address nobody.
func ContactFirstName(fullName string) string {
	fields := strings.Fields(strings.TrimSpace(fullName))
	if len(fields) == 0 {
		return "there"
	}
	return nameCaser.String(strings.ToLower(fields[0]))
}
