// Batch orchestration.
//
// Pipeline drives a whole generation request: quota admission, input and
// cache resolution, sequential fixed-size batches against the generation
// service, persistence, event emission, and the final quota/usage commit.
//
// Groups run strictly sequentially. That keeps the event stream ordered
// without synchronization and makes the end-of-request accounting
// deterministic: the only blocking operation is the generation call itself.
// Within a group, persistence always precedes emission, so a consumer that
// disconnects mid-stream never loses committed work — the producer just stops
// issuing further generation calls.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-outreach-backend/internal/domain"
	"github.com/tbourn/go-outreach-backend/internal/generation"
	"github.com/tbourn/go-outreach-backend/internal/repo"
	"github.com/tbourn/go-outreach-backend/internal/stream"
)

// DefaultBatchSize is used when the configured group size is not positive.
const DefaultBatchSize = 5

// MessageWriter is the persistence contract for draft rows. The repo package
// provides the production implementation; tests inject fakes.
type MessageWriter interface {
	FindCachedMessage(ctx context.Context, db *gorm.DB, userID, prospectID, instructions, day string) (*domain.GeneratedMessage, error)
	CreateGeneratedMessage(ctx context.Context, db *gorm.DB, m *domain.GeneratedMessage) (*domain.GeneratedMessage, error)
	UpdateGeneratedMessage(ctx context.Context, db *gorm.DB, id, userID, content, subject string, detail domain.MessageDetail) error
}

// writerShim adapts the repo free functions to MessageWriter.
type writerShim struct{}

func (writerShim) FindCachedMessage(ctx context.Context, db *gorm.DB, userID, prospectID, instructions, day string) (*domain.GeneratedMessage, error) {
	return repo.FindCachedMessage(ctx, db, userID, prospectID, instructions, day)
}

func (writerShim) CreateGeneratedMessage(ctx context.Context, db *gorm.DB, m *domain.GeneratedMessage) (*domain.GeneratedMessage, error) {
	return repo.CreateGeneratedMessage(ctx, db, m)
}

func (writerShim) UpdateGeneratedMessage(ctx context.Context, db *gorm.DB, id, userID, content, subject string, detail domain.MessageDetail) error {
	return repo.UpdateGeneratedMessage(ctx, db, id, userID, content, subject, detail)
}

// GenerateParams is the application-level shape of a generate request.
type GenerateParams struct {
	UserID             string
	CustomInstructions string
	ProspectIDs        []string
	MentionJob         bool
}

// RegenerateParams is the application-level shape of a regenerate request.
// AutoGenerate and Feedback are mutually exclusive inputs: feedback text wins
// when present, otherwise the diversity selector varies the inputs.
type RegenerateParams struct {
	UserID             string
	MessageIDs         []string
	AutoGenerate       bool
	Feedback           string
	CustomInstructions string
	MentionJob         bool
}

// Pipeline coordinates one generation or regeneration request end to end.
type Pipeline struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Resolver assembles the working set.
	Resolver *Resolver
	// Quota gates admission and commits the final count.
	Quota *QuotaService
	// Writer persists draft rows.
	Writer MessageWriter
	// Generator is the external text-generation service.
	Generator generation.Client
	// Picker supplies the regeneration diversity choices.
	Picker Picker
	// BatchSize caps how many prospects go into one generation call.
	BatchSize int
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewPipeline constructs a Pipeline bound to the repo package with a seeded
// random picker.
func NewPipeline(db *gorm.DB, quota *QuotaService, gen generation.Client, batchSize int) *Pipeline {
	return &Pipeline{
		DB:        db,
		Resolver:  NewResolver(db),
		Quota:     quota,
		Writer:    writerShim{},
		Generator: gen,
		Picker:    NewRandPicker(),
		BatchSize: batchSize,
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// run bundles the state shared by both entry points.
type run struct {
	userID       string
	set          *ResolvedSet
	variant      generation.Variant
	instructions string
	feedback     string
	autoDiverse  bool // regeneration with no feedback: vary inputs randomly
	regenerate   bool // update rows in place instead of inserting
	day          string
	week         string
	used         int // quota count at admission
}

// Generate runs the first-generation pipeline and pushes events to emit.
//
// Fatal errors (*QuotaExceededError, ErrMissingProfile) are returned before
// anything is emitted so the transport can answer with a plain error
// response. Once streaming starts the method always drives the request to a
// complete event and returns nil.
func (p *Pipeline) Generate(ctx context.Context, params GenerateParams, emit stream.Emitter) error {
	tr := otel.Tracer("services/Pipeline")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("user.id", params.UserID),
			attribute.Int("prospects.requested", len(params.ProspectIDs)),
		),
	)
	defer span.End()

	now := p.now()
	day := domain.DayKey(now)

	used, err := p.Quota.CheckAndReserve(ctx, params.UserID, day)
	if err != nil {
		var qe *QuotaExceededError
		if errors.As(err, &qe) {
			quotaRejections.Inc()
		}
		return err
	}

	instructions := strings.TrimSpace(params.CustomInstructions)
	set, err := p.Resolver.ResolveForGeneration(ctx, params.UserID, params.ProspectIDs, instructions, day)
	if err != nil {
		return err
	}

	return p.stream(ctx, run{
		userID:       params.UserID,
		set:          set,
		variant:      generation.VariantFor(params.MentionJob),
		instructions: instructions,
		day:          day,
		week:         domain.WeekStartKey(now),
		used:         used,
	}, emit)
}

// Regenerate reworks existing drafts in place and pushes events to emit. The
// structure is identical to Generate; the differences are the input set
// (drafts instead of prospects), in-place persistence, and the diversity
// selection when no feedback text is supplied.
func (p *Pipeline) Regenerate(ctx context.Context, params RegenerateParams, emit stream.Emitter) error {
	tr := otel.Tracer("services/Pipeline")
	ctx, span := tr.Start(ctx, "Regenerate",
		trace.WithAttributes(
			attribute.String("user.id", params.UserID),
			attribute.Int("messages.requested", len(params.MessageIDs)),
		),
	)
	defer span.End()

	now := p.now()
	day := domain.DayKey(now)

	used, err := p.Quota.CheckAndReserve(ctx, params.UserID, day)
	if err != nil {
		var qe *QuotaExceededError
		if errors.As(err, &qe) {
			quotaRejections.Inc()
		}
		return err
	}

	set, err := p.Resolver.ResolveForRegeneration(ctx, params.UserID, params.MessageIDs)
	if err != nil {
		return err
	}

	feedback := strings.TrimSpace(params.Feedback)
	return p.stream(ctx, run{
		userID:       params.UserID,
		set:          set,
		variant:      generation.VariantFor(params.MentionJob),
		instructions: strings.TrimSpace(params.CustomInstructions),
		feedback:     feedback,
		autoDiverse:  params.AutoGenerate && feedback == "",
		regenerate:   true,
		day:          day,
		week:         domain.WeekStartKey(now),
		used:         used,
	}, emit)
}

// stream processes a resolved set: cached items first, then sequential
// batches, then the quota commit, usage record, and terminal event.
func (p *Pipeline) stream(ctx context.Context, r run, emit stream.Emitter) error {
	queue := r.set.Queue

	// Clamp the queue to the remaining daily allowance. Items beyond it are
	// counted as requested but never processed or emitted.
	allowance := p.Quota.Limit - r.used
	if allowance < 0 {
		allowance = 0
	}
	if len(queue) > allowance {
		queue = queue[:allowance]
	}

	var (
		total      = r.set.Requested
		generated  = 0
		newly      = 0
		processed  = 0
		remaining  = len(queue)
		clientGone = false
	)

	// emitOr latches consumer loss: after the first failed write we keep
	// persisting but stop talking to the generation service and the client.
	emitOr := func(f func() error) {
		if clientGone {
			return
		}
		if err := f(); err != nil {
			clientGone = true
			log.Warn().Str("user_id", r.userID).Msg("stream consumer disconnected; finishing without emission")
		}
	}

	emitOr(func() error {
		return emit.Status(stream.StatusEvent{Total: total, Generated: generated, Remaining: remaining, Processed: processed})
	})

	// Cached drafts go out immediately, before any batch runs.
	for _, item := range r.set.Cached {
		ev := messageEvent(item, item.Existing, true)
		pipelineMessages.WithLabelValues("cache").Inc()
		generated++
		emitOr(func() error { return emit.Message(ev) })
	}

	batch := p.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	for start := 0; start < len(queue); start += batch {
		if clientGone || ctx.Err() != nil {
			break
		}
		end := start + batch
		if end > len(queue) {
			end = len(queue)
		}
		group := queue[start:end]

		drafts, err := p.generateGroup(ctx, r, group)
		processed += len(group)
		remaining -= len(group)
		if err != nil {
			// Batch-scoped failure: the whole group's drafts are discarded,
			// the request continues with the next group.
			log.Warn().
				Err(err).
				Str("user_id", r.userID).
				Int("group_size", len(group)).
				Msg("generation group failed")
			emitOr(func() error {
				return emit.Status(stream.StatusEvent{Total: total, Generated: generated, Remaining: remaining, Processed: processed})
			})
			continue
		}

		for i := range group {
			ev, isNew, perr := p.persist(ctx, r, group[i], drafts[i])
			if perr != nil {
				// Item-scoped failure: logged, omitted from the stream.
				log.Error().
					Err(perr).
					Str("user_id", r.userID).
					Str("prospect_id", group[i].Prospect.ID).
					Msg("failed to persist generated message")
				continue
			}
			if isNew {
				newly++
				pipelineMessages.WithLabelValues("new").Inc()
			} else {
				pipelineMessages.WithLabelValues("cache").Inc()
			}
			generated++
			emitOr(func() error { return emit.Message(ev) })
		}

		emitOr(func() error {
			return emit.Status(stream.StatusEvent{Total: total, Generated: generated, Remaining: remaining, Processed: processed})
		})
	}

	// Quota commit and usage record happen even when the consumer is gone:
	// the generation work was done and must be accounted for.
	committed, err := p.Quota.Commit(ctx, r.userID, r.day, newly)
	if err != nil {
		log.Error().Err(err).Str("user_id", r.userID).Msg("quota commit failed")
		committed = r.used + newly
	}
	if err := p.Quota.RecordUsage(ctx, r.userID, r.week, newly); err != nil {
		log.Error().Err(err).Str("user_id", r.userID).Msg("usage record failed")
	}

	quotaRemaining := p.Quota.Limit - committed
	if quotaRemaining < 0 {
		quotaRemaining = 0
	}
	emitOr(func() error {
		return emit.Complete(stream.CompleteEvent{
			Total:          total,
			Generated:      generated,
			NewlyGenerated: newly,
			Quota: stream.QuotaView{
				Used:      committed,
				Limit:     p.Quota.Limit,
				Remaining: quotaRemaining,
			},
		})
	})
	return nil
}

// generateGroup builds one combined payload for the group, invokes the
// generation service once, and maps the positional response back onto the
// group. The response array is trusted to be in input order; only its length
// is validated.
func (p *Pipeline) generateGroup(ctx context.Context, r run, group []WorkItem) ([]generation.Draft, error) {
	highlights := r.set.Highlights
	if r.autoDiverse {
		highlights = pickHighlightLine(highlights, p.Picker)
	}

	items := make([]generation.PayloadItem, 0, len(group))
	for _, it := range group {
		chs := it.Challenges
		if r.autoDiverse {
			chs = pickOneChallenge(chs, p.Picker)
		}
		texts := make([]string, 0, len(chs))
		for _, ch := range chs {
			texts = append(texts, ch.Text)
		}
		items = append(items, generation.PayloadItem{
			Company:          it.Prospect.Company,
			JobTitle:         it.Prospect.JobTitle,
			Location:         it.Prospect.Location,
			ContactFirstName: ContactFirstName(it.Match.ContactName),
			Challenges:       texts,
		})
	}

	payload, err := generation.BuildBatchPayload(highlights, items)
	if err != nil {
		pipelineBatches.WithLabelValues("parse_failed").Inc()
		return nil, err
	}

	system := generation.SystemPrompt(r.variant, r.instructions, r.feedback)
	raw, err := p.Generator.Complete(ctx, system, payload)
	if err != nil {
		pipelineBatches.WithLabelValues("generation_failed").Inc()
		return nil, err
	}

	drafts, err := generation.ParseBatchResponse(raw, len(group))
	if err != nil {
		pipelineBatches.WithLabelValues("parse_failed").Inc()
		return nil, err
	}
	pipelineBatches.WithLabelValues("ok").Inc()
	return drafts, nil
}

// persist writes one draft and returns its message event. On the generate
// path it re-checks the cache key immediately before insert; a row that
// appeared since resolution is reused instead of inserted again. On the
// regenerate path it rewrites the stored row in place.
func (p *Pipeline) persist(ctx context.Context, r run, item WorkItem, d generation.Draft) (stream.MessageEvent, bool, error) {
	detail := domain.MessageDetail{
		Subject:           d.Subject,
		SelectedHighlight: d.SelectedHighlight,
		SelectedChallenge: d.SelectedChallenge,
	}

	if r.regenerate {
		err := p.Writer.UpdateGeneratedMessage(ctx, p.DB, item.Existing.ID, r.userID, d.Message, d.Subject, detail)
		if err != nil {
			return stream.MessageEvent{}, false, err
		}
		updated := *item.Existing
		updated.Content = d.Message
		updated.Subject = d.Subject
		updated.Detail = detail
		return messageEvent(item, &updated, false), true, nil
	}

	existing, err := p.Writer.FindCachedMessage(ctx, p.DB, r.userID, item.Prospect.ID, r.instructions, r.day)
	if err != nil {
		return stream.MessageEvent{}, false, err
	}
	if existing != nil {
		// A concurrent request won the insert; reuse its row.
		return messageEvent(item, existing, true), false, nil
	}

	m := &domain.GeneratedMessage{
		UserID:             r.userID,
		ProspectID:         item.Prospect.ID,
		Content:            d.Message,
		Subject:            d.Subject,
		CustomInstructions: r.instructions,
		GenerationDay:      r.day,
		Detail:             detail,
	}
	created, err := p.Writer.CreateGeneratedMessage(ctx, p.DB, m)
	if err != nil {
		return stream.MessageEvent{}, false, err
	}
	return messageEvent(item, created, false), true, nil
}

// messageEvent shapes the externally visible message frame. Cached and fresh
// drafts share the same shape; only the cached flag differs.
func messageEvent(item WorkItem, m *domain.GeneratedMessage, cached bool) stream.MessageEvent {
	return stream.MessageEvent{
		Prospect: stream.ProspectView{
			ID:       item.Prospect.ID,
			Company:  item.Prospect.Company,
			JobTitle: item.Prospect.JobTitle,
			Location: item.Prospect.Location,
		},
		Match: stream.MatchView{
			Name:  item.Match.ContactName,
			Title: item.Match.ContactTitle,
		},
		Content:   m.Content,
		Subject:   m.Subject,
		MessageID: m.ID,
		Cached:    cached,
	}
}
