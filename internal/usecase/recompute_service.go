package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/trace"

	"github.com/gridline/spreadpool/internal/domain/game"
	"github.com/gridline/spreadpool/internal/domain/jobscheduler"
	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	"github.com/gridline/spreadpool/internal/platform/logging"
)

// JobQueue delivers a payload back to an internal job endpoint after an
// optional delay. Deduplication IDs collapse bursts of identical work.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

const (
	jobPathRecomputeWeek   = "/v1/internal/jobs/recompute-week"
	jobPathRecomputeSeason = "/v1/internal/jobs/recompute-season"
	jobPathSyncWeek        = "/v1/internal/jobs/sync-week"
)

type RecomputeConfig struct {
	// Debounce buckets dedup IDs so repeated invalidations inside the
	// window collapse into one queued recompute.
	Debounce time.Duration
	// Inline runs recomputes in-process on a background goroutine instead
	// of queueing. Used when no queue is deployed.
	Inline bool
}

// RecomputeService connects grading writes to leaderboard rebuilds. An
// invalidation marks periods stale and schedules recomputes; it never makes
// the caller wait for the rebuild itself.
type RecomputeService struct {
	standings    *StandingsService
	grading      *GradingService
	gameRepo     game.Repository
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          RecomputeConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewRecomputeService(
	standings *StandingsService,
	gameRepo game.Repository,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg RecomputeConfig,
	logger *logging.Logger,
) *RecomputeService {
	if queue == nil {
		queue = NewNoopJobQueue()
		cfg.Inline = true
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecomputeService{
		standings:    standings,
		gameRepo:     gameRepo,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// BindGrading wires the grading service in after construction. Grading
// holds this service as its invalidator, so the two cannot be built in one
// pass.
func (s *RecomputeService) BindGrading(grading *GradingService) {
	s.grading = grading
}

// InvalidateUserWeek marks the week and season boards stale after picks
// changed for the given users. Week 0 invalidates the season board only.
// The call returns immediately; scheduling failures are logged, never
// propagated to the write that triggered them.
func (s *RecomputeService) InvalidateUserWeek(ctx context.Context, season, week int, userIDs []string) {
	if season <= 0 || week < 0 {
		return
	}

	periods := make([]leaderboard.Period, 0, 2)
	if week > 0 {
		periods = append(periods, leaderboard.WeekPeriod(season, week))
	}
	periods = append(periods, leaderboard.SeasonPeriod(season))

	for _, period := range periods {
		if s.cfg.Inline {
			s.runInline(ctx, period)
			continue
		}
		s.enqueueRecompute(ctx, period, userIDs)
	}
}

// runInline executes the recompute on a detached goroutine. The singleflight
// inside the standings service absorbs duplicate inline runs.
func (s *RecomputeService) runInline(ctx context.Context, period leaderboard.Period) {
	bg := context.WithoutCancel(ctx)
	go func() {
		var catcher panics.Catcher
		catcher.Try(func() {
			var err error
			if period.IsSeason() {
				_, err = s.standings.RecomputeSeason(bg, period.Season)
			} else {
				_, err = s.standings.RecomputeWeek(bg, period.Season, period.Week)
			}
			if err != nil {
				s.logger.WarnContext(bg, "inline recompute failed",
					"period", period.Key(),
					"error", err,
				)
			}
		})
		if recovered := catcher.Recovered(); recovered != nil {
			s.logger.ErrorContext(bg, "inline recompute panicked",
				"period", period.Key(),
				"panic", recovered.String(),
			)
		}
	}()
}

func (s *RecomputeService) enqueueRecompute(ctx context.Context, period leaderboard.Period, userIDs []string) {
	now := s.now().UTC()
	jobName := "recompute-week"
	jobPath := jobPathRecomputeWeek
	if period.IsSeason() {
		jobName = "recompute-season"
		jobPath = jobPathRecomputeSeason
	}

	dedupID := dedupKey(jobName, period.Key(), now.Add(s.cfg.Debounce), s.cfg.Debounce)
	payload := map[string]any{
		"season":      period.Season,
		"week":        period.Week,
		"dispatch_id": dedupID,
		"user_ids":    userIDs,
	}

	if err := s.queue.Enqueue(ctx, jobPath, payload, s.cfg.Debounce, dedupID); err != nil {
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dedupID,
			JobName:      jobName,
			JobPath:      jobPath,
			PeriodKey:    period.Key(),
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
			OccurredAt:   now,
		})
		s.logger.WarnContext(ctx, "enqueue recompute failed",
			"period", period.Key(),
			"error", err,
		)
		return
	}

	s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    jobName,
		JobPath:    jobPath,
		PeriodKey:  period.Key(),
		Status:     jobscheduler.StatusSent,
		Payload:    payload,
		OccurredAt: now,
	})
}

// RunWeekRecompute executes a queued week recompute and records the
// dispatch outcome.
func (s *RecomputeService) RunWeekRecompute(ctx context.Context, season, week int, dispatchID string) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RunWeekRecompute")
	defer span.End()

	result, err := s.standings.RecomputeWeek(ctx, season, week)
	s.recordRunOutcome(ctx, "recompute-week", jobPathRecomputeWeek, leaderboard.WeekPeriod(season, week), dispatchID, err)
	return result, err
}

// RunSeasonRecompute executes a queued season recompute and records the
// dispatch outcome.
func (s *RecomputeService) RunSeasonRecompute(ctx context.Context, season int, dispatchID string) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RunSeasonRecompute")
	defer span.End()

	result, err := s.standings.RecomputeSeason(ctx, season)
	s.recordRunOutcome(ctx, "recompute-season", jobPathRecomputeSeason, leaderboard.SeasonPeriod(season), dispatchID, err)
	return result, err
}

// RunWeekSync pulls the score feed for a week and records the dispatch
// outcome. Grading and invalidation ride on the feed application itself.
func (s *RecomputeService) RunWeekSync(ctx context.Context, season, week int, dispatchID string) (WeekSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RunWeekSync")
	defer span.End()

	if s.grading == nil {
		return WeekSyncResult{}, fmt.Errorf("%w: grading service is not bound", ErrDependencyUnavailable)
	}

	result, err := s.grading.SyncWeek(ctx, season, week)
	s.recordRunOutcome(ctx, "sync-week", jobPathSyncWeek, leaderboard.WeekPeriod(season, week), dispatchID, err)
	return result, err
}

// RebuildWeek is the admin full rebuild: regrade every game of the week
// from stored scores, then recompute the week and season boards. A game
// that fails to regrade is logged and skipped.
func (s *RecomputeService) RebuildWeek(ctx context.Context, season, week int) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RebuildWeek")
	defer span.End()

	if season <= 0 || week <= 0 {
		return RecomputeResult{}, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}

	if s.grading == nil {
		return RecomputeResult{}, fmt.Errorf("%w: grading service is not bound", ErrDependencyUnavailable)
	}

	games, err := s.gameRepo.ListByWeek(ctx, season, week)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("list games for rebuild: %w", err)
	}
	for _, item := range games {
		if !item.Gradable() {
			continue
		}
		if err := s.grading.RegradeGame(ctx, item.ID); err != nil {
			s.logger.WarnContext(ctx, "regrade game during rebuild failed",
				"game_id", item.ID,
				"error", err,
			)
		}
	}

	result, err := s.standings.RecomputeWeek(ctx, season, week)
	if err != nil {
		return RecomputeResult{}, err
	}
	if _, err := s.standings.RecomputeSeason(ctx, season); err != nil {
		return result, err
	}
	return result, nil
}

func (s *RecomputeService) recordRunOutcome(ctx context.Context, jobName, jobPath string, period leaderboard.Period, dispatchID string, runErr error) {
	if strings.TrimSpace(dispatchID) == "" {
		return
	}
	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    jobName,
		JobPath:    jobPath,
		PeriodKey:  period.Key(),
		Status:     jobscheduler.StatusCompleted,
		OccurredAt: s.now().UTC(),
	}
	if runErr != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = runErr.Error()
	}
	s.recordDispatchEvent(ctx, event)
}

func (s *RecomputeService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}

func dedupKey(prefix, periodKey string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	periodKey = sanitizeDedupSegment(periodKey)
	return prefix + "-" + periodKey + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
