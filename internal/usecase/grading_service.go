package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gridline/spreadpool/internal/domain/game"
	"github.com/gridline/spreadpool/internal/domain/pick"
	"github.com/gridline/spreadpool/internal/platform/logging"
)

// GameFeedUpdate is one game row as delivered by the score feed. Spread and
// scores stay nil until the feed publishes them.
type GameFeedUpdate struct {
	GameID    string
	Season    int
	Week      int
	HomeTeam  string
	AwayTeam  string
	Spread    *float64
	HomeScore *int
	AwayScore *int
	Status    string
}

// GameFeedProvider pulls the current state of a week from the upstream
// score feed.
type GameFeedProvider interface {
	ListWeekGames(ctx context.Context, season, week int) ([]GameFeedUpdate, error)
}

// PeriodInvalidator receives the users whose standings went stale after a
// grading write. Implementations must not block the caller on the actual
// recompute.
type PeriodInvalidator interface {
	InvalidateUserWeek(ctx context.Context, season, week int, userIDs []string)
}

type WeekSyncResult struct {
	Season       int `json:"season"`
	Week         int `json:"week"`
	GameCount    int `json:"game_count"`
	UpdatedCount int `json:"updated_count"`
	GradedCount  int `json:"graded_count"`
	FailedCount  int `json:"failed_count"`
}

// GradingService applies feed updates to games and grades the picks riding
// on them. The game write always commits on its own; grading and downstream
// invalidation never roll it back.
type GradingService struct {
	gameRepo    game.Repository
	pickRepo    pick.Repository
	anonRepo    pick.AnonymousRepository
	feed        GameFeedProvider
	invalidator PeriodInvalidator
	logger      *logging.Logger
	now         func() time.Time
}

func NewGradingService(
	gameRepo game.Repository,
	pickRepo pick.Repository,
	anonRepo pick.AnonymousRepository,
	feed GameFeedProvider,
	invalidator PeriodInvalidator,
	logger *logging.Logger,
) *GradingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GradingService{
		gameRepo:    gameRepo,
		pickRepo:    pickRepo,
		anonRepo:    anonRepo,
		feed:        feed,
		invalidator: invalidator,
		logger:      logger,
		now:         time.Now,
	}
}

// ListWeekGames returns the stored slate for one week.
func (s *GradingService) ListWeekGames(ctx context.Context, season, week int) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GradingService.ListWeekGames")
	defer span.End()

	if season <= 0 || week <= 0 {
		return nil, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}

	games, err := s.gameRepo.ListByWeek(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("list games for season=%d week=%d: %w", season, week, err)
	}

	return games, nil
}

// ApplyFeedUpdate merges one feed row into the game store and, once the game
// is complete with scores and a spread, grades every pick on it. A grading
// failure is logged and surfaced through recompute retries, not returned:
// the status write must not depend on downstream work.
func (s *GradingService) ApplyFeedUpdate(ctx context.Context, update GameFeedUpdate) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GradingService.ApplyFeedUpdate")
	defer span.End()

	if strings.TrimSpace(update.GameID) == "" {
		return game.Game{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if update.Season <= 0 || update.Week <= 0 {
		return game.Game{}, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}

	existing, exists, err := s.gameRepo.GetByID(ctx, update.GameID)
	if err != nil {
		return game.Game{}, fmt.Errorf("get game for feed update: %w", err)
	}

	next := game.Game{
		ID:        update.GameID,
		Season:    update.Season,
		Week:      update.Week,
		HomeTeam:  update.HomeTeam,
		AwayTeam:  update.AwayTeam,
		Spread:    update.Spread,
		HomeScore: update.HomeScore,
		AwayScore: update.AwayScore,
		Status:    game.NormalizeStatus(update.Status),
		UpdatedAt: s.now().UTC(),
	}

	if exists {
		// Status only moves forward; a stale or regressing feed row keeps
		// the recorded status while scores and spread still apply.
		if !game.CanTransition(existing.Status, next.Status) {
			next.Status = existing.Status
		}
		if next.Spread == nil {
			next.Spread = existing.Spread
		}
		if next.HomeScore == nil {
			next.HomeScore = existing.HomeScore
		}
		if next.AwayScore == nil {
			next.AwayScore = existing.AwayScore
		}
		if next.HomeTeam == "" {
			next.HomeTeam = existing.HomeTeam
		}
		if next.AwayTeam == "" {
			next.AwayTeam = existing.AwayTeam
		}
	}

	if err := s.gameRepo.Upsert(ctx, next); err != nil {
		return game.Game{}, fmt.Errorf("upsert game from feed update: %w", err)
	}

	if next.Gradable() {
		userIDs, gradeErr := s.gradeGame(ctx, next)
		if gradeErr != nil {
			s.logger.WarnContext(ctx, "grade game after feed update failed",
				"game_id", next.ID,
				"season", next.Season,
				"week", next.Week,
				"error", gradeErr,
			)
		}
		s.invalidate(ctx, next.Season, next.Week, userIDs)
	}

	return next, nil
}

// SyncWeek pulls the feed's view of a week and applies every row. One bad
// row fails alone; the rest of the week still lands.
func (s *GradingService) SyncWeek(ctx context.Context, season, week int) (WeekSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GradingService.SyncWeek")
	defer span.End()

	if season <= 0 || week <= 0 {
		return WeekSyncResult{}, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}
	if s.feed == nil {
		return WeekSyncResult{}, fmt.Errorf("%w: game feed is not configured", ErrDependencyUnavailable)
	}

	updates, err := s.feed.ListWeekGames(ctx, season, week)
	if err != nil {
		return WeekSyncResult{}, fmt.Errorf("%w: list week games from feed: %v", ErrDependencyUnavailable, err)
	}

	result := WeekSyncResult{
		Season:    season,
		Week:      week,
		GameCount: len(updates),
	}
	for _, update := range updates {
		update.Season = season
		update.Week = week
		applied, applyErr := s.ApplyFeedUpdate(ctx, update)
		if applyErr != nil {
			result.FailedCount++
			s.logger.WarnContext(ctx, "apply feed update failed",
				"game_id", update.GameID,
				"season", season,
				"week", week,
				"error", applyErr,
			)
			continue
		}
		result.UpdatedCount++
		if applied.Gradable() {
			result.GradedCount++
		}
	}

	return result, nil
}

// RegradeGame re-runs the resolver and pick grader for one game. Used by
// admin rebuilds after a spread correction; the operation is idempotent.
func (s *GradingService) RegradeGame(ctx context.Context, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GradingService.RegradeGame")
	defer span.End()

	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	item, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game for regrade: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	if !item.Gradable() {
		return nil
	}

	userIDs, err := s.gradeGame(ctx, item)
	if err != nil {
		return err
	}
	s.invalidate(ctx, item.Season, item.Week, userIDs)
	return nil
}

// gradeGame persists the spread outcome and grades every countable pick on
// the game. A single pick write failing does not stop the others; the error
// is logged and the pick stays ungraded until the next pass.
func (s *GradingService) gradeGame(ctx context.Context, item game.Game) ([]string, error) {
	winner, bonus, ok := item.ResolveOutcome()
	if !ok {
		return nil, nil
	}

	if err := s.gameRepo.SetOutcome(ctx, item.ID, winner, bonus); err != nil {
		return nil, fmt.Errorf("set game outcome game=%s: %w", item.ID, err)
	}

	affected := make(map[string]struct{})

	picks, err := s.pickRepo.ListByGame(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list picks by game for grading: %w", err)
	}
	for _, p := range picks {
		if !p.Counted() {
			continue
		}
		result, points := pick.Grade(p.Side, p.IsLock, winner, bonus)
		if err := s.pickRepo.SetGrade(ctx, p.ID, result, points); err != nil {
			s.logger.WarnContext(ctx, "set pick grade failed",
				"pick_id", p.ID,
				"game_id", item.ID,
				"error", err,
			)
			continue
		}
		affected[p.UserID] = struct{}{}
	}

	anonPicks, err := s.anonRepo.ListByGame(ctx, item.ID)
	if err != nil {
		return userIDSet(affected), fmt.Errorf("list anonymous picks by game for grading: %w", err)
	}
	for _, p := range anonPicks {
		if !p.Eligible() {
			continue
		}
		result, points := pick.Grade(p.Side, p.IsLock, winner, bonus)
		if err := s.anonRepo.SetGrade(ctx, p.ID, result, points); err != nil {
			s.logger.WarnContext(ctx, "set anonymous pick grade failed",
				"pick_id", p.ID,
				"game_id", item.ID,
				"error", err,
			)
			continue
		}
		affected[*p.AssignedUserID] = struct{}{}
	}

	return userIDSet(affected), nil
}

func (s *GradingService) invalidate(ctx context.Context, season, week int, userIDs []string) {
	if s.invalidator == nil || len(userIDs) == 0 {
		return
	}
	s.invalidator.InvalidateUserWeek(ctx, season, week, userIDs)
}

func userIDSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
