package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gridline/spreadpool/internal/domain/identity"
	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	"github.com/gridline/spreadpool/internal/domain/payment"
	"github.com/gridline/spreadpool/internal/domain/pick"
	"github.com/gridline/spreadpool/internal/domain/picksource"
	"github.com/gridline/spreadpool/internal/platform/logging"
	"github.com/gridline/spreadpool/internal/platform/resilience"
)

const defaultRecomputeWorkerCount = 8

type RecomputeResult struct {
	PeriodKey   string `json:"period_key"`
	UserCount   int    `json:"user_count"`
	RowCount    int    `json:"row_count"`
	FailedCount int    `json:"failed_count"`
}

// StandingsService recomputes and serves period leaderboards. A recompute
// always derives every row from source picks and atomically replaces the
// stored board; it never patches rows in place.
type StandingsService struct {
	leaderboardRepo leaderboard.Repository
	pickRepo        pick.Repository
	anonRepo        pick.AnonymousRepository
	precedence      *PrecedenceService
	directory       identity.Directory
	payments        payment.Provider
	logger          *logging.Logger
	recomputeFlight resilience.SingleFlight
	workerCount     int
}

func NewStandingsService(
	leaderboardRepo leaderboard.Repository,
	pickRepo pick.Repository,
	anonRepo pick.AnonymousRepository,
	precedence *PrecedenceService,
	directory identity.Directory,
	payments payment.Provider,
	workerCount int,
	logger *logging.Logger,
) *StandingsService {
	if workerCount <= 0 {
		workerCount = defaultRecomputeWorkerCount
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{
		leaderboardRepo: leaderboardRepo,
		pickRepo:        pickRepo,
		anonRepo:        anonRepo,
		precedence:      precedence,
		directory:       directory,
		payments:        payments,
		logger:          logger,
		workerCount:     workerCount,
	}
}

func (s *StandingsService) GetWeekLeaderboard(ctx context.Context, season, week int) ([]leaderboard.PeriodSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetWeekLeaderboard")
	defer span.End()

	if season <= 0 || week <= 0 {
		return nil, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}
	rows, err := s.leaderboardRepo.ListByPeriod(ctx, leaderboard.WeekPeriod(season, week))
	if err != nil {
		return nil, fmt.Errorf("list week leaderboard: %w", err)
	}
	return rows, nil
}

func (s *StandingsService) GetSeasonLeaderboard(ctx context.Context, season int) ([]leaderboard.PeriodSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetSeasonLeaderboard")
	defer span.End()

	if season <= 0 {
		return nil, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}
	rows, err := s.leaderboardRepo.ListByPeriod(ctx, leaderboard.SeasonPeriod(season))
	if err != nil {
		return nil, fmt.Errorf("list season leaderboard: %w", err)
	}
	return rows, nil
}

// RecomputeWeek rebuilds one week's board from scratch. Concurrent calls
// for the same period collapse into one run; a caller that joined an
// in-flight run follows up with one more pass of its own.
func (s *StandingsService) RecomputeWeek(ctx context.Context, season, week int) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RecomputeWeek")
	defer span.End()

	if season <= 0 || week <= 0 {
		return RecomputeResult{}, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}
	return s.recomputePeriod(ctx, leaderboard.WeekPeriod(season, week))
}

// RecomputeSeason rebuilds the season board the same way, from each user's
// per-week counted sets.
func (s *StandingsService) RecomputeSeason(ctx context.Context, season int) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RecomputeSeason")
	defer span.End()

	if season <= 0 {
		return RecomputeResult{}, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}
	return s.recomputePeriod(ctx, leaderboard.SeasonPeriod(season))
}

func (s *StandingsService) recomputePeriod(ctx context.Context, period leaderboard.Period) (RecomputeResult, error) {
	key := "recompute:" + period.Key()
	run := func() (any, error) {
		return s.recomputePeriodOnce(ctx, period)
	}
	value, err, shared := s.recomputeFlight.Do(key, run)
	if shared && err == nil {
		// The joined run may have read its picks before this caller's change
		// landed. One follow-up pass picks it up.
		value, err, _ = s.recomputeFlight.Do(key, run)
	}
	if err != nil {
		return RecomputeResult{}, err
	}
	result, ok := value.(RecomputeResult)
	if !ok {
		return RecomputeResult{}, fmt.Errorf("unexpected recompute result type")
	}
	return result, nil
}

func (s *StandingsService) recomputePeriodOnce(ctx context.Context, period leaderboard.Period) (RecomputeResult, error) {
	userIDs, err := s.listPeriodUserIDs(ctx, period)
	if err != nil {
		return RecomputeResult{}, err
	}

	result := RecomputeResult{
		PeriodKey: period.Key(),
		UserCount: len(userIDs),
	}
	if len(userIDs) == 0 {
		if err := s.leaderboardRepo.ReplaceByPeriod(ctx, period, nil); err != nil {
			return RecomputeResult{}, fmt.Errorf("replace empty leaderboard period=%s: %w", period.Key(), err)
		}
		return result, nil
	}

	ledger := s.loadLedger(ctx, period.Season)

	rows := make([]leaderboard.PeriodSummary, 0, len(userIDs))
	var rowsMu sync.Mutex
	var failedCount atomic.Int32

	pool, err := ants.NewPool(s.workerCount)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("create recompute worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, userID := range userIDs {
		userID := userID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row, include, userErr := s.summarizeUser(ctx, userID, period, ledger)
			if userErr != nil {
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "summarize user failed",
					"user_id", userID,
					"period", period.Key(),
					"error", userErr,
				)
				return
			}
			if !include {
				return
			}

			rowsMu.Lock()
			rows = append(rows, row)
			rowsMu.Unlock()
		}); err != nil {
			workers.Done()
			return RecomputeResult{}, fmt.Errorf("submit recompute task to worker pool: %w", err)
		}
	}
	workers.Wait()

	s.applyDisplayNames(ctx, rows)
	rankSummaries(rows)

	if err := s.leaderboardRepo.ReplaceByPeriod(ctx, period, rows); err != nil {
		return RecomputeResult{}, fmt.Errorf("replace leaderboard period=%s: %w", period.Key(), err)
	}

	result.RowCount = len(rows)
	result.FailedCount = int(failedCount.Load())
	return result, nil
}

func (s *StandingsService) listPeriodUserIDs(ctx context.Context, period leaderboard.Period) ([]string, error) {
	var authIDs, anonIDs []string
	var err error
	if period.IsSeason() {
		authIDs, err = s.pickRepo.ListUserIDsBySeason(ctx, period.Season)
		if err != nil {
			return nil, fmt.Errorf("list authenticated user ids for season: %w", err)
		}
		anonIDs, err = s.anonRepo.ListUserIDsBySeason(ctx, period.Season)
		if err != nil {
			return nil, fmt.Errorf("list anonymous user ids for season: %w", err)
		}
	} else {
		authIDs, err = s.pickRepo.ListUserIDsByWeek(ctx, period.Season, period.Week)
		if err != nil {
			return nil, fmt.Errorf("list authenticated user ids for week: %w", err)
		}
		anonIDs, err = s.anonRepo.ListUserIDsByWeek(ctx, period.Season, period.Week)
		if err != nil {
			return nil, fmt.Errorf("list anonymous user ids for week: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(authIDs)+len(anonIDs))
	out := make([]string, 0, len(authIDs)+len(anonIDs))
	for _, id := range append(authIDs, anonIDs...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// loadLedger pulls the season's payment rows once per recompute. A ledger
// failure degrades every row to not paid instead of failing the rebuild.
func (s *StandingsService) loadLedger(ctx context.Context, season int) map[string]payment.LedgerEntry {
	if s.payments == nil {
		return nil
	}
	entries, err := s.payments.ListBySeason(ctx, season)
	if err != nil {
		s.logger.WarnContext(ctx, "list payment ledger failed, degrading to not paid",
			"season", season,
			"error", err,
		)
		return nil
	}
	out := make(map[string]payment.LedgerEntry, len(entries))
	for _, entry := range entries {
		out[entry.UserID] = entry
	}
	return out
}

func (s *StandingsService) summarizeUser(
	ctx context.Context,
	userID string,
	period leaderboard.Period,
	ledger map[string]payment.LedgerEntry,
) (leaderboard.PeriodSummary, bool, error) {
	var counted []pick.Pick
	var source picksource.Source
	var err error
	if period.IsSeason() {
		counted, source, err = s.precedence.CountedSeasonPicks(ctx, userID, period.Season)
	} else {
		var resolution picksource.Resolution
		counted, resolution, err = s.precedence.CountedWeekPicks(ctx, userID, period.Season, period.Week)
		source = resolution.Source
	}
	if err != nil {
		return leaderboard.PeriodSummary{}, false, err
	}
	if len(counted) == 0 {
		// No countable picks means no row at all, not a zero row.
		return leaderboard.PeriodSummary{}, false, nil
	}

	row := aggregatePicks(counted)
	row.UserID = userID
	row.Period = period
	row.Source = source
	// Stamp with the newest source pick instead of the wall clock, so a
	// recompute over an unchanged pick set reproduces the identical row.
	row.CalculatedAt = latestUpdate(counted)

	entry, ok := ledger[userID]
	if ok {
		row.Payment = leaderboard.NormalizePaymentStatus(entry.RawStatus)
		row.Verified = row.Payment == leaderboard.PaymentPaid && entry.LedgerMatched
	} else {
		row.Payment = leaderboard.PaymentNotPaid
	}

	return row, true, nil
}

func latestUpdate(picks []pick.Pick) time.Time {
	var latest time.Time
	for _, item := range picks {
		if item.UpdatedAt.After(latest) {
			latest = item.UpdatedAt
		}
	}
	return latest.UTC()
}

// aggregatePicks folds a counted pick set into summary counters. Ungraded
// picks count toward PicksCounted and nothing else.
func aggregatePicks(picks []pick.Pick) leaderboard.PeriodSummary {
	var row leaderboard.PeriodSummary
	row.PicksCounted = len(picks)
	for _, item := range picks {
		if !item.Graded() {
			continue
		}
		row.TotalPoints += *item.Points
		switch *item.Result {
		case pick.ResultWin:
			row.Wins++
			if item.IsLock {
				row.LockWins++
			}
		case pick.ResultLoss:
			row.Losses++
			if item.IsLock {
				row.LockLosses++
			}
		case pick.ResultPush:
			row.Pushes++
		}
	}
	return row
}

// rankSummaries orders rows by points, then wins, then display name, then
// user id, and assigns strictly sequential ranks. Equal records still get
// distinct ranks; the name tiebreak keeps the order stable across
// recomputes.
func rankSummaries(rows []leaderboard.PeriodSummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		if rows[i].DisplayName != rows[j].DisplayName {
			return rows[i].DisplayName < rows[j].DisplayName
		}
		return rows[i].UserID < rows[j].UserID
	})
	for idx := range rows {
		rows[idx].Rank = idx + 1
	}
}

// applyDisplayNames resolves names in one directory batch. Any miss or
// directory failure falls back to a derived placeholder.
func (s *StandingsService) applyDisplayNames(ctx context.Context, rows []leaderboard.PeriodSummary) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}

	var users map[string]identity.User
	if s.directory != nil && len(ids) > 0 {
		var err error
		users, err = s.directory.ListUsers(ctx, ids)
		if err != nil {
			s.logger.WarnContext(ctx, "resolve display names failed, using fallbacks", "error", err)
			users = nil
		}
	}

	for idx := range rows {
		if user, ok := users[rows[idx].UserID]; ok && user.DisplayName != "" {
			rows[idx].DisplayName = user.DisplayName
			continue
		}
		rows[idx].DisplayName = identity.FallbackDisplayName(rows[idx].UserID)
	}
}
