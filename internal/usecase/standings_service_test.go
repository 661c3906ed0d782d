package usecase

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridline/spreadpool/internal/domain/game"
	"github.com/gridline/spreadpool/internal/domain/identity"
	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	"github.com/gridline/spreadpool/internal/domain/payment"
	"github.com/gridline/spreadpool/internal/domain/pick"
	"github.com/gridline/spreadpool/internal/domain/picksource"
)

func gradedPick(id, userID, gameID string, season, week int, side game.Side, lock bool, result pick.Result, points int) pick.Pick {
	return pick.Pick{
		ID:        id,
		UserID:    userID,
		GameID:    gameID,
		Season:    season,
		Week:      week,
		Side:      side,
		IsLock:    lock,
		Submitted: true,
		Visible:   true,
		Result:    &result,
		Points:    &points,
	}
}

func newTestStandingsService(
	pickRepo *stubPickRepository,
	anonRepo *stubAnonymousPickRepository,
	boardRepo leaderboard.Repository,
	directory identity.Directory,
	payments payment.Provider,
) *StandingsService {
	precedence := NewPrecedenceService(pickRepo, anonRepo, newStubOverrideRepository(), nil)
	return NewStandingsService(boardRepo, pickRepo, anonRepo, precedence, directory, payments, 2, nil)
}

func TestStandingsService_RecomputeWeek_BuildsRankedBoard(t *testing.T) {
	t.Parallel()

	pickRepo := newStubPickRepository(
		gradedPick("p1", "u1", "g1", 2025, 6, game.SideHome, true, pick.ResultWin, 26),
		gradedPick("p2", "u1", "g2", 2025, 6, game.SideHome, false, pick.ResultWin, 20),
		gradedPick("p3", "u2", "g1", 2025, 6, game.SideAway, false, pick.ResultPush, 10),
		gradedPick("p4", "u2", "g2", 2025, 6, game.SideAway, false, pick.ResultWin, 23),
		// Hidden pick contributes nothing and keeps u3 off the board.
		pick.Pick{ID: "p5", UserID: "u3", GameID: "g1", Season: 2025, Week: 6, Side: game.SideHome, Submitted: true, Visible: false},
	)
	boardRepo := newStubLeaderboardRepository()
	directory := &stubDirectory{users: map[string]identity.User{
		"u1": {ID: "u1", DisplayName: "Gridiron Gwen"},
	}}
	payments := &stubPaymentProvider{entries: []payment.LedgerEntry{
		{UserID: "u1", Season: 2025, RawStatus: "Paid", LedgerMatched: true},
		{UserID: "u2", Season: 2025, RawStatus: "processing", LedgerMatched: true},
	}}
	service := newTestStandingsService(pickRepo, newStubAnonymousPickRepository(), boardRepo, directory, payments)

	result, err := service.RecomputeWeek(context.Background(), 2025, 6)
	if err != nil {
		t.Fatalf("RecomputeWeek error: %v", err)
	}
	if result.RowCount != 2 || result.FailedCount != 0 {
		t.Fatalf("unexpected recompute result: %+v", result)
	}

	rows := boardRepo.boards[leaderboard.WeekPeriod(2025, 6).Key()]
	if len(rows) != 2 {
		t.Fatalf("expected 2 board rows, got %d", len(rows))
	}

	first := rows[0]
	if first.UserID != "u1" || first.Rank != 1 || first.TotalPoints != 46 || first.Wins != 2 || first.LockWins != 1 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.DisplayName != "Gridiron Gwen" {
		t.Fatalf("expected directory name, got %q", first.DisplayName)
	}
	if first.Payment != leaderboard.PaymentPaid || !first.Verified {
		t.Fatalf("unexpected payment state: %+v", first)
	}
	if first.Source != picksource.SourceAuthenticated {
		t.Fatalf("unexpected source: %s", first.Source)
	}

	second := rows[1]
	if second.UserID != "u2" || second.Rank != 2 || second.TotalPoints != 33 || second.Pushes != 1 {
		t.Fatalf("unexpected second row: %+v", second)
	}
	if second.DisplayName != "user-u2" {
		t.Fatalf("expected fallback display name, got %q", second.DisplayName)
	}
	if second.Payment != leaderboard.PaymentPending || second.Verified {
		t.Fatalf("unexpected payment state: %+v", second)
	}
}

func TestStandingsService_RecomputeWeek_LedgerFailureDegrades(t *testing.T) {
	t.Parallel()

	pickRepo := newStubPickRepository(
		gradedPick("p1", "u1", "g1", 2025, 6, game.SideHome, false, pick.ResultWin, 20),
	)
	boardRepo := newStubLeaderboardRepository()
	payments := &stubPaymentProvider{err: errors.New("ledger offline")}
	service := newTestStandingsService(pickRepo, newStubAnonymousPickRepository(), boardRepo, nil, payments)

	if _, err := service.RecomputeWeek(context.Background(), 2025, 6); err != nil {
		t.Fatalf("ledger failure must not fail the recompute: %v", err)
	}
	rows := boardRepo.boards[leaderboard.WeekPeriod(2025, 6).Key()]
	if len(rows) != 1 || rows[0].Payment != leaderboard.PaymentNotPaid || rows[0].Verified {
		t.Fatalf("expected degraded payment state, got %+v", rows)
	}
}

func TestStandingsService_RecomputeSeason_UnionsWeeklySets(t *testing.T) {
	t.Parallel()

	assigned := "u1"
	pickRepo := newStubPickRepository(
		gradedPick("p1", "u1", "g1", 2025, 5, game.SideHome, false, pick.ResultWin, 21),
	)
	anonResult := pick.ResultWin
	anonPoints := 20
	anonRepo := newStubAnonymousPickRepository(
		pick.AnonymousPick{
			ID: "a1", Email: "x@y.z", GameID: "g9", Season: 2025, Week: 6, Side: game.SideHome,
			AssignedUserID: &assigned, ValidationStatus: pick.ValidationAuto, Active: true, Visible: true,
			Result: &anonResult, Points: &anonPoints,
		},
	)
	boardRepo := newStubLeaderboardRepository()
	service := newTestStandingsService(pickRepo, anonRepo, boardRepo, nil, nil)

	result, err := service.RecomputeSeason(context.Background(), 2025)
	if err != nil {
		t.Fatalf("RecomputeSeason error: %v", err)
	}
	if result.RowCount != 1 {
		t.Fatalf("unexpected season result: %+v", result)
	}

	rows := boardRepo.boards[leaderboard.SeasonPeriod(2025).Key()]
	if len(rows) != 1 {
		t.Fatalf("expected 1 season row, got %d", len(rows))
	}
	row := rows[0]
	if row.TotalPoints != 41 || row.Wins != 2 || row.PicksCounted != 2 {
		t.Fatalf("expected both weeks to count, got %+v", row)
	}
	if !row.Period.IsSeason() {
		t.Fatalf("expected season period, got %+v", row.Period)
	}
}

func TestStandingsService_RecomputeWeek_EmptyPeriodClearsBoard(t *testing.T) {
	t.Parallel()

	boardRepo := newStubLeaderboardRepository()
	boardRepo.boards[leaderboard.WeekPeriod(2025, 6).Key()] = []leaderboard.PeriodSummary{
		{UserID: "ghost", Rank: 1},
	}
	service := newTestStandingsService(newStubPickRepository(), newStubAnonymousPickRepository(), boardRepo, nil, nil)

	if _, err := service.RecomputeWeek(context.Background(), 2025, 6); err != nil {
		t.Fatalf("RecomputeWeek error: %v", err)
	}
	if rows := boardRepo.boards[leaderboard.WeekPeriod(2025, 6).Key()]; len(rows) != 0 {
		t.Fatalf("expected cleared board, got %+v", rows)
	}
}

func TestStandingsService_Recompute_IdenticalRowsOnUnchangedPicks(t *testing.T) {
	t.Parallel()

	submitted := time.Date(2025, 10, 5, 12, 0, 0, 0, time.UTC)
	item := gradedPick("p1", "u1", "g1", 2025, 6, game.SideHome, false, pick.ResultWin, 20)
	item.UpdatedAt = submitted
	pickRepo := newStubPickRepository(item)
	boardRepo := newStubLeaderboardRepository()
	service := newTestStandingsService(pickRepo, newStubAnonymousPickRepository(), boardRepo, nil, nil)

	if _, err := service.RecomputeWeek(context.Background(), 2025, 6); err != nil {
		t.Fatalf("first recompute error: %v", err)
	}
	first := boardRepo.boards[leaderboard.WeekPeriod(2025, 6).Key()]

	if _, err := service.RecomputeWeek(context.Background(), 2025, 6); err != nil {
		t.Fatalf("second recompute error: %v", err)
	}
	second := boardRepo.boards[leaderboard.WeekPeriod(2025, 6).Key()]

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recompute over unchanged picks must reproduce identical rows:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if !first[0].CalculatedAt.Equal(submitted) {
		t.Fatalf("expected CalculatedAt from the newest pick, got %s", first[0].CalculatedAt)
	}
}

// gatedLeaderboardRepository holds the first replace open so a test can land
// a change while that run is still in flight.
type gatedLeaderboardRepository struct {
	*stubLeaderboardRepository
	gate     chan struct{}
	replaces atomic.Int32
}

func (s *gatedLeaderboardRepository) ReplaceByPeriod(ctx context.Context, period leaderboard.Period, rows []leaderboard.PeriodSummary) error {
	if s.replaces.Add(1) == 1 {
		<-s.gate
	}
	return s.stubLeaderboardRepository.ReplaceByPeriod(ctx, period, rows)
}

func TestStandingsService_Recompute_JoinedCallerRunsFollowUpPass(t *testing.T) {
	t.Parallel()

	pickRepo := newStubPickRepository(
		gradedPick("p1", "u1", "g1", 2025, 6, game.SideHome, false, pick.ResultWin, 20),
	)
	boardRepo := &gatedLeaderboardRepository{
		stubLeaderboardRepository: newStubLeaderboardRepository(),
		gate:                      make(chan struct{}),
	}
	service := newTestStandingsService(pickRepo, newStubAnonymousPickRepository(), boardRepo, nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := service.RecomputeWeek(context.Background(), 2025, 6); err != nil {
			t.Errorf("first recompute error: %v", err)
		}
	}()

	// Once the first run reaches the store it has already read its picks.
	// A change landing now is invisible to it.
	for boardRepo.replaces.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := pickRepo.Upsert(context.Background(), []pick.Pick{
		gradedPick("p2", "u1", "g2", 2025, 6, game.SideAway, false, pick.ResultWin, 23),
	}); err != nil {
		t.Fatalf("upsert pick: %v", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := service.RecomputeWeek(context.Background(), 2025, 6); err != nil {
			t.Errorf("second recompute error: %v", err)
		}
	}()
	time.Sleep(50 * time.Millisecond)
	close(boardRepo.gate)
	wg.Wait()

	rows := boardRepo.boards[leaderboard.WeekPeriod(2025, 6).Key()]
	if len(rows) != 1 || rows[0].PicksCounted != 2 {
		t.Fatalf("caller joining an in-flight run must still see its change applied, got %+v", rows)
	}
}

func TestAggregatePicks(t *testing.T) {
	t.Parallel()

	picks := []pick.Pick{
		gradedPick("p1", "u1", "g1", 2025, 6, game.SideHome, true, pick.ResultWin, 26),
		gradedPick("p2", "u1", "g2", 2025, 6, game.SideAway, true, pick.ResultLoss, 0),
		gradedPick("p3", "u1", "g3", 2025, 6, game.SideHome, false, pick.ResultPush, 10),
		{ID: "p4", UserID: "u1", GameID: "g4", Season: 2025, Week: 6, Side: game.SideHome, Submitted: true, Visible: true},
	}

	row := aggregatePicks(picks)
	if row.PicksCounted != 4 {
		t.Fatalf("ungraded picks must count toward PicksCounted, got %d", row.PicksCounted)
	}
	if row.Wins != 1 || row.Losses != 1 || row.Pushes != 1 {
		t.Fatalf("unexpected tallies: %+v", row)
	}
	if row.LockWins != 1 || row.LockLosses != 1 {
		t.Fatalf("unexpected lock tallies: %+v", row)
	}
	if row.TotalPoints != 36 {
		t.Fatalf("unexpected total points: %d", row.TotalPoints)
	}
}

func TestRankSummaries_TotalOrder(t *testing.T) {
	t.Parallel()

	rows := []leaderboard.PeriodSummary{
		{UserID: "u3", DisplayName: "Casey", TotalPoints: 40, Wins: 2},
		{UserID: "u1", DisplayName: "Alex", TotalPoints: 40, Wins: 2},
		{UserID: "u2", DisplayName: "Blair", TotalPoints: 40, Wins: 3},
		{UserID: "u4", DisplayName: "Drew", TotalPoints: 55, Wins: 1},
	}

	rankSummaries(rows)

	wantOrder := []string{"u4", "u2", "u1", "u3"}
	for idx, want := range wantOrder {
		if rows[idx].UserID != want {
			t.Fatalf("unexpected order at %d: got %s want %s", idx, rows[idx].UserID, want)
		}
		if rows[idx].Rank != idx+1 {
			t.Fatalf("ranks must be strictly sequential, got %+v", rows[idx])
		}
	}
}

type stubLeaderboardRepository struct {
	mu     sync.Mutex
	boards map[string][]leaderboard.PeriodSummary
}

func newStubLeaderboardRepository() *stubLeaderboardRepository {
	return &stubLeaderboardRepository{boards: make(map[string][]leaderboard.PeriodSummary)}
}

func (s *stubLeaderboardRepository) ListByPeriod(_ context.Context, period leaderboard.Period) ([]leaderboard.PeriodSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.boards[period.Key()]
	out := make([]leaderboard.PeriodSummary, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *stubLeaderboardRepository) ReplaceByPeriod(_ context.Context, period leaderboard.Period, rows []leaderboard.PeriodSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]leaderboard.PeriodSummary, len(rows))
	copy(out, rows)
	s.boards[period.Key()] = out
	return nil
}

type stubDirectory struct {
	users map[string]identity.User
	err   error
}

func (s *stubDirectory) ListUsers(_ context.Context, ids []string) (map[string]identity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]identity.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

type stubPaymentProvider struct {
	entries []payment.LedgerEntry
	err     error
}

func (s *stubPaymentProvider) ListBySeason(_ context.Context, _ int) ([]payment.LedgerEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}
