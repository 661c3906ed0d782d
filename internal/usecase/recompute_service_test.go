package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gridline/spreadpool/internal/domain/game"
	"github.com/gridline/spreadpool/internal/domain/jobscheduler"
	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	"github.com/gridline/spreadpool/internal/domain/pick"
)

func newTestRecomputeService(boardRepo *stubLeaderboardRepository, gameRepo *stubGameRepository, pickRepo *stubPickRepository, anonRepo *stubAnonymousPickRepository, queue JobQueue, dispatchRepo jobscheduler.Repository) (*RecomputeService, *GradingService) {
	standings := newTestStandingsService(pickRepo, anonRepo, boardRepo, nil, nil)
	recompute := NewRecomputeService(standings, gameRepo, queue, dispatchRepo, RecomputeConfig{Debounce: time.Minute}, nil)
	grading := NewGradingService(gameRepo, pickRepo, anonRepo, nil, recompute, nil)
	recompute.BindGrading(grading)
	return recompute, grading
}

func TestRecomputeService_InvalidateUserWeek_QueuesWeekAndSeason(t *testing.T) {
	t.Parallel()

	queue := &stubJobQueue{}
	dispatchRepo := &stubDispatchRepository{}
	service, _ := newTestRecomputeService(newStubLeaderboardRepository(), newStubGameRepository(), newStubPickRepository(), newStubAnonymousPickRepository(), queue, dispatchRepo)
	service.now = func() time.Time { return time.Date(2025, 10, 12, 17, 3, 12, 0, time.UTC) }

	service.InvalidateUserWeek(context.Background(), 2025, 6, []string{"u1"})

	jobs := queue.jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected week and season jobs, got %d", len(jobs))
	}
	if jobs[0].path != jobPathRecomputeWeek || jobs[1].path != jobPathRecomputeSeason {
		t.Fatalf("unexpected job paths: %+v", jobs)
	}
	if jobs[0].dedupID == "" || jobs[0].dedupID == jobs[1].dedupID {
		t.Fatalf("expected distinct dedup ids per period: %+v", jobs)
	}

	events := dispatchRepo.list()
	if len(events) != 2 {
		t.Fatalf("expected 2 dispatch events, got %d", len(events))
	}
	for _, event := range events {
		if event.Status != jobscheduler.StatusSent {
			t.Fatalf("expected sent status, got %+v", event)
		}
	}
}

func TestRecomputeService_InvalidateUserWeek_DedupWithinDebounceWindow(t *testing.T) {
	t.Parallel()

	queue := &stubJobQueue{}
	service, _ := newTestRecomputeService(newStubLeaderboardRepository(), newStubGameRepository(), newStubPickRepository(), newStubAnonymousPickRepository(), queue, nil)
	base := time.Date(2025, 10, 12, 17, 3, 0, 0, time.UTC)
	service.now = func() time.Time { return base }

	service.InvalidateUserWeek(context.Background(), 2025, 6, []string{"u1"})
	service.now = func() time.Time { return base.Add(10 * time.Second) }
	service.InvalidateUserWeek(context.Background(), 2025, 6, []string{"u2"})

	jobs := queue.jobs()
	if len(jobs) != 4 {
		t.Fatalf("expected 4 enqueue calls, got %d", len(jobs))
	}
	if jobs[0].dedupID != jobs[2].dedupID {
		t.Fatalf("bursts inside the debounce window must share a dedup id: %q vs %q", jobs[0].dedupID, jobs[2].dedupID)
	}
}

func TestRecomputeService_InvalidateUserWeek_EnqueueFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	queue := &stubJobQueue{err: errors.New("queue unavailable")}
	dispatchRepo := &stubDispatchRepository{}
	service, _ := newTestRecomputeService(newStubLeaderboardRepository(), newStubGameRepository(), newStubPickRepository(), newStubAnonymousPickRepository(), queue, dispatchRepo)

	// Must not panic or propagate; the triggering write already committed.
	service.InvalidateUserWeek(context.Background(), 2025, 6, []string{"u1"})

	events := dispatchRepo.list()
	if len(events) != 2 {
		t.Fatalf("expected 2 failure events, got %d", len(events))
	}
	for _, event := range events {
		if event.Status != jobscheduler.StatusFailed || event.ErrorMessage == "" {
			t.Fatalf("expected failed dispatch event, got %+v", event)
		}
	}
}

func TestRecomputeService_RunWeekRecompute_RecordsOutcome(t *testing.T) {
	t.Parallel()

	boardRepo := newStubLeaderboardRepository()
	pickRepo := newStubPickRepository(
		gradedPick("p1", "u1", "g1", 2025, 6, game.SideHome, false, pick.ResultWin, 20),
	)
	dispatchRepo := &stubDispatchRepository{}
	service, _ := newTestRecomputeService(boardRepo, newStubGameRepository(), pickRepo, newStubAnonymousPickRepository(), &stubJobQueue{}, dispatchRepo)

	result, err := service.RunWeekRecompute(context.Background(), 2025, 6, "dispatch-1")
	if err != nil {
		t.Fatalf("RunWeekRecompute error: %v", err)
	}
	if result.RowCount != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	events := dispatchRepo.list()
	if len(events) != 1 || events[0].Status != jobscheduler.StatusCompleted || events[0].DispatchID != "dispatch-1" {
		t.Fatalf("unexpected dispatch events: %+v", events)
	}
}

func TestRecomputeService_RebuildWeek_RegradesAndRecomputes(t *testing.T) {
	t.Parallel()

	spread := -3.0
	home := 35
	away := 10
	gameRepo := newStubGameRepository()
	gameRepo.byID["g1"] = game.Game{
		ID: "g1", Season: 2025, Week: 6, Spread: &spread, HomeScore: &home, AwayScore: &away, Status: game.StatusCompleted,
	}
	pickRepo := newStubPickRepository(
		pick.Pick{ID: "p1", UserID: "u1", GameID: "g1", Season: 2025, Week: 6, Side: game.SideHome, Submitted: true, Visible: true},
	)
	boardRepo := newStubLeaderboardRepository()
	service, _ := newTestRecomputeService(boardRepo, gameRepo, pickRepo, newStubAnonymousPickRepository(), &stubJobQueue{}, nil)

	result, err := service.RebuildWeek(context.Background(), 2025, 6)
	if err != nil {
		t.Fatalf("RebuildWeek error: %v", err)
	}
	if result.RowCount != 1 {
		t.Fatalf("unexpected rebuild result: %+v", result)
	}

	assertGrade(t, pickRepo.picks["p1"], pick.ResultWin, 23)
	weekRows := boardRepo.boards[leaderboard.WeekPeriod(2025, 6).Key()]
	seasonRows := boardRepo.boards[leaderboard.SeasonPeriod(2025).Key()]
	if len(weekRows) != 1 || len(seasonRows) != 1 {
		t.Fatalf("expected both boards rebuilt, week=%d season=%d", len(weekRows), len(seasonRows))
	}
	if weekRows[0].TotalPoints != 23 {
		t.Fatalf("unexpected week row: %+v", weekRows[0])
	}
}

type queuedJob struct {
	path    string
	payload any
	delay   time.Duration
	dedupID string
}

type stubJobQueue struct {
	mu    sync.Mutex
	calls []queuedJob
	err   error
}

func (s *stubJobQueue) Enqueue(_ context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, queuedJob{path: path, payload: payload, delay: delay, dedupID: deduplicationID})
	return s.err
}

func (s *stubJobQueue) jobs() []queuedJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]queuedJob, len(s.calls))
	copy(out, s.calls)
	return out
}

type stubDispatchRepository struct {
	mu     sync.Mutex
	events []jobscheduler.DispatchEvent
}

func (s *stubDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *stubDispatchRepository) list() []jobscheduler.DispatchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]jobscheduler.DispatchEvent, len(s.events))
	copy(out, s.events)
	return out
}
