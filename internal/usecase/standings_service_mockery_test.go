package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	leaderboardmock "github.com/gridline/spreadpool/internal/mocks/domain/leaderboard"
)

func TestStandingsService_GetWeekLeaderboard_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boardRepo := leaderboardmock.NewRepository(t)
	service := NewStandingsService(boardRepo, newStubPickRepository(), newStubAnonymousPickRepository(), nil, nil, nil, 1, nil)

	period := leaderboard.WeekPeriod(2025, 6)
	expected := []leaderboard.PeriodSummary{
		{UserID: "u1", DisplayName: "Gridiron Gwen", Period: period, Rank: 1, TotalPoints: 46},
		{UserID: "u2", DisplayName: "user-u2", Period: period, Rank: 2, TotalPoints: 33},
	}

	boardRepo.
		On("ListByPeriod", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), period).
		Return(expected, nil).
		Once()

	got, err := service.GetWeekLeaderboard(ctx, 2025, 6)
	if err != nil {
		t.Fatalf("get week leaderboard: %v", err)
	}
	if len(got) != len(expected) {
		t.Fatalf("unexpected row count: got=%d want=%d", len(got), len(expected))
	}
	if got[0].UserID != "u1" || got[0].Rank != 1 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
}

func TestStandingsService_GetSeasonLeaderboard_StoreErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boardRepo := leaderboardmock.NewRepository(t)
	service := NewStandingsService(boardRepo, newStubPickRepository(), newStubAnonymousPickRepository(), nil, nil, nil, 1, nil)

	storeErr := errors.New("connection reset")
	boardRepo.
		On("ListByPeriod", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), leaderboard.SeasonPeriod(2025)).
		Return(nil, storeErr).
		Once()

	_, err := service.GetSeasonLeaderboard(ctx, 2025)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
