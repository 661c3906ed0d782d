package cached

import (
	"context"
	"fmt"

	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	"github.com/gridline/spreadpool/internal/platform/cache"
)

// LeaderboardRepository is a read-through cache in front of the period
// summary store. Boards only change when a recompute replaces them, so the
// write path drops the cached period instead of patching it.
type LeaderboardRepository struct {
	inner leaderboard.Repository
	store *cache.Store
}

func NewLeaderboardRepository(inner leaderboard.Repository, store *cache.Store) *LeaderboardRepository {
	return &LeaderboardRepository{
		inner: inner,
		store: store,
	}
}

func (r *LeaderboardRepository) ListByPeriod(ctx context.Context, period leaderboard.Period) ([]leaderboard.PeriodSummary, error) {
	value, err := r.store.GetOrLoad(ctx, cacheKey(period), func(ctx context.Context) (any, error) {
		return r.inner.ListByPeriod(ctx, period)
	})
	if err != nil {
		return nil, err
	}

	rows, ok := value.([]leaderboard.PeriodSummary)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type %T", value)
	}

	return rows, nil
}

func (r *LeaderboardRepository) ReplaceByPeriod(ctx context.Context, period leaderboard.Period, rows []leaderboard.PeriodSummary) error {
	if err := r.inner.ReplaceByPeriod(ctx, period, rows); err != nil {
		return err
	}
	r.store.Delete(ctx, cacheKey(period))

	return nil
}

func cacheKey(period leaderboard.Period) string {
	return "leaderboard:" + period.Key()
}
