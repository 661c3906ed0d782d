package leaderboard

import "context"

// Repository is the terminal store of the pipeline. ReplaceByPeriod swaps
// the full ranked row set for a period in one transaction: rows are upserted
// on (user, period) and users absent from the new set are pruned, so a user
// with no countable picks has no row at all. The store emits no further
// invalidation.
type Repository interface {
	ListByPeriod(ctx context.Context, period Period) ([]PeriodSummary, error)
	ReplaceByPeriod(ctx context.Context, period Period, rows []PeriodSummary) error
}
