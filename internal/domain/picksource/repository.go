package picksource

import "context"

type OverrideRepository interface {
	Get(ctx context.Context, userID string, season, week int) (Override, bool, error)
	Upsert(ctx context.Context, item Override) error
	Delete(ctx context.Context, userID string, season, week int) error
}
