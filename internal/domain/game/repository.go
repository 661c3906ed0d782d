package game

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Game, bool, error)
	ListByWeek(ctx context.Context, season, week int) ([]Game, error)
	Upsert(ctx context.Context, item Game) error
	SetOutcome(ctx context.Context, id string, winner ATSResult, bonus int) error
}
