package pick

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Pick, bool, error)
	ListByUserWeek(ctx context.Context, userID string, season, week int) ([]Pick, error)
	ListByUserSeason(ctx context.Context, userID string, season int) ([]Pick, error)
	ListByGame(ctx context.Context, gameID string) ([]Pick, error)
	ListUserIDsByWeek(ctx context.Context, season, week int) ([]string, error)
	ListUserIDsBySeason(ctx context.Context, season int) ([]string, error)
	Upsert(ctx context.Context, items []Pick) error
	SetGrade(ctx context.Context, id string, result Result, points int) error
	SetVisibility(ctx context.Context, id string, visible bool) error
}

type AnonymousRepository interface {
	GetByID(ctx context.Context, id string) (AnonymousPick, bool, error)
	ListByEmailWeek(ctx context.Context, email string, season, week int) ([]AnonymousPick, error)
	ListByUserWeek(ctx context.Context, userID string, season, week int) ([]AnonymousPick, error)
	ListByUserSeason(ctx context.Context, userID string, season int) ([]AnonymousPick, error)
	ListByGame(ctx context.Context, gameID string) ([]AnonymousPick, error)
	ListUserIDsByWeek(ctx context.Context, season, week int) ([]string, error)
	ListUserIDsBySeason(ctx context.Context, season int) ([]string, error)
	Upsert(ctx context.Context, items []AnonymousPick) error
	AssignByEmail(ctx context.Context, email, userID string) (int, error)
	SetValidation(ctx context.Context, id string, status ValidationStatus) error
	SetActiveForUserWeek(ctx context.Context, userID string, season, week int, active bool) error
	SetGrade(ctx context.Context, id string, result Result, points int) error
}
