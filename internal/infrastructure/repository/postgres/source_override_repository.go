package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridline/spreadpool/internal/domain/picksource"
	qb "github.com/gridline/spreadpool/internal/platform/querybuilder"
)

type SourceOverrideRepository struct {
	db *sqlx.DB
}

func NewSourceOverrideRepository(db *sqlx.DB) *SourceOverrideRepository {
	return &SourceOverrideRepository{db: db}
}

func (r *SourceOverrideRepository) Get(ctx context.Context, userID string, season, week int) (picksource.Override, bool, error) {
	query, args, err := qb.Select("*").From("source_overrides").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("season", season),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return picksource.Override{}, false, fmt.Errorf("build get source override query: %w", err)
	}

	var row sourceOverrideTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return picksource.Override{}, false, nil
		}
		return picksource.Override{}, false, fmt.Errorf("select source override: %w", err)
	}

	return picksource.Override{
		UserID:    row.UserID,
		Season:    row.Season,
		Week:      row.Week,
		Preferred: picksource.Source(row.Preferred),
		SetBy:     row.SetBy,
		Reason:    row.Reason,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *SourceOverrideRepository) Upsert(ctx context.Context, item picksource.Override) error {
	insertModel := sourceOverrideInsertModel{
		UserID:    item.UserID,
		Season:    item.Season,
		Week:      item.Week,
		Preferred: string(item.Preferred),
		SetBy:     item.SetBy,
		Reason:    item.Reason,
	}

	query, args, err := qb.InsertModel("source_overrides", insertModel, `ON CONFLICT (user_id, season, week) WHERE deleted_at IS NULL
DO UPDATE SET
    preferred_source = EXCLUDED.preferred_source,
    set_by = EXCLUDED.set_by,
    reason = EXCLUDED.reason,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert source override query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert source override user=%s season=%d week=%d: %w", item.UserID, item.Season, item.Week, err)
	}

	return nil
}

func (r *SourceOverrideRepository) Delete(ctx context.Context, userID string, season, week int) error {
	query, args, err := qb.Update("source_overrides").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("season", season),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete source override query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete source override user=%s season=%d week=%d: %w", userID, season, week, err)
	}

	return nil
}
