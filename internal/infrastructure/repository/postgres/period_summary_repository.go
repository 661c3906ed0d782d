package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	"github.com/gridline/spreadpool/internal/domain/picksource"
	qb "github.com/gridline/spreadpool/internal/platform/querybuilder"
)

type PeriodSummaryRepository struct {
	db *sqlx.DB
}

func NewPeriodSummaryRepository(db *sqlx.DB) *PeriodSummaryRepository {
	return &PeriodSummaryRepository{db: db}
}

func (r *PeriodSummaryRepository) ListByPeriod(ctx context.Context, period leaderboard.Period) ([]leaderboard.PeriodSummary, error) {
	query, args, err := qb.Select("*").From("period_summaries").
		Where(
			qb.Eq("period_key", period.Key()),
			qb.IsNull("deleted_at"),
		).
		OrderBy("position", "total_points DESC", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list period summaries query: %w", err)
	}

	var rows []periodSummaryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list period summaries: %w", err)
	}

	out := make([]leaderboard.PeriodSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaderboard.PeriodSummary{
			UserID:       row.UserID,
			DisplayName:  row.DisplayName,
			Period:       leaderboard.Period{Season: row.Season, Week: row.Week},
			PicksCounted: row.PicksCounted,
			Wins:         row.Wins,
			Losses:       row.Losses,
			Pushes:       row.Pushes,
			LockWins:     row.LockWins,
			LockLosses:   row.LockLosses,
			TotalPoints:  row.TotalPoints,
			Rank:         row.Position,
			Payment:      leaderboard.PaymentStatus(row.Payment),
			Verified:     row.Verified,
			Source:       picksource.Source(row.Source),
			CalculatedAt: row.CalculatedAt,
		})
	}

	return out, nil
}

func (r *PeriodSummaryRepository) ReplaceByPeriod(ctx context.Context, period leaderboard.Period, rows []leaderboard.PeriodSummary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace period summaries: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.Update("period_summaries").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("period_key", period.Key()),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear period summaries query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear period summaries: %w", err)
	}

	for _, item := range rows {
		insertModel := periodSummaryInsertModel{
			UserID:       item.UserID,
			DisplayName:  item.DisplayName,
			Season:       period.Season,
			Week:         period.Week,
			PeriodKey:    period.Key(),
			PicksCounted: item.PicksCounted,
			Wins:         item.Wins,
			Losses:       item.Losses,
			Pushes:       item.Pushes,
			LockWins:     item.LockWins,
			LockLosses:   item.LockLosses,
			TotalPoints:  item.TotalPoints,
			Position:     item.Rank,
			Payment:      string(item.Payment),
			Verified:     item.Verified,
			Source:       string(item.Source),
			CalculatedAt: item.CalculatedAt.UTC(),
		}
		query, args, err := qb.InsertModel("period_summaries", insertModel, `ON CONFLICT (user_id, period_key) WHERE deleted_at IS NULL
DO UPDATE SET
    display_name = EXCLUDED.display_name,
    picks_counted = EXCLUDED.picks_counted,
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    pushes = EXCLUDED.pushes,
    lock_wins = EXCLUDED.lock_wins,
    lock_losses = EXCLUDED.lock_losses,
    total_points = EXCLUDED.total_points,
    position = EXCLUDED.position,
    payment_status = EXCLUDED.payment_status,
    verified = EXCLUDED.verified,
    source = EXCLUDED.source,
    calculated_at = EXCLUDED.calculated_at,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert period summary query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert period summary user=%s period=%s: %w", item.UserID, period.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace period summaries tx: %w", err)
	}
	return nil
}
