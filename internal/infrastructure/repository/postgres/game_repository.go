package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridline/spreadpool/internal/domain/game"
	qb "github.com/gridline/spreadpool/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game by id: %w", err)
	}

	return gameRowToDomain(row), true, nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, season, week int) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("season", season),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		OrderBy("home_team", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games by week: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameRowToDomain(row))
	}

	return out, nil
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	var winner *string
	if item.ATSWinner != nil {
		value := string(*item.ATSWinner)
		winner = &value
	}

	insertModel := gameInsertModel{
		ID:          item.ID,
		Season:      item.Season,
		Week:        item.Week,
		HomeTeam:    item.HomeTeam,
		AwayTeam:    item.AwayTeam,
		Spread:      float64PtrToNullFloat64(item.Spread),
		HomeScore:   intPtrToNullInt64(item.HomeScore),
		AwayScore:   intPtrToNullInt64(item.AwayScore),
		Status:      string(item.Status),
		ATSWinner:   winner,
		MarginBonus: item.MarginBonus,
	}

	query, args, err := qb.InsertModel("games", insertModel, `ON CONFLICT (id) WHERE deleted_at IS NULL
DO UPDATE SET
    season = EXCLUDED.season,
    week = EXCLUDED.week,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    spread = EXCLUDED.spread,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    ats_winner = EXCLUDED.ats_winner,
    margin_bonus = EXCLUDED.margin_bonus,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert game query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert game id=%s: %w", item.ID, err)
	}

	return nil
}

func (r *GameRepository) SetOutcome(ctx context.Context, id string, winner game.ATSResult, bonus int) error {
	query, args, err := qb.Update("games").
		Set("ats_winner", string(winner)).
		Set("margin_bonus", bonus).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set game outcome query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set game outcome id=%s: %w", id, err)
	}

	return nil
}

func gameRowToDomain(row gameTableModel) game.Game {
	var winner *game.ATSResult
	if row.ATSWinner.Valid {
		value := game.ATSResult(row.ATSWinner.String)
		winner = &value
	}

	return game.Game{
		ID:          row.ID,
		Season:      row.Season,
		Week:        row.Week,
		HomeTeam:    row.HomeTeam,
		AwayTeam:    row.AwayTeam,
		Spread:      nullFloat64ToFloat64Ptr(row.Spread),
		HomeScore:   nullInt64ToIntPtr(row.HomeScore),
		AwayScore:   nullInt64ToIntPtr(row.AwayScore),
		Status:      game.Status(row.Status),
		ATSWinner:   winner,
		MarginBonus: row.MarginBonus,
		UpdatedAt:   row.UpdatedAt,
	}
}
