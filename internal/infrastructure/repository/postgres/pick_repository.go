package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridline/spreadpool/internal/domain/game"
	"github.com/gridline/spreadpool/internal/domain/pick"
	qb "github.com/gridline/spreadpool/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetByID(ctx context.Context, id string) (pick.Pick, bool, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build get pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("select pick by id: %w", err)
	}

	return pickRowToDomain(row), true, nil
}

func (r *PickRepository) ListByUserWeek(ctx context.Context, userID string, season, week int) ([]pick.Pick, error) {
	return r.list(ctx, "list picks by user week",
		qb.Eq("user_id", userID),
		qb.Eq("season", season),
		qb.Eq("week", week),
	)
}

func (r *PickRepository) ListByUserSeason(ctx context.Context, userID string, season int) ([]pick.Pick, error) {
	return r.list(ctx, "list picks by user season",
		qb.Eq("user_id", userID),
		qb.Eq("season", season),
	)
}

func (r *PickRepository) ListByGame(ctx context.Context, gameID string) ([]pick.Pick, error) {
	return r.list(ctx, "list picks by game", qb.Eq("game_id", gameID))
}

func (r *PickRepository) ListUserIDsByWeek(ctx context.Context, season, week int) ([]string, error) {
	return r.listUserIDs(ctx, "list pick user ids by week",
		qb.Eq("season", season),
		qb.Eq("week", week),
	)
}

func (r *PickRepository) ListUserIDsBySeason(ctx context.Context, season int) ([]string, error) {
	return r.listUserIDs(ctx, "list pick user ids by season", qb.Eq("season", season))
}

func (r *PickRepository) Upsert(ctx context.Context, items []pick.Pick) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert picks: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := pickInsertModel{
			ID:        item.ID,
			UserID:    item.UserID,
			GameID:    item.GameID,
			Season:    item.Season,
			Week:      item.Week,
			Side:      string(item.Side),
			IsLock:    item.IsLock,
			Submitted: item.Submitted,
			Visible:   item.Visible,
			Result:    resultToStringPtr(item.Result),
			Points:    intPtrToNullInt64(item.Points),
		}
		query, args, err := qb.InsertModel("picks", insertModel, `ON CONFLICT (id) WHERE deleted_at IS NULL
DO UPDATE SET
    side = EXCLUDED.side,
    is_lock = EXCLUDED.is_lock,
    submitted = EXCLUDED.submitted,
    visible = EXCLUDED.visible,
    result = EXCLUDED.result,
    points = EXCLUDED.points,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert pick query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert pick id=%s game=%s: %w", item.ID, item.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert picks tx: %w", err)
	}
	return nil
}

func (r *PickRepository) SetGrade(ctx context.Context, id string, result pick.Result, points int) error {
	query, args, err := qb.Update("picks").
		Set("result", string(result)).
		Set("points", points).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set pick grade query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set pick grade id=%s: %w", id, err)
	}

	return nil
}

func (r *PickRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	query, args, err := qb.Update("picks").
		Set("visible", visible).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set pick visibility query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set pick visibility id=%s: %w", id, err)
	}

	return nil
}

func (r *PickRepository) list(ctx context.Context, label string, conditions ...qb.Condition) ([]pick.Pick, error) {
	conditions = append(conditions, qb.IsNull("deleted_at"))
	query, args, err := qb.Select("*").From("picks").
		Where(conditions...).
		OrderBy("week", "game_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", label, err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickRowToDomain(row))
	}

	return out, nil
}

func (r *PickRepository) listUserIDs(ctx context.Context, label string, conditions ...qb.Condition) ([]string, error) {
	conditions = append(conditions,
		qb.Eq("submitted", true),
		qb.Eq("visible", true),
		qb.IsNull("deleted_at"),
	)
	query, args, err := qb.Select("DISTINCT user_id").From("picks").
		Where(conditions...).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", label, err)
	}

	var userIDs []string
	if err := r.db.SelectContext(ctx, &userIDs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	return userIDs, nil
}

func pickRowToDomain(row pickTableModel) pick.Pick {
	return pick.Pick{
		ID:        row.ID,
		UserID:    row.UserID,
		GameID:    row.GameID,
		Season:    row.Season,
		Week:      row.Week,
		Side:      game.Side(row.Side),
		IsLock:    row.IsLock,
		Submitted: row.Submitted,
		Visible:   row.Visible,
		Result:    nullStringToResultPtr(row.Result),
		Points:    nullInt64ToIntPtr(row.Points),
		UpdatedAt: row.UpdatedAt,
	}
}

func resultToStringPtr(result *pick.Result) *string {
	if result == nil {
		return nil
	}
	value := string(*result)
	return &value
}

func nullStringToResultPtr(value sql.NullString) *pick.Result {
	if !value.Valid {
		return nil
	}
	result := pick.Result(value.String)
	return &result
}
