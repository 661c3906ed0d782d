package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/gridline/spreadpool/internal/domain/game"
	"github.com/gridline/spreadpool/internal/domain/pick"
	qb "github.com/gridline/spreadpool/internal/platform/querybuilder"
)

type AnonymousPickRepository struct {
	db *sqlx.DB
}

func NewAnonymousPickRepository(db *sqlx.DB) *AnonymousPickRepository {
	return &AnonymousPickRepository{db: db}
}

func (r *AnonymousPickRepository) GetByID(ctx context.Context, id string) (pick.AnonymousPick, bool, error) {
	query, args, err := qb.Select("*").From("anonymous_picks").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return pick.AnonymousPick{}, false, fmt.Errorf("build get anonymous pick query: %w", err)
	}

	var row anonymousPickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.AnonymousPick{}, false, nil
		}
		return pick.AnonymousPick{}, false, fmt.Errorf("select anonymous pick by id: %w", err)
	}

	return anonymousPickRowToDomain(row), true, nil
}

func (r *AnonymousPickRepository) ListByEmailWeek(ctx context.Context, email string, season, week int) ([]pick.AnonymousPick, error) {
	return r.list(ctx, "list anonymous picks by email week",
		qb.Expr("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))),
		qb.Eq("season", season),
		qb.Eq("week", week),
	)
}

func (r *AnonymousPickRepository) ListByUserWeek(ctx context.Context, userID string, season, week int) ([]pick.AnonymousPick, error) {
	return r.list(ctx, "list anonymous picks by user week",
		qb.Eq("assigned_user_id", userID),
		qb.Eq("season", season),
		qb.Eq("week", week),
	)
}

func (r *AnonymousPickRepository) ListByUserSeason(ctx context.Context, userID string, season int) ([]pick.AnonymousPick, error) {
	return r.list(ctx, "list anonymous picks by user season",
		qb.Eq("assigned_user_id", userID),
		qb.Eq("season", season),
	)
}

func (r *AnonymousPickRepository) ListByGame(ctx context.Context, gameID string) ([]pick.AnonymousPick, error) {
	return r.list(ctx, "list anonymous picks by game", qb.Eq("game_id", gameID))
}

func (r *AnonymousPickRepository) ListUserIDsByWeek(ctx context.Context, season, week int) ([]string, error) {
	return r.listUserIDs(ctx, "list anonymous pick user ids by week",
		qb.Eq("season", season),
		qb.Eq("week", week),
	)
}

func (r *AnonymousPickRepository) ListUserIDsBySeason(ctx context.Context, season int) ([]string, error) {
	return r.listUserIDs(ctx, "list anonymous pick user ids by season", qb.Eq("season", season))
}

func (r *AnonymousPickRepository) Upsert(ctx context.Context, items []pick.AnonymousPick) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert anonymous picks: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := anonymousPickInsertModel{
			ID:               item.ID,
			Email:            strings.ToLower(strings.TrimSpace(item.Email)),
			GameID:           item.GameID,
			Season:           item.Season,
			Week:             item.Week,
			Side:             string(item.Side),
			IsLock:           item.IsLock,
			AssignedUserID:   item.AssignedUserID,
			ValidationStatus: string(item.ValidationStatus),
			Active:           item.Active,
			Visible:          item.Visible,
			Result:           resultToStringPtr(item.Result),
			Points:           intPtrToNullInt64(item.Points),
		}
		query, args, err := qb.InsertModel("anonymous_picks", insertModel, `ON CONFLICT (email, season, week, game_id) WHERE deleted_at IS NULL
DO UPDATE SET
    side = EXCLUDED.side,
    is_lock = EXCLUDED.is_lock,
    validation_status = EXCLUDED.validation_status,
    active = EXCLUDED.active,
    visible = EXCLUDED.visible,
    result = EXCLUDED.result,
    points = EXCLUDED.points,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert anonymous pick query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert anonymous pick id=%s game=%s: %w", item.ID, item.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert anonymous picks tx: %w", err)
	}
	return nil
}

func (r *AnonymousPickRepository) AssignByEmail(ctx context.Context, email, userID string) (int, error) {
	query, args, err := qb.Update("anonymous_picks").
		Set("assigned_user_id", userID).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Expr("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))),
			qb.IsNull("assigned_user_id"),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build assign anonymous picks query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("assign anonymous picks user=%s: %w", userID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count assigned anonymous picks: %w", err)
	}

	return int(affected), nil
}

func (r *AnonymousPickRepository) SetValidation(ctx context.Context, id string, status pick.ValidationStatus) error {
	query, args, err := qb.Update("anonymous_picks").
		Set("validation_status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set anonymous pick validation query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set anonymous pick validation id=%s: %w", id, err)
	}

	return nil
}

func (r *AnonymousPickRepository) SetActiveForUserWeek(ctx context.Context, userID string, season, week int, active bool) error {
	query, args, err := qb.Update("anonymous_picks").
		Set("active", active).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("assigned_user_id", userID),
			qb.Eq("season", season),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set anonymous picks active query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set anonymous picks active user=%s season=%d week=%d: %w", userID, season, week, err)
	}

	return nil
}

func (r *AnonymousPickRepository) SetGrade(ctx context.Context, id string, result pick.Result, points int) error {
	query, args, err := qb.Update("anonymous_picks").
		Set("result", string(result)).
		Set("points", points).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set anonymous pick grade query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set anonymous pick grade id=%s: %w", id, err)
	}

	return nil
}

func (r *AnonymousPickRepository) list(ctx context.Context, label string, conditions ...qb.Condition) ([]pick.AnonymousPick, error) {
	conditions = append(conditions, qb.IsNull("deleted_at"))
	query, args, err := qb.Select("*").From("anonymous_picks").
		Where(conditions...).
		OrderBy("week", "game_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", label, err)
	}

	var rows []anonymousPickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	out := make([]pick.AnonymousPick, 0, len(rows))
	for _, row := range rows {
		out = append(out, anonymousPickRowToDomain(row))
	}

	return out, nil
}

func (r *AnonymousPickRepository) listUserIDs(ctx context.Context, label string, conditions ...qb.Condition) ([]string, error) {
	conditions = append(conditions,
		qb.Expr("assigned_user_id IS NOT NULL"),
		qb.In("validation_status", []any{string(pick.ValidationAuto), string(pick.ValidationManual)}),
		qb.Eq("active", true),
		qb.Eq("visible", true),
		qb.IsNull("deleted_at"),
	)
	query, args, err := qb.Select("DISTINCT assigned_user_id").From("anonymous_picks").
		Where(conditions...).
		OrderBy("assigned_user_id").
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

func anonymousPickRowToDomain(row anonymousPickTableModel) pick.AnonymousPick {
	return pick.AnonymousPick{
		ID:               row.ID,
		Email:            row.Email,
		GameID:           row.GameID,
		Season:           row.Season,
		Week:             row.Week,
		Side:             game.Side(row.Side),
		IsLock:           row.IsLock,
		AssignedUserID:   nullStringToStringPtr(row.AssignedUserID),
		ValidationStatus: pick.ValidationStatus(row.ValidationStatus),
		Active:           row.Active,
		Visible:          row.Visible,
		Result:           nullStringToResultPtr(row.Result),
		Points:           nullInt64ToIntPtr(row.Points),
		UpdatedAt:        row.UpdatedAt,
	}
}
