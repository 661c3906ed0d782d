package postgres

import (
	"database/sql"
	"time"
)

type anonymousPickTableModel struct {
	ID               string         `db:"id"`
	Email            string         `db:"email"`
	GameID           string         `db:"game_id"`
	Season           int            `db:"season"`
	Week             int            `db:"week"`
	Side             string         `db:"side"`
	IsLock           bool           `db:"is_lock"`
	AssignedUserID   sql.NullString `db:"assigned_user_id"`
	ValidationStatus string         `db:"validation_status"`
	Active           bool           `db:"active"`
	Visible          bool           `db:"visible"`
	Result           sql.NullString `db:"result"`
	Points           sql.NullInt64  `db:"points"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	DeletedAt        *time.Time     `db:"deleted_at"`
}

type anonymousPickInsertModel struct {
	ID               string        `db:"id"`
	Email            string        `db:"email"`
	GameID           string        `db:"game_id"`
	Season           int           `db:"season"`
	Week             int           `db:"week"`
	Side             string        `db:"side"`
	IsLock           bool          `db:"is_lock"`
	AssignedUserID   *string       `db:"assigned_user_id"`
	ValidationStatus string        `db:"validation_status"`
	Active           bool          `db:"active"`
	Visible          bool          `db:"visible"`
	Result           *string       `db:"result"`
	Points           sql.NullInt64 `db:"points"`
}
