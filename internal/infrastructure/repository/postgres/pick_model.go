package postgres

import (
	"database/sql"
	"time"
)

type pickTableModel struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	GameID    string         `db:"game_id"`
	Season    int            `db:"season"`
	Week      int            `db:"week"`
	Side      string         `db:"side"`
	IsLock    bool           `db:"is_lock"`
	Submitted bool           `db:"submitted"`
	Visible   bool           `db:"visible"`
	Result    sql.NullString `db:"result"`
	Points    sql.NullInt64  `db:"points"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at"`
}

type pickInsertModel struct {
	ID        string        `db:"id"`
	UserID    string        `db:"user_id"`
	GameID    string        `db:"game_id"`
	Season    int           `db:"season"`
	Week      int           `db:"week"`
	Side      string        `db:"side"`
	IsLock    bool          `db:"is_lock"`
	Submitted bool          `db:"submitted"`
	Visible   bool          `db:"visible"`
	Result    *string       `db:"result"`
	Points    sql.NullInt64 `db:"points"`
}
