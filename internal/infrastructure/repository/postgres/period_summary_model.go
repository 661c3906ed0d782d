package postgres

import "time"

type periodSummaryTableModel struct {
	ID           int64      `db:"id"`
	UserID       string     `db:"user_id"`
	DisplayName  string     `db:"display_name"`
	Season       int        `db:"season"`
	Week         int        `db:"week"`
	PeriodKey    string     `db:"period_key"`
	PicksCounted int        `db:"picks_counted"`
	Wins         int        `db:"wins"`
	Losses       int        `db:"losses"`
	Pushes       int        `db:"pushes"`
	LockWins     int        `db:"lock_wins"`
	LockLosses   int        `db:"lock_losses"`
	TotalPoints  int        `db:"total_points"`
	Position     int        `db:"position"`
	Payment      string     `db:"payment_status"`
	Verified     bool       `db:"verified"`
	Source       string     `db:"source"`
	CalculatedAt time.Time  `db:"calculated_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

type periodSummaryInsertModel struct {
	UserID       string    `db:"user_id"`
	DisplayName  string    `db:"display_name"`
	Season       int       `db:"season"`
	Week         int       `db:"week"`
	PeriodKey    string    `db:"period_key"`
	PicksCounted int       `db:"picks_counted"`
	Wins         int       `db:"wins"`
	Losses       int       `db:"losses"`
	Pushes       int       `db:"pushes"`
	LockWins     int       `db:"lock_wins"`
	LockLosses   int       `db:"lock_losses"`
	TotalPoints  int       `db:"total_points"`
	Position     int       `db:"position"`
	Payment      string    `db:"payment_status"`
	Verified     bool      `db:"verified"`
	Source       string    `db:"source"`
	CalculatedAt time.Time `db:"calculated_at"`
}
