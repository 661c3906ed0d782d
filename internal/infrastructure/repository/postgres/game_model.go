package postgres

import (
	"database/sql"
	"time"
)

type gameTableModel struct {
	ID          string          `db:"id"`
	Season      int             `db:"season"`
	Week        int             `db:"week"`
	HomeTeam    string          `db:"home_team"`
	AwayTeam    string          `db:"away_team"`
	Spread      sql.NullFloat64 `db:"spread"`
	HomeScore   sql.NullInt64   `db:"home_score"`
	AwayScore   sql.NullInt64   `db:"away_score"`
	Status      string          `db:"status"`
	ATSWinner   sql.NullString  `db:"ats_winner"`
	MarginBonus int             `db:"margin_bonus"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	DeletedAt   *time.Time      `db:"deleted_at"`
}

type gameInsertModel struct {
	ID          string          `db:"id"`
	Season      int             `db:"season"`
	Week        int             `db:"week"`
	HomeTeam    string          `db:"home_team"`
	AwayTeam    string          `db:"away_team"`
	Spread      sql.NullFloat64 `db:"spread"`
	HomeScore   sql.NullInt64   `db:"home_score"`
	AwayScore   sql.NullInt64   `db:"away_score"`
	Status      string          `db:"status"`
	ATSWinner   *string         `db:"ats_winner"`
	MarginBonus int             `db:"margin_bonus"`
}
