package postgres

import "time"

type sourceOverrideTableModel struct {
	ID        int64      `db:"id"`
	UserID    string     `db:"user_id"`
	Season    int        `db:"season"`
	Week      int        `db:"week"`
	Preferred string     `db:"preferred_source"`
	SetBy     string     `db:"set_by"`
	Reason    string     `db:"reason"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type sourceOverrideInsertModel struct {
	UserID    string `db:"user_id"`
	Season    int    `db:"season"`
	Week      int    `db:"week"`
	Preferred string `db:"preferred_source"`
	SetBy     string `db:"set_by"`
	Reason    string `db:"reason"`
}
