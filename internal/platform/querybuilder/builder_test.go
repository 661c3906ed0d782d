package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "home_team", "away_team").
		From("games").
		Where(Eq("season", 2025), Eq("week", 6), IsNull("deleted_at")).
		OrderBy("id").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, home_team, away_team FROM games WHERE season = $1 AND week = $2 AND deleted_at IS NULL ORDER BY id LIMIT 50"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 2025 || args[1] != 6 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("picks").
		Where(In("user_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM picks WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderWithConflictSuffix(t *testing.T) {
	query, args, err := InsertInto("games").
		Columns("id", "season", "week").
		Values("g1", 2025, 6).
		Suffix("ON CONFLICT (id) DO UPDATE SET week = EXCLUDED.week").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO games (id, season, week) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET week = EXCLUDED.week"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "g1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("picks").
		Set("result", "win").
		Set("points", 23).
		SetExpr("graded_at", "NOW()").
		Where(Eq("id", "p1"), IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE picks SET result = $1, points = $2, graded_at = NOW() WHERE id = $3 AND deleted_at IS NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "win" || args[1] != 23 || args[2] != "p1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestExprRewritesPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("period_summaries").
		Where(Eq("period_key", "2025-w06"), Expr("total_points >= ?", 40)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM period_summaries WHERE period_key = $1 AND total_points >= $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[1] != 40 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
