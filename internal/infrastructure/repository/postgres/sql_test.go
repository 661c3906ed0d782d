package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches sql.ErrNoRows", func(t *testing.T) {
		if !isNotFound(sql.ErrNoRows) {
			t.Fatalf("expected true for sql.ErrNoRows")
		}
	})

	t.Run("ignores wrapped error", func(t *testing.T) {
		err := fmt.Errorf("select game by id: %w", errors.New("connection reset"))
		if isNotFound(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestOptionalString(t *testing.T) {
	t.Run("returns nil for empty string", func(t *testing.T) {
		if optionalString("") != nil {
			t.Fatalf("expected nil for empty string")
		}
	})

	t.Run("returns pointer for value", func(t *testing.T) {
		got := optionalString("home")
		if got == nil || *got != "home" {
			t.Fatalf("unexpected pointer: %v", got)
		}
	})
}

func TestNullConversions(t *testing.T) {
	t.Run("null int is nil", func(t *testing.T) {
		if nullInt64ToIntPtr(sql.NullInt64{}) != nil {
			t.Fatalf("expected nil for null int")
		}
	})

	t.Run("valid int round trips", func(t *testing.T) {
		got := nullInt64ToIntPtr(sql.NullInt64{Int64: 27, Valid: true})
		if got == nil || *got != 27 {
			t.Fatalf("unexpected int pointer: %v", got)
		}
		back := intPtrToNullInt64(got)
		if !back.Valid || back.Int64 != 27 {
			t.Fatalf("unexpected null int: %+v", back)
		}
	})

	t.Run("valid float round trips", func(t *testing.T) {
		got := nullFloat64ToFloat64Ptr(sql.NullFloat64{Float64: -3.5, Valid: true})
		if got == nil || *got != -3.5 {
			t.Fatalf("unexpected float pointer: %v", got)
		}
		back := float64PtrToNullFloat64(got)
		if !back.Valid || back.Float64 != -3.5 {
			t.Fatalf("unexpected null float: %+v", back)
		}
	})

	t.Run("null time is zero", func(t *testing.T) {
		if !nullTimeToTime(sql.NullTime{}).IsZero() {
			t.Fatalf("expected zero time for null")
		}
	})

	t.Run("valid time passes through", func(t *testing.T) {
		at := time.Date(2025, 10, 12, 17, 0, 0, 0, time.UTC)
		if got := nullTimeToTime(sql.NullTime{Time: at, Valid: true}); !got.Equal(at) {
			t.Fatalf("unexpected time: %s", got)
		}
	})
}
