package pick

import (
	"errors"
	"testing"

	"github.com/gridline/spreadpool/internal/domain/game"
)

func countedPick(gameID string, isLock bool) Pick {
	return Pick{
		ID:        "pk-" + gameID,
		UserID:    "user-1",
		GameID:    gameID,
		Season:    2025,
		Week:      6,
		Side:      game.SideHome,
		IsLock:    isLock,
		Submitted: true,
		Visible:   true,
	}
}

func TestRules_ValidateSubmission_PickCap(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	existing := make([]Pick, 0, 6)
	for _, id := range []string{"g1", "g2", "g3", "g4", "g5", "g6"} {
		existing = append(existing, countedPick(id, false))
	}

	err := rules.ValidateSubmission(existing, []Pick{countedPick("g7", false)}, 2025, 6)
	if !errors.Is(err, ErrPickCapExceeded) {
		t.Fatalf("expected ErrPickCapExceeded, got %v", err)
	}

	// Replacing an already-picked game does not consume a new slot.
	if err := rules.ValidateSubmission(existing, []Pick{countedPick("g3", false)}, 2025, 6); err != nil {
		t.Fatalf("replacement should pass: %v", err)
	}
}

func TestRules_ValidateSubmission_LockCap(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	existing := []Pick{countedPick("g1", true)}

	err := rules.ValidateSubmission(existing, []Pick{countedPick("g2", true)}, 2025, 6)
	if !errors.Is(err, ErrLockCapExceeded) {
		t.Fatalf("expected ErrLockCapExceeded, got %v", err)
	}

	// Moving the lock to a different game via replacement is fine.
	moved := countedPick("g1", false)
	relock := countedPick("g2", true)
	if err := rules.ValidateSubmission(existing, []Pick{moved, relock}, 2025, 6); err != nil {
		t.Fatalf("lock move should pass: %v", err)
	}
}

func TestRules_ValidateSubmission_Shape(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	dup := []Pick{countedPick("g1", false), countedPick("g1", false)}
	if err := rules.ValidateSubmission(nil, dup, 2025, 6); !errors.Is(err, ErrDuplicateGame) {
		t.Fatalf("expected ErrDuplicateGame, got %v", err)
	}

	wrongWeek := countedPick("g1", false)
	wrongWeek.Week = 7
	if err := rules.ValidateSubmission(nil, []Pick{wrongWeek}, 2025, 6); !errors.Is(err, ErrWeekMismatch) {
		t.Fatalf("expected ErrWeekMismatch, got %v", err)
	}

	badSide := countedPick("g1", false)
	badSide.Side = game.Side("over")
	if err := rules.ValidateSubmission(nil, []Pick{badSide}, 2025, 6); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("expected ErrInvalidSide, got %v", err)
	}

	hidden := countedPick("g1", false)
	hidden.Visible = false
	existing := []Pick{hidden}
	full := make([]Pick, 0, 6)
	for _, id := range []string{"g2", "g3", "g4", "g5", "g6", "g7"} {
		full = append(full, countedPick(id, false))
	}
	// A hidden existing pick does not count against the cap.
	if err := rules.ValidateSubmission(existing, full, 2025, 6); err != nil {
		t.Fatalf("hidden pick should not consume a slot: %v", err)
	}
}
