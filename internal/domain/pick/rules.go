package pick

import (
	"errors"

	"github.com/gridline/spreadpool/internal/domain/game"
)

var (
	ErrPickCapExceeded = errors.New("pick cap exceeded for period")
	ErrLockCapExceeded = errors.New("lock cap exceeded for period")
	ErrDuplicateGame   = errors.New("duplicate pick for game")
	ErrInvalidSide     = errors.New("selected side must be home or away")
	ErrWeekMismatch    = errors.New("pick does not belong to the submitted week")
)

// Rules caps a user's counted pick set per (season, week). Enforced at
// submission time, before any result exists, so pushes consume cap and lock
// slots like any other pick.
type Rules struct {
	MaxPicksPerWeek int
	MaxLocksPerWeek int
}

func DefaultRules() Rules {
	return Rules{
		MaxPicksPerWeek: 6,
		MaxLocksPerWeek: 1,
	}
}

// ValidateSubmission checks an incoming batch against the picks the user
// already holds for the week. A resubmission for a game the user already
// picked replaces that pick and does not consume an extra slot.
func (r Rules) ValidateSubmission(existing, incoming []Pick, season, week int) error {
	if len(incoming) == 0 {
		return nil
	}

	byGame := make(map[string]Pick, len(existing))
	for _, item := range existing {
		if !item.Counted() {
			continue
		}
		byGame[item.GameID] = item
	}

	seen := make(map[string]struct{}, len(incoming))
	for _, item := range incoming {
		if item.Season != season || item.Week != week {
			return ErrWeekMismatch
		}
		if !game.ValidSide(item.Side) {
			return ErrInvalidSide
		}
		if _, dup := seen[item.GameID]; dup {
			return ErrDuplicateGame
		}
		seen[item.GameID] = struct{}{}
		byGame[item.GameID] = item
	}

	picks := 0
	locks := 0
	for _, item := range byGame {
		picks++
		if item.IsLock {
			locks++
		}
	}

	if picks > r.MaxPicksPerWeek {
		return ErrPickCapExceeded
	}
	if locks > r.MaxLocksPerWeek {
		return ErrLockCapExceeded
	}
	return nil
}
