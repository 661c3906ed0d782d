package pick

import "github.com/gridline/spreadpool/internal/domain/game"

const (
	// BasePoints is awarded for any winning pick before bonuses.
	BasePoints = 20
	// PushPoints is awarded on a push, lock or not.
	PushPoints = 10
)

// Grade scores one pick against a resolved spread outcome. The rule is
// identical for authenticated and anonymous picks: a push pays PushPoints
// regardless of side or lock, a win pays base plus the margin bonus (the
// bonus doubled on a lock), a loss pays nothing.
func Grade(side game.Side, isLock bool, winner game.ATSResult, bonus int) (Result, int) {
	if winner == game.ATSPush {
		return ResultPush, PushPoints
	}

	if string(side) != string(winner) {
		return ResultLoss, 0
	}

	points := BasePoints + bonus
	if isLock {
		points += bonus
	}
	return ResultWin, points
}
