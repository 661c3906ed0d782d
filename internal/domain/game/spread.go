package game

import "math"

// pushTolerance absorbs float noise around a dead-on cover. Spreads are
// half-point granular, so any adjusted margin inside the window is a push.
const pushTolerance = 0.5

// Margin-bonus tiers, inclusive lower bounds on the adjusted margin.
const (
	bonusTier1Margin = 11
	bonusTier2Margin = 20
	bonusTier3Margin = 29

	bonusTier1Points = 1
	bonusTier2Points = 3
	bonusTier3Points = 5
)

// ResolveSpread derives the ATS winner and margin bonus from final scores.
// adjusted = home + spread - away: positive means the home side covered.
// Pure by construction; replaying with the same inputs yields the same
// outcome.
func ResolveSpread(homeScore, awayScore int, spread float64) (ATSResult, int) {
	adjusted := float64(homeScore) + spread - float64(awayScore)
	margin := math.Abs(adjusted)

	if margin < pushTolerance {
		return ATSPush, 0
	}

	winner := ATSAway
	if adjusted > 0 {
		winner = ATSHome
	}

	return winner, marginBonus(margin)
}

func marginBonus(margin float64) int {
	switch {
	case margin >= bonusTier3Margin:
		return bonusTier3Points
	case margin >= bonusTier2Margin:
		return bonusTier2Points
	case margin >= bonusTier1Margin:
		return bonusTier1Points
	default:
		return 0
	}
}

// Gradable reports whether the game carries everything the resolver needs.
// Missing scores or spread are not an error, they just defer grading.
func (g Game) Gradable() bool {
	return g.Status == StatusCompleted && g.HomeScore != nil && g.AwayScore != nil && g.Spread != nil
}

// ResolveOutcome runs the spread resolver against the game's own fields.
// The bool is false when the game is not gradable yet.
func (g Game) ResolveOutcome() (ATSResult, int, bool) {
	if !g.Gradable() {
		return "", 0, false
	}
	winner, bonus := ResolveSpread(*g.HomeScore, *g.AwayScore, *g.Spread)
	return winner, bonus, true
}
