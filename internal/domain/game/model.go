package game

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Side is the team a pick is placed on.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// ATSResult is the against-the-spread outcome of a completed game.
type ATSResult string

const (
	ATSHome ATSResult = "home"
	ATSAway ATSResult = "away"
	ATSPush ATSResult = "push"
)

// Game is one scheduled contest. Spread is expressed as points added to the
// home score. ATSWinner stays nil until the game completes with scores and a
// spread on record.
type Game struct {
	ID          string
	Season      int
	Week        int
	HomeTeam    string
	AwayTeam    string
	Spread      *float64
	HomeScore   *int
	AwayScore   *int
	Status      Status
	ATSWinner   *ATSResult
	MarginBonus int
	UpdatedAt   time.Time
}

// NormalizeStatus maps raw feed statuses onto the three states the engine
// tracks. Completion is sticky: unknown values never regress a game.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed", "final", "ft", "closed", "post":
		return StatusCompleted
	case "in_progress", "inprogress", "live", "halftime":
		return StatusInProgress
	default:
		return StatusScheduled
	}
}

// CanTransition reports whether a feed update may move a game from one
// status to another. Status only moves forward.
func CanTransition(from, to Status) bool {
	rank := func(s Status) int {
		switch s {
		case StatusCompleted:
			return 2
		case StatusInProgress:
			return 1
		default:
			return 0
		}
	}
	return rank(to) >= rank(from)
}

func ValidSide(s Side) bool {
	return s == SideHome || s == SideAway
}
