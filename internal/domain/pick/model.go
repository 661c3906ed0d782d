package pick

import (
	"time"

	"github.com/gridline/spreadpool/internal/domain/game"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultPush Result = "push"
)

// Pick is a user's authenticated selection for one game. Result and Points
// stay nil until the game's spread outcome exists.
type Pick struct {
	ID        string
	UserID    string
	GameID    string
	Season    int
	Week      int
	Side      game.Side
	IsLock    bool
	Submitted bool
	Visible   bool
	Result    *Result
	Points    *int
	UpdatedAt time.Time
}

// Counted reports whether the pick participates in precedence and
// aggregation at all. Hidden or withdrawn picks contribute nothing.
func (p Pick) Counted() bool {
	return p.Submitted && p.Visible
}

// Graded reports whether the pick already carries a result.
func (p Pick) Graded() bool {
	return p.Result != nil && p.Points != nil
}

type ValidationStatus string

const (
	ValidationPending     ValidationStatus = "pending"
	ValidationAuto        ValidationStatus = "auto_validated"
	ValidationManual      ValidationStatus = "manually_validated"
	ValidationConflicting ValidationStatus = "conflicting"
)

func ValidatedStatus(s ValidationStatus) bool {
	return s == ValidationAuto || s == ValidationManual
}

// AnonymousPick is a provisional selection made before registration. It is
// retained for audit even after an authenticated pick set supersedes it.
type AnonymousPick struct {
	ID               string
	Email            string
	GameID           string
	Season           int
	Week             int
	Side             game.Side
	IsLock           bool
	AssignedUserID   *string
	ValidationStatus ValidationStatus
	Active           bool
	Visible          bool
	Result           *Result
	Points           *int
	UpdatedAt        time.Time
}

// Eligible reports whether the anonymous pick may enter aggregation: it must
// be assigned to a user, validated, visible and still active.
func (p AnonymousPick) Eligible() bool {
	return p.AssignedUserID != nil && ValidatedStatus(p.ValidationStatus) && p.Visible && p.Active
}

// AsPick lifts an eligible anonymous pick into the common pick shape so the
// grader and aggregator treat both sources identically.
func (p AnonymousPick) AsPick() Pick {
	userID := ""
	if p.AssignedUserID != nil {
		userID = *p.AssignedUserID
	}
	return Pick{
		ID:        p.ID,
		UserID:    userID,
		GameID:    p.GameID,
		Season:    p.Season,
		Week:      p.Week,
		Side:      p.Side,
		IsLock:    p.IsLock,
		Submitted: true,
		Visible:   p.Visible,
		Result:    p.Result,
		Points:    p.Points,
		UpdatedAt: p.UpdatedAt,
	}
}
