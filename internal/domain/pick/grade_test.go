package pick

import (
	"testing"

	"github.com/gridline/spreadpool/internal/domain/game"
)

func TestGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		side       game.Side
		isLock     bool
		winner     game.ATSResult
		bonus      int
		wantResult Result
		wantPoints int
	}{
		{name: "win no bonus", side: game.SideHome, winner: game.ATSHome, bonus: 0, wantResult: ResultWin, wantPoints: 20},
		{name: "win with bonus", side: game.SideAway, winner: game.ATSAway, bonus: 3, wantResult: ResultWin, wantPoints: 23},
		{name: "lock doubles bonus", side: game.SideAway, isLock: true, winner: game.ATSAway, bonus: 3, wantResult: ResultWin, wantPoints: 26},
		{name: "lock without bonus", side: game.SideHome, isLock: true, winner: game.ATSHome, bonus: 0, wantResult: ResultWin, wantPoints: 20},
		{name: "loss", side: game.SideHome, winner: game.ATSAway, bonus: 5, wantResult: ResultLoss, wantPoints: 0},
		{name: "lock loss still zero", side: game.SideHome, isLock: true, winner: game.ATSAway, bonus: 5, wantResult: ResultLoss, wantPoints: 0},
		{name: "push", side: game.SideHome, winner: game.ATSPush, bonus: 0, wantResult: ResultPush, wantPoints: 10},
		{name: "push ignores lock", side: game.SideAway, isLock: true, winner: game.ATSPush, bonus: 0, wantResult: ResultPush, wantPoints: 10},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, points := Grade(tc.side, tc.isLock, tc.winner, tc.bonus)
			if result != tc.wantResult {
				t.Fatalf("unexpected result: got=%s want=%s", result, tc.wantResult)
			}
			if points != tc.wantPoints {
				t.Fatalf("unexpected points: got=%d want=%d", points, tc.wantPoints)
			}
		})
	}
}

func TestAnonymousPick_Eligible(t *testing.T) {
	t.Parallel()

	userID := "user-1"
	base := AnonymousPick{
		AssignedUserID:   &userID,
		ValidationStatus: ValidationAuto,
		Active:           true,
		Visible:          true,
	}

	if !base.Eligible() {
		t.Fatalf("assigned validated active visible pick should be eligible")
	}

	unassigned := base
	unassigned.AssignedUserID = nil
	if unassigned.Eligible() {
		t.Fatalf("unassigned pick should not be eligible")
	}

	pending := base
	pending.ValidationStatus = ValidationPending
	if pending.Eligible() {
		t.Fatalf("pending pick should not be eligible")
	}

	conflicting := base
	conflicting.ValidationStatus = ValidationConflicting
	if conflicting.Eligible() {
		t.Fatalf("conflicting pick should not be eligible")
	}

	hidden := base
	hidden.Visible = false
	if hidden.Eligible() {
		t.Fatalf("hidden pick should not be eligible")
	}

	inactive := base
	inactive.Active = false
	if inactive.Eligible() {
		t.Fatalf("superseded pick should not be eligible")
	}
}
