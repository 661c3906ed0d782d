package leaderboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridline/spreadpool/internal/domain/picksource"
)

// Period identifies one leaderboard scope. Week 0 is the season-wide board.
type Period struct {
	Season int
	Week   int
}

func WeekPeriod(season, week int) Period {
	return Period{Season: season, Week: week}
}

func SeasonPeriod(season int) Period {
	return Period{Season: season}
}

func (p Period) IsSeason() bool {
	return p.Week == 0
}

// Key is a stable identifier used for job dedup and logging.
func (p Period) Key() string {
	if p.IsSeason() {
		return fmt.Sprintf("%d-season", p.Season)
	}
	return fmt.Sprintf("%d-w%02d", p.Season, p.Week)
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentNotPaid PaymentStatus = "not_paid"
)

// NormalizePaymentStatus maps a raw ledger value onto the three statuses the
// board displays. Anything unrecognized, including empty and "Unknown",
// degrades to not paid rather than failing aggregation.
func NormalizePaymentStatus(raw string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "complete", "completed", "settled":
		return PaymentPaid
	case "pending", "processing", "in_review":
		return PaymentPending
	default:
		return PaymentNotPaid
	}
}

// PeriodSummary is one user's standing in one period. Fully derived from
// source picks; recomputing from the same underlying picks always yields the
// same row.
type PeriodSummary struct {
	UserID       string
	DisplayName  string
	Period       Period
	PicksCounted int
	Wins         int
	Losses       int
	Pushes       int
	LockWins     int
	LockLosses   int
	TotalPoints  int
	Rank         int
	Payment      PaymentStatus
	Verified     bool
	Source       picksource.Source
	CalculatedAt time.Time
}
