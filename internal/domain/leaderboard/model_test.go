package leaderboard

import "testing"

func TestNormalizePaymentStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want PaymentStatus
	}{
		{raw: "Paid", want: PaymentPaid},
		{raw: " settled ", want: PaymentPaid},
		{raw: "PENDING", want: PaymentPending},
		{raw: "in_review", want: PaymentPending},
		{raw: "Unknown", want: PaymentNotPaid},
		{raw: "", want: PaymentNotPaid},
		{raw: "refunded?", want: PaymentNotPaid},
	}

	for _, tc := range tests {
		if got := NormalizePaymentStatus(tc.raw); got != tc.want {
			t.Fatalf("NormalizePaymentStatus(%q): got=%s want=%s", tc.raw, got, tc.want)
		}
	}
}

func TestPeriodKey(t *testing.T) {
	t.Parallel()

	if got := WeekPeriod(2025, 6).Key(); got != "2025-w06" {
		t.Fatalf("unexpected week key: %s", got)
	}
	if got := SeasonPeriod(2025).Key(); got != "2025-season" {
		t.Fatalf("unexpected season key: %s", got)
	}
	if !SeasonPeriod(2025).IsSeason() {
		t.Fatalf("season period should report IsSeason")
	}
	if WeekPeriod(2025, 1).IsSeason() {
		t.Fatalf("week period should not report IsSeason")
	}
}
