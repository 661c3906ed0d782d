package payment

import "context"

// LedgerEntry is one row from the external payment ledger. RawStatus is
// passed through untouched; mapping to a display status happens at
// aggregation time.
type LedgerEntry struct {
	UserID        string
	Season        int
	RawStatus     string
	LedgerMatched bool
}

// Provider reads the external ledger. Failures degrade: the aggregator
// falls back to not-paid rather than blocking a recompute.
type Provider interface {
	ListBySeason(ctx context.Context, season int) ([]LedgerEntry, error)
}
