package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// DispatchEvent is the audit record for one queued or executed recompute
// unit. PeriodKey and GameID carry enough context to replay the unit.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	PeriodKey    string
	GameID       string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
