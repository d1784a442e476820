package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActivityKind string

const (
	ActivityReport   ActivityKind = "report"
	ActivityValidate ActivityKind = "validate"
)

// ActivityEvent is a best-effort signal for the gamification pipeline. Losing
// one is acceptable; blocking a request on it is not.
type ActivityEvent struct {
	UserID     uuid.UUID    `json:"user_id"`
	Kind       ActivityKind `json:"kind"`
	OccurredAt time.Time    `json:"occurred_at"`
}
