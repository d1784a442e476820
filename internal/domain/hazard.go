package domain

import (
	"time"

	"github.com/google/uuid"
)

type HazardType string

const (
	HazardPothole        HazardType = "pothole"
	HazardAccident       HazardType = "accident"
	HazardRoadblock      HazardType = "roadblock"
	HazardPoliceChecking HazardType = "police_checking"
	HazardWaterlogging   HazardType = "waterlogging"
	HazardConstruction   HazardType = "construction"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type HazardStatus string

const (
	StatusPending  HazardStatus = "pending"
	StatusActive   HazardStatus = "active"
	StatusResolved HazardStatus = "resolved"
	StatusExpired  HazardStatus = "expired"
)

// Terminal reports whether the status is final. A hazard never leaves a
// terminal status.
func (s HazardStatus) Terminal() bool {
	return s == StatusResolved || s == StatusExpired
}

type Coordinate struct {
	Lat float64 `json:"lat" validate:"lat"`  // -90..90
	Lng float64 `json:"lng" validate:"lng"`  // -180..180
}

func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

type Hazard struct {
	ID          uuid.UUID    `json:"id"`
	Type        HazardType   `json:"type"`
	Location    Coordinate   `json:"location"`
	Bearing     *float64     `json:"bearing,omitempty"` // direction the hazard applies to, 0-360
	Severity    Severity     `json:"severity"`
	Status      HazardStatus `json:"status"`
	ReportedBy  uuid.UUID    `json:"reported_by"`
	Description string       `json:"description,omitempty"`

	ConfirmScore int `json:"confirm_score"`
	RejectScore  int `json:"reject_score"`
	ResolveVotes int `json:"resolve_votes"`

	ResolvedBy *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// VerificationScore is shown in hazard listings, confirmations against rejections.
func (h *Hazard) VerificationScore() int {
	return h.ConfirmScore - h.RejectScore
}

// Lifetime returns how long a freshly reported hazard of the given type stays
// around before the expiry sweep picks it up. Short-lived conditions (accidents,
// police checks) age out within hours, road damage sticks around for days.
func Lifetime(t HazardType) time.Duration {
	switch t {
	case HazardAccident, HazardPoliceChecking:
		return 4 * time.Hour
	case HazardRoadblock, HazardWaterlogging:
		return 12 * time.Hour
	case HazardPothole, HazardConstruction:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
