package domain

import (
	"time"

	"github.com/google/uuid"
)

type DetectRequest struct {
	UserID        string     `json:"user_id" validate:"required,uuid"`
	Location      Coordinate `json:"location"`
	Heading       *float64   `json:"heading,omitempty" validate:"omitempty,bearing"`
	SpeedKmh      float64    `json:"speed_kmh" validate:"min=0"`
	RoutePolyline string     `json:"route_polyline,omitempty"`
}

type DetectResponse struct {
	Alerts []AlertRecord     `json:"alerts"`
	Nearby []AnnotatedHazard `json:"nearby"`
}

type ReportHazardRequest struct {
	Type        HazardType `json:"type" validate:"required,oneof=pothole accident roadblock police_checking waterlogging construction"`
	Location    Coordinate `json:"location"`
	Severity    Severity   `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Bearing     *float64   `json:"bearing,omitempty" validate:"omitempty,bearing"`
	Description string     `json:"description,omitempty" validate:"max=500"`

	// Filled from identity headers, not the body.
	ReportedBy uuid.UUID `json:"-"`
}

type NearbyRequest struct {
	Location Coordinate `json:"location"`
	RadiusKm float64    `json:"radius_km" validate:"omitempty,min=0.1,max=50"`
}

type ValidateRequest struct {
	HazardID uuid.UUID  `json:"-"`
	Action   VoteAction `json:"action" validate:"required"`
	Location Coordinate `json:"location"`

	// Filled from identity headers.
	UserID uuid.UUID `json:"-"`
	Role   Role      `json:"-"`
}

type UpdateHazardRequest struct {
	Severity *Severity     `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Status   *HazardStatus `json:"status,omitempty" validate:"omitempty,oneof=pending active resolved expired"`
}

type StatsRequest struct {
	Minutes int `json:"minutes" validate:"min=1,max=1440"`
}

type DetectionStats struct {
	UserCount    int64 `json:"user_count"`
	TotalChecks  int64 `json:"total_checks"`
	AlertsServed int64 `json:"alerts_served"`
	Minutes      int   `json:"minutes"`
}

// DetectionCheck is the audit row persisted for every location update, used by
// the stats endpoint.
type DetectionCheck struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"user_id"`
	Location   Coordinate  `json:"location"`
	HazardIDs  []uuid.UUID `json:"hazard_ids"`
	AlertCount int         `json:"alert_count"`
	CheckedAt  time.Time   `json:"checked_at"`
}
