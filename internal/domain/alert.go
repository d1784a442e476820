package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertLevel string

const (
	AlertNone    AlertLevel = ""
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
	AlertUrgent  AlertLevel = "urgent"
)

// AnnotatedHazard is a hazard snapshot enriched with per-request geometry.
// It lives only for one detection response.
type AnnotatedHazard struct {
	Hazard
	DistanceMeters float64    `json:"distance_meters"`
	BearingDegrees float64    `json:"bearing_degrees"`
	AlertLevel     AlertLevel `json:"alert_level,omitempty"`
}

// AlertRecord is one alert the client should surface to the driver.
type AlertRecord struct {
	HazardID       uuid.UUID  `json:"hazard_id"`
	Type           HazardType `json:"type"`
	Severity       Severity   `json:"severity"`
	AlertLevel     AlertLevel `json:"alert_level"`
	DistanceMeters float64    `json:"distance_meters"`
	VoiceMessage   string     `json:"voice_message,omitempty"`
	Location       Coordinate `json:"location"`
}

// AlertBroadcast is the payload pushed onto the broadcast queue for the
// external notification transport.
type AlertBroadcast struct {
	UserID    uuid.UUID     `json:"user_id"`
	Location  Coordinate    `json:"location"`
	Alerts    []AlertRecord `json:"alerts"`
	EmittedAt time.Time     `json:"emitted_at"`
}
