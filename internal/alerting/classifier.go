// Package alerting turns relevant hazards into driver-facing alerts: a
// distance/severity tier classifier and a per-user cooldown cache that stops
// the same alert from firing over and over.
package alerting

import (
	"fmt"
	"math"
	"strings"

	"safetyshare/internal/domain"
)

const (
	urgentMeters  = 200.0
	warningMeters = 500.0
	infoMeters    = 800.0
)

// Classify maps distance and severity to exactly one alert tier. Highest
// priority match wins; anything past the info band gets AlertNone and is kept
// out of the alert output.
func Classify(distanceMeters float64, severity domain.Severity) domain.AlertLevel {
	switch {
	case distanceMeters <= urgentMeters && severity == domain.SeverityCritical:
		return domain.AlertUrgent
	case distanceMeters <= warningMeters && (severity == domain.SeverityHigh || severity == domain.SeverityCritical):
		return domain.AlertWarning
	case distanceMeters <= infoMeters:
		return domain.AlertInfo
	default:
		return domain.AlertNone
	}
}

// VoiceMessage builds the spoken warning for a tier. Info alerts stay silent.
func VoiceMessage(level domain.AlertLevel, hazardType domain.HazardType, distanceMeters float64) string {
	spoken := strings.ReplaceAll(string(hazardType), "_", " ")

	switch level {
	case domain.AlertUrgent:
		return fmt.Sprintf("Warning: Critical %s ahead.", spoken)
	case domain.AlertWarning:
		// Round up to the next 100 m so the spoken distance never undershoots.
		rounded := math.Ceil(distanceMeters/100) * 100
		return fmt.Sprintf("Caution: %s in %d meters.", spoken, int(rounded))
	default:
		return ""
	}
}
