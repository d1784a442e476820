// Package relevance narrows geospatial query results down to hazards that
// actually matter to a moving driver: roughly ahead of them, and on or near
// their route when one is supplied.
package relevance

import (
	"sort"

	"safetyshare/internal/domain"
	"safetyshare/internal/geo"
)

const (
	// Below this speed (km/h) GPS heading is noise, the cone gate is skipped.
	minSpeedForHeading = 2.0
	// Half-angle of the forward cone.
	defaultConeDegrees = 60.0
	// A hazard this close matters regardless of heading.
	veryCloseMeters = 50.0
	// Hazards closer than this skip the route-corridor check entirely.
	routeCheckMinMeters = 100.0
	// Default corridor width around the route path.
	DefaultCorridorMeters = 80.0
)

type Filter struct {
	coneDegrees    float64
	corridorMeters float64
}

func NewFilter(corridorMeters float64) *Filter {
	if corridorMeters <= 0 {
		corridorMeters = DefaultCorridorMeters
	}
	return &Filter{
		coneDegrees:    defaultConeDegrees,
		corridorMeters: corridorMeters,
	}
}

// Apply filters candidates against the user's heading and route and returns
// the survivors sorted by ascending distance. Pure over its inputs; the
// candidates must already carry DistanceMeters and BearingDegrees.
func (f *Filter) Apply(heading *float64, speedKmh float64, route []domain.Coordinate, candidates []domain.AnnotatedHazard) []domain.AnnotatedHazard {
	kept := make([]domain.AnnotatedHazard, 0, len(candidates))

	for _, c := range candidates {
		if !f.relevant(heading, speedKmh, route, c) {
			continue
		}
		kept = append(kept, c)
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].DistanceMeters < kept[j].DistanceMeters
	})
	return kept
}

func (f *Filter) relevant(heading *float64, speedKmh float64, route []domain.Coordinate, c domain.AnnotatedHazard) bool {
	// Heading gate: only trustworthy when the user is actually moving.
	if heading != nil && speedKmh > minSpeedForHeading {
		if geo.HeadingDiff(*heading, c.BearingDegrees) > f.coneDegrees {
			// A hazard right next to the user always matters.
			if c.DistanceMeters > veryCloseMeters {
				return false
			}
		}
	}

	// Route-corridor gate: close hazards skip it, the user is already there.
	if len(route) > 0 && c.DistanceMeters > routeCheckMinMeters {
		if !geo.PointNearPath(c.Location, route, f.corridorMeters) {
			return false
		}
	}

	return true
}
