package geo

import (
	"math"

	"github.com/twpayne/go-polyline"

	"safetyshare/internal/domain"
)

// earthRadius is the mean Earth radius in meters. Spherical model throughout,
// the sub-kilometer scales here don't justify an ellipsoid.
const earthRadius = 6371000.0

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }

// Distance returns the haversine great-circle distance between a and b in
// meters. Symmetric; zero for identical points.
func Distance(a, b domain.Coordinate) float64 {
	if a.Lat == b.Lat && a.Lng == b.Lng {
		return 0
	}

	lat1 := deg2rad(a.Lat)
	lat2 := deg2rad(b.Lat)
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// Bearing returns the initial compass bearing from `from` toward `to` in
// degrees, [0, 360), 0 = due north, clockwise. Identical points yield 0.
func Bearing(from, to domain.Coordinate) float64 {
	lat1 := deg2rad(from.Lat)
	lng1 := deg2rad(from.Lng)
	lat2 := deg2rad(to.Lat)
	lng2 := deg2rad(to.Lng)

	y := math.Sin(lng2-lng1) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lng2-lng1)

	b := math.Atan2(y, x) * 180.0 / math.Pi
	return math.Mod(b+360, 360)
}

// HeadingDiff normalizes the angular difference between two compass headings
// to [0, 180].
func HeadingDiff(a, b float64) float64 {
	diff := math.Abs(a - b)
	return math.Min(diff, 360-diff)
}

// DecodePolyline decodes a standard 1e-5 precision encoded polyline. Malformed
// or empty input fails soft and returns nil; callers treat an empty path as
// "no route constraint".
func DecodePolyline(encoded string) []domain.Coordinate {
	if encoded == "" {
		return nil
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil
	}

	points := make([]domain.Coordinate, 0, len(coords))
	for _, c := range coords {
		p := domain.Coordinate{Lat: c[0], Lng: c[1]}
		if !p.Valid() {
			return nil
		}
		points = append(points, p)
	}
	return points
}

// PointToSegment returns the distance in meters from p to the segment [a, b].
// The projection runs in a locally flat lat/lng plane with the parameter
// clamped to the segment; the resulting meters come from haversine to the
// projected point, which keeps the approximation honest at road scales.
func PointToSegment(p, a, b domain.Coordinate) float64 {
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng

	lenSq := dLat*dLat + dLng*dLng
	if lenSq == 0 {
		return Distance(p, a)
	}

	t := ((p.Lat-a.Lat)*dLat + (p.Lng-a.Lng)*dLng) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	proj := domain.Coordinate{
		Lat: a.Lat + t*dLat,
		Lng: a.Lng + t*dLng,
	}
	return Distance(p, proj)
}

// PointNearPath reports whether p lies within thresholdMeters of any segment
// of the path. Paths with fewer than two points never match.
func PointNearPath(p domain.Coordinate, path []domain.Coordinate, thresholdMeters float64) bool {
	if len(path) < 2 {
		return false
	}
	for i := 0; i < len(path)-1; i++ {
		if PointToSegment(p, path[i], path[i+1]) <= thresholdMeters {
			return true
		}
	}
	return false
}
