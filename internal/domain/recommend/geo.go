package recommend

import (
	"math"
	"strings"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinate
// pairs in kilometers.
func HaversineKm(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Proximity tier bounds in kilometers and the fallback score awarded on a
// city-name match when neither side has coordinates.
const (
	geoNearKm   = 50.0
	geoMidKm    = 120.0
	geoFarKm    = 300.0
	geoCityOnly = 0.5
)

// ProximityScore returns the tiered closeness of two locations:
// 1.0 within 50 km, 0.6 within 120 km, 0.3 within 300 km, else 0.
// Coordinates always win over location strings; the string fallback only
// applies when both sides lack coordinates. Symmetric in its arguments.
func ProximityScore(aCoords, bCoords *Coordinates, aLoc, bLoc string) float64 {
	if aCoords != nil && bCoords != nil {
		d := HaversineKm(*aCoords, *bCoords)
		switch {
		case d <= geoNearKm:
			return 1.0
		case d <= geoMidKm:
			return 0.6
		case d <= geoFarKm:
			return 0.3
		default:
			return 0
		}
	}

	if aCoords == nil && bCoords == nil {
		if cityEqual(aLoc, bLoc) {
			return geoCityOnly
		}
	}
	return 0
}

// CoarseProximityScore is the simpler applicant-side tiering:
// 10 within 50 km, 5 within 100 km, else 0. No string fallback.
func CoarseProximityScore(aCoords, bCoords *Coordinates) float64 {
	if aCoords == nil || bCoords == nil {
		return 0
	}
	d := HaversineKm(*aCoords, *bCoords)
	switch {
	case d <= 50:
		return 10
	case d <= 100:
		return 5
	default:
		return 0
	}
}

// cityEqual compares the first comma segment of each location label,
// case-insensitively. "Chennai, Tamil Nadu" matches "chennai".
func cityEqual(a, b string) bool {
	ca := citySegment(a)
	cb := citySegment(b)
	return ca != "" && ca == cb
}

func citySegment(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return ""
	}
	if i := strings.Index(loc, ","); i >= 0 {
		loc = loc[:i]
	}
	return strings.ToLower(strings.TrimSpace(loc))
}
