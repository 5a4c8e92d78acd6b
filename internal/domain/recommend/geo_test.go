package recommend

import "testing"

var (
	chennai = Coordinates{Lat: 13.08, Lon: 80.27}
	vellore = Coordinates{Lat: 12.92, Lon: 79.13}
)

func TestHaversineChennaiVellore(t *testing.T) {
	d := HaversineKm(chennai, vellore)
	if d < 115 || d > 135 {
		t.Fatalf("expected roughly 125km, got %f", d)
	}
}

func TestProximityScoreTiers(t *testing.T) {
	near := Coordinates{Lat: 13.10, Lon: 80.25}
	if s := ProximityScore(&chennai, &near, "", ""); s != 1.0 {
		t.Fatalf("near tier: expected 1.0, got %f", s)
	}
	// Chennai-Vellore is ~125km: past the 120km band, inside 300km.
	if s := ProximityScore(&chennai, &vellore, "", ""); s != 0.3 {
		t.Fatalf("mid-far tier: expected 0.3, got %f", s)
	}
	far := Coordinates{Lat: 28.61, Lon: 77.21} // Delhi
	if s := ProximityScore(&chennai, &far, "", ""); s != 0 {
		t.Fatalf("far tier: expected 0, got %f", s)
	}
}

func TestProximityScoreSymmetric(t *testing.T) {
	ab := ProximityScore(&chennai, &vellore, "", "")
	ba := ProximityScore(&vellore, &chennai, "", "")
	if ab != ba {
		t.Fatalf("expected symmetric score, got %f vs %f", ab, ba)
	}
}

func TestProximityScoreMissingCoordinates(t *testing.T) {
	// One side with coordinates: no string fallback, score 0.
	if s := ProximityScore(&chennai, nil, "Chennai", "Chennai"); s != 0 {
		t.Fatalf("one-sided coords: expected 0, got %f", s)
	}
	if s := ProximityScore(nil, &vellore, "Vellore", "Vellore"); s != 0 {
		t.Fatalf("one-sided coords: expected 0, got %f", s)
	}
}

func TestProximityScoreCityFallback(t *testing.T) {
	if s := ProximityScore(nil, nil, "Chennai, Tamil Nadu", "chennai"); s != geoCityOnly {
		t.Fatalf("city match: expected %f, got %f", geoCityOnly, s)
	}
	if s := ProximityScore(nil, nil, "Chennai", "Vellore"); s != 0 {
		t.Fatalf("city mismatch: expected 0, got %f", s)
	}
	if s := ProximityScore(nil, nil, "", ""); s != 0 {
		t.Fatalf("empty labels: expected 0, got %f", s)
	}
}

func TestCoarseProximityScore(t *testing.T) {
	near := Coordinates{Lat: 13.10, Lon: 80.25}
	if s := CoarseProximityScore(&chennai, &near); s != 10 {
		t.Fatalf("near: expected 10, got %f", s)
	}
	mid := Coordinates{Lat: 13.35, Lon: 79.58} // ~80km out
	if s := CoarseProximityScore(&chennai, &mid); s != 5 {
		t.Fatalf("mid: expected 5, got %f", s)
	}
	if s := CoarseProximityScore(&chennai, nil); s != 0 {
		t.Fatalf("missing coords: expected 0, got %f", s)
	}
}
