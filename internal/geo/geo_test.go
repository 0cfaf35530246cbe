package geo

import "testing"

func TestDistanceZeroForCoincidentPoints(t *testing.T) {
	p := Coordinates{Lat: 55.611087, Lng: 37.20829}
	if d := Distance(p, p); d != 0 {
		t.Fatalf("expected 0 for coincident points, got %v", d)
	}
}

func TestDistanceNoNaNForNearCoincidentPoints(t *testing.T) {
	a := Coordinates{Lat: 55.611087, Lng: 37.20829}
	b := Coordinates{Lat: 55.611087 + 1e-15, Lng: 37.20829}
	d := Distance(a, b)
	if d != d {
		t.Fatalf("distance is NaN for near-coincident points")
	}
	if d < 0 {
		t.Fatalf("distance must be non-negative, got %v", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Coordinates{Lat: 55.611087, Lng: 37.20829}
	b := Coordinates{Lat: 55.595884, Lng: 37.209755}
	if Distance(a, b) != Distance(b, a) {
		t.Fatalf("distance must be symmetric")
	}
}

func TestDistanceKnownRoute(t *testing.T) {
	// Roughly 1 degree of latitude apart at the equator ~ 111.2 km.
	a := Coordinates{Lat: 0, Lng: 0}
	b := Coordinates{Lat: 1, Lng: 0}
	d := Distance(a, b)
	if d < 110000 || d > 112000 {
		t.Fatalf("expected ~111km, got %v", d)
	}
}
