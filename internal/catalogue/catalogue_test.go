package catalogue

import (
	"errors"
	"math"
	"testing"
)

func seedABC(t *testing.T) *Catalogue {
	t.Helper()
	c := New()
	mustAddStop(t, c, "A", 55.611087, 37.20829)
	mustAddStop(t, c, "B", 55.595884, 37.209755)
	mustAddStop(t, c, "C", 55.632761, 37.333324)
	return c
}

func mustAddStop(t *testing.T, c *Catalogue, name string, lat, lng float64) int {
	t.Helper()
	id, err := c.AddStop(name, lat, lng)
	if err != nil {
		t.Fatalf("AddStop(%q): %v", name, err)
	}
	return id
}

func TestAddStopAssignsContiguousIDs(t *testing.T) {
	c := New()
	idA := mustAddStop(t, c, "A", 0, 0)
	idB := mustAddStop(t, c, "B", 1, 1)
	if idA != 0 || idB != 1 {
		t.Fatalf("expected ids 0,1 got %d,%d", idA, idB)
	}
	stop, err := c.StopByName("A")
	if err != nil || stop.ID != idA {
		t.Fatalf("StopByName(A).ID = %v, want %d (err=%v)", stop, idA, err)
	}
}

func TestAddStopDuplicateRejected(t *testing.T) {
	c := New()
	mustAddStop(t, c, "A", 0, 0)
	if _, err := c.AddStop("A", 1, 1); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestAddRouteUnknownStopRejected(t *testing.T) {
	c := New()
	mustAddStop(t, c, "A", 0, 0)
	if _, err := c.AddRoute("14", Linear, []string{"A", "B"}); !errors.Is(err, ErrUnknownStop) {
		t.Fatalf("expected ErrUnknownStop, got %v", err)
	}
}

// Scenario 1: Linear stop count.
func TestLinearStopCount(t *testing.T) {
	c := seedABC(t)
	if _, err := c.AddRoute("14", Linear, []string{"A", "B", "C"}); err != nil {
		t.Fatal(err)
	}
	info, err := c.RouteInfo("14")
	if err != nil {
		t.Fatal(err)
	}
	if info.StopCount != 5 {
		t.Errorf("StopCount = %d, want 5", info.StopCount)
	}
	if info.UniqueStopCount != 3 {
		t.Errorf("UniqueStopCount = %d, want 3", info.UniqueStopCount)
	}
}

// Scenario 2: Circle stop count.
func TestCircleStopCount(t *testing.T) {
	c := seedABC(t)
	if _, err := c.AddRoute("297", Circle, []string{"A", "B", "C", "A"}); err != nil {
		t.Fatal(err)
	}
	info, err := c.RouteInfo("297")
	if err != nil {
		t.Fatal(err)
	}
	if info.StopCount != 4 {
		t.Errorf("StopCount = %d, want 4", info.StopCount)
	}
	if info.UniqueStopCount != 3 {
		t.Errorf("UniqueStopCount = %d, want 3", info.UniqueStopCount)
	}
}

// Scenario 3: Asymmetric distances.
func TestAsymmetricDistances(t *testing.T) {
	c := New()
	mustAddStop(t, c, "A", 0, 0)
	mustAddStop(t, c, "B", 0, 1)
	if err := c.SetDistance("A", "B", 100); err != nil {
		t.Fatal(err)
	}
	if err := c.SetDistance("B", "A", 150); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddRoute("X", Linear, []string{"A", "B"}); err != nil {
		t.Fatal(err)
	}
	info, err := c.RouteInfo("X")
	if err != nil {
		t.Fatal(err)
	}
	if info.RoadLength != 250 {
		t.Errorf("RoadLength = %d, want 250", info.RoadLength)
	}
}

// Scenario 4: Distance fallback.
func TestDistanceFallback(t *testing.T) {
	c := New()
	mustAddStop(t, c, "A", 0, 0)
	mustAddStop(t, c, "B", 0, 1)
	if err := c.SetDistance("A", "B", 200); err != nil {
		t.Fatal(err)
	}
	if d := c.Distance("B", "A"); d != 200 {
		t.Errorf("Distance(B,A) = %d, want 200 (fallback)", d)
	}
	if d := c.Distance("A", "B"); d != 200 {
		t.Errorf("Distance(A,B) = %d, want 200", d)
	}
}

func TestDistanceUnknownPairIsZero(t *testing.T) {
	c := New()
	mustAddStop(t, c, "A", 0, 0)
	mustAddStop(t, c, "B", 0, 1)
	if d := c.Distance("A", "B"); d != 0 {
		t.Errorf("Distance with no entry = %d, want 0", d)
	}
}

func TestRoutesThroughSortedAndEmptyStates(t *testing.T) {
	c := seedABC(t)
	if _, err := c.AddRoute("297", Circle, []string{"A", "B", "C", "A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddRoute("14", Linear, []string{"A", "B"}); err != nil {
		t.Fatal(err)
	}
	mustAddStop(t, c, "D", 1, 1)

	routes, err := c.RoutesThrough("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(routes) != 2 || routes[0] != "14" || routes[1] != "297" {
		t.Errorf("RoutesThrough(A) = %v, want sorted [14 297]", routes)
	}

	routes, err = c.RoutesThrough("D")
	if err != nil {
		t.Fatal(err)
	}
	if len(routes) != 0 {
		t.Errorf("RoutesThrough(D) = %v, want empty", routes)
	}

	if _, err := c.RoutesThrough("Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RoutesThrough(Nowhere) err = %v, want ErrNotFound", err)
	}
}

func TestCurvatureSentinelWhenGeoLengthZero(t *testing.T) {
	c := New()
	mustAddStop(t, c, "A", 10, 20)
	mustAddStop(t, c, "B", 10, 20) // coincident with A
	if err := c.SetDistance("A", "B", 500); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddRoute("Z", Linear, []string{"A", "B"}); err != nil {
		t.Fatal(err)
	}
	info, err := c.RouteInfo("Z")
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(info.Curvature, 1) {
		t.Errorf("Curvature = %v, want +Inf sentinel for geo_length==0 with positive road_length", info.Curvature)
	}
}

func TestStopNameByID(t *testing.T) {
	c := seedABC(t)
	name, err := c.StopNameByID(1)
	if err != nil || name != "B" {
		t.Fatalf("StopNameByID(1) = %q, %v, want B", name, err)
	}
	if _, err := c.StopNameByID(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("StopNameByID(99) err = %v, want ErrNotFound", err)
	}
}

func TestAllDistancesEnumeratesEntries(t *testing.T) {
	c := seedABC(t)
	if err := c.SetDistance("A", "B", 100); err != nil {
		t.Fatal(err)
	}
	if err := c.SetDistance("B", "C", 200); err != nil {
		t.Fatal(err)
	}
	entries := c.AllDistances()
	if len(entries) != 2 {
		t.Fatalf("AllDistances() returned %d entries, want 2", len(entries))
	}
}
