package catalogue

import "github.com/transitline/catalogue/internal/geo"

// RouteStats is the set of statistics derived on demand for a route.
type RouteStats struct {
	Name            string
	Kind            RouteKind
	StopCount       int
	UniqueStopCount int
	RoadLength      int
	GeoLength       float64
	Curvature       float64
}

// RouteInfo computes RouteStats for the named route. Returns ErrNotFound if
// no such route exists.
//
// geo_length == 0 happens only when every stop on the route shares the same
// coordinates; spec.md leaves the curvature result unspecified in that
// case. This implementation lets the float64 division produce its natural
// IEEE-754 sentinel (+Inf when road_length > 0, NaN when road_length is
// also 0) rather than special-casing it — callers that need a finite
// number should check math.IsInf/math.IsNaN explicitly.
func (c *Catalogue) RouteInfo(name string) (RouteStats, error) {
	route, err := c.RouteByName(name)
	if err != nil {
		return RouteStats{}, err
	}

	stats := RouteStats{
		Name:            route.Name,
		Kind:            route.Kind,
		UniqueStopCount: countUniqueStops(route.Stops),
	}

	switch route.Kind {
	case Circle:
		stats.StopCount = len(route.Stops)
		stats.RoadLength = c.forwardRoadLength(route.Stops)
		stats.GeoLength = forwardGeoLength(route.Stops)
	default: // Linear
		stats.StopCount = 2*len(route.Stops) - 1
		forward := c.forwardRoadLength(route.Stops)
		backward := c.backwardRoadLength(route.Stops)
		stats.RoadLength = forward + backward
		stats.GeoLength = 2 * forwardGeoLength(route.Stops)
	}

	stats.Curvature = float64(stats.RoadLength) / stats.GeoLength
	return stats, nil
}

func countUniqueStops(stops []*Stop) int {
	seen := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		seen[s.Name] = struct{}{}
	}
	return len(seen)
}

// forwardRoadLength sums the registered road distance for each consecutive
// pair in the given forward traversal order.
func (c *Catalogue) forwardRoadLength(stops []*Stop) int {
	total := 0
	for i := 0; i+1 < len(stops); i++ {
		total += c.Distance(stops[i].Name, stops[i+1].Name)
	}
	return total
}

// backwardRoadLength sums the registered road distance for the reverse
// traversal of a Linear route's stop sequence: from stops[i+1] to
// stops[i], which may differ from the forward leg per spec.md §3.
func (c *Catalogue) backwardRoadLength(stops []*Stop) int {
	total := 0
	for i := 0; i+1 < len(stops); i++ {
		total += c.Distance(stops[i+1].Name, stops[i].Name)
	}
	return total
}

func forwardGeoLength(stops []*Stop) float64 {
	total := 0.0
	for i := 0; i+1 < len(stops); i++ {
		total += geo.Distance(stops[i].Coordinates, stops[i+1].Coordinates)
	}
	return total
}
