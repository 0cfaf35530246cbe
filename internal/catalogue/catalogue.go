// Package catalogue is the in-memory geospatial database of stops and
// routes: the Transport Catalogue's core data model and derived statistics.
package catalogue

import (
	"fmt"
	"sort"

	"github.com/transitline/catalogue/internal/geo"
)

// RouteKind distinguishes the two traversal shapes a Route can have.
type RouteKind int

const (
	// Linear routes are traversed forward then backward.
	Linear RouteKind = iota
	// Circle routes are traversed forward only, returning to their start.
	Circle
)

func (k RouteKind) String() string {
	if k == Circle {
		return "Circle"
	}
	return "Linear"
}

// Stop is a named geographic point. Identity is by Name; ID is the stable
// insertion-order index used to index the router's graph.
type Stop struct {
	Name string
	Coordinates geo.Coordinates
	ID   int
}

// Route is a named ordered sequence of stops traveled by one bus line.
type Route struct {
	Name  string
	Kind  RouteKind
	Stops []*Stop
	ID    int
}

// StopPairDistance is one entry of the sparse directed stop-pair distance map.
type StopPairDistance struct {
	From   string
	To     string
	Meters int
}

type stopPairKey struct {
	from string
	to   string
}

// Catalogue exclusively owns stop, route and distance storage. Every Stop
// and Route is individually heap-allocated so that outstanding *Stop/*Route
// references (held by Route.Stops, by the caller, or by the router) stay
// valid no matter how the catalogue's own slices grow.
type Catalogue struct {
	stops      []*Stop
	stopByName map[string]*Stop

	routes      []*Route
	routeByName map[string]*Route

	distances map[stopPairKey]int

	// routesThrough is rebuilt incrementally as routes are added: it is an
	// auxiliary index keyed by stop name, never a back-pointer cycle.
	routesThrough map[string]map[string]struct{}
}

// New returns an empty Catalogue.
func New() *Catalogue {
	return &Catalogue{
		stopByName:    make(map[string]*Stop),
		routeByName:   make(map[string]*Route),
		distances:     make(map[stopPairKey]int),
		routesThrough: make(map[string]map[string]struct{}),
	}
}

// AddStop registers a new stop and returns its assigned id. The id equals
// the stop's insertion index, so ids are contiguous starting at 0.
func (c *Catalogue) AddStop(name string, lat, lng float64) (int, error) {
	if _, exists := c.stopByName[name]; exists {
		return 0, fmt.Errorf("add stop %q: %w", name, ErrDuplicate)
	}

	stop := &Stop{
		Name:        name,
		Coordinates: geo.Coordinates{Lat: lat, Lng: lng},
		ID:          len(c.stops),
	}
	c.stops = append(c.stops, stop)
	c.stopByName[name] = stop
	c.routesThrough[name] = make(map[string]struct{})
	return stop.ID, nil
}

// SetDistance overwrites the road distance for the ordered pair (from, to).
// Both stops must already exist.
func (c *Catalogue) SetDistance(fromName, toName string, meters int) error {
	if _, ok := c.stopByName[fromName]; !ok {
		return fmt.Errorf("set distance: from stop %q: %w", fromName, ErrUnknownStop)
	}
	if _, ok := c.stopByName[toName]; !ok {
		return fmt.Errorf("set distance: to stop %q: %w", toName, ErrUnknownStop)
	}
	c.distances[stopPairKey{fromName, toName}] = meters
	return nil
}

// AddRoute registers a new route and returns its assigned id. stopNames is
// the forward traversal order; for Linear routes this is the forward leg
// only (the reverse leg is derived, never stored separately).
func (c *Catalogue) AddRoute(name string, kind RouteKind, stopNames []string) (int, error) {
	if _, exists := c.routeByName[name]; exists {
		return 0, fmt.Errorf("add route %q: %w", name, ErrDuplicate)
	}

	stops := make([]*Stop, 0, len(stopNames))
	for _, sn := range stopNames {
		stop, ok := c.stopByName[sn]
		if !ok {
			return 0, fmt.Errorf("add route %q: stop %q: %w", name, sn, ErrUnknownStop)
		}
		stops = append(stops, stop)
	}

	route := &Route{
		Name:  name,
		Kind:  kind,
		Stops: stops,
		ID:    len(c.routes),
	}
	c.routes = append(c.routes, route)
	c.routeByName[name] = route

	seen := make(map[string]struct{}, len(stops))
	for _, stop := range stops {
		if _, dup := seen[stop.Name]; dup {
			continue
		}
		seen[stop.Name] = struct{}{}
		c.routesThrough[stop.Name][name] = struct{}{}
	}

	return route.ID, nil
}

// StopByName returns the stop with the given name, or ErrNotFound.
func (c *Catalogue) StopByName(name string) (*Stop, error) {
	stop, ok := c.stopByName[name]
	if !ok {
		return nil, fmt.Errorf("stop %q: %w", name, ErrNotFound)
	}
	return stop, nil
}

// RouteByName returns the route with the given name, or ErrNotFound.
func (c *Catalogue) RouteByName(name string) (*Route, error) {
	route, ok := c.routeByName[name]
	if !ok {
		return nil, fmt.Errorf("route %q: %w", name, ErrNotFound)
	}
	return route, nil
}

// StopNameByID returns the name of the stop with the given id, restoring
// the reverse direction that the router and snapshot codec both need.
func (c *Catalogue) StopNameByID(id int) (string, error) {
	if id < 0 || id >= len(c.stops) {
		return "", fmt.Errorf("stop id %d: %w", id, ErrNotFound)
	}
	return c.stops[id].Name, nil
}

// StopCount returns the number of registered stops, i.e. the vertex count
// the router's graph must be sized for.
func (c *Catalogue) StopCount() int {
	return len(c.stops)
}

// Stops returns all registered stops in insertion (id) order. The returned
// slice must not be mutated.
func (c *Catalogue) Stops() []*Stop {
	return c.stops
}

// Routes returns all registered routes in insertion (id) order. The
// returned slice must not be mutated.
func (c *Catalogue) Routes() []*Route {
	return c.routes
}

// RoutesThrough returns, in strictly increasing lexicographic order, the
// names of every route that visits stopName. Returns ErrNotFound if the
// stop itself does not exist; returns an empty (non-nil) slice if the stop
// exists but no route visits it.
func (c *Catalogue) RoutesThrough(stopName string) ([]string, error) {
	set, ok := c.routesThrough[stopName]
	if !ok {
		return nil, fmt.Errorf("stop %q: %w", stopName, ErrNotFound)
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Distance returns the road distance for the ordered pair (from, to): the
// forward entry if present, else the reverse entry, else 0. fromName and
// toName need not themselves exist; a StopPairDistance invariant violation
// is a load-time concern, not a lookup-time one.
func (c *Catalogue) Distance(fromName, toName string) int {
	if d, ok := c.distances[stopPairKey{fromName, toName}]; ok {
		return d
	}
	if d, ok := c.distances[stopPairKey{toName, fromName}]; ok {
		return d
	}
	return 0
}

// AllDistances enumerates every explicitly registered stop-pair distance,
// in no particular order. Restored from the original transport-catalogue's
// GetAllDistanceBeetweenPairStops: both the snapshot codec and diagnostics
// need the full set, not just single-pair lookups.
func (c *Catalogue) AllDistances() []StopPairDistance {
	out := make([]StopPairDistance, 0, len(c.distances))
	for key, meters := range c.distances {
		out = append(out, StopPairDistance{From: key.from, To: key.to, Meters: meters})
	}
	return out
}
