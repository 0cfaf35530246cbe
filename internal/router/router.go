// Package router builds a time-weighted directed graph over a catalogue's
// stops and answers fastest-by-time itinerary queries against it.
package router

import (
	"fmt"

	"github.com/transitline/catalogue/internal/catalogue"
	"github.com/transitline/catalogue/internal/graph"
)

// Settings are the routing-specific knobs from spec.md §6
// routing_settings: a closed record, never looked up by dynamic key.
type Settings struct {
	// BusWaitTime is the fixed per-boarding wait, in minutes.
	BusWaitTime int
	// BusVelocity is the bus speed, in km/h.
	BusVelocity float64
}

// state is the router's lifecycle per spec.md §4.4: Uninitialized ->
// SettingsSet -> GraphBuilt -> Queryable. Snapshot load skips straight to
// Queryable by restoring the graph verbatim.
type state int

const (
	stateUninitialized state = iota
	stateSettingsSet
	stateGraphBuilt
	stateQueryable
)

// ErrNotQueryable is returned by Build when the router has not completed
// its Uninitialized -> SettingsSet -> GraphBuilt -> Queryable lifecycle.
var ErrNotQueryable = fmt.Errorf("router: not queryable")

// ItemKind distinguishes the two itinerary item shapes.
type ItemKind int

const (
	// Wait is time spent standing at a stop for a bus to arrive.
	Wait ItemKind = iota
	// Bus is time spent riding a route for some number of stops.
	Bus
)

// Item is one leg of an itinerary: either a Wait at a named stop or a Bus
// ride on a named route for SpanCount stops.
type Item struct {
	Kind      ItemKind
	StopName  string  // set when Kind == Wait
	BusName   string  // set when Kind == Bus
	SpanCount int     // set when Kind == Bus
	Time      float64 // minutes
}

// Itinerary is the full answer to a Route query: the ordered items and
// their total time in minutes.
type Itinerary struct {
	TotalTime float64
	Items     []Item
}

// ErrUnknownStop is returned by Build when either endpoint stop name is
// not registered in the catalogue.
var ErrUnknownStop = fmt.Errorf("router: unknown stop")

// Router builds a time-weighted graph from a Catalogue and routing
// Settings, then answers itinerary queries by translating shortest-path
// edge lists back into Wait/Bus items. It owns its graph and shortest-path
// engine; it only borrows the Catalogue for reads.
type Router struct {
	cat      *catalogue.Catalogue
	settings Settings
	state    state

	g             *graph.Graph
	pathEngine    *graph.Router
	routeNameByID map[int]string
}

// New returns an Uninitialized router over cat.
func New(cat *catalogue.Catalogue) *Router {
	return &Router{cat: cat, state: stateUninitialized}
}

// SetSettings transitions Uninitialized -> SettingsSet.
func (r *Router) SetSettings(s Settings) {
	r.settings = s
	r.state = stateSettingsSet
}

// Settings returns the routing settings currently in effect.
func (r *Router) Settings() Settings {
	return r.settings
}

// waitMinutes and speedMetersPerMinute convert the closed-record units from
// spec.md §6 (bus_wait_time in minutes, bus_velocity in km/h) into the
// minutes/meters-per-minute units the edge-weight formula in spec.md §4.4
// is expressed in, so that total_time compares directly against the JSON
// contract's minute-valued fields.
func (r *Router) waitMinutes() float64 {
	return float64(r.settings.BusWaitTime)
}

func (r *Router) speedMetersPerMinute() float64 {
	return r.settings.BusVelocity * 1000.0 / 60.0
}

// BuildGraph constructs the time-weighted graph from the catalogue's
// current stops and routes, transitioning SettingsSet -> GraphBuilt ->
// Queryable. It must be called exactly once, after all ingest is complete.
func (r *Router) BuildGraph() error {
	if r.state != stateSettingsSet {
		return fmt.Errorf("router: BuildGraph requires SettingsSet state")
	}

	g := graph.New(r.cat.StopCount())
	routeNameByID := make(map[int]string)

	for _, route := range r.cat.Routes() {
		routeNameByID[route.ID] = route.Name
		r.emitTraversalEdges(g, route, route.Stops)
		if route.Kind == catalogue.Linear {
			r.emitTraversalEdges(g, route, reverseStops(route.Stops))
		}
	}

	r.g = g
	r.pathEngine = graph.NewRouter(g)
	r.routeNameByID = routeNameByID
	r.state = stateQueryable
	return nil
}

// Graph exposes the built graph, e.g. for snapshot serialization.
func (r *Router) Graph() *graph.Graph {
	return r.g
}

// RestoreGraph installs a graph restored verbatim from a snapshot and a
// route-id-to-name map, transitioning directly to Queryable without
// reconstruction.
func (r *Router) RestoreGraph(g *graph.Graph, routeNameByID map[int]string) {
	r.g = g
	r.pathEngine = graph.NewRouter(g)
	r.routeNameByID = routeNameByID
	r.state = stateQueryable
}

func reverseStops(stops []*catalogue.Stop) []*catalogue.Stop {
	out := make([]*catalogue.Stop, len(stops))
	for i, s := range stops {
		out[len(stops)-1-i] = s
	}
	return out
}

// emitTraversalEdges emits one edge per ordered pair (i,j), i<j, along the
// given traversal, per spec.md §4.4: weight = wait + sum of leg times,
// span_count = j-i, route_id = route.ID. Legs use forward-direction
// distance lookups only; for the reverse traversal of a Linear route this
// naturally exercises the reverse (to,from) entries because stops are
// already reversed.
func (r *Router) emitTraversalEdges(g *graph.Graph, route *catalogue.Route, traversal []*catalogue.Stop) {
	n := len(traversal)
	legTime := make([]float64, n-1)
	for k := 0; k+1 < n; k++ {
		meters := r.cat.Distance(traversal[k].Name, traversal[k+1].Name)
		legTime[k] = float64(meters) / r.speedMetersPerMinute()
	}

	wait := r.waitMinutes()
	for i := 0; i < n; i++ {
		cum := 0.0
		for j := i + 1; j < n; j++ {
			cum += legTime[j-1]
			g.AddEdge(traversal[i].ID, traversal[j].ID, wait+cum, j-i, route.ID)
		}
	}
}

// Build answers a fastest-by-time Route query from stop fromName to
// toName. It returns ErrUnknownStop if either name is unregistered, the
// zero-value Itinerary (TotalTime 0, no items) if fromName == toName per
// the StayHere contract, graph.ErrNoPath if unreachable, or ErrNotQueryable
// if the router has not finished building its graph.
func (r *Router) Build(fromName, toName string) (Itinerary, error) {
	if r.state != stateQueryable {
		return Itinerary{}, ErrNotQueryable
	}

	fromStop, err := r.cat.StopByName(fromName)
	if err != nil {
		return Itinerary{}, fmt.Errorf("route from %q: %w", fromName, ErrUnknownStop)
	}
	toStop, err := r.cat.StopByName(toName)
	if err != nil {
		return Itinerary{}, fmt.Errorf("route to %q: %w", toName, ErrUnknownStop)
	}

	if fromName == toName {
		return Itinerary{}, nil
	}

	result, err := r.pathEngine.Route(fromStop.ID, toStop.ID)
	if err != nil {
		return Itinerary{}, err
	}

	items := make([]Item, 0, 2*len(result.EdgeIDs))
	total := 0.0
	for _, edgeID := range result.EdgeIDs {
		e := r.g.Edge(edgeID)
		boardingName, err := r.cat.StopNameByID(e.From)
		if err != nil {
			return Itinerary{}, err
		}
		waitItem := Item{Kind: Wait, StopName: boardingName, Time: r.waitMinutes()}
		busItem := Item{
			Kind:      Bus,
			BusName:   r.routeNameByID[e.RouteID],
			SpanCount: e.SpanCount,
			Time:      e.Weight - r.waitMinutes(),
		}
		items = append(items, waitItem, busItem)
		total += waitItem.Time + busItem.Time
	}

	return Itinerary{TotalTime: total, Items: items}, nil
}
