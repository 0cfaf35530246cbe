// Package snapshot serializes and restores a Catalogue, a Router's
// pre-built graph, and the render settings to a single length-delimited
// binary file, so that process_requests never has to reconstruct the
// O(sum route_length^2) routing graph. See spec.md §4.5.
package snapshot

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/transitline/catalogue/internal/catalogue"
	"github.com/transitline/catalogue/internal/graph"
	"github.com/transitline/catalogue/internal/router"
	"github.com/transitline/catalogue/internal/settings"
)

// State is everything persisted to and restored from a snapshot file: the
// four blocks of spec.md §4.5 plus a BuildID correlating a query batch
// with the snapshot that produced it (not part of query semantics).
type State struct {
	BuildID string

	Catalogue *catalogue.Catalogue
	Render    settings.Render
	Routing   router.Settings
	Router    *router.Router
}

// Save writes exactly the four blocks from spec.md §4.5, in order, to
// path: the catalogue, render settings, routing settings, and the
// pre-built graph. A fresh BuildID is stamped on every save. The file is
// opened, written and closed within this call; a failure to create it is
// reported without touching any in-memory state.
func Save(path string, cat *catalogue.Catalogue, rt *router.Router, render settings.Render) error {
	buildID := uuid.New().String()

	var body []byte
	body = appendStringField(body, fieldBuildID, buildID)
	body = appendMessageField(body, fieldCatalogue, encodeCatalogue(cat))
	body = appendMessageField(body, fieldRenderBlock, encodeRender(render))
	body = appendMessageField(body, fieldRoutingBlock, encodeRouting(rt.Settings()))
	body = appendMessageField(body, fieldGraphBlock, encodeGraph(rt.Graph(), cat.StopCount()))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: open %q: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("snapshot: write %q: %w", path, err)
	}
	return nil
}

// Load reads path and restores a Catalogue and a Queryable Router
// directly, skipping graph reconstruction. Any missing or malformed block
// is a fatal ErrMalformed for the whole load, per spec.md §4.5.
func Load(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %q: %w", path, err)
	}

	var (
		buildID      string
		haveBuildID  bool
		catBlock     []byte
		haveCat      bool
		renderBlock  []byte
		haveRender   bool
		routingBlock []byte
		haveRouting  bool
		graphBlock   []byte
		haveGraph    bool
	)

	err = walkFields(raw, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldBuildID && typ == bytesType:
			v, n, err := consumeString(b)
			if err != nil {
				return 0, err
			}
			buildID, haveBuildID = v, true
			return n, nil
		case num == fieldCatalogue && typ == bytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			catBlock, haveCat = v, true
			return n, nil
		case num == fieldRenderBlock && typ == bytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			renderBlock, haveRender = v, true
			return n, nil
		case num == fieldRoutingBlock && typ == bytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			routingBlock, haveRouting = v, true
			return n, nil
		case num == fieldGraphBlock && typ == bytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			graphBlock, haveGraph = v, true
			return n, nil
		default:
			return skipField(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	if !haveBuildID || !haveCat || !haveRender || !haveRouting || !haveGraph {
		return nil, fmt.Errorf("snapshot: %q: %w (missing block)", path, ErrMalformed)
	}

	cat, err := decodeCatalogue(catBlock)
	if err != nil {
		return nil, err
	}
	render, err := decodeRender(renderBlock)
	if err != nil {
		return nil, err
	}
	routingSettings, err := decodeRouting(routingBlock)
	if err != nil {
		return nil, err
	}
	g, routeNameByID, err := decodeGraph(graphBlock, cat)
	if err != nil {
		return nil, err
	}

	rt := router.New(cat)
	rt.SetSettings(routingSettings)
	rt.RestoreGraph(g, routeNameByID)

	return &State{
		BuildID:   buildID,
		Catalogue: cat,
		Render:    render,
		Routing:   routingSettings,
		Router:    rt,
	}, nil
}

func encodeCatalogue(cat *catalogue.Catalogue) []byte {
	var b []byte
	for _, stop := range cat.Stops() {
		var s []byte
		s = appendStringField(s, fieldStopName, stop.Name)
		s = appendDoubleField(s, fieldStopLat, stop.Coordinates.Lat)
		s = appendDoubleField(s, fieldStopLng, stop.Coordinates.Lng)
		s = appendVarintField(s, fieldStopID, uint64(stop.ID))
		b = appendMessageField(b, fieldCatStops, s)
	}
	for _, route := range cat.Routes() {
		var r []byte
		r = appendStringField(r, fieldRouteName, route.Name)
		r = appendBoolField(r, fieldRouteIsCircular, route.Kind == catalogue.Circle)
		for _, stop := range route.Stops {
			r = appendVarintField(r, fieldRouteStopID, uint64(stop.ID))
		}
		r = appendVarintField(r, fieldRouteID, uint64(route.ID))
		b = appendMessageField(b, fieldCatRoutes, r)
	}
	for _, d := range cat.AllDistances() {
		fromStop, err := cat.StopByName(d.From)
		if err != nil {
			continue
		}
		toStop, err := cat.StopByName(d.To)
		if err != nil {
			continue
		}
		var dd []byte
		dd = appendVarintField(dd, fieldDistFrom, uint64(fromStop.ID))
		dd = appendVarintField(dd, fieldDistTo, uint64(toStop.ID))
		dd = appendVarintField(dd, fieldDistMeters, uint64(d.Meters))
		b = appendMessageField(b, fieldCatDistances, dd)
	}
	return b
}

type stopSeed struct {
	name     string
	lat, lng float64
	id       int
}

type routeSeed struct {
	name       string
	isCircular bool
	stopIDs    []int
	id         int
}

type distSeed struct {
	fromID, toID int
	meters       int
}

func decodeCatalogue(block []byte) (*catalogue.Catalogue, error) {
	var stopSeeds []stopSeed
	var routeSeeds []routeSeed
	var distSeeds []distSeed

	err := walkFields(block, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldCatStops && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			seed, err := decodeStopSeed(msg)
			if err != nil {
				return 0, err
			}
			stopSeeds = append(stopSeeds, seed)
			return n, nil
		case num == fieldCatRoutes && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			seed, err := decodeRouteSeed(msg)
			if err != nil {
				return 0, err
			}
			routeSeeds = append(routeSeeds, seed)
			return n, nil
		case num == fieldCatDistances && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			seed, err := decodeDistSeed(msg)
			if err != nil {
				return 0, err
			}
			distSeeds = append(distSeeds, seed)
			return n, nil
		default:
			return skipField(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}

	cat := catalogue.New()
	idToName := make(map[int]string, len(stopSeeds))
	for _, s := range stopSeeds {
		id, err := cat.AddStop(s.name, s.lat, s.lng)
		if err != nil || id != s.id {
			return nil, fmt.Errorf("snapshot: stop %q id mismatch on restore: %w", s.name, ErrMalformed)
		}
		idToName[s.id] = s.name
	}
	for _, d := range distSeeds {
		fromName, ok := idToName[d.fromID]
		if !ok {
			return nil, ErrMalformed
		}
		toName, ok := idToName[d.toID]
		if !ok {
			return nil, ErrMalformed
		}
		if err := cat.SetDistance(fromName, toName, d.meters); err != nil {
			return nil, fmt.Errorf("snapshot: restore distance: %w", err)
		}
	}
	for _, r := range routeSeeds {
		names := make([]string, len(r.stopIDs))
		for i, id := range r.stopIDs {
			name, ok := idToName[id]
			if !ok {
				return nil, ErrMalformed
			}
			names[i] = name
		}
		kind := catalogue.Linear
		if r.isCircular {
			kind = catalogue.Circle
		}
		id, err := cat.AddRoute(r.name, kind, names)
		if err != nil || id != r.id {
			return nil, fmt.Errorf("snapshot: route %q id mismatch on restore: %w", r.name, ErrMalformed)
		}
	}

	return cat, nil
}

func decodeStopSeed(b []byte) (stopSeed, error) {
	var s stopSeed
	err := walkFields(b, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldStopName && typ == bytesType:
			v, n, err := consumeString(b)
			s.name = v
			return n, err
		case num == fieldStopLat && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			s.lat = v
			return n, err
		case num == fieldStopLng && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			s.lng = v
			return n, err
		case num == fieldStopID && typ == varintType:
			v, n, err := consumeVarint(b)
			s.id = int(v)
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
	return s, err
}

func decodeRouteSeed(b []byte) (routeSeed, error) {
	var r routeSeed
	err := walkFields(b, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldRouteName && typ == bytesType:
			v, n, err := consumeString(b)
			r.name = v
			return n, err
		case num == fieldRouteIsCircular && typ == varintType:
			v, n, err := consumeVarint(b)
			r.isCircular = v != 0
			return n, err
		case num == fieldRouteStopID && typ == varintType:
			v, n, err := consumeVarint(b)
			r.stopIDs = append(r.stopIDs, int(v))
			return n, err
		case num == fieldRouteID && typ == varintType:
			v, n, err := consumeVarint(b)
			r.id = int(v)
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
	return r, err
}

func decodeDistSeed(b []byte) (distSeed, error) {
	var d distSeed
	err := walkFields(b, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldDistFrom && typ == varintType:
			v, n, err := consumeVarint(b)
			d.fromID = int(v)
			return n, err
		case num == fieldDistTo && typ == varintType:
			v, n, err := consumeVarint(b)
			d.toID = int(v)
			return n, err
		case num == fieldDistMeters && typ == varintType:
			v, n, err := consumeVarint(b)
			d.meters = int(v)
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
	return d, err
}

func encodeRouting(s router.Settings) []byte {
	var b []byte
	b = appendVarintField(b, fieldRoutingWaitTime, uint64(s.BusWaitTime))
	b = appendDoubleField(b, fieldRoutingVelocity, s.BusVelocity)
	return b
}

func decodeRouting(block []byte) (router.Settings, error) {
	var s router.Settings
	err := walkFields(block, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldRoutingWaitTime && typ == varintType:
			v, n, err := consumeVarint(b)
			s.BusWaitTime = int(v)
			return n, err
		case num == fieldRoutingVelocity && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			s.BusVelocity = v
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
	return s, err
}

func encodeRender(r settings.Render) []byte {
	var b []byte
	b = appendDoubleField(b, fieldRenderWidth, r.Width)
	b = appendDoubleField(b, fieldRenderHeight, r.Height)
	b = appendDoubleField(b, fieldRenderPadding, r.Padding)
	b = appendDoubleField(b, fieldRenderLineWidth, r.LineWidth)
	b = appendDoubleField(b, fieldRenderStopRadius, r.StopRadius)
	b = appendVarintField(b, fieldRenderBusLabelFontSize, uint64(r.BusLabelFontSize))
	b = appendVarintField(b, fieldRenderStopLabelFontSize, uint64(r.StopLabelFontSize))
	b = appendMessageField(b, fieldRenderBusLabelOffset, encodePoint(r.BusLabelOffset))
	b = appendMessageField(b, fieldRenderStopLabelOffset, encodePoint(r.StopLabelOffset))
	b = appendMessageField(b, fieldRenderUnderlayerColor, encodeColor(r.UnderlayerColor))
	b = appendDoubleField(b, fieldRenderUnderlayerWidth, r.UnderlayerWidth)
	for _, c := range r.ColorPalette {
		b = appendMessageField(b, fieldRenderPalette, encodeColor(c))
	}
	return b
}

func decodeRender(block []byte) (settings.Render, error) {
	var r settings.Render
	err := walkFields(block, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldRenderWidth && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			r.Width = v
			return n, err
		case num == fieldRenderHeight && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			r.Height = v
			return n, err
		case num == fieldRenderPadding && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			r.Padding = v
			return n, err
		case num == fieldRenderLineWidth && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			r.LineWidth = v
			return n, err
		case num == fieldRenderStopRadius && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			r.StopRadius = v
			return n, err
		case num == fieldRenderBusLabelFontSize && typ == varintType:
			v, n, err := consumeVarint(b)
			r.BusLabelFontSize = int(v)
			return n, err
		case num == fieldRenderStopLabelFontSize && typ == varintType:
			v, n, err := consumeVarint(b)
			r.StopLabelFontSize = int(v)
			return n, err
		case num == fieldRenderBusLabelOffset && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			p, err := decodePoint(msg)
			r.BusLabelOffset = p
			return n, err
		case num == fieldRenderStopLabelOffset && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			p, err := decodePoint(msg)
			r.StopLabelOffset = p
			return n, err
		case num == fieldRenderUnderlayerColor && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			c, err := decodeColor(msg)
			r.UnderlayerColor = c
			return n, err
		case num == fieldRenderUnderlayerWidth && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			r.UnderlayerWidth = v
			return n, err
		case num == fieldRenderPalette && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			c, err := decodeColor(msg)
			if err != nil {
				return 0, err
			}
			r.ColorPalette = append(r.ColorPalette, c)
			return n, nil
		default:
			return skipField(num, typ, b)
		}
	})
	return r, err
}

func encodePoint(p settings.Point) []byte {
	var b []byte
	b = appendDoubleField(b, fieldPointX, p.X)
	b = appendDoubleField(b, fieldPointY, p.Y)
	return b
}

func decodePoint(b []byte) (settings.Point, error) {
	var p settings.Point
	err := walkFields(b, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldPointX && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			p.X = v
			return n, err
		case num == fieldPointY && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			p.Y = v
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
	return p, err
}

func encodeColor(c settings.Color) []byte {
	var b []byte
	b = appendVarintField(b, fieldColorKind, uint64(c.Kind))
	switch c.Kind {
	case settings.ColorNamed:
		b = appendStringField(b, fieldColorName, c.Name)
	case settings.ColorRGB:
		b = appendVarintField(b, fieldColorR, uint64(c.R))
		b = appendVarintField(b, fieldColorG, uint64(c.G))
		b = appendVarintField(b, fieldColorB, uint64(c.B))
	case settings.ColorRGBA:
		b = appendVarintField(b, fieldColorR, uint64(c.R))
		b = appendVarintField(b, fieldColorG, uint64(c.G))
		b = appendVarintField(b, fieldColorB, uint64(c.B))
		b = appendDoubleField(b, fieldColorA, c.A)
	}
	return b
}

func decodeColor(b []byte) (settings.Color, error) {
	var c settings.Color
	err := walkFields(b, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldColorKind && typ == varintType:
			v, n, err := consumeVarint(b)
			c.Kind = settings.ColorKind(v)
			return n, err
		case num == fieldColorName && typ == bytesType:
			v, n, err := consumeString(b)
			c.Name = v
			return n, err
		case num == fieldColorR && typ == varintType:
			v, n, err := consumeVarint(b)
			c.R = int(v)
			return n, err
		case num == fieldColorG && typ == varintType:
			v, n, err := consumeVarint(b)
			c.G = int(v)
			return n, err
		case num == fieldColorB && typ == varintType:
			v, n, err := consumeVarint(b)
			c.B = int(v)
			return n, err
		case num == fieldColorA && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			c.A = v
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
	return c, err
}

func encodeGraph(g *graph.Graph, vertexCount int) []byte {
	var b []byte
	b = appendVarintField(b, fieldGraphVertexCount, uint64(vertexCount))
	for _, e := range g.Edges() {
		var eb []byte
		eb = appendVarintField(eb, fieldEdgeFrom, uint64(e.From))
		eb = appendVarintField(eb, fieldEdgeTo, uint64(e.To))
		eb = appendDoubleField(eb, fieldEdgeWeight, e.Weight)
		eb = appendVarintField(eb, fieldEdgeSpanCount, uint64(e.SpanCount))
		eb = appendVarintField(eb, fieldEdgeRouteID, uint64(e.RouteID))
		b = appendMessageField(b, fieldGraphEdges, eb)
	}
	for v := 0; v < vertexCount; v++ {
		var ib []byte
		ib = appendVarintField(ib, fieldIncidenceVertex, uint64(v))
		for _, edgeID := range g.IncidentEdges(v) {
			ib = appendVarintField(ib, fieldIncidenceEdgeID, uint64(edgeID))
		}
		b = appendMessageField(b, fieldGraphIncidence, ib)
	}
	return b
}

type edgeSeed struct {
	from, to, spanCount, routeID int
	weight                       float64
}

func decodeGraph(block []byte, cat *catalogue.Catalogue) (*graph.Graph, map[int]string, error) {
	var vertexCount int
	var edges []edgeSeed
	var incidence [][]int

	err := walkFields(block, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldGraphVertexCount && typ == varintType:
			v, n, err := consumeVarint(b)
			vertexCount = int(v)
			return n, err
		case num == fieldGraphEdges && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			e, err := decodeEdgeSeed(msg)
			if err != nil {
				return 0, err
			}
			edges = append(edges, e)
			return n, nil
		case num == fieldGraphIncidence && typ == bytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			vertex, ids, err := decodeIncidenceSeed(msg)
			if err != nil {
				return 0, err
			}
			for len(incidence) <= vertex {
				incidence = append(incidence, nil)
			}
			incidence[vertex] = ids
			return n, nil
		default:
			return skipField(num, typ, b)
		}
	})
	if err != nil {
		return nil, nil, err
	}
	if vertexCount != cat.StopCount() {
		return nil, nil, fmt.Errorf("snapshot: graph vertex count %d != catalogue stop count %d: %w", vertexCount, cat.StopCount(), ErrMalformed)
	}

	g := graph.New(vertexCount)
	routeNameByID := make(map[int]string)
	for _, route := range cat.Routes() {
		routeNameByID[route.ID] = route.Name
	}
	for _, e := range edges {
		g.AddEdge(e.from, e.to, e.weight, e.spanCount, e.routeID)
	}

	for v := 0; v < vertexCount && v < len(incidence); v++ {
		got := g.IncidentEdges(v)
		want := incidence[v]
		if len(got) != len(want) {
			return nil, nil, fmt.Errorf("snapshot: incidence list for vertex %d length mismatch: %w", v, ErrMalformed)
		}
		for i := range got {
			if got[i] != want[i] {
				return nil, nil, fmt.Errorf("snapshot: incidence list for vertex %d diverges from edge replay: %w", v, ErrMalformed)
			}
		}
	}

	return g, routeNameByID, nil
}

func decodeEdgeSeed(b []byte) (edgeSeed, error) {
	var e edgeSeed
	err := walkFields(b, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldEdgeFrom && typ == varintType:
			v, n, err := consumeVarint(b)
			e.from = int(v)
			return n, err
		case num == fieldEdgeTo && typ == varintType:
			v, n, err := consumeVarint(b)
			e.to = int(v)
			return n, err
		case num == fieldEdgeWeight && typ == fixed64Type:
			v, n, err := consumeFixed64(b)
			e.weight = v
			return n, err
		case num == fieldEdgeSpanCount && typ == varintType:
			v, n, err := consumeVarint(b)
			e.spanCount = int(v)
			return n, err
		case num == fieldEdgeRouteID && typ == varintType:
			v, n, err := consumeVarint(b)
			e.routeID = int(v)
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
	return e, err
}

func decodeIncidenceSeed(b []byte) (int, []int, error) {
	var vertex int
	var ids []int
	err := walkFields(b, func(num protowireNumber, typ protowireType, b []byte) (int, error) {
		switch {
		case num == fieldIncidenceVertex && typ == varintType:
			v, n, err := consumeVarint(b)
			vertex = int(v)
			return n, err
		case num == fieldIncidenceEdgeID && typ == varintType:
			v, n, err := consumeVarint(b)
			ids = append(ids, int(v))
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
	return vertex, ids, err
}
