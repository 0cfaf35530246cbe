// Package renderer is the map-rendering collaborator from spec.md §2/§6:
// it projects a Catalogue's stops onto an SVG canvas sized by render
// settings and draws one polyline per route plus one circle+label per
// stop. Pixel-level geometry fidelity (curve smoothing, label collision
// avoidance) is explicitly out of scope per spec.md §1 — this produces a
// structurally valid, readable SVG rather than a pixel-exact one.
package renderer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/transitline/catalogue/internal/catalogue"
	"github.com/transitline/catalogue/internal/settings"
)

// Render produces an SVG document string for every stop and route in cat,
// projected flat onto a canvas of the given render settings.
func Render(cat *catalogue.Catalogue, rs settings.Render) string {
	proj := newProjection(cat.Stops(), rs)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%s" height="%s">`,
		formatCoord(rs.Width), formatCoord(rs.Height))

	routes := sortedRoutes(cat)
	paletteSize := len(rs.ColorPalette)

	for i, route := range routes {
		if len(route.Stops) < 2 || paletteSize == 0 {
			continue
		}
		color := rs.ColorPalette[i%paletteSize]
		writePolyline(&b, proj, route.Stops, rs, color)
	}

	for i, route := range routes {
		if len(route.Stops) == 0 || paletteSize == 0 {
			continue
		}
		color := rs.ColorPalette[i%paletteSize]
		writeRouteLabel(&b, proj, route, rs, color)
	}

	for _, stop := range sortedStops(cat) {
		writeStopCircle(&b, proj, stop, rs)
	}
	for _, stop := range sortedStops(cat) {
		writeStopLabel(&b, proj, stop, rs)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func sortedRoutes(cat *catalogue.Catalogue) []*catalogue.Route {
	routes := append([]*catalogue.Route(nil), cat.Routes()...)
	sort.Slice(routes, func(i, j int) bool { return routes[i].Name < routes[j].Name })
	return routes
}

func sortedStops(cat *catalogue.Catalogue) []*catalogue.Stop {
	stops := append([]*catalogue.Stop(nil), cat.Stops()...)
	sort.Slice(stops, func(i, j int) bool { return stops[i].Name < stops[j].Name })
	return stops
}

func writePolyline(b *strings.Builder, proj projection, stops []*catalogue.Stop, rs settings.Render, color settings.Color) {
	b.WriteString(`<polyline points="`)
	for i, stop := range stops {
		if i > 0 {
			b.WriteString(" ")
		}
		x, y := proj.project(stop.Coordinates.Lat, stop.Coordinates.Lng)
		fmt.Fprintf(b, "%s,%s", formatCoord(x), formatCoord(y))
	}
	fmt.Fprintf(b, `" fill="none" stroke="%s" stroke-width="%s"/>`, cssColor(color), formatCoord(rs.LineWidth))
}

func writeRouteLabel(b *strings.Builder, proj projection, route *catalogue.Route, rs settings.Render, color settings.Color) {
	stop := route.Stops[0]
	x, y := proj.project(stop.Coordinates.Lat, stop.Coordinates.Lng)
	fmt.Fprintf(b, `<text x="%s" y="%s" dx="%s" dy="%s" font-size="%d" font-family="Verdana" fill="%s">%s</text>`,
		formatCoord(x), formatCoord(y), formatCoord(rs.BusLabelOffset.X), formatCoord(rs.BusLabelOffset.Y),
		rs.BusLabelFontSize, cssColor(color), escapeText(route.Name))
}

func writeStopCircle(b *strings.Builder, proj projection, stop *catalogue.Stop, rs settings.Render) {
	x, y := proj.project(stop.Coordinates.Lat, stop.Coordinates.Lng)
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="white"/>`, formatCoord(x), formatCoord(y), formatCoord(rs.StopRadius))
}

func writeStopLabel(b *strings.Builder, proj projection, stop *catalogue.Stop, rs settings.Render) {
	x, y := proj.project(stop.Coordinates.Lat, stop.Coordinates.Lng)
	fmt.Fprintf(b, `<text x="%s" y="%s" dx="%s" dy="%s" font-size="%d" font-family="Verdana" fill="black">%s</text>`,
		formatCoord(x), formatCoord(y), formatCoord(rs.StopLabelOffset.X), formatCoord(rs.StopLabelOffset.Y),
		rs.StopLabelFontSize, escapeText(stop.Name))
}

func cssColor(c settings.Color) string {
	switch c.Kind {
	case settings.ColorRGB:
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	case settings.ColorRGBA:
		return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, formatCoord(c.A))
	default:
		return c.Name
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func escapeText(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}

// projection is an equirectangular flattening scaled and translated to fit
// every stop within [padding, width-padding] x [padding, height-padding],
// matching the teacher's own Haversine/linear-interpolation approach to
// geographic geometry rather than a full Mercator projection.
type projection struct {
	minLat, maxLat float64
	minLng, maxLng float64
	width, height  float64
	padding        float64
	zoomLat        float64
	zoomLng        float64
}

func newProjection(stops []*catalogue.Stop, rs settings.Render) projection {
	p := projection{width: rs.Width, height: rs.Height, padding: rs.Padding}
	if len(stops) == 0 {
		return p
	}

	p.minLat, p.maxLat = stops[0].Coordinates.Lat, stops[0].Coordinates.Lat
	p.minLng, p.maxLng = stops[0].Coordinates.Lng, stops[0].Coordinates.Lng
	for _, s := range stops[1:] {
		p.minLat = math.Min(p.minLat, s.Coordinates.Lat)
		p.maxLat = math.Max(p.maxLat, s.Coordinates.Lat)
		p.minLng = math.Min(p.minLng, s.Coordinates.Lng)
		p.maxLng = math.Max(p.maxLng, s.Coordinates.Lng)
	}

	usableWidth := rs.Width - 2*rs.Padding
	usableHeight := rs.Height - 2*rs.Padding
	lngSpan := p.maxLng - p.minLng
	latSpan := p.maxLat - p.minLat

	if lngSpan > 0 {
		p.zoomLng = usableWidth / lngSpan
	}
	if latSpan > 0 {
		p.zoomLat = usableHeight / latSpan
	}

	switch {
	case lngSpan > 0 && latSpan > 0:
		zoom := math.Min(p.zoomLng, p.zoomLat)
		p.zoomLng, p.zoomLat = zoom, zoom
	case lngSpan > 0:
		p.zoomLat = p.zoomLng
	case latSpan > 0:
		p.zoomLng = p.zoomLat
	}

	return p
}

func (p projection) project(lat, lng float64) (x, y float64) {
	x = (lng-p.minLng)*p.zoomLng + p.padding
	y = (p.maxLat-lat)*p.zoomLat + p.padding
	return x, y
}
