// Package settings holds the closed, JSON-sourced configuration records
// from spec.md §6: render settings, and the serialization (snapshot path)
// setting. Routing settings live in package router since only the router
// consumes them; these two are used by the snapshot codec and the (out of
// core scope) renderer, so they live here instead.
//
// No dynamic key lookup happens against these at runtime: every field is
// named explicitly, per spec.md §9 "Configuration as explicit record".
package settings

// ColorKind distinguishes the three JSON shapes a color may take.
type ColorKind int

const (
	// ColorNamed is a bare string such as "red" or "#3d3d3d".
	ColorNamed ColorKind = iota
	// ColorRGB is a 3-element [R, G, B] integer array.
	ColorRGB
	// ColorRGBA is a 4-element [R, G, B, A] array; A is a float opacity.
	ColorRGBA
)

// Color is the opaque union type for a render-settings color: a name, an
// RGB triple, or an RGBA quadruple. The core never interprets these; it
// only needs to round-trip them through the snapshot bit-exactly.
type Color struct {
	Kind  ColorKind
	Name  string
	R, G, B int
	A     float64
}

// Point is a pair of doubles, used for label offsets.
type Point struct {
	X, Y float64
}

// Render is the render_settings closed record from spec.md §6. It is
// opaque to the Catalogue and Router: they carry it only so the snapshot
// codec can round-trip it losslessly for the (out of core scope) SVG
// renderer.
type Render struct {
	Width             float64
	Height            float64
	Padding           float64
	LineWidth         float64
	StopRadius        float64
	BusLabelFontSize  int
	StopLabelFontSize int
	BusLabelOffset    Point
	StopLabelOffset   Point
	UnderlayerColor   Color
	UnderlayerWidth   float64
	ColorPalette      []Color // non-empty
}

// Serialization is the serialization_settings closed record: just the
// snapshot file path.
type Serialization struct {
	File string
}
