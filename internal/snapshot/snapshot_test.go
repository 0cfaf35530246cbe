package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/transitline/catalogue/internal/catalogue"
	"github.com/transitline/catalogue/internal/router"
	"github.com/transitline/catalogue/internal/settings"
)

func buildSeedCatalogue(t *testing.T) (*catalogue.Catalogue, *router.Router) {
	t.Helper()
	c := catalogue.New()
	for _, s := range []struct {
		name     string
		lat, lng float64
	}{
		{"A", 55.611087, 37.20829},
		{"B", 55.595884, 37.209755},
		{"C", 55.632761, 37.333324},
	} {
		if _, err := c.AddStop(s.name, s.lat, s.lng); err != nil {
			t.Fatalf("AddStop(%q): %v", s.name, err)
		}
	}
	for _, d := range []struct {
		from, to string
		meters   int
	}{
		{"A", "B", 600},
		{"B", "A", 550},
		{"B", "C", 900},
	} {
		if err := c.SetDistance(d.from, d.to, d.meters); err != nil {
			t.Fatalf("SetDistance: %v", err)
		}
	}
	if _, err := c.AddRoute("14", catalogue.Linear, []string{"A", "B"}); err != nil {
		t.Fatalf("AddRoute(14): %v", err)
	}
	if _, err := c.AddRoute("297", catalogue.Circle, []string{"B", "C", "B"}); err != nil {
		t.Fatalf("AddRoute(297): %v", err)
	}

	rt := router.New(c)
	rt.SetSettings(router.Settings{BusWaitTime: 6, BusVelocity: 36})
	if err := rt.BuildGraph(); err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	return c, rt
}

func sampleRender() settings.Render {
	return settings.Render{
		Width:             600,
		Height:            400,
		Padding:           30,
		LineWidth:         14,
		StopRadius:        5,
		BusLabelFontSize:  20,
		StopLabelFontSize: 18,
		BusLabelOffset:    settings.Point{X: 7, Y: 15},
		StopLabelOffset:   settings.Point{X: 7, Y: -3},
		UnderlayerColor:   settings.Color{Kind: settings.ColorRGBA, R: 255, G: 255, B: 255, A: 0.85},
		UnderlayerWidth:   3,
		ColorPalette: []settings.Color{
			{Kind: settings.ColorNamed, Name: "green"},
			{Kind: settings.ColorRGB, R: 255, G: 160, B: 0},
			{Kind: settings.ColorRGBA, R: 255, G: 0, B: 0, A: 0.3},
		},
	}
}

// Scenario 8: snapshot round-trip.
func TestSaveLoadRoundTrip(t *testing.T) {
	cat, rt := buildSeedCatalogue(t)
	render := sampleRender()

	path := filepath.Join(t.TempDir(), "catalogue.bin")
	if err := Save(path, cat, rt, render); err != nil {
		t.Fatalf("Save: %v", err)
	}

	state, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if state.BuildID == "" {
		t.Error("BuildID is empty after load")
	}
	if state.Catalogue.StopCount() != cat.StopCount() {
		t.Errorf("StopCount = %d, want %d", state.Catalogue.StopCount(), cat.StopCount())
	}
	if state.Routing != rt.Settings() {
		t.Errorf("Routing = %+v, want %+v", state.Routing, rt.Settings())
	}

	wantInfo, err := cat.RouteInfo("14")
	if err != nil {
		t.Fatal(err)
	}
	gotInfo, err := state.Catalogue.RouteInfo("14")
	if err != nil {
		t.Fatal(err)
	}
	if gotInfo != wantInfo {
		t.Errorf("RouteInfo(14) after round-trip = %+v, want %+v", gotInfo, wantInfo)
	}

	wantItin, err := rt.Build("A", "C")
	if err != nil {
		t.Fatal(err)
	}
	gotItin, err := state.Router.Build("A", "C")
	if err != nil {
		t.Fatal(err)
	}
	if gotItin.TotalTime != wantItin.TotalTime || len(gotItin.Items) != len(wantItin.Items) {
		t.Errorf("Build(A,C) after round-trip = %+v, want %+v", gotItin, wantItin)
	}

	if len(state.Render.ColorPalette) != len(render.ColorPalette) {
		t.Fatalf("ColorPalette length = %d, want %d", len(state.Render.ColorPalette), len(render.ColorPalette))
	}
	if state.Render.UnderlayerColor != render.UnderlayerColor {
		t.Errorf("UnderlayerColor = %+v, want %+v", state.Render.UnderlayerColor, render.UnderlayerColor)
	}
	if state.Render.Width != render.Width || state.Render.BusLabelOffset != render.BusLabelOffset {
		t.Errorf("Render round-trip mismatch: got %+v, want %+v", state.Render, render)
	}
}

func TestLoadMissingFileIsIoError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.bin")); err == nil {
		t.Fatal("expected error loading missing snapshot file")
	}
}

func TestLoadMalformedBlockIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.bin")
	if err := os.WriteFile(path, []byte{0xFF, 0xFF, 0xFF}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected ErrMalformed for corrupt snapshot")
	}
}
