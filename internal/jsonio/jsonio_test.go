package jsonio

import (
	"strings"
	"testing"

	"github.com/transitline/catalogue/internal/catalogue"
	"github.com/transitline/catalogue/internal/router"
)

const sampleInput = `{
  "serialization_settings": {"file": "catalogue.bin"},
  "routing_settings": {"bus_wait_time": 6, "bus_velocity": 40},
  "render_settings": {
    "width": 600, "height": 400, "padding": 30,
    "line_width": 14, "stop_radius": 5,
    "bus_label_font_size": 20, "stop_label_font_size": 18,
    "bus_label_offset": [7, 15], "stop_label_offset": [7, -3],
    "underlayer_color": [255, 255, 255, 0.85],
    "underlayer_width": 3,
    "color_palette": ["green", [255, 160, 0]]
  },
  "base_requests": [
    {"type": "Stop", "name": "Tolstopaltsevo", "latitude": 55.611087, "longitude": 37.20829, "road_distances": {"Marushkino": 3900}},
    {"type": "Stop", "name": "Marushkino", "latitude": 55.595884, "longitude": 37.209755, "road_distances": {"Tolstopaltsevo": 9900}},
    {"type": "Bus", "name": "256", "stops": ["Tolstopaltsevo", "Marushkino"], "is_roundtrip": false}
  ],
  "stat_requests": [
    {"id": 1, "type": "Stop", "name": "Tolstopaltsevo"},
    {"id": 2, "type": "Bus", "name": "256"},
    {"id": 3, "type": "Stop", "name": "Nowhere"},
    {"id": 4, "type": "Route", "from": "Tolstopaltsevo", "to": "Marushkino"}
  ]
}`

func TestParseInputAndIngestAndAnswer(t *testing.T) {
	var parseErrors []error
	in, err := ParseInput(strings.NewReader(sampleInput), func(e error) { parseErrors = append(parseErrors, e) })
	if err != nil {
		t.Fatalf("ParseInput: %v", err)
	}
	if len(parseErrors) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrors)
	}
	if in.Routing.BusWaitTime != 6 || in.Routing.BusVelocity != 40 {
		t.Errorf("Routing = %+v, want {6 40}", in.Routing)
	}
	if len(in.Render.ColorPalette) != 2 {
		t.Errorf("ColorPalette length = %d, want 2", len(in.Render.ColorPalette))
	}
	if len(in.BaseRequests) != 3 || len(in.StatRequests) != 4 {
		t.Fatalf("BaseRequests=%d StatRequests=%d, want 3,4", len(in.BaseRequests), len(in.StatRequests))
	}

	cat := catalogue.New()
	Ingest(cat, in.BaseRequests)

	rt := router.New(cat)
	rt.SetSettings(in.Routing)
	if err := rt.BuildGraph(); err != nil {
		t.Fatal(err)
	}

	answers := AnswerAll(cat, rt, in.Render, in.StatRequests)
	if len(answers) != 4 {
		t.Fatalf("len(answers) = %d, want 4", len(answers))
	}

	stop, ok := answers[0].(stopResponse)
	if !ok {
		t.Fatalf("answers[0] type = %T, want stopResponse", answers[0])
	}
	if len(stop.Buses) != 1 || stop.Buses[0] != "256" {
		t.Errorf("stop.Buses = %v, want [256]", stop.Buses)
	}

	bus, ok := answers[1].(busResponse)
	if !ok {
		t.Fatalf("answers[1] type = %T, want busResponse", answers[1])
	}
	if bus.StopCount != 3 || bus.UniqueStopCount != 2 {
		t.Errorf("bus = %+v, want StopCount=3 UniqueStopCount=2", bus)
	}

	notFound, ok := answers[2].(errorResponse)
	if !ok || notFound.ErrorMessage != notFoundMessage {
		t.Errorf("answers[2] = %+v, want errorResponse{not found}", answers[2])
	}

	route, ok := answers[3].(routeResponse)
	if !ok {
		t.Fatalf("answers[3] type = %T, want routeResponse", answers[3])
	}
	if len(route.Items) != 2 || route.Items[0].Type != "Wait" || route.Items[1].Type != "Bus" {
		t.Errorf("route.Items = %+v, want [Wait Bus]", route.Items)
	}
}

func TestParseInputMalformedTopLevelIsFatal(t *testing.T) {
	if _, err := ParseInput(strings.NewReader("{not json"), func(error) {}); err == nil {
		t.Fatal("expected error for malformed top-level JSON")
	}
}

func TestIngestDropsInvariantViolationsAndContinues(t *testing.T) {
	cat := catalogue.New()
	reqs := []BaseRequest{
		{Kind: "Stop", Stop: StopDescriptor{Name: "A", Latitude: 0, Longitude: 0}},
		{Kind: "Bus", Bus: BusDescriptor{Name: "X", Stops: []string{"A", "Unknown"}}},
		{Kind: "Stop", Stop: StopDescriptor{Name: "B", Latitude: 1, Longitude: 1}},
	}
	Ingest(cat, reqs)

	if cat.StopCount() != 2 {
		t.Errorf("StopCount = %d, want 2 (bad route dropped, stops still ingested)", cat.StopCount())
	}
	if _, err := cat.RouteByName("X"); err == nil {
		t.Errorf("route X should have been dropped")
	}
}
