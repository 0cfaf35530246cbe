package jsonio

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/transitline/catalogue/internal/catalogue"
)

// BaseRequest is one element of make_base's base_requests array: either a
// Stop descriptor or a Bus descriptor, per spec.md §6.
type BaseRequest struct {
	Kind string // "Stop" or "Bus"
	Stop StopDescriptor
	Bus  BusDescriptor
}

// StopDescriptor is the Stop shape of a base request.
type StopDescriptor struct {
	Name          string
	Latitude      float64
	Longitude     float64
	RoadDistances map[string]int
}

// BusDescriptor is the Bus shape of a base request.
type BusDescriptor struct {
	Name        string
	Stops       []string
	IsRoundtrip bool
}

type wireBaseRequest struct {
	Type          string         `json:"type"`
	Name          string         `json:"name"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	RoadDistances map[string]int `json:"road_distances"`
	Stops         []string       `json:"stops"`
	IsRoundtrip   bool           `json:"is_roundtrip"`
}

func decodeBaseRequest(raw json.RawMessage) (BaseRequest, error) {
	var w wireBaseRequest
	if err := json.Unmarshal(raw, &w); err != nil {
		return BaseRequest{}, &ParseError{Err: err}
	}

	switch w.Type {
	case "Stop":
		return BaseRequest{
			Kind: "Stop",
			Stop: StopDescriptor{
				Name:          w.Name,
				Latitude:      w.Latitude,
				Longitude:     w.Longitude,
				RoadDistances: w.RoadDistances,
			},
		}, nil
	case "Bus":
		return BaseRequest{
			Kind: "Bus",
			Bus: BusDescriptor{
				Name:        w.Name,
				Stops:       w.Stops,
				IsRoundtrip: w.IsRoundtrip,
			},
		}, nil
	default:
		return BaseRequest{}, fmt.Errorf("unknown base_requests type %q", w.Type)
	}
}

// Ingest applies base requests to cat in the staged order spec.md §5
// requires: all Stops first, then all distances (from the Stop
// descriptors' road_distances), then all Bus/Route descriptors. A failing
// descriptor is logged and dropped; ingestion continues with the rest,
// per spec.md §7's InvariantViolation policy.
func Ingest(cat *catalogue.Catalogue, requests []BaseRequest) {
	for _, req := range requests {
		if req.Kind != "Stop" {
			continue
		}
		if _, err := cat.AddStop(req.Stop.Name, req.Stop.Latitude, req.Stop.Longitude); err != nil {
			log.Printf("jsonio: dropping stop %q: %v", req.Stop.Name, err)
		}
	}

	for _, req := range requests {
		if req.Kind != "Stop" {
			continue
		}
		for toName, meters := range req.Stop.RoadDistances {
			if err := cat.SetDistance(req.Stop.Name, toName, meters); err != nil {
				log.Printf("jsonio: dropping distance %q->%q: %v", req.Stop.Name, toName, err)
			}
		}
	}

	for _, req := range requests {
		if req.Kind != "Bus" {
			continue
		}
		kind := catalogue.Linear
		if req.Bus.IsRoundtrip {
			kind = catalogue.Circle
		}
		if _, err := cat.AddRoute(req.Bus.Name, kind, req.Bus.Stops); err != nil {
			log.Printf("jsonio: dropping route %q: %v", req.Bus.Name, err)
		}
	}
}
