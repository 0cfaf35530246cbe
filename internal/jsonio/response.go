package jsonio

import (
	"errors"

	"github.com/transitline/catalogue/internal/catalogue"
	"github.com/transitline/catalogue/internal/graph"
	"github.com/transitline/catalogue/internal/renderer"
	"github.com/transitline/catalogue/internal/router"
	"github.com/transitline/catalogue/internal/settings"
)

const notFoundMessage = "not found"

// stopResponse/busResponse/mapResponse/routeResponse are the four
// stat_requests answer shapes from spec.md §6. Each marshals to the exact
// JSON object shape the contract describes; the caller collects a
// heterogeneous []interface{} and lets encoding/json dispatch each to its
// own MarshalJSON-free struct tags.
type stopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

type busResponse struct {
	RequestID       int     `json:"request_id"`
	Curvature       float64 `json:"curvature"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

type mapResponse struct {
	RequestID int    `json:"request_id"`
	Map       string `json:"map"`
}

type routeResponse struct {
	RequestID int        `json:"request_id"`
	TotalTime float64    `json:"total_time"`
	Items     []itemJSON `json:"items"`
}

type itemJSON struct {
	Type      string  `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

type errorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

// Answer builds one of the four stat_requests responses for req against
// cat/rt, rendering the map on demand through renderer.Render. The returned
// value is always one of stopResponse/busResponse/mapResponse/
// routeResponse/errorResponse: callers marshal a slice of these directly.
func Answer(cat *catalogue.Catalogue, rt *router.Router, rs settings.Render, req StatRequest) interface{} {
	switch req.Kind {
	case "Stop":
		buses, err := cat.RoutesThrough(req.Name)
		if err != nil {
			return errorResponse{RequestID: req.ID, ErrorMessage: notFoundMessage}
		}
		if buses == nil {
			buses = []string{}
		}
		return stopResponse{RequestID: req.ID, Buses: buses}

	case "Bus":
		info, err := cat.RouteInfo(req.Name)
		if err != nil {
			return errorResponse{RequestID: req.ID, ErrorMessage: notFoundMessage}
		}
		return busResponse{
			RequestID:       req.ID,
			Curvature:       info.Curvature,
			RouteLength:     info.RoadLength,
			StopCount:       info.StopCount,
			UniqueStopCount: info.UniqueStopCount,
		}

	case "Map":
		return mapResponse{RequestID: req.ID, Map: renderer.Render(cat, rs)}

	case "Route":
		itin, err := rt.Build(req.From, req.To)
		if err != nil {
			if errors.Is(err, router.ErrUnknownStop) || errors.Is(err, graph.ErrNoPath) {
				return errorResponse{RequestID: req.ID, ErrorMessage: notFoundMessage}
			}
			return errorResponse{RequestID: req.ID, ErrorMessage: notFoundMessage}
		}
		items := make([]itemJSON, 0, len(itin.Items))
		for _, it := range itin.Items {
			switch it.Kind {
			case router.Wait:
				items = append(items, itemJSON{Type: "Wait", StopName: it.StopName, Time: it.Time})
			case router.Bus:
				items = append(items, itemJSON{Type: "Bus", Bus: it.BusName, SpanCount: it.SpanCount, Time: it.Time})
			}
		}
		return routeResponse{RequestID: req.ID, TotalTime: itin.TotalTime, Items: items}

	default:
		return errorResponse{RequestID: req.ID, ErrorMessage: notFoundMessage}
	}
}

// AnswerAll answers every request in order, preserving spec.md §5's
// "responses appear in the same order as requests" guarantee.
func AnswerAll(cat *catalogue.Catalogue, rt *router.Router, rs settings.Render, requests []StatRequest) []interface{} {
	answers := make([]interface{}, 0, len(requests))
	for _, req := range requests {
		answers = append(answers, Answer(cat, rt, rs, req))
	}
	return answers
}
