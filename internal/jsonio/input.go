// Package jsonio is the JSON request/response dialect collaborator from
// spec.md §6: it parses the single top-level JSON object consumed from
// stdin and renders the stat_requests answers written to stdout. It is a
// thin facade, kept ignorant of Catalogue/Router/Snapshot internals beyond
// their exported operations — the role the original transport-catalogue's
// request_handler.h assigns to RequestHandler.
package jsonio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/transitline/catalogue/internal/router"
	"github.com/transitline/catalogue/internal/settings"
)

// Input is the top-level JSON object from spec.md §6.
type Input struct {
	Serialization settings.Serialization
	Routing       router.Settings
	Render        settings.Render
	BaseRequests  []BaseRequest // make_base only
	StatRequests  []StatRequest // process_requests only
}

type wireInput struct {
	SerializationSettings wireSerialization `json:"serialization_settings"`
	RoutingSettings       wireRouting       `json:"routing_settings"`
	RenderSettings        wireRender        `json:"render_settings"`
	BaseRequests          []json.RawMessage `json:"base_requests"`
	StatRequests          []json.RawMessage `json:"stat_requests"`
}

type wireSerialization struct {
	File string `json:"file"`
}

type wireRouting struct {
	BusWaitTime int     `json:"bus_wait_time"`
	BusVelocity float64 `json:"bus_velocity"`
}

// ParseError is returned for malformed top-level JSON. Per spec.md §7 this
// is fatal only for the offending element; ParseInput itself fails closed
// since a malformed top-level object leaves nothing to ingest.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("jsonio: parse error: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// ParseInput decodes the single top-level JSON object read from r.
// base_requests and stat_requests elements that fail to parse are skipped
// individually (reported through onError) rather than failing the whole
// input, per spec.md §7's ParseError continuation policy; only a malformed
// top-level object itself returns a *ParseError.
func ParseInput(r io.Reader, onError func(error)) (*Input, error) {
	var wire wireInput
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, &ParseError{Err: err}
	}

	in := &Input{
		Serialization: settings.Serialization{File: wire.SerializationSettings.File},
		Routing: router.Settings{
			BusWaitTime: wire.RoutingSettings.BusWaitTime,
			BusVelocity: wire.RoutingSettings.BusVelocity,
		},
		Render: decodeRenderSettings(wire.RenderSettings),
	}

	for _, raw := range wire.BaseRequests {
		req, err := decodeBaseRequest(raw)
		if err != nil {
			onError(fmt.Errorf("base_requests: %w", err))
			continue
		}
		in.BaseRequests = append(in.BaseRequests, req)
	}

	for _, raw := range wire.StatRequests {
		req, err := decodeStatRequest(raw)
		if err != nil {
			onError(fmt.Errorf("stat_requests: %w", err))
			continue
		}
		in.StatRequests = append(in.StatRequests, req)
	}

	return in, nil
}
