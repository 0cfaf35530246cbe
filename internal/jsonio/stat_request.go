package jsonio

import (
	"encoding/json"
	"fmt"
)

// StatRequest is one element of process_requests' stat_requests array.
type StatRequest struct {
	Kind string // "Stop", "Bus", "Map" or "Route"
	ID   int
	Name string // Stop / Bus
	From string // Route
	To   string // Route
}

type wireStatRequest struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

func decodeStatRequest(raw json.RawMessage) (StatRequest, error) {
	var w wireStatRequest
	if err := json.Unmarshal(raw, &w); err != nil {
		return StatRequest{}, &ParseError{Err: err}
	}

	switch w.Type {
	case "Stop", "Bus", "Map", "Route":
		return StatRequest{Kind: w.Type, ID: w.ID, Name: w.Name, From: w.From, To: w.To}, nil
	default:
		return StatRequest{}, fmt.Errorf("unknown stat_requests type %q", w.Type)
	}
}
