package jsonio

import (
	"encoding/json"
	"fmt"

	"github.com/transitline/catalogue/internal/settings"
)

type wireRender struct {
	Width             float64           `json:"width"`
	Height            float64           `json:"height"`
	Padding           float64           `json:"padding"`
	LineWidth         float64           `json:"line_width"`
	StopRadius        float64           `json:"stop_radius"`
	BusLabelFontSize  int               `json:"bus_label_font_size"`
	StopLabelFontSize int               `json:"stop_label_font_size"`
	BusLabelOffset    [2]float64        `json:"bus_label_offset"`
	StopLabelOffset   [2]float64        `json:"stop_label_offset"`
	UnderlayerColor   json.RawMessage   `json:"underlayer_color"`
	UnderlayerWidth   float64           `json:"underlayer_width"`
	ColorPalette      []json.RawMessage `json:"color_palette"`
}

func decodeRenderSettings(w wireRender) settings.Render {
	r := settings.Render{
		Width:             w.Width,
		Height:            w.Height,
		Padding:           w.Padding,
		LineWidth:         w.LineWidth,
		StopRadius:        w.StopRadius,
		BusLabelFontSize:  w.BusLabelFontSize,
		StopLabelFontSize: w.StopLabelFontSize,
		BusLabelOffset:    settings.Point{X: w.BusLabelOffset[0], Y: w.BusLabelOffset[1]},
		StopLabelOffset:   settings.Point{X: w.StopLabelOffset[0], Y: w.StopLabelOffset[1]},
		UnderlayerWidth:   w.UnderlayerWidth,
	}
	if c, err := decodeColorJSON(w.UnderlayerColor); err == nil {
		r.UnderlayerColor = c
	}
	for _, raw := range w.ColorPalette {
		if c, err := decodeColorJSON(raw); err == nil {
			r.ColorPalette = append(r.ColorPalette, c)
		}
	}
	return r
}

// decodeColorJSON decodes one render-settings color: a bare string, a
// 3-element [R,G,B] integer array, or a 4-element [R,G,B,A] array whose
// last element is a float opacity. Per spec.md §6.
func decodeColorJSON(raw json.RawMessage) (settings.Color, error) {
	if len(raw) == 0 {
		return settings.Color{}, fmt.Errorf("jsonio: empty color")
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return settings.Color{Kind: settings.ColorNamed, Name: name}, nil
	}

	var arr []json.Number
	if err := json.Unmarshal(raw, &arr); err != nil {
		return settings.Color{}, fmt.Errorf("jsonio: invalid color: %w", err)
	}
	switch len(arr) {
	case 3:
		r, g, b, err := parseRGB(arr)
		if err != nil {
			return settings.Color{}, err
		}
		return settings.Color{Kind: settings.ColorRGB, R: r, G: g, B: b}, nil
	case 4:
		r, g, b, err := parseRGB(arr[:3])
		if err != nil {
			return settings.Color{}, err
		}
		a, err := arr[3].Float64()
		if err != nil {
			return settings.Color{}, fmt.Errorf("jsonio: invalid color alpha: %w", err)
		}
		return settings.Color{Kind: settings.ColorRGBA, R: r, G: g, B: b, A: a}, nil
	default:
		return settings.Color{}, fmt.Errorf("jsonio: color array must have 3 or 4 elements, got %d", len(arr))
	}
}

func parseRGB(arr []json.Number) (int, int, int, error) {
	vals := make([]int, 3)
	for i, n := range arr {
		v, err := n.Int64()
		if err != nil {
			return 0, 0, 0, fmt.Errorf("jsonio: invalid color channel: %w", err)
		}
		vals[i] = int(v)
	}
	return vals[0], vals[1], vals[2], nil
}
