package snapshot

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned for any snapshot block that is missing, too
// short, or fails to parse as a valid field stream: per spec.md §4.5, any
// malformed block is a fatal error for the whole load.
var ErrMalformed = fmt.Errorf("snapshot: malformed block")

// Local aliases so the block encode/decode functions in snapshot.go don't
// need to repeat the protowire package qualifier on every field switch.
type (
	protowireNumber = protowire.Number
	protowireType   = protowire.Type
)

const (
	varintType  = protowire.VarintType
	fixed64Type = protowire.Fixed64Type
	bytesType   = protowire.BytesType
)

// Field numbers. These are this format's own field identities (spec.md §6
// only requires that they stay stable across versions, not that they match
// any particular .proto file).
const (
	fieldBuildID       protowire.Number = 1
	fieldCatalogue     protowire.Number = 2
	fieldRenderBlock   protowire.Number = 3
	fieldRoutingBlock  protowire.Number = 4
	fieldGraphBlock    protowire.Number = 5

	fieldCatStops     protowire.Number = 1
	fieldCatRoutes    protowire.Number = 2
	fieldCatDistances protowire.Number = 3

	fieldStopName protowire.Number = 1
	fieldStopLat  protowire.Number = 2
	fieldStopLng  protowire.Number = 3
	fieldStopID   protowire.Number = 4

	fieldRouteName       protowire.Number = 1
	fieldRouteIsCircular protowire.Number = 2
	fieldRouteStopID     protowire.Number = 3
	fieldRouteID         protowire.Number = 4

	fieldDistFrom   protowire.Number = 1
	fieldDistTo     protowire.Number = 2
	fieldDistMeters protowire.Number = 3

	fieldRoutingWaitTime protowire.Number = 1
	fieldRoutingVelocity protowire.Number = 2

	fieldRenderWidth             protowire.Number = 1
	fieldRenderHeight            protowire.Number = 2
	fieldRenderPadding           protowire.Number = 3
	fieldRenderLineWidth         protowire.Number = 4
	fieldRenderStopRadius        protowire.Number = 5
	fieldRenderBusLabelFontSize  protowire.Number = 6
	fieldRenderStopLabelFontSize protowire.Number = 7
	fieldRenderBusLabelOffset    protowire.Number = 8
	fieldRenderStopLabelOffset   protowire.Number = 9
	fieldRenderUnderlayerColor   protowire.Number = 10
	fieldRenderUnderlayerWidth   protowire.Number = 11
	fieldRenderPalette           protowire.Number = 12

	fieldPointX protowire.Number = 1
	fieldPointY protowire.Number = 2

	fieldColorKind protowire.Number = 1
	fieldColorName protowire.Number = 2
	fieldColorR    protowire.Number = 3
	fieldColorG    protowire.Number = 4
	fieldColorB    protowire.Number = 5
	fieldColorA    protowire.Number = 6

	fieldGraphVertexCount protowire.Number = 1
	fieldGraphEdges       protowire.Number = 2
	fieldGraphIncidence   protowire.Number = 3

	fieldEdgeFrom      protowire.Number = 1
	fieldEdgeTo        protowire.Number = 2
	fieldEdgeWeight    protowire.Number = 3
	fieldEdgeSpanCount protowire.Number = 4
	fieldEdgeRouteID   protowire.Number = 5

	fieldIncidenceVertex protowire.Number = 1
	fieldIncidenceEdgeID protowire.Number = 2
)

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	b = protowire.AppendVarint(b, v)
	return b
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if v {
		return appendVarintField(b, num, 1)
	}
	return appendVarintField(b, num, 0)
}

func appendDoubleField(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(v))
	return b
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendString(b, v)
	return b
}

func appendMessageField(b []byte, num protowire.Number, inner []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendBytes(b, inner)
	return b
}

// fieldVisitor is called once per top-level field in a message body.
// consumed is the number of bytes the field's value occupies, not
// including the tag.
type fieldVisitor func(num protowire.Number, typ protowire.Type, b []byte) (consumed int, err error)

// walkFields consumes tag/value pairs from b until exhausted, dispatching
// each to visit. Any ConsumeTag/ConsumeFieldValue failure (negative byte
// count) is reported as ErrMalformed.
func walkFields(b []byte, visit fieldVisitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ErrMalformed
		}
		b = b[n:]

		consumed, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if consumed < 0 || consumed > len(b) {
			return ErrMalformed
		}
		b = b[consumed:]
	}
	return nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, ErrMalformed
	}
	return v, n, nil
}

func consumeFixed64(b []byte) (float64, int, error) {
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, ErrMalformed
	}
	return math.Float64frombits(v), n, nil
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, ErrMalformed
	}
	return v, n, nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, ErrMalformed
	}
	return v, n, nil
}

// skipField consumes and discards a field's value, used for wire-format
// forward compatibility on fields this reader does not recognize.
func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, ErrMalformed
	}
	return n, nil
}
