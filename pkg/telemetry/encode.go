// Package telemetry encodes monitor reports for publishing.
package telemetry

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/dps.go/pkg/monitor"
)

// Format is the wire encoding of a report.
type Format string

// Formats
const (
	FormatProto Format = "proto"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatProto, FormatJSON:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown telemetry format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatProto {
		return "application/x-protobuf"
	}
	return "application/json"
}

func number(v float32) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: float64(v)}}
}

func str(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func boolean(b bool) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: b}}
}

// Struct converts a report into a protobuf Struct.
func Struct(r *monitor.Report) *structpb.Struct {
	s := r.State
	fields := map[string]*structpb.Value{
		"id":                 str(r.ID),
		"session":            str(r.Session),
		"time":               str(r.Time.UTC().Format(time.RFC3339Nano)),
		"set_voltage":        number(s.SetVoltage),
		"set_current":        number(s.SetCurrent),
		"input_voltage":      number(s.InputVoltage),
		"output_voltage":     number(s.OutputVoltage),
		"output_current":     number(s.OutputCurrent),
		"output_power":       number(s.OutputPower),
		"output_closed":      boolean(s.OutputClosed),
		"upperlimit_voltage": number(s.UpperLimitVoltage),
		"upperlimit_current": number(s.UpperLimitCurrent),
		"temperature":        number(s.Temperature),
	}
	if r.Info.Model != "" {
		fields["model"] = str(r.Info.Model)
	}
	if r.Info.Hardware != "" {
		fields["hardware"] = str(r.Info.Hardware)
	}
	if r.Info.Firmware != "" {
		fields["firmware"] = str(r.Info.Firmware)
	}
	return &structpb.Struct{Fields: fields}
}

// Encode encodes a report.
func Encode(r *monitor.Report, f Format) ([]byte, error) {
	msg := Struct(r)
	switch f {
	case FormatProto:
		return proto.Marshal(msg)
	case FormatJSON:
		m := jsonpb.Marshaler{}
		s, err := m.MarshalToString(msg)
		return []byte(s), err
	}
	return nil, fmt.Errorf("unknown telemetry format %q", f)
}

// Decode decodes an encoded report into a Struct.
func Decode(data []byte, f Format) (*structpb.Struct, error) {
	var msg structpb.Struct
	var err error
	switch f {
	case FormatProto:
		err = proto.Unmarshal(data, &msg)
	case FormatJSON:
		err = jsonpb.UnmarshalString(string(data), &msg)
	default:
		err = fmt.Errorf("unknown telemetry format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
