// Package api defines the racha.v1 Connect contract: request and response
// messages, procedure names, and typed handler and client constructors.
//
// The package is written by hand in the layout protoc-gen-connect-go would
// produce (ServiceName and Procedure constants, New*Handler returning a
// mount path, New*Client, Unimplemented*Handler), so it can be replaced by
// generated code for a racha/v1 proto package without touching callers.
// JSON field names are the snake_case proto field names, which protojson
// also accepts on input.
//
// Messages are plain Go structs carried as JSON. Every handler and client
// built here registers Codec, so the Connect protocol negotiates
// application/json for unary calls.
package api

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Codec marshals messages as JSON. Protobuf messages, such as error details,
// go through protojson so their canonical JSON mapping is kept.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if m, ok := v.(proto.Message); ok {
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}
