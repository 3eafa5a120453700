// Package apiconnect wires the api messages to Connect clients and handlers.
//
// The services exchange plain Go structs, so both sides use a JSON codec
// registered under the "json" name in place of the protobuf codecs.
package apiconnect

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return fmt.Errorf("unmarshal %T: %w", message, err)
	}
	return nil
}

// codecOption is applied to every client and handler in this package.
func codecOption() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{codecOption()}, opts...)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{codecOption()}, opts...)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, fmt.Errorf("%s is not implemented", procedure))
}
