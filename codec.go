// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"encoding/json"
)

// Codec encodes/decodes engine operation payloads.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONCodec is a JSON-based codec
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// defaultCodec is used when no codec is specified
var defaultCodec Codec = JSONCodec{}

// BinaryCodec passes bytes through unchanged (for pre-encoded data)
type BinaryCodec struct{}

func (BinaryCodec) Encode(v any) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	if b, ok := v.(*[]byte); ok {
		return *b, nil
	}
	return json.Marshal(v)
}

func (BinaryCodec) Decode(data []byte, v any) error {
	if b, ok := v.(*[]byte); ok {
		*b = data
		return nil
	}
	return json.Unmarshal(data, v)
}

// Binary is a codec that passes bytes through unchanged
var Binary Codec = BinaryCodec{}

// Operation payloads shared by the wire, JSON-RPC, and gRPC transports. A
// nil result slice and an empty one are equivalent on the wire.

type evalRequest struct {
	Command string `json:"command"`
}

type evalReturningRequest struct {
	Command string `json:"command"`
	Nargout int    `json:"nargout"`
}

type evalReturningReply struct {
	Results []any `json:"results"`
}

type setVariableRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}
