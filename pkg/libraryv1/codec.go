package libraryv1

import (
	jsoniter "github.com/json-iterator/go"
)

// Codec serializes libraryv1 messages as JSON for Connect.
// It registers under the "json" name so both handlers and clients negotiate
// application/json (unary) and application/connect+json (streaming).
type Codec struct{}

func (Codec) Name() string {
	return "json"
}

func (Codec) Marshal(msg any) ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return jsoniter.ConfigFastest.Unmarshal(data, msg)
}
