// Package jsoncodec is a Connect codec that serializes plain Go structs with
// encoding/json. Registering it under the name "json" lets handlers and
// clients exchange ordinary structs without generated protobuf types.
package jsoncodec

import (
	"encoding/json"
	"fmt"
)

// Name is the codec name, matching Connect's application/json content type.
const Name = "json"

// Codec implements connect.Codec.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return Name }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body leaves msg at its zero value.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}
