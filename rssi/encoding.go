// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi

import (
	"encoding/json"
	"fmt"

	"github.com/inteli/rssi-dashboard/protocol"
)

// Encoding translates between device payloads and readings. Payloads that
// fail validation decode to Invalid rather than an error, so the caller can
// account for them.
type Encoding struct {
	// Field is the payload member carrying the value; DefaultField if empty.
	Field string
}

// Serialize encodes a ValidSample as a single-member JSON object.
func (e Encoding) Serialize(r Reading) (*protocol.Data, error) {
	v, ok := r.(ValidSample)
	if !ok {
		return nil, fmt.Errorf("cannot encode %T", r)
	}

	payload, err := json.Marshal(map[string]float64{e.field(): v.Value})
	if err != nil {
		return nil, err
	}
	return &protocol.Data{
		Payload:       payload,
		ContentType:   "application/json",
		PayloadFormat: 1,
	}, nil
}

// Deserialize decodes a payload with Decode. Devices usually send no content
// type at all.
func (e Encoding) Deserialize(data *protocol.Data) (Reading, error) {
	switch data.ContentType {
	case "", "application/json", "text/plain":
		return Decode(data.Payload, e.field()), nil
	default:
		return nil, protocol.ErrUnsupportedContentType
	}
}

func (e Encoding) field() string {
	if e.Field == "" {
		return DefaultField
	}
	return e.Field
}
