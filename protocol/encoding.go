// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package protocol

import (
	"encoding/json"

	"github.com/inteli/rssi-dashboard/protocol/errors"
)

type (
	// Encoding is a translation between a concrete Go type T and encoded data.
	// All methods *must* be thread-safe.
	Encoding[T any] interface {
		Serialize(T) (*Data, error)
		Deserialize(*Data) (T, error)
	}

	// Data represents encoded values along with their transmitted content
	// type. PayloadFormat follows the MQTT payload format indicator.
	Data struct {
		Payload       []byte
		ContentType   string
		PayloadFormat byte
	}

	// JSON is a simple implementation of a JSON encoding.
	JSON[T any] struct{}

	// Raw represents no encoding.
	Raw struct{}
)

// ErrUnsupportedContentType should be returned by an encoding if it does not
// support the content type of the data it is deserializing.
var ErrUnsupportedContentType = &errors.Error{
	Message: "unsupported content type",
	Kind:    errors.HeaderInvalid,
}

// Utility to serialize with a protocol error.
func serialize[T any](encoding Encoding[T], value T) (*Data, error) {
	data, err := encoding.Serialize(value)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e
		}
		return nil, &errors.Error{
			Message:     "cannot serialize payload",
			Kind:        errors.PayloadInvalid,
			NestedError: err,
		}
	}
	if data == nil {
		return &Data{}, nil
	}
	return data, nil
}

// Utility to deserialize with a protocol error.
func deserialize[T any](encoding Encoding[T], data *Data) (T, error) {
	payload, err := encoding.Deserialize(data)
	if err != nil {
		if err == ErrUnsupportedContentType {
			return payload, &errors.Error{
				Message:     "content type mismatch",
				Kind:        errors.HeaderInvalid,
				HeaderName:  "Content Type",
				HeaderValue: data.ContentType,
				NestedError: err,
			}
		}
		if e, ok := err.(*errors.Error); ok {
			return payload, e
		}
		return payload, &errors.Error{
			Message:     "cannot deserialize payload",
			Kind:        errors.PayloadInvalid,
			NestedError: err,
		}
	}
	return payload, nil
}

// Serialize translates the Go type T into JSON bytes.
func (JSON[T]) Serialize(t T) (*Data, error) {
	bytes, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return &Data{bytes, "application/json", 1}, nil
}

// Deserialize translates JSON bytes into the Go type T. Untyped publishers
// send no content type, so that is accepted too.
func (JSON[T]) Deserialize(data *Data) (T, error) {
	var t T
	switch data.ContentType {
	case "", "application/json":
		err := json.Unmarshal(data.Payload, &t)
		return t, err
	default:
		return t, ErrUnsupportedContentType
	}
}

// Serialize returns the bytes unchanged.
func (Raw) Serialize(t []byte) (*Data, error) {
	return &Data{t, "application/octet-stream", 0}, nil
}

// Deserialize returns the bytes unchanged.
func (Raw) Deserialize(data *Data) ([]byte, error) {
	return data.Payload, nil
}
