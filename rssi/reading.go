// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// DefaultField is the payload member carrying the reading.
const DefaultField = "rssi"

// Reason classifies why a payload was rejected.
type Reason string

const (
	ReasonMalformed    Reason = "malformed"
	ReasonNotObject    Reason = "not_object"
	ReasonMissingField Reason = "missing_field"
	ReasonNotNumeric   Reason = "not_numeric"
	ReasonOutOfRange   Reason = "out_of_range"
)

// Reading is the outcome of decoding one payload: either ValidSample or
// Invalid.
type Reading interface {
	reading()
}

// ValidSample carries an accepted value.
type ValidSample struct {
	Value float64
}

// Invalid describes a rejected payload. Cause holds the underlying parser
// error when there is one.
type Invalid struct {
	Reason Reason
	Cause  error
}

func (ValidSample) reading() {}
func (Invalid) reading()     {}

func (i Invalid) Error() string {
	if i.Cause != nil {
		return fmt.Sprintf("invalid reading (%s): %v", i.Reason, i.Cause)
	}
	return fmt.Sprintf("invalid reading (%s)", i.Reason)
}

func (i Invalid) Unwrap() error {
	return i.Cause
}

// Decode validates a raw payload. It is accepted only if it is a JSON object
// whose member named field is a JSON number representable as a float64.
func Decode(payload []byte, field string) Reading {
	if field == "" {
		field = DefaultField
	}

	_, typ, _, err := jsonparser.Get(payload)
	if err != nil {
		return Invalid{ReasonMalformed, err}
	}
	if typ != jsonparser.Object {
		return Invalid{Reason: ReasonNotObject}
	}

	raw, typ, _, err := jsonparser.Get(payload, field)
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		return Invalid{Reason: ReasonMissingField}
	case err != nil:
		return Invalid{ReasonMalformed, err}
	case typ != jsonparser.Number:
		return Invalid{Reason: ReasonNotNumeric}
	}

	value, err := jsonparser.ParseFloat(raw)
	if err != nil {
		return Invalid{ReasonOutOfRange, err}
	}
	return ValidSample{value}
}
