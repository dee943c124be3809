// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package errors

import (
	"fmt"
	"log/slog"
	"time"
)

type (
	// Error represents a structured protocol error.
	Error struct {
		Message string
		Kind    Kind

		NestedError error

		HeaderName  string
		HeaderValue string

		TimeoutName  string
		TimeoutValue time.Duration

		PropertyName  string
		PropertyValue any

		// InApplication is set when the error came from user handler code.
		InApplication bool
	}

	// Kind defines the type of error being thrown.
	Kind int
)

// The following are the defined error kinds.
const (
	HeaderMissing Kind = iota
	HeaderInvalid
	PayloadInvalid
	Timeout
	Cancellation
	ConfigurationInvalid
	ArgumentInvalid
	StateInvalid
	InternalLogicError
	UnknownError
	ExecutionException
	MqttError
)

var kindNames = map[Kind]string{
	HeaderMissing:        "header missing",
	HeaderInvalid:        "header invalid",
	PayloadInvalid:       "payload invalid",
	Timeout:              "timeout",
	Cancellation:         "cancellation",
	ConfigurationInvalid: "configuration invalid",
	ArgumentInvalid:      "argument invalid",
	StateInvalid:         "state invalid",
	InternalLogicError:   "internal logic error",
	UnknownError:         "unknown error",
	ExecutionException:   "execution exception",
	MqttError:            "mqtt error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error returns the error as a string.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the nested error, if any.
func (e *Error) Unwrap() error {
	return e.NestedError
}

// Attrs returns additional error fields for slog.
func (e *Error) Attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("kind", e.Kind.String())}
	if e.NestedError != nil {
		attrs = append(attrs, slog.String("nested_error", e.NestedError.Error()))
	}
	if e.HeaderName != "" {
		attrs = append(attrs,
			slog.String("header_name", e.HeaderName),
			slog.String("header_value", e.HeaderValue),
		)
	}
	if e.TimeoutName != "" {
		attrs = append(attrs,
			slog.String("timeout_name", e.TimeoutName),
			slog.Duration("timeout_value", e.TimeoutValue),
		)
	}
	if e.PropertyName != "" {
		attrs = append(attrs,
			slog.String("property_name", e.PropertyName),
			slog.Any("property_value", e.PropertyValue),
		)
	}
	if e.InApplication {
		attrs = append(attrs, slog.Bool("in_application", true))
	}
	return attrs
}
