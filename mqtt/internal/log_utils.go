// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package internal

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/eclipse/paho.golang/paho"
	"github.com/iancoleman/strcase"
	"github.com/inteli/rssi-dashboard/internal/log"
)

// Logger adds packet tracing to the shared logger.
type Logger struct{ log.Logger }

// Packet logs the exported fields of a paho packet at debug level, using
// snake_case attribute names and skipping zero values.
func (l *Logger) Packet(ctx context.Context, name string, packet any) {
	// Reflection is expensive; bail out if nobody is listening.
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}

	val := realValue(reflect.ValueOf(packet))
	if missingValue(val) {
		l.Debug(ctx, name)
		return
	}
	l.Debug(ctx, name, reflectAttrs(val)...)
}

func reflectAttrs(val reflect.Value) []slog.Attr {
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	var attrs []slog.Attr
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		attrs = append(attrs, reflectAttr(
			strcase.ToSnake(f.Name),
			realValue(val.Field(i)),
		)...)
	}
	return attrs
}

func reflectAttr(name string, val reflect.Value) []slog.Attr {
	if missingValue(val) {
		return nil
	}

	switch name {
	// Paho nests properties in their own struct, which only adds noise.
	case "properties":
		return reflectAttrs(val)

	// Never write credentials to the log.
	case "password":
		return []slog.Attr{slog.String(name, "<redacted>")}

	// strcase splits the acronym.
	case "qo_s":
		return []slog.Attr{slog.Any("qos", val.Interface())}
	}

	switch v := val.Interface().(type) {
	case []byte:
		return []slog.Attr{slog.String(name, string(v))}

	case []paho.SubscribeOptions:
		topics := make([]string, len(v))
		for i, s := range v {
			topics[i] = s.Topic
		}
		return []slog.Attr{slog.Any("topics", topics)}

	case paho.UserProperties:
		if len(v) == 0 {
			return nil
		}
		attrs := make([]any, len(v))
		for i, p := range v {
			attrs[i] = slog.String(p.Key, p.Value)
		}
		return []slog.Attr{slog.Group(name, attrs...)}
	}

	if val.Kind() == reflect.Struct {
		as := reflectAttrs(val)
		if len(as) == 0 {
			return nil
		}
		group := make([]any, len(as))
		for i, a := range as {
			group[i] = a
		}
		return []slog.Attr{slog.Group(name, group...)}
	}

	return []slog.Attr{slog.Any(name, val.Interface())}
}

func realValue(val reflect.Value) reflect.Value {
	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return reflect.Value{}
		}
		val = val.Elem()
	}
	return val
}

func missingValue(val reflect.Value) bool {
	return !val.IsValid() || val.IsZero()
}
