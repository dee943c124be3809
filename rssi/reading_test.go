// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi_test

import (
	"testing"

	"github.com/inteli/rssi-dashboard/rssi"
	"github.com/stretchr/testify/require"
)

func TestDecodeValid(t *testing.T) {
	for payload, want := range map[string]float64{
		`{"rssi": -67}`:                        -67,
		`{"rssi":-67.25}`:                      -67.25,
		`{"rssi": 0}`:                          0,
		`{"rssi": -1e1}`:                       -10,
		`{"device":"esp32","rssi":-55,"ch":6}`: -55,
		`  {"rssi": 12}  `:                     12,
	} {
		r := rssi.Decode([]byte(payload), "")
		require.Equal(t, rssi.ValidSample{Value: want}, r, payload)
	}
}

func TestDecodeInvalid(t *testing.T) {
	for payload, reason := range map[string]rssi.Reason{
		``:                     rssi.ReasonMalformed,
		`{"rssi": -6`:          rssi.ReasonMalformed,
		`not json`:             rssi.ReasonMalformed,
		`-67`:                  rssi.ReasonNotObject,
		`[{"rssi": -67}]`:      rssi.ReasonNotObject,
		`"rssi"`:               rssi.ReasonNotObject,
		`{}`:                   rssi.ReasonMissingField,
		`{"RSSI": -67}`:        rssi.ReasonMissingField,
		`{"rssi": "-67"}`:      rssi.ReasonNotNumeric,
		`{"rssi": null}`:       rssi.ReasonNotNumeric,
		`{"rssi": true}`:       rssi.ReasonNotNumeric,
		`{"rssi": [-67]}`:      rssi.ReasonNotNumeric,
		`{"rssi": {"v": -67}}`: rssi.ReasonNotNumeric,
		`{"rssi": 1e400}`:      rssi.ReasonOutOfRange,
	} {
		r := rssi.Decode([]byte(payload), "")
		invalid, ok := r.(rssi.Invalid)
		require.True(t, ok, "%q decoded to %#v", payload, r)
		require.Equal(t, reason, invalid.Reason, payload)
		require.Contains(t, invalid.Error(), string(reason))
	}
}

func TestDecodeCustomField(t *testing.T) {
	require.Equal(t,
		rssi.ValidSample{Value: -48},
		rssi.Decode([]byte(`{"signal": -48}`), "signal"),
	)
	require.Equal(t,
		rssi.Invalid{Reason: rssi.ReasonMissingField},
		rssi.Decode([]byte(`{"rssi": -48}`), "signal"),
	)
}
