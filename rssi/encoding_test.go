// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi_test

import (
	"testing"

	"github.com/inteli/rssi-dashboard/protocol"
	"github.com/inteli/rssi-dashboard/rssi"
	"github.com/stretchr/testify/require"
)

func TestEncoding(t *testing.T) {
	enc := rssi.Encoding{}

	data, err := enc.Serialize(rssi.ValidSample{Value: -61.5})
	require.NoError(t, err)
	require.JSONEq(t, `{"rssi": -61.5}`, string(data.Payload))
	require.Equal(t, "application/json", data.ContentType)

	r, err := enc.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, rssi.ValidSample{Value: -61.5}, r)

	r, err = enc.Deserialize(&protocol.Data{Payload: []byte(`{"rssi": "x"}`)})
	require.NoError(t, err)
	require.Equal(t, rssi.Invalid{Reason: rssi.ReasonNotNumeric}, r)

	_, err = enc.Deserialize(&protocol.Data{
		Payload:     []byte(`{"rssi": -61}`),
		ContentType: "application/octet-stream",
	})
	require.ErrorIs(t, err, protocol.ErrUnsupportedContentType)

	_, err = enc.Serialize(rssi.Invalid{Reason: rssi.ReasonMalformed})
	require.Error(t, err)
}

func TestEncodingCustomField(t *testing.T) {
	enc := rssi.Encoding{Field: "signal"}

	data, err := enc.Serialize(rssi.ValidSample{Value: -70})
	require.NoError(t, err)
	require.JSONEq(t, `{"signal": -70}`, string(data.Payload))

	r, err := enc.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, rssi.ValidSample{Value: -70}, r)
}
