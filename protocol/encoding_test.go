// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package protocol_test

import (
	"testing"

	"github.com/inteli/rssi-dashboard/protocol"
	"github.com/stretchr/testify/require"
)

func TestJSONEncoding(t *testing.T) {
	enc := protocol.JSON[reading]{}

	data, err := enc.Serialize(reading{RSSI: -67.5})
	require.NoError(t, err)
	require.Equal(t, "application/json", data.ContentType)
	require.JSONEq(t, `{"rssi":-67.5}`, string(data.Payload))

	for _, contentType := range []string{"", "application/json"} {
		val, err := enc.Deserialize(&protocol.Data{
			Payload:     []byte(`{"rssi": -80}`),
			ContentType: contentType,
		})
		require.NoError(t, err)
		require.Equal(t, reading{RSSI: -80}, val)
	}

	_, err = enc.Deserialize(&protocol.Data{
		Payload:     []byte(`{"rssi": -80}`),
		ContentType: "text/plain",
	})
	require.ErrorIs(t, err, protocol.ErrUnsupportedContentType)
}

func TestRawEncoding(t *testing.T) {
	enc := protocol.Raw{}

	data, err := enc.Serialize([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, "application/octet-stream", data.ContentType)

	val, err := enc.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, val)
}
