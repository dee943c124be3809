// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildConnect(t *testing.T) {
	client := NewSessionClient(nil,
		WithClientID("esp32_dashboard_test"),
		WithSessionExpiry(30),
	)

	packet := client.buildConnect()
	require.Equal(t, "esp32_dashboard_test", packet.ClientID)
	require.True(t, packet.CleanStart)
	require.Equal(t, uint16(DefaultKeepAlive), packet.KeepAlive)
	require.NotNil(t, packet.Properties)
	require.NotNil(t, packet.Properties.SessionExpiryInterval)
	require.Equal(t, uint32(30), *packet.Properties.SessionExpiryInterval)

	// The broker only forwards user properties when this is set.
	require.True(t, packet.Properties.RequestProblemInfo)
}
