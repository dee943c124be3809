// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inteli/rssi-dashboard/mqtt"
	"github.com/stretchr/testify/require"
)

func TestConnectionString(t *testing.T) {
	cp, opts, err := mqtt.SessionClientConfigFromConnectionString(
		"BrokerUrl=wss://broker.hivemq.com:8884/mqtt;" +
			"ConnectTimeout=PT4S;ReconnectPeriod=PT1S;ClientId=dash;KeepAlive=30;",
	)
	require.NoError(t, err)
	require.NotNil(t, cp)
	require.Equal(t, 4*time.Second, opts.ConnectionTimeout)
	require.Equal(t, time.Second, opts.ReconnectPeriod)
	require.Equal(t, "dash", opts.ClientID)
	require.Equal(t, uint16(30), opts.KeepAlive)
	require.True(t, opts.CleanStart)
}

func TestConnectionStringGoDurations(t *testing.T) {
	_, opts, err := mqtt.SessionClientConfigFromConnectionString(
		"brokerurl=mqtt://localhost;connect_timeout=250ms;CleanStart=false",
	)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, opts.ConnectionTimeout)
	require.False(t, opts.CleanStart)
}

func TestConnectionStringErrors(t *testing.T) {
	var invalid *mqtt.InvalidArgumentError
	for _, connStr := range []string{
		"ConnectTimeout=PT4S",
		"BrokerUrl=mqtt://localhost;ConnectTimeout=soon",
		"BrokerUrl=mqtt://localhost;KeepAlive=100000",
		"BrokerUrl=mqtt://localhost;CleanStart=maybe",
		"BrokerUrl=http://localhost",
		"BrokerUrl=mqtt://localhost;garbage",
		"BrokerUrl=mqtt://localhost;CaFile=ca.pem",
	} {
		_, _, err := mqtt.SessionClientConfigFromConnectionString(connStr)
		require.ErrorAs(t, err, &invalid, connStr)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MQTT_BROKER_URL", "wss://broker.hivemq.com:8884/mqtt")
	t.Setenv("MQTT_CLIENT_ID", "from-env")
	t.Setenv("MQTT_CLEAN_START", "true")
	t.Setenv("MQTT_KEEP_ALIVE", "15")
	t.Setenv("MQTT_SESSION_EXPIRY", "120")
	t.Setenv("MQTT_CONNECT_TIMEOUT", "PT4S")
	t.Setenv("MQTT_RECONNECT_PERIOD", "2s")

	cp, opts, err := mqtt.SessionClientConfigFromEnv()
	require.NoError(t, err)
	require.NotNil(t, cp)
	require.Equal(t, "from-env", opts.ClientID)
	require.True(t, opts.CleanStart)
	require.Equal(t, uint16(15), opts.KeepAlive)
	require.Equal(t, uint32(120), opts.SessionExpiry)
	require.Equal(t, 4*time.Second, opts.ConnectionTimeout)
	require.Equal(t, 2*time.Second, opts.ReconnectPeriod)

	client, err := mqtt.NewSessionClientFromEnv(mqtt.WithClientID("override"))
	require.NoError(t, err)
	require.Equal(t, "override", client.ID())
}

func TestConfigFromEnvWithoutBroker(t *testing.T) {
	t.Setenv("MQTT_BROKER_URL", "")
	t.Setenv("MQTT_KEEP_ALIVE", "15")

	cp, opts, err := mqtt.SessionClientConfigFromEnv()
	require.NoError(t, err)
	require.Nil(t, cp)
	require.Equal(t, uint16(15), opts.KeepAlive)

	_, err = mqtt.NewSessionClientFromEnv()
	var invalid *mqtt.InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}

func TestConfigFromEnvTLS(t *testing.T) {
	ca := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(ca, []byte("not a certificate"), 0o600))

	t.Setenv("MQTT_BROKER_URL", "mqtt://localhost:1883")
	t.Setenv("MQTT_TLS_CA_FILE", ca)
	_, _, err := mqtt.SessionClientConfigFromEnv()
	var invalid *mqtt.InvalidArgumentError
	require.ErrorAs(t, err, &invalid)

	t.Setenv("MQTT_BROKER_URL", "mqtts://localhost")
	cp, _, err := mqtt.SessionClientConfigFromEnv()
	require.NoError(t, err)
	require.NotNil(t, cp)
}

func TestConnectionFromURL(t *testing.T) {
	for _, u := range []string{
		"mqtt://localhost",
		"tcp://localhost:1884",
		"mqtts://localhost",
		"ssl://localhost:8883",
		"ws://localhost:8080/mqtt",
		"wss://broker.hivemq.com:8884/mqtt",
	} {
		cp, err := mqtt.ConnectionFromURL(u, nil)
		require.NoError(t, err, u)
		require.NotNil(t, cp, u)
	}

	var invalid *mqtt.InvalidArgumentError
	for _, u := range []string{
		"localhost:1883",
		"mqtt://",
		"mqtt://localhost:99999",
		"ftp://localhost",
	} {
		_, err := mqtt.ConnectionFromURL(u, nil)
		require.ErrorAs(t, err, &invalid, u)
	}
}
