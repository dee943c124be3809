// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// Settings are keyed by lowercased name without separators, so that
// MQTT_BROKER_URL and BrokerUrl=... land on the same key.
type settings map[string]string

// SessionClientConfigFromEnv parses a session client configuration from
// well-known environment variables:
//
//	MQTT_BROKER_URL        mqtt://, mqtts://, ws:// or wss:// URL
//	MQTT_CLIENT_ID         client ID (random if unset)
//	MQTT_CLEAN_START       true or false (default true)
//	MQTT_KEEP_ALIVE        keep-alive in seconds
//	MQTT_SESSION_EXPIRY    session expiry in seconds
//	MQTT_CONNECT_TIMEOUT   ISO 8601 (PT4S) or Go (4s) duration
//	MQTT_RECONNECT_PERIOD  ISO 8601 (PT1S) or Go (1s) duration
//	MQTT_TLS_CA_FILE       PEM file of trusted CAs for secure schemes
//
// It only returns an error if a variable fails to parse. The returned
// provider is nil if no broker URL is set, so callers can supply a default.
func SessionClientConfigFromEnv() (
	ConnectionProvider,
	*SessionClientOptions,
	error,
) {
	s := settings{}
	for _, env := range os.Environ() {
		key, val, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if name, ok := strings.CutPrefix(key, "MQTT_"); ok {
			s[normalizeKey(name)] = strings.TrimSpace(val)
		}
	}
	return s.build()
}

// SessionClientConfigFromConnectionString parses a configuration of the form
// "BrokerUrl=wss://host:8884/mqtt;ConnectTimeout=PT4S;ReconnectPeriod=PT1S".
// Keys match the environment variables without the MQTT_ prefix and are
// case-insensitive. Unlike the environment, a broker URL is required.
func SessionClientConfigFromConnectionString(
	connStr string,
) (ConnectionProvider, *SessionClientOptions, error) {
	s := settings{}
	for _, param := range strings.Split(connStr, ";") {
		key, val, ok := strings.Cut(param, "=")
		if !ok {
			if strings.TrimSpace(param) != "" {
				return nil, nil, &InvalidArgumentError{
					message: "malformed connection string parameter " + param,
				}
			}
			continue
		}
		s[normalizeKey(key)] = strings.TrimSpace(val)
	}

	connectionProvider, opts, err := s.build()
	if err != nil {
		return nil, nil, err
	}
	if connectionProvider == nil {
		return nil, nil, &InvalidArgumentError{
			message: "connection string must contain BrokerUrl",
		}
	}
	return connectionProvider, opts, nil
}

// NewSessionClientFromEnv is a shorthand for constructing a session client
// using SessionClientConfigFromEnv.
func NewSessionClientFromEnv(
	opt ...SessionClientOption,
) (*SessionClient, error) {
	connectionProvider, opts, err := SessionClientConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if connectionProvider == nil {
		return nil, &InvalidArgumentError{
			message: "MQTT_BROKER_URL must be set",
		}
	}
	opts.Apply(opt)
	return NewSessionClient(connectionProvider, opts), nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("_", "", "-", "").Replace(key)
}

func (s settings) build() (ConnectionProvider, *SessionClientOptions, error) {
	opts := &SessionClientOptions{CleanStart: true}
	var err error

	opts.ClientID = s["clientid"]

	if v, ok := s["cleanstart"]; ok {
		if opts.CleanStart, err = strconv.ParseBool(v); err != nil {
			return nil, nil, &InvalidArgumentError{
				message: "could not parse clean start",
				wrapped: err,
			}
		}
	}

	if v, ok := s["keepalive"]; ok {
		keepAlive, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return nil, nil, &InvalidArgumentError{
				message: "could not parse keep-alive",
				wrapped: err,
			}
		}
		opts.KeepAlive = uint16(keepAlive)
	}

	if v, ok := s["sessionexpiry"]; ok {
		expiry, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, nil, &InvalidArgumentError{
				message: "could not parse session expiry",
				wrapped: err,
			}
		}
		opts.SessionExpiry = uint32(expiry)
	}

	if v, ok := s["connecttimeout"]; ok {
		if opts.ConnectionTimeout, err = parseDuration(v); err != nil {
			return nil, nil, &InvalidArgumentError{
				message: "could not parse connect timeout",
				wrapped: err,
			}
		}
	}

	if v, ok := s["reconnectperiod"]; ok {
		if opts.ReconnectPeriod, err = parseDuration(v); err != nil {
			return nil, nil, &InvalidArgumentError{
				message: "could not parse reconnect period",
				wrapped: err,
			}
		}
	}

	var tlsConfig TLSConfigProvider
	caFile, hasCA := s["tlscafile"]
	if !hasCA {
		caFile, hasCA = s["cafile"]
	}
	if hasCA && caFile != "" {
		tlsConfig = CAFileTLSConfig(caFile)
	}

	brokerURL := s["brokerurl"]
	if brokerURL == "" {
		if tlsConfig != nil {
			return nil, nil, &InvalidArgumentError{
				message: "TLS configuration provided without broker URL",
			}
		}
		return nil, opts, nil
	}

	connectionProvider, err := ConnectionFromURL(brokerURL, tlsConfig)
	if err != nil {
		return nil, nil, err
	}
	return connectionProvider, opts, nil
}

// Accepts ISO 8601 durations (PT4S) as well as Go durations (4s).
func parseDuration(v string) (time.Duration, error) {
	var d time.Duration
	if strings.HasPrefix(strings.ToUpper(v), "P") {
		iso, err := duration.Parse(strings.ToUpper(v))
		if err != nil {
			return 0, err
		}
		d = iso.ToTimeDuration()
	} else {
		var err error
		if d, err = time.ParseDuration(v); err != nil {
			return 0, err
		}
	}
	if d < 0 {
		return 0, &InvalidArgumentError{message: "duration must not be negative"}
	}
	return d, nil
}
