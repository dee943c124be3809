// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"net/url"
	"strconv"
)

// ConnectionFromURL picks a ConnectionProvider from the URL scheme:
// mqtt/tcp for plain TCP (port 1883 by default), mqtts/ssl/tls for TLS
// (port 8883 by default), and ws/wss for WebSockets. tlsConfigProvider is
// only allowed with a secure scheme.
func ConnectionFromURL(
	rawURL string,
	tlsConfigProvider TLSConfigProvider,
) (ConnectionProvider, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &InvalidArgumentError{
			message: "invalid broker URL",
			wrapped: err,
		}
	}
	if u.Hostname() == "" {
		return nil, &InvalidArgumentError{
			message: "broker URL has no host: " + rawURL,
		}
	}

	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return nil, &InvalidArgumentError{
				message: "invalid broker port " + p,
			}
		}
	}

	secure := false
	switch u.Scheme {
	case "mqtt", "tcp":
		if port == 0 {
			port = 1883
		}
	case "mqtts", "ssl", "tls":
		secure = true
		if port == 0 {
			port = 8883
		}
	case "ws":
	case "wss":
		secure = true
	default:
		return nil, &InvalidArgumentError{
			message: "unsupported broker URL scheme " + u.Scheme,
		}
	}

	if tlsConfigProvider != nil && !secure {
		return nil, &InvalidArgumentError{
			message: "TLS configuration provided but not using TLS",
		}
	}

	switch u.Scheme {
	case "ws", "wss":
		return WebSocketConnection(rawURL, tlsConfigProvider), nil
	case "mqtts", "ssl", "tls":
		return TLSConnection(u.Hostname(), port, tlsConfigProvider), nil
	default:
		return TCPConnection(u.Hostname(), port), nil
	}
}
