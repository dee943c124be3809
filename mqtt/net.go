// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"strconv"

	"github.com/eclipse/paho.golang/packets"
)

// ConnectionProvider is a function that returns a net.Conn connected to an
// MQTT server that is ready to read to and write from. Note that the returned
// net.Conn must be thread-safe (i.e., concurrent Write calls must not
// interleave).
type ConnectionProvider func(context.Context) (net.Conn, error)

// TCPConnection is a ConnectionProvider that connects to an MQTT server over
// TCP.
func TCPConnection(hostname string, port int) ConnectionProvider {
	address := net.JoinHostPort(hostname, strconv.Itoa(port))
	return func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, &ConnectionError{
				message: "error opening TCP connection",
				wrapped: err,
			}
		}
		return packets.NewThreadSafeConn(conn), nil
	}
}

// TLSConfigProvider is a function that returns a *tls.Config to be used when
// opening a TLS connection to an MQTT server. It is called for every
// connection, so it may pick up rotated certificates.
type TLSConfigProvider func(context.Context) (*tls.Config, error)

// ConstantTLSConfig is a TLSConfigProvider that returns an unchanging
// *tls.Config.
func ConstantTLSConfig(config *tls.Config) TLSConfigProvider {
	return func(context.Context) (*tls.Config, error) {
		return config, nil
	}
}

// CAFileTLSConfig is a TLSConfigProvider that trusts only the PEM
// certificates in caFile. The file is read on every connection.
func CAFileTLSConfig(caFile string) TLSConfigProvider {
	return func(context.Context) (*tls.Config, error) {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, &InvalidArgumentError{
				message: "cannot read CA file",
				wrapped: err,
			}
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, &InvalidArgumentError{
				message: "no certificates found in CA file " + caFile,
			}
		}
		return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
	}
}

// TLSConnection is a ConnectionProvider that connects to an MQTT server with
// TLS over TCP. A nil tlsConfigProvider uses the system roots.
func TLSConnection(
	hostname string,
	port int,
	tlsConfigProvider TLSConfigProvider,
) ConnectionProvider {
	if tlsConfigProvider == nil {
		tlsConfigProvider = ConstantTLSConfig(nil)
	}
	address := net.JoinHostPort(hostname, strconv.Itoa(port))

	return func(ctx context.Context) (net.Conn, error) {
		config, err := tlsConfigProvider(ctx)
		if err != nil {
			return nil, &ConnectionError{
				message: "error getting TLS configuration",
				wrapped: err,
			}
		}

		d := tls.Dialer{Config: config}
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, &ConnectionError{
				message: "error opening TLS connection",
				wrapped: err,
			}
		}
		return packets.NewThreadSafeConn(conn), nil
	}
}
