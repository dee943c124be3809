// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"log/slog"
	"time"

	"github.com/inteli/rssi-dashboard/internal/options"
	"github.com/inteli/rssi-dashboard/mqtt/retry"
)

type (
	// SessionClientOption represents a single option for the session client.
	SessionClientOption interface{ sessionClient(*SessionClientOptions) }

	// SessionClientOptions are the resolved options for the session client.
	SessionClientOptions struct {
		// ClientID defaults to DefaultClientIDPrefix plus random hex.
		ClientID string

		// CleanStart discards any server-side session on every connection.
		CleanStart bool

		// KeepAlive is in seconds.
		KeepAlive uint16

		// SessionExpiry is in seconds; zero ends the session on disconnect.
		SessionExpiry uint32

		// ConnectionTimeout bounds each attempt, from dialing to CONNACK.
		ConnectionTimeout time.Duration

		// ReconnectPeriod is the wait between a lost connection or failed
		// attempt and the next attempt.
		ReconnectPeriod time.Duration

		// ConnectionRetry overrides the reconnect policy. By default the
		// client retries forever every ReconnectPeriod.
		ConnectionRetry retry.Policy

		Logger *slog.Logger
	}

	// WithClientID sets the MQTT client ID.
	WithClientID string

	// WithCleanStart sets the clean start flag of every CONNECT.
	WithCleanStart bool

	// WithKeepAlive sets the keep-alive interval in seconds.
	WithKeepAlive uint16

	// WithSessionExpiry sets the session expiry interval in seconds.
	WithSessionExpiry uint32

	// WithConnectionTimeout bounds each connection attempt.
	WithConnectionTimeout time.Duration

	// WithReconnectPeriod sets the wait between connection attempts.
	WithReconnectPeriod time.Duration

	withConnectionRetry struct{ retry.Policy }

	withLogger struct{ *slog.Logger }
)

// WithConnectionRetry replaces the reconnect policy.
func WithConnectionRetry(policy retry.Policy) SessionClientOption {
	return withConnectionRetry{policy}
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) SessionClientOption {
	return withLogger{logger}
}

func (o WithClientID) sessionClient(opt *SessionClientOptions) {
	opt.ClientID = string(o)
}

func (o WithCleanStart) sessionClient(opt *SessionClientOptions) {
	opt.CleanStart = bool(o)
}

func (o WithKeepAlive) sessionClient(opt *SessionClientOptions) {
	opt.KeepAlive = uint16(o)
}

func (o WithSessionExpiry) sessionClient(opt *SessionClientOptions) {
	opt.SessionExpiry = uint32(o)
}

func (o WithConnectionTimeout) sessionClient(opt *SessionClientOptions) {
	opt.ConnectionTimeout = time.Duration(o)
}

func (o WithReconnectPeriod) sessionClient(opt *SessionClientOptions) {
	opt.ReconnectPeriod = time.Duration(o)
}

func (o withConnectionRetry) sessionClient(opt *SessionClientOptions) {
	opt.ConnectionRetry = o.Policy
}

func (o withLogger) sessionClient(opt *SessionClientOptions) {
	opt.Logger = o.Logger
}

// Apply resolves the provided list of options.
func (o *SessionClientOptions) Apply(
	opts []SessionClientOption,
	rest ...SessionClientOption,
) {
	for opt := range options.Apply[SessionClientOption](opts, rest...) {
		opt.sessionClient(o)
	}
}

func (o *SessionClientOptions) sessionClient(opt *SessionClientOptions) {
	if o != nil {
		*opt = *o
	}
}
