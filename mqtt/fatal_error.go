// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import "errors"

// Reason codes that will not go away by retrying. Anything not listed here
// (server busy, quota exceeded, rate limiting) is retried on the normal
// reconnect period.
var fatalConnackReasonCodes = map[byte]struct{}{
	connackMalformedPacket:             {},
	connackProtocolError:               {},
	connackImplementationSpecificError: {},
	connackUnsupportedProtocolVersion:  {},
	connackClientIdentifierNotValid:    {},
	connackBadUserNameOrPassword:       {},
	connackNotAuthorized:               {},
	connackBanned:                      {},
	connackBadAuthenticationMethod:     {},
	connackTopicNameInvalid:            {},
	connackPacketTooLarge:              {},
	connackPayloadFormatInvalid:        {},
	connackRetainNotSupported:          {},
	connackQoSNotSupported:             {},
	connackUseAnotherServer:            {},
	connackServerMoved:                 {},
}

func isFatalConnackReasonCode(reasonCode byte) bool {
	_, ok := fatalConnackReasonCodes[reasonCode]
	return ok
}

var fatalDisconnectReasonCodes = map[byte]struct{}{
	disconnectMalformedPacket:                     {},
	disconnectProtocolError:                       {},
	disconnectNotAuthorized:                       {},
	disconnectSessionTakenOver:                    {},
	disconnectTopicFilterInvalid:                  {},
	disconnectTopicNameInvalid:                    {},
	disconnectTopicAliasInvalid:                   {},
	disconnectPacketTooLarge:                      {},
	disconnectPayloadFormatInvalid:                {},
	disconnectRetainNotSupported:                  {},
	disconnectQoSNotSupported:                     {},
	disconnectServerMoved:                         {},
	disconnectSharedSubscriptionsNotSupported:     {},
	disconnectSubscriptionIdentifiersNotSupported: {},
	disconnectWildcardSubscriptionsNotSupported:   {},
}

func isFatalDisconnectReasonCode(reasonCode byte) bool {
	_, ok := fatalDisconnectReasonCodes[reasonCode]
	return ok
}

// IsFatal reports whether err ended, or will end, the session client.
func IsFatal(err error) bool {
	var connack *FatalConnackError
	var disconnect *FatalDisconnectError
	var invalid *InvalidArgumentError
	return errors.As(err, &connack) ||
		errors.As(err, &disconnect) ||
		errors.As(err, &invalid)
}
