// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import "github.com/inteli/rssi-dashboard/mqtt/internal"

// RandomClientID returns prefix followed by nine random lowercase hex
// characters, the form used for default client IDs.
func RandomClientID(prefix string) string {
	return internal.RandomClientID(prefix)
}
