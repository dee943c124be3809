// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package internal

import (
	"strings"

	"github.com/google/uuid"
)

// ClientIDSuffixLength is the number of random hex characters appended to a
// client ID prefix.
const ClientIDSuffixLength = 9

// RandomClientID returns prefix followed by random lowercase hex characters,
// so that every process gets its own session on a shared public broker.
func RandomClientID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + hex[:ClientIDSuffixLength]
}
