// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi

import "time"

// LabelLayout renders a sample timestamp as local wall-clock time.
const LabelLayout = "15:04:05"

// Sample is one accepted reading. Timestamp is the local receipt time; the
// device clock is never consulted.
type Sample struct {
	Timestamp time.Time
	Value     float64
	Label     string
}

// NewSample stamps a value with its receipt time. The label is computed once
// here and never recomputed.
func NewSample(value float64, at time.Time) Sample {
	at = at.Local()
	return Sample{
		Timestamp: at,
		Value:     value,
		Label:     at.Format(LabelLayout),
	}
}
