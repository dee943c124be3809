// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package rssi

// Band is a signal-quality severity band with its display colors. Level
// orders the bands from NotAvailable (0) to Excellent (5).
type Band struct {
	Level      int    `json:"level"`
	Label      string `json:"label"`
	Color      string `json:"color"`
	Background string `json:"background"`
}

var (
	NotAvailable = Band{0, "N/A", "#999", "#f5f5f5"}
	VeryWeak     = Band{1, "Very Weak", "#e74c3c", "#fadbd8"}
	Weak         = Band{2, "Weak", "#e67e22", "#fdebd0"}
	Good         = Band{3, "Good", "#f39c12", "#fef5e7"}
	VeryGood     = Band{4, "Very Good", "#2ecc71", "#d5f4e6"}
	Excellent    = Band{5, "Excellent", "#27ae60", "#d5f4e6"}
)

// Lower bounds checked from best to worst; the first match wins.
var thresholds = []struct {
	floor float64
	band  Band
}{
	{-50, Excellent},
	{-70, VeryGood},
	{-80, Good},
	{-90, Weak},
}

// Classify maps a dBm value to its quality band. Every real value has a band;
// anything below the lowest threshold is VeryWeak.
func Classify(value float64) Band {
	for _, t := range thresholds {
		if value >= t.floor {
			return t.band
		}
	}
	return VeryWeak
}

// ClassifyLatest classifies an optional value, returning NotAvailable when it
// is unset.
func ClassifyLatest(value float64, ok bool) Band {
	if !ok {
		return NotAvailable
	}
	return Classify(value)
}
