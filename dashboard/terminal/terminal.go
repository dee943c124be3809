// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package terminal renders dashboard snapshots as text frames.
package terminal

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/inteli/rssi-dashboard/dashboard"
	"github.com/inteli/rssi-dashboard/rssi"
)

// Chart domain in dBm; values outside it are drawn at the edge.
const (
	DomainMin = -100.0
	DomainMax = -20.0
)

// Moves the cursor home and clears the screen.
const clearScreen = "\x1b[H\x1b[2J"

var (
	levels = []rune("▁▂▃▄▅▆▇█")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7d56f4"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	valueStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#27ae60"))
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
)

// Render draws the status, current and statistics cards above a sparkline of
// the window. Width is the terminal width; narrow terminals get 80 columns.
func Render(snap *dashboard.Snapshot, width int) string {
	if width < 40 {
		width = 80
	}
	cardWidth := max((width-6)/3, 20)

	var b strings.Builder
	b.WriteString(titleStyle.Render("WiFi Signal Dashboard"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(snap.Topic))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statusCard(snap, cardWidth),
		currentCard(snap, cardWidth),
		statsCard(snap, cardWidth),
	))
	b.WriteString("\n\n")

	if len(snap.Points) == 0 {
		b.WriteString(mutedStyle.Render("Waiting for ESP32 data..."))
	} else {
		b.WriteString(colouredSparkline(snap.Points))
		b.WriteString("\n")
		first, last := snap.Points[0], snap.Points[len(snap.Points)-1]
		b.WriteString(mutedStyle.Render(fmt.Sprintf(
			"%s … %s  (%.0f to %.0f dBm)",
			first.Label, last.Label, DomainMin, DomainMax,
		)))
	}
	b.WriteString("\n")
	return b.String()
}

func statusCard(snap *dashboard.Snapshot, width int) string {
	style := disconnectedStyle
	if snap.Connected {
		style = connectedStyle
	}
	body := []string{
		headingStyle.Render("MQTT STATUS"),
		style.Bold(true).Render(snap.Status),
		mutedStyle.Render(snap.Broker),
	}
	if snap.Error != "" {
		body = append(body, disconnectedStyle.Render(snap.Error))
	}
	return cardStyle.Width(width).Render(strings.Join(body, "\n"))
}

func currentCard(snap *dashboard.Snapshot, width int) string {
	band := lipgloss.NewStyle().Foreground(lipgloss.Color(snap.Quality.Color))
	return cardStyle.
		Width(width).
		BorderForeground(lipgloss.Color(snap.Quality.Color)).
		Render(strings.Join([]string{
			headingStyle.Render("CURRENT RSSI"),
			band.Bold(true).Render(dbm(snap.Latest)),
			band.Render(snap.Quality.Label),
		}, "\n"))
}

func statsCard(snap *dashboard.Snapshot, width int) string {
	return cardStyle.Width(width).Render(strings.Join([]string{
		headingStyle.Render("STATISTICS"),
		"Maximum: " + valueStyle.Render(dbm(snap.Maximum)),
		"Minimum: " + valueStyle.Render(dbm(snap.Minimum)),
		"Points:  " + valueStyle.Render(fmt.Sprint(snap.Count)),
	}, "\n"))
}

func dbm(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g dBm", *v)
}

// Sparkline returns one block character per point, scaled to the chart
// domain.
func Sparkline(points []dashboard.Point) string {
	var b strings.Builder
	for _, p := range points {
		b.WriteRune(level(p.Value))
	}
	return b.String()
}

// Each block is coloured by the quality band of its value.
func colouredSparkline(points []dashboard.Point) string {
	var b strings.Builder
	for _, p := range points {
		band := rssi.Classify(p.Value)
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(band.Color)).
			Render(string(level(p.Value))))
	}
	return b.String()
}

func level(v float64) rune {
	v = math.Max(DomainMin, math.Min(DomainMax, v))
	frac := (v - DomainMin) / (DomainMax - DomainMin)
	return levels[int(math.Round(frac*float64(len(levels)-1)))]
}

// Run redraws the view on w for every snapshot of the monitor until ctx is
// cancelled.
func Run(
	ctx context.Context,
	w io.Writer,
	monitor *dashboard.Monitor,
	width int,
) error {
	snapshots, unsubscribe := monitor.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-snapshots:
			if _, err := io.WriteString(w, clearScreen+Render(snap, width)); err != nil {
				return err
			}
		}
	}
}
