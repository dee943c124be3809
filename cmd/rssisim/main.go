// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Command rssisim stands in for the ESP32, publishing a random walk of RSSI
// readings to the broker.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inteli/rssi-dashboard/internal/simulator"
	"github.com/inteli/rssi-dashboard/internal/wallclock"
	"github.com/inteli/rssi-dashboard/mqtt"
	"github.com/inteli/rssi-dashboard/protocol"
	"github.com/inteli/rssi-dashboard/rssi"
	"github.com/lmittmann/tint"
)

const (
	defaultBrokerURL = "wss://broker.hivemq.com:8884/mqtt"
	defaultTopic     = "inteli/wifi_signal/rssi"
)

func main() {
	brokerURL := flag.String("broker", "", "broker URL (default $MQTT_BROKER_URL or "+defaultBrokerURL+")")
	topic := flag.String("topic", defaultTopic, "topic to publish to")
	field := flag.String("field", rssi.DefaultField, "payload field carrying the reading")
	period := flag.Duration("period", time.Second, "time between readings")
	start := flag.Int("start", -60, "initial reading in dBm")
	seed := flag.Uint64("seed", 0, "random seed (default: time based)")
	qos := flag.Uint("qos", 0, "publish QoS (0 or 1)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectionProvider, opts, err := mqtt.SessionClientConfigFromEnv()
	check(logger, err)
	if connectionProvider == nil || *brokerURL != "" {
		url := *brokerURL
		if url == "" {
			url = defaultBrokerURL
		}
		connectionProvider, err = mqtt.ConnectionFromURL(url, nil)
		check(logger, err)
	}

	if opts.ClientID == "" {
		opts.ClientID = mqtt.RandomClientID("esp32_sim_")
	}
	client := mqtt.NewSessionClient(connectionProvider, opts, mqtt.WithLogger(logger))
	sender, err := protocol.NewTelemetrySender(
		client,
		rssi.Encoding{Field: *field},
		*topic,
		protocol.WithQoS(*qos),
		protocol.WithTimeout(*period),
		protocol.WithLogger{Logger: logger},
	)
	check(logger, err)

	check(logger, client.Start())
	defer client.Stop()

	if *seed == 0 {
		*seed = uint64(wallclock.Instance.Now().UnixNano())
	}
	logger.Info("publishing readings",
		slog.String("topic", *topic),
		slog.Duration("period", *period),
	)
	check(logger, simulator.Run(ctx, sender, simulator.NewWalk(*seed, *start), *period, logger))
}

func check(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("rssisim failed", tint.Err(err))
		os.Exit(1)
	}
}
