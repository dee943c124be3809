// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Command rssidash charts the WiFi signal strength an ESP32 publishes over
// MQTT, as a web page, a terminal view or both.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/inteli/rssi-dashboard/dashboard"
	"github.com/inteli/rssi-dashboard/dashboard/terminal"
	"github.com/inteli/rssi-dashboard/internal/broker"
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

type config struct {
	view      string
	httpAddr  string
	local     bool
	localAddr string
	brokerURL string
	topic     string
	field     string
	debug     bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.view, "view", "web", "web, terminal or both")
	flag.StringVar(&cfg.httpAddr, "http", ":8080", "web view listen address")
	flag.BoolVar(&cfg.local, "local", false, "run an embedded broker and simulated device")
	flag.StringVar(&cfg.localAddr, "local-addr", "127.0.0.1:1883", "embedded broker TCP address")
	flag.StringVar(&cfg.brokerURL, "broker", "", "broker URL (default $MQTT_BROKER_URL or "+defaultBrokerURL+")")
	flag.StringVar(&cfg.topic, "topic", defaultTopic, "topic carrying the readings")
	flag.StringVar(&cfg.field, "field", rssi.DefaultField, "payload field carrying the reading")
	flag.BoolVar(&cfg.debug, "debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("rssidash failed", tint.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	switch cfg.view {
	case "web", "terminal", "both":
	default:
		return fmt.Errorf("unknown view %q", cfg.view)
	}

	connectionProvider, opts, err := mqtt.SessionClientConfigFromEnv()
	if err != nil {
		return err
	}

	brokerURL := cfg.brokerURL
	if cfg.local {
		b, err := startLocal(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer b.Close()
		brokerURL = b.TCPURL()
	}
	if brokerURL == "" {
		brokerURL = os.Getenv("MQTT_BROKER_URL")
	}
	if brokerURL == "" {
		brokerURL = defaultBrokerURL
	}
	if connectionProvider == nil || cfg.brokerURL != "" || cfg.local {
		connectionProvider, err = mqtt.ConnectionFromURL(brokerURL, nil)
		if err != nil {
			return err
		}
	}

	client := mqtt.NewSessionClient(connectionProvider, opts, mqtt.WithLogger(logger))

	metrics := dashboard.NewMetrics()
	monitor := dashboard.NewMonitor(
		dashboard.WithBroker(brokerHost(brokerURL)),
		dashboard.WithTopic(cfg.topic),
		dashboard.WithMetrics(metrics),
		dashboard.WithLogger(logger),
	)
	defer monitor.Follow(client)()

	receiver, err := protocol.NewTelemetryReceiver(
		client,
		rssi.Encoding{Field: cfg.field},
		cfg.topic,
		monitor.HandleTelemetry,
		protocol.WithErrorHandler(monitor.HandleTelemetryError),
		protocol.WithLogger{Logger: logger},
	)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	spawn := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errs <- err
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()
	spawn(func() error { return monitor.Run(ctx) })

	// The subscription is sent once the session connects. Listening before
	// starting means the deferred stop runs after the client has stopped.
	stopListening, err := receiver.Listen(ctx)
	if err != nil {
		return err
	}
	defer stopListening()

	if err := client.Start(); err != nil {
		return err
	}
	defer client.Stop()
	logger.Info("subscribing",
		slog.String("broker", brokerURL),
		slog.String("topic", cfg.topic),
		slog.String("client_id", client.ID()),
	)

	if cfg.view != "terminal" {
		server := dashboard.NewServer(monitor,
			dashboard.WithMetrics(metrics),
			dashboard.WithLogger(logger),
		)
		spawn(func() error { return server.ListenAndServe(ctx, cfg.httpAddr) })
	}
	if cfg.view != "web" {
		spawn(func() error {
			return terminal.Run(ctx, os.Stdout, monitor, terminalWidth())
		})
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errs:
		return err
	}
}

// Starts the embedded broker and a simulated device publishing to it.
func startLocal(
	ctx context.Context,
	cfg config,
	logger *slog.Logger,
) (*broker.Broker, error) {
	b, err := broker.New(broker.Options{
		TCPAddress: cfg.localAddr,
		Logger:     logger.With(slog.String("component", "broker")),
	})
	if err != nil {
		return nil, err
	}
	if err := b.Serve(); err != nil {
		return nil, err
	}

	connectionProvider, err := mqtt.ConnectionFromURL(b.TCPURL(), nil)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	device := mqtt.NewSessionClient(connectionProvider,
		mqtt.WithClientID(mqtt.RandomClientID("esp32_sim_")),
		mqtt.WithLogger(logger),
	)
	sender, err := protocol.NewTelemetrySender(
		device,
		rssi.Encoding{Field: cfg.field},
		cfg.topic,
		protocol.WithQoS(0),
		protocol.WithLogger{Logger: logger},
	)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if err := device.Start(); err != nil {
		_ = b.Close()
		return nil, err
	}

	go func() {
		defer device.Stop()
		walk := simulator.NewWalk(
			uint64(wallclock.Instance.Now().UnixNano()),
			-60,
		)
		_ = simulator.Run(ctx, sender, walk, time.Second, logger)
	}()
	return b, nil
}

func brokerHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

func terminalWidth() int {
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return 100
}
