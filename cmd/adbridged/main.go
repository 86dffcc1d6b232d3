// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/adxyz/adbridge/pkg/analytics"
	"github.com/adxyz/adbridge/pkg/api"
	"github.com/adxyz/adbridge/pkg/bridge"
	"github.com/adxyz/adbridge/pkg/channel"
	"github.com/adxyz/adbridge/pkg/codec"
	"github.com/adxyz/adbridge/pkg/event"
	"github.com/adxyz/adbridge/pkg/log"
	"github.com/adxyz/adbridge/pkg/metric"
	"github.com/adxyz/adbridge/pkg/registry"
	"github.com/adxyz/adbridge/pkg/sim"
)

var (
	// Bridge configuration flags
	port      = flag.Int("port", 8700, "Channel port")
	adminPort = flag.Int("admin-port", 8710, "Admin API port")
	logLevel  = flag.String("log-level", "info", "Log level")

	// Simulator configuration
	loadDelay = flag.Duration("load-delay", 150*time.Millisecond, "Simulated ad load latency")
	ecpm      = flag.String("ecpm", "2.50", "Simulated eCPM in USD")

	// Version info
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Daemon ties the channel server, the bridge, and the admin API
// together.
type Daemon struct {
	channelServer *http.Server
	adminServer   *http.Server
	registry      *registry.AdRegistry
	log           log.Logger
}

func main() {
	flag.Parse()

	fmt.Printf("adbridge daemon %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)

	logger := log.NewWithLevel(*logLevel)
	defer logger.Sync()

	daemon, err := NewDaemon(logger)
	if err != nil {
		fmt.Printf("Failed to create daemon: %v\n", err)
		os.Exit(1)
	}

	daemon.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := daemon.Shutdown(ctx); err != nil {
		fmt.Printf("Error during shutdown: %v\n", err)
	}

	fmt.Println("Daemon stopped")
}

// NewDaemon wires the full pipeline on top of the simulated SDK
func NewDaemon(logger log.Logger) (*Daemon, error) {
	metrics, err := metric.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	simCfg := sim.DefaultConfig()
	simCfg.LoadDelay = *loadDelay
	if value, err := decimal.NewFromString(*ecpm); err == nil {
		simCfg.ECPM = value
	} else {
		logger.Warn(fmt.Sprintf("invalid -ecpm %q, using default", *ecpm))
	}
	sdk := sim.New(simCfg, logger)

	reg := registry.NewAdRegistry(logger, metrics)
	tracker := analytics.NewTracker()

	channelServer := channel.NewWebSocketServer(codec.Standard{}, nil, logger)
	dispatcher := event.NewDispatcher(reg, channelServer, logger, metrics, tracker)

	factories := bridge.NewFactoryRegistry(logger)
	factories.Register("default", sim.Factory{})

	br := bridge.New(sdk, reg, dispatcher, factories, logger, metrics)
	channelServer.SetHandler(br)

	channelRouter := mux.NewRouter()
	channelRouter.Handle("/channel", channelServer)
	channelRouter.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods("GET")

	adminRouter := api.New(reg, tracker, metrics, logger, Version).Router()

	return &Daemon{
		channelServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", *port),
			Handler: channelRouter,
		},
		adminServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", *adminPort),
			Handler: adminRouter,
		},
		registry: reg,
		log:      logger,
	}, nil
}

// Start launches both listeners
func (d *Daemon) Start() {
	go func() {
		d.log.Info(fmt.Sprintf("channel listening on %s", d.channelServer.Addr))
		if err := d.channelServer.ListenAndServe(); err != http.ErrServerClosed {
			d.log.Error(fmt.Sprintf("channel server error: %v", err))
		}
	}()

	go func() {
		d.log.Info(fmt.Sprintf("admin API listening on %s", d.adminServer.Addr))
		if err := d.adminServer.ListenAndServe(); err != http.ErrServerClosed {
			d.log.Error(fmt.Sprintf("admin server error: %v", err))
		}
	}()
}

// Shutdown stops the listeners and disposes every tracked ad
func (d *Daemon) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := d.channelServer.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := d.adminServer.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	d.registry.UntrackAll()
	return firstErr
}
