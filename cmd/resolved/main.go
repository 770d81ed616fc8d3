// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command resolved starts the Scriptorium resolution API server.
//
// The server resolves navigational selections in transcription dossiers
// to display text: exact draft versions, run and segment fallback
// chains, reviewer-pinned final selections, and stitched full-dossier
// reading views.
//
// Usage:
//
//	go run ./cmd/resolved
//	go run ./cmd/resolved -config resolved.yaml
//	go run ./cmd/resolved -addr :9090 -data /srv/scriptorium
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/resolution/health
//
//	# Resolve a run selection
//	curl -X POST http://localhost:8080/v1/resolution/resolve \
//	  -H "Content-Type: application/json" \
//	  -d '{"dossier_id": "d1", "segment_id": "seg1", "run_id": "run1"}'
//
//	# Stitched reading view
//	curl http://localhost:8080/v1/resolution/dossiers/d1/stitched
//
// Tracing is exported over OTLP when OTEL_EXPORTER_OTLP_ENDPOINT is set;
// Prometheus metrics are always served on /metrics.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/scriptoria/scriptorium/pkg/logging"
	"github.com/scriptoria/scriptorium/services/resolution"
	"github.com/scriptoria/scriptorium/services/resolution/config"
	"github.com/scriptoria/scriptorium/services/resolution/registry"
	"github.com/scriptoria/scriptorium/services/resolution/resolver"
	"github.com/scriptoria/scriptorium/services/resolution/store"
	"github.com/scriptoria/scriptorium/services/resolution/verindex"
)

const serviceName = "resolution-service"

// initTracer sets up the OTLP trace exporter when
// OTEL_EXPORTER_OTLP_ENDPOINT is configured. Returns a nil cleanup when
// tracing is disabled.
func initTracer() (func(context.Context), error) {
	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		return nil, nil
	}

	ctx := context.Background()
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if *debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.LogDir,
		Service: "resolved",
	})
	defer logger.Close()
	logger.InstallDefault()

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	cleanup, err := initTracer()
	if err != nil {
		logger.Error("Failed to setup the OTLP tracer", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup(context.Background())
		logger.Info("OTLP tracing enabled", "endpoint", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	}

	// Engine wiring: the file store serves both the dossier trees and
	// the draft texts; the registry shares the same data root.
	st := store.New(cfg.DataDir)
	finals := registry.NewFileRegistry(cfg.DataDir)
	index := verindex.NewCache()
	res := resolver.New(st, st, finals, index)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var watcher *store.Watcher
	if cfg.Watch {
		watcher, err = store.NewWatcher(st, index.HandleEvent)
		if err != nil {
			logger.Error("Failed to create file watcher", "error", err)
			os.Exit(1)
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Error("Failed to start file watcher", "error", err)
			os.Exit(1)
		}
		defer watcher.Stop()
		logger.Info("File watcher started", "data_dir", cfg.DataDir)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if *debug {
		router.Use(gin.Logger())
	}
	router.Use(otelgin.Middleware(serviceName))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers := resolution.NewHandlers(res, st, finals, index)
	v1 := router.Group("/v1")
	resolution.RegisterRoutes(v1, handlers)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down resolution server")
		if watcher != nil {
			watcher.Stop()
		}
		if cleanup != nil {
			cleanup(context.Background())
		}
		logger.Close()
		os.Exit(0)
	}()

	logger.Info("Starting resolution server", "address", cfg.ListenAddr, "data_dir", cfg.DataDir)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
