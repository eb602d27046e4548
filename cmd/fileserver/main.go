// Command fileserver serves a directory tree over HTTP through the sink
// contract: files stream through data sources, directories render as
// listings, and Prometheus metrics are exposed on /metrics.
//
// Configuration via environment variables (a .env file is honored):
//
//	FILESERVER_ROOT      - Directory to serve (default: ".")
//	FILESERVER_INDEX     - Index file served for directories (default: "index.html")
//	FILESERVER_LISTINGS  - Enable directory listings (default: true)
//	SERVER_ADDR          - Listen address (default: ":8080")
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Melown/libhttp/core/httpsink"
	"github.com/Melown/libhttp/core/logger"
	"github.com/Melown/libhttp/core/server"
	"github.com/Melown/libhttp/core/static"
)

type config struct {
	Root     string `env:"FILESERVER_ROOT" envDefault:"."`
	Index    string `env:"FILESERVER_INDEX" envDefault:"index.html"`
	Listings bool   `env:"FILESERVER_LISTINGS" envDefault:"true"`
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(log); err != nil {
		log.Error("fileserver failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	srvCfg, err := server.LoadConfig()
	if err != nil {
		return err
	}

	dirOpts := []static.DirOption{static.WithIndexFile(cfg.Index)}
	if cfg.Listings {
		dirOpts = append(dirOpts, static.WithListings())
	}

	registry := prometheus.NewRegistry()
	metrics := httpsink.NewMetrics(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", httpsink.Handle(static.Dir(cfg.Root, dirOpts...),
		httpsink.WithLogger(log),
		httpsink.WithMetrics(metrics),
	))

	srv, err := server.NewFromConfig(srvCfg, server.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("serving directory", logger.Component("fileserver"),
		slog.String("root", cfg.Root), slog.String("addr", srvCfg.Addr))
	return srv.Run(ctx, mux)
}
