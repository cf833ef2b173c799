package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"gamecal/internal/capture"
	"gamecal/internal/catalog"
	"gamecal/internal/config"
	appLog "gamecal/internal/log"
	"gamecal/internal/store"
	"gamecal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	appLog.Info("gamecal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	cat, err := catalog.Load(conf.CatalogPath)
	if err != nil {
		appLog.Error("failed to load event catalog", err, "catalog_path", conf.CatalogPath)
		os.Exit(1)
	}

	db, err := store.Open(conf.DatabasePath)
	if err != nil {
		appLog.Error("failed to open completion store", err, "database_path", conf.DatabasePath)
		os.Exit(1)
	}
	defer db.Close()

	appLog.Info("effective config",
		"listen", conf.Listen,
		"catalog_path", conf.CatalogPath,
		"event_count", len(cat.Events),
		"database_path", conf.DatabasePath,
		"snapshot_cron", conf.SnapshotCron,
		"snapshot_path", conf.SnapshotPath,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, cat, db).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- srv.ListenAndServe()
	}()

	if flags.once {
		if err := runSnapshot(ctx, conf); err != nil {
			appLog.Error("snapshot failed", err)
			shutdown(srv)
			os.Exit(1)
		}
		shutdown(srv)
		appLog.Info("gamecal exiting")
		return
	}

	var sched *cron.Cron
	if conf.SnapshotCron != "" {
		sched = cron.New()
		_, err := sched.AddFunc(conf.SnapshotCron, func() {
			if err := runSnapshot(ctx, conf); err != nil {
				appLog.Error("scheduled snapshot failed", err)
			}
		})
		if err != nil {
			appLog.Error("invalid snapshot cron expression", err, "cron", conf.SnapshotCron)
			os.Exit(1)
		}
		sched.Start()
		appLog.Info("snapshot scheduler started", "cron", conf.SnapshotCron)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
		}
		cancel()
	}

	if sched != nil {
		<-sched.Stop().Done()
	}
	shutdown(srv)
	appLog.Info("gamecal exiting")
}

// runSnapshot captures the daily schedule page into the configured PNG.
func runSnapshot(ctx context.Context, conf *config.Config) error {
	url := "http://" + conf.Listen + "/"
	appLog.Info("capturing daily snapshot", "url", url, "output", conf.SnapshotPath)
	return capture.DailyPNG(ctx, capture.Options{
		URL:        url,
		OutputPath: conf.SnapshotPath,
	})
}

func shutdown(srv *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", err)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/gamecal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Capture one snapshot and exit")

	flag.Parse()

	return cfg
}
