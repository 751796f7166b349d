package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leolynk/leolynk/internal/auth"
	"github.com/leolynk/leolynk/internal/config"
	"github.com/leolynk/leolynk/internal/db"
	httpx "github.com/leolynk/leolynk/internal/http"
	"github.com/leolynk/leolynk/internal/observability"
	"github.com/leolynk/leolynk/internal/redisclient"
	"github.com/leolynk/leolynk/internal/repo/postgres"
	"github.com/leolynk/leolynk/internal/reports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	startCtx, cancelStart := config.WithTimeout(30 * time.Second)
	defer cancelStart()

	shutdownTracer := observability.NoopShutdown
	if cfg.OTelEnabled {
		fn, err := observability.InitTracer(startCtx, observability.TracerConfig{
			Service:       "leolynk-api",
			Env:           cfg.Env,
			Endpoint:      cfg.OTelEndpoint,
			SamplePercent: cfg.OTelSamplePercent,
		})
		if err != nil {
			log.Error("otel init failed", "err", err)
		} else {
			shutdownTracer = fn
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	if cfg.RunMigrations {
		if err := db.Migrate(startCtx, cfg.DBURL); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPool(cfg)
	if err != nil {
		log.Error("database connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureAdminUser(startCtx, postgres.NewClubsRepo(pool, prom), postgres.NewUsersRepo(pool, prom), cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	var rdb *redisclient.Client
	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "leolynk",
		})
		defer rdb.Close()
	}

	cat, err := reports.LoadCatalog(cfg.ReportsCatalog)
	if err != nil {
		log.Error("report catalog load failed", "err", err, "path", cfg.ReportsCatalog)
		os.Exit(1)
	}

	// set up routers
	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Pool:     pool,
		Redis:    rdb,
		Prom:     prom,
		Gatherer: reg,
		JWT:      auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL()),
		Reports:  reports.NewRenderer(cat, os.DirFS(cfg.ReportsTemplateDir), cfg.TemplateCacheTTL(), cfg.ReportRenderTimeout(), prom),
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		if err := shutdownTracer(context.Background()); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
