package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"captive-responder-go/internal/acceptance"
	"captive-responder-go/internal/config"
	"captive-responder-go/internal/events"
	httpapi "captive-responder-go/internal/http"
	"captive-responder-go/internal/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logrus.New()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	st := buildStore(cfg, logger)
	disp := events.NewDispatcher(logger, buildSinks(cfg, logger)...)
	defer disp.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	srv := httpapi.New(cfg, logger, st, disp, m)

	addr := fmt.Sprintf("%s:%d", cfg.Responder.Bind.Host, cfg.Responder.Bind.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"name":    cfg.Responder.Name,
			"addr":    addr,
			"portal":  "/portal",
			"api":     "/.well-known/captive-portal",
			"backend": cfg.Store.Backend,
		}).Info("captive responder starting")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
		select {
		case s := <-sigCh:
			logger.Warnf("received signal %v, shutting down", s)
		case <-ctx.Done():
			return ctx.Err()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("exited with error: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("RESPONDER_CONFIG")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildStore(cfg *config.Config, logger *logrus.Logger) acceptance.Store {
	ttl := time.Duration(cfg.Store.TTLSeconds) * time.Second

	if cfg.Store.Backend == "redis" {
		password := ""
		if cfg.Redis.AuthRef != "" {
			password, _ = config.ResolveSecret(cfg.Redis.AuthRef)
		}
		st := acceptance.NewRedisStore(acceptance.RedisOptions{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			DB:       cfg.Redis.DB,
			Password: password,
			Prefix:   cfg.Redis.Prefix,
			TTL:      ttl,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := st.Ping(pingCtx); err != nil {
			logger.Warnf("redis ping failed: %v", err)
		}
		return st
	}

	return acceptance.NewMemoryStore(ttl)
}

func buildSinks(cfg *config.Config, logger *logrus.Logger) []events.Sink {
	var sinks []events.Sink

	if cfg.Responder.Audit.Enabled {
		secret, err := config.ResolveSecret(cfg.Responder.Audit.SecretRef)
		if err != nil {
			logger.Fatalf("resolve audit secret failed: %v", err)
		}
		sinks = append(sinks, events.NewAuditSink(secret))
	}

	if cfg.Mongo.URI != "" {
		sink, err := events.NewMongoSink(context.Background(), cfg.Mongo.URI, cfg.Mongo.DB, cfg.Mongo.Collection)
		if err != nil {
			// the event log is best-effort; run without it
			logger.Errorf("mongo connection error: %v", err)
		} else {
			logger.Info("mongo event sink connected")
			sinks = append(sinks, sink)
		}
	}

	return sinks
}
