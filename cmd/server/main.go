package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/padsync/backend/internal/api"
	"github.com/padsync/backend/internal/config"
	"github.com/padsync/backend/internal/coordinator"
	"github.com/padsync/backend/internal/metrics"
	"github.com/padsync/backend/internal/store"
	"github.com/padsync/backend/internal/ws"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize room store")
	}
	defer st.Close()

	hub := ws.NewHub(log)
	coord := coordinator.New(st, hub, log)
	go hub.Run(ctx, coord)

	apiHandler := api.New(hub, st, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, log, w, r)
	})
	mux.HandleFunc("/health", apiHandler.HealthHandler)
	mux.HandleFunc("/api/stats", apiHandler.StatsHandler)
	mux.HandleFunc("/api/rooms", apiHandler.RoomsRouter)
	mux.HandleFunc("/api/rooms/", apiHandler.RoomsRouter)
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreBackend}).Info("padsync server starting")
		log.Info("endpoints: /ws, /health, /api/stats, /api/rooms, /metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server crashed")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	log.Info("shutdown complete")
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.Env == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return log
}

func newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		dsn := cfg.SQLiteDSN
		if dsn == "" {
			dsn = store.MemoryDSN
		}
		return store.NewSQLite(dsn)
	case "redis":
		return store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	default:
		return store.NewMemory(), nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
