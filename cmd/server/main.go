package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/HazimKhairi/triple-seven-games/internal/cache"
	"github.com/HazimKhairi/triple-seven-games/internal/config"
	"github.com/HazimKhairi/triple-seven-games/internal/ws"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()

	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Warn("config file not loaded, using defaults")
		cfg = config.Default()
	}

	// Env overrides for the containerized deploys.
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.Log.Level).Warn("unknown log level, keeping info")
	}
	entry := logrus.NewEntry(log)

	// Redis is optional: without it the game runs, only history and the
	// leaderboard go dark.
	var recorder *cache.Recorder
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, action history and leaderboard disabled")
		rdb = nil
	} else {
		recorder = cache.NewRecorder(rdb, entry)
		log.WithField("addr", cfg.Redis.Addr).Info("redis connected")
	}
	cancel()

	server := ws.NewServer(cfg.Game, recorder, entry)

	mux := http.NewServeMux()
	mux.Handle("/ws", server)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		entries, err := recorder.Leaderboard(r.Context(), 20)
		if err != nil {
			http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
		if rdb != nil {
			rdb.Close()
		}
	}()

	log.WithField("addr", addr).Info("triple seven server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server failed")
	}
}
