package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"blackjack-server/internal/api"
	"blackjack-server/internal/config"
	"blackjack-server/internal/db"
	"blackjack-server/internal/game"
	"blackjack-server/internal/logger"
	"blackjack-server/internal/metrics"
	"blackjack-server/internal/store"
)

func main() {
	// Chip amounts go over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Logging)
	defer log.Sync()

	// Make sure the sqlite data directory exists before opening the file.
	if cfg.Database.Driver == "sqlite" || cfg.Database.Driver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			log.Fatal("failed to create data directory", zap.Error(err))
		}
	}

	var st store.Store
	database, err := db.New(cfg.Database)
	if err != nil {
		log.Warn("failed to initialize database, continuing without persistence", zap.Error(err))
		st = store.NewMemoryStore()
	} else {
		log.Info("database initialized", zap.String("driver", cfg.Database.Driver))
		defer database.Close()
		st = store.NewDatabaseStore(database)
	}

	engine := game.NewEngine(st, st, log.Named("engine"))

	hub := api.NewHub(log.Named("ws"))
	go hub.Run()

	handlers := api.NewHandlers(st, engine, hub, log.Named("api"))

	r := mux.NewRouter()
	handlers.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.Use(metrics.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, req)
			log.Info("request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Duration("duration", time.Since(start)))
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("forced shutdown", zap.Error(err))
	}
}
