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

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/gunaso-platform/grievance/pkg/logger"

	"github.com/gunaso-platform/grievance/internal/cache"
	"github.com/gunaso-platform/grievance/internal/classifier"
	"github.com/gunaso-platform/grievance/internal/config"
	"github.com/gunaso-platform/grievance/internal/handler"
	"github.com/gunaso-platform/grievance/internal/notify"
	"github.com/gunaso-platform/grievance/internal/repository"
	"github.com/gunaso-platform/grievance/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stdout,
	})
	log.SetDefault()

	log.Info("starting service",
		"service", cfg.Service.Name,
		"environment", cfg.Service.Environment,
		"port", cfg.Service.HTTPPort,
		"store", cfg.Store.Backend,
	)

	// Initialize case store
	repo, db, err := initStore(cfg)
	if err != nil {
		log.Error("failed to initialize case store", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize notification dispatcher
	var dispatcher notify.Dispatcher
	if cfg.Kafka.Enabled {
		kafkaDispatcher, err := notify.NewKafkaDispatcher(notify.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, log.Logger)
		if err != nil {
			log.Error("failed to initialize kafka dispatcher", "error", err)
			os.Exit(1)
		}
		dispatcher = kafkaDispatcher
		log.Info("kafka dispatcher enabled", "topic", cfg.Kafka.Topic)
	}
	notifications := notify.NewLog(dispatcher, log.Logger)
	defer notifications.Close()

	// Initialize feed cache
	var feedCache *cache.FeedCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		feedCache = cache.NewFeedCache(redisClient, cfg.Redis.FeedTTL)
		log.Info("feed cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.FeedTTL)
	}

	// Initialize components
	intakeService, err := service.NewIntakeService(
		repo,
		classifier.New(),
		notifications,
		feedCache,
		log,
		cfg.Intake.CasePrefix,
	)
	if err != nil {
		log.Error("failed to initialize intake service", "error", err)
		os.Exit(1)
	}
	grievanceHandler := handler.NewGrievanceHandler(intakeService)

	// Set up HTTP router
	router := mux.NewRouter()

	// Add middleware
	router.Use(loggingMiddleware(log))
	router.Use(recoveryMiddleware)
	router.Use(corsMiddleware(cfg.CORS))

	// Register health and readiness endpoints
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/ready", readyHandler(db)).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(repo)).Methods("GET")

	// Register API routes
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	grievanceHandler.RegisterRoutes(apiRouter)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.Service.ReadTimeout,
		WriteTimeout: cfg.Service.WriteTimeout,
		IdleTimeout:  cfg.Service.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Background SLA monitor
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	if cfg.Intake.SLACheckInterval > 0 {
		go runSLAMonitor(monitorCtx, intakeService, cfg.Intake.SLACheckInterval, log)
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	stopMonitor()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", "error", err)
	}

	log.Info("server exited gracefully")
}

// initStore builds the configured case store. The returned DB handle is
// nil for the in-memory backend.
func initStore(cfg *config.Config) (repository.CaseRepository, *sqlx.DB, error) {
	if cfg.Store.Backend == "memory" {
		return repository.NewMemoryStore(), nil, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Store.Postgres.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Store.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Store.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Store.Postgres.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Store.Postgres.ConnMaxIdleTime)

	store := repository.NewPostgresStore(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}

	return store, db, nil
}

// runSLAMonitor sweeps deadlines on a fixed interval until the context
// is cancelled.
func runSLAMonitor(ctx context.Context, svc *service.IntakeService, interval time.Duration, log *logger.Logger) {
	log.Info("sla monitor started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sla monitor stopped")
			return
		case <-ticker.C:
			report, err := svc.SLACheck(ctx)
			if err != nil {
				log.Error("sla sweep failed", "error", err)
				continue
			}
			if report.Summary.Overdue > 0 {
				log.Warn("sla sweep found overdue cases",
					"total", report.Summary.Total,
					"overdue", report.Summary.Overdue,
				)
			}
		}
	}
}

// Middleware

func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Tag the request with an ID so every log line for it correlates.
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			ctx := logger.ContextWithRequestID(r.Context(), requestID)
			w.Header().Set("X-Request-ID", requestID)

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			log.WithContext(ctx).Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", logger.RequestIDFromContext(r.Context()),
				)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Check if origin is allowed
			allowed := false
			for _, o := range cfg.AllowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Handle preflight
			if r.Method == "OPTIONS" {
				w.Header().Set("Access-Control-Allow-Methods", joinStrings(cfg.AllowedMethods))
				w.Header().Set("Access-Control-Allow-Headers", joinStrings(cfg.AllowedHeaders))
				w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func joinStrings(strs []string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for i := 1; i < len(strs); i++ {
		result += ", " + strs[i]
	}
	return result
}

// Handlers

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"healthy","service":"grievance"}`)
}

func readyHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// The memory backend has no external dependency to check.
		if db != nil {
			if err := db.Ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprint(w, `{"status":"not_ready","service":"grievance","error":"database connection failed"}`)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ready","service":"grievance"}`)
	}
}

func metricsHandler(repo repository.CaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		total, err := repo.Count(r.Context())
		if err != nil {
			total = 0
		}

		metrics := fmt.Sprintf(`# HELP grievance_service_up Service health status
# TYPE grievance_service_up gauge
grievance_service_up 1

# HELP grievance_service_info Service information
# TYPE grievance_service_info gauge
grievance_service_info{service="grievance",version="1.0.0"} 1

# HELP grievance_cases_total Number of complaint cases in the store
# TYPE grievance_cases_total gauge
grievance_cases_total %d
`, total)
		fmt.Fprint(w, metrics)
	}
}
