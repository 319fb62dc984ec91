package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/expensecmd/internal/auth"
	"github.com/mmynk/expensecmd/internal/command"
	"github.com/mmynk/expensecmd/internal/config"
	"github.com/mmynk/expensecmd/internal/events"
	"github.com/mmynk/expensecmd/internal/metrics"
	"github.com/mmynk/expensecmd/internal/middleware"
	"github.com/mmynk/expensecmd/internal/normalize"
	"github.com/mmynk/expensecmd/internal/service"
	"github.com/mmynk/expensecmd/internal/storage"
	"github.com/mmynk/expensecmd/internal/storage/memory"
	"github.com/mmynk/expensecmd/internal/storage/postgres"
	"github.com/mmynk/expensecmd/internal/storage/sqlite"
	"github.com/mmynk/expensecmd/pkg/logging"
)

const (
	tokenDuration   = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "backend", cfg.DataBackend)

	normalizer, err := normalize.New(ctx, normalize.Options{
		Strategies: cfg.Strategies(),
		Timeout:    cfg.NormalizerTimeout,
		Gemini: normalize.GeminiConfig{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			Endpoint: cfg.GeminiEndpoint,
		},
		Prompt: normalize.PromptConfig{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
		},
		Logger: logger,
	}, command.Describe())
	if err != nil {
		return fmt.Errorf("failed to initialize normalizer: %w", err)
	}
	logger.Info("Normalizer initialized", "strategies", normalizer.Name())

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to initialize event publisher: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	m := metrics.New()
	pipeline := command.NewPipeline(normalizer, store,
		command.WithLogger(logger),
		command.WithPublisher(publisher),
		command.WithRecorder(m),
	)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	mux := http.NewServeMux()
	commandPath, commandHandler := service.NewCommandServiceHandler(
		service.NewCommandService(pipeline, logger),
		connect.WithInterceptors(
			middleware.RequireAuth(jwtManager),
			limiter.Interceptor(),
			middleware.LoggingInterceptor(logger),
		),
	)
	mux.Handle(commandPath, commandHandler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// h2c serves HTTP/2 without TLS for Connect clients.
	handler := h2c.NewHandler(loggingMiddleware(logger, corsMiddleware(mux)), &http2.Server{})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Connect server starting", "address", server.Addr, "url", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	case config.BackendMemory:
		return memory.New(), nil
	default:
		return sqlite.New(cfg.DBPath)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
