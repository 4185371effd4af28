// Package main is the entrypoint for the TextMagic API server.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/textmagic/textmagic/internal/ai"
	"github.com/textmagic/textmagic/internal/auth"
	"github.com/textmagic/textmagic/internal/billing"
	"github.com/textmagic/textmagic/internal/cache"
	"github.com/textmagic/textmagic/internal/config"
	"github.com/textmagic/textmagic/internal/handler"
	"github.com/textmagic/textmagic/internal/metrics"
	"github.com/textmagic/textmagic/internal/middleware"
	"github.com/textmagic/textmagic/internal/repository"
	"github.com/textmagic/textmagic/internal/server"
	"github.com/textmagic/textmagic/internal/service"
	"github.com/textmagic/textmagic/internal/usagelog"
)

func main() {
	ctx := context.Background()

	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", sanitizeError(err, cfg.DatabaseURL))
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	tokens, err := auth.NewTokenService(resolveJWTSecret(cfg, logger))
	if err != nil {
		logger.Error("failed to initialize token service", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()

	// AI provider; nil switches every tool to demo responses.
	var completer service.Completer
	if cfg.AIEnabled() {
		client, err := ai.NewClient(ai.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel})
		if err != nil {
			logger.Error("failed to initialize AI client", "error", err)
			os.Exit(1)
		}
		completer = client
		logger.Info("AI provider configured", "model", cfg.OpenAIModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set, tools run in demo mode")
	}

	// Usage-log pipeline: async publisher plus a consumer-group worker
	// draining the stream into usage_logs.
	publisher := usagelog.NewPublisher(cacheClient.Client(), logger, recorder)
	worker := usagelog.NewWorker(cacheClient.Client(), repo, logger, hostnameConsumerID(), recorder)

	workerCtx, workerCancel := context.WithCancel(ctx)
	go func() {
		if err := worker.Run(workerCtx); err != nil {
			logger.Error("usage-log worker stopped", "error", err)
		}
	}()

	// Services
	accountService := service.NewAccountService(repo, logger)
	usageService := service.NewUsageService(repo, publisher, logger, recorder)
	processService := service.NewProcessService(usageService, completer, logger, recorder)

	// Billing
	stripeProvider := billing.NewStripeProvider(billing.StripeConfig{
		SecretKey:       cfg.StripeSecretKey,
		WebhookSecret:   cfg.StripeWebhookSecret,
		ProPriceID:      cfg.StripeProPriceID,
		BusinessPriceID: cfg.StripeBusinessPrice,
		BaseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
	})
	paddleProvider := billing.NewPaddleProvider(billing.PaddleConfig{
		WebhookSecret:   cfg.PaddleWebhookSecret,
		BusinessPriceID: cfg.PaddleBusinessPrice,
	})
	billingService := billing.NewService(repo, logger, recorder)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(recorder)
	authHandler := handler.NewAuthHandler(accountService, usageService, tokens, cfg.IsProduction(), logger)
	toolHandler := handler.NewToolHandler(processService, logger)
	usageHandler := handler.NewUsageHandler(usageService, logger)
	billingHandler := handler.NewBillingHandler(stripeProvider, logger)
	webhookHandler := handler.NewWebhookHandler(stripeProvider, paddleProvider, billingService, cfg.IsDevelopment(), logger)

	r := setupRouter(routerDeps{
		health:  healthHandler,
		metrics: metricsHandler,
		auth:    authHandler,
		tool:    toolHandler,
		usage:   usageHandler,
		billing: billingHandler,
		webhook: webhookHandler,
		repo:    repo,
		cache:   cacheClient,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Stop the worker after in-flight HTTP requests drain so their
	// usage events still get consumed.
	srv.OnShutdown("usagelog-worker", func(ctx context.Context) error {
		workerCancel()
		return worker.Shutdown(ctx)
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

type routerDeps struct {
	health  *handler.HealthHandler
	metrics *handler.MetricsHandler
	auth    *handler.AuthHandler
	tool    *handler.ToolHandler
	usage   *handler.UsageHandler
	billing *handler.BillingHandler
	webhook *handler.WebhookHandler
	repo    *repository.Repository
	cache   *cache.Cache
	tokens  *auth.TokenService
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: deps.cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Probes and metrics, no auth.
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	authCfg := middleware.AuthConfig{
		Logger: deps.logger,
		Tokens: deps.tokens,
		Store:  deps.repo,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:            deps.logger,
		Cache:             deps.cache,
		Enabled:           deps.cfg.RateLimitAPIEnabled,
		RequestsPerMinute: deps.cfg.RateLimitAPIRPM,
		Burst:             deps.cfg.RateLimitAPIBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Session endpoints, no auth.
		r.Post("/auth/register", deps.auth.Register)
		r.Post("/auth/login", deps.auth.Login)
		r.Post("/auth/logout", deps.auth.Logout)

		// Public tool catalog.
		r.Get("/tools", deps.tool.List)

		// Authenticated, rate-limited routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(authCfg))
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Get("/auth/me", deps.auth.Me)
			r.Post("/tools/process", deps.tool.Process)
			r.Get("/usage/stats", deps.usage.Stats)
			r.Post("/billing/checkout", deps.billing.Checkout)
			r.Post("/billing/portal", deps.billing.Portal)
		})
	})

	// Provider webhooks authenticate via signature, not session.
	r.Post("/webhooks/stripe", deps.webhook.Stripe)
	r.Post("/webhooks/paddle", deps.webhook.Paddle)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveJWTSecret returns the configured signing secret. In
// development a random one is generated so the server still starts;
// sessions then die with the process.
func resolveJWTSecret(cfg *config.Config, logger *slog.Logger) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logger.Error("failed to generate dev JWT secret", "error", err)
		os.Exit(1)
	}

	logger.Warn("JWT_SECRET not set, generated a random development secret; sessions will not survive restarts")
	return hex.EncodeToString(buf)
}

// hostnameConsumerID names this instance inside the stream consumer
// group.
func hostnameConsumerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "api-worker"
	}
	return "api-worker-" + host
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
