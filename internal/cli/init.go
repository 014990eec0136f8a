// Package cli provides common CLI initialization utilities shared by
// cmd/scadenze and cmd/recurring-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"scadenze/internal/amqp"
	"scadenze/internal/backend"
	"scadenze/internal/config"
	"scadenze/internal/hints"
	applog "scadenze/internal/log"
	"scadenze/internal/recurring"
	"scadenze/internal/services"
	"scadenze/internal/sheets"
)

// SetupLogger initializes structured logging from LOG_LEVEL and LOG_FORMAT.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	lc := applog.DefaultConfig()
	lc.Component = component
	if cfg != nil {
		lc.Level = applog.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := applog.New(lc).WithComponent(component)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// OpenFeed builds the transaction feed selected by DATA_BACKEND.
func OpenFeed(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.Feed, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	feed, err := factory.CreateFeed(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("create %s feed: %w", bc.Type, err)
	}
	return feed, nil
}

// NewCategorizer returns the Gemini categorizer wrapped in the hint store, or
// nil when no API key is configured or the client cannot be built.
func NewCategorizer(ctx context.Context, logger *applog.Logger, cfg *config.Config, store sheets.HintStore) hints.Categorizer {
	if cfg.GeminiAPIKey == "" {
		logger.InfoContext(ctx, "Categorization disabled, GEMINI_API_KEY not set")
		return nil
	}
	gemini, err := hints.NewGeminiCategorizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.WarnContext(ctx, "Failed to initialize Gemini categorizer, continuing without hints", "error", err)
		return nil
	}
	logger.InfoContext(ctx, "Categorization enabled", "model", cfg.GeminiModel)
	if store == nil {
		return gemini
	}
	return hints.NewCached(store, gemini)
}

// ConnectAMQP returns a connected client, or nil when AMQP is disabled or
// the broker is unreachable.
func ConnectAMQP(ctx context.Context, logger *applog.Logger, cfg *config.Config) *amqp.Client {
	if !cfg.AMQPEnabled() {
		logger.InfoContext(ctx, "AMQP disabled - no change notifications or alerts")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPAlertsRoutingKey)
	if err != nil {
		logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without it", "error", err)
		return nil
	}
	logger.InfoContext(ctx, "AMQP client initialized",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"alerts_routing_key", cfg.AMQPAlertsRoutingKey)
	return client
}

// ForecastConfig maps the application config onto the service config.
func ForecastConfig(cfg *config.Config) (services.ForecastConfig, error) {
	risk, err := recurring.ParseRisk(cfg.AlertMinRisk)
	if err != nil {
		return services.ForecastConfig{}, fmt.Errorf("ALERT_MIN_RISK: %w", err)
	}
	return services.ForecastConfig{
		LookbackMonths: cfg.LookbackMonths,
		Options:        cfg.ForecastOptions(),
		AlertMinRisk:   risk,
	}, nil
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, stop
}
