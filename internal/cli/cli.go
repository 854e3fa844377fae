// Package cli holds the start-up steps shared by the casalgastos commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"casalgastos/internal/adapters"
	"casalgastos/internal/amqp"
	"casalgastos/internal/backend"
	"casalgastos/internal/config"
	applog "casalgastos/internal/log"
)

// SetupLogger builds the process logger for level and makes it the default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is not an error.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Backend is an opened data backend and the resources to release with it.
type Backend struct {
	backend.Backend
	closers []func() error
}

// Close releases the backend and the broker connection, if any.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BuildBackend opens the configured backend. When an AMQP URL is set, inserts
// and deletes are also published for the spreadsheet mirror.
func BuildBackend(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*Backend, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	out := &Backend{Backend: res.Backend}
	if res.Cleanup != nil {
		out.closers = append(out.closers, res.Cleanup)
	}

	if cfg.AMQPURL == "" {
		logger.Info("AMQP not configured, spreadsheet mirror disabled")
		return out, nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	out.closers = append(out.closers, client.Close)
	out.Backend = adapters.NewPublishingBackend(res.Backend, client, logger)
	logger.Info("Publishing transaction events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return out, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
