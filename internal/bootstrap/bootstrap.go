// Package bootstrap runs the server process and tears its dependencies down in order.
package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

// ShutdownHook releases one dependency, e.g. the HTTP server or a database client.
type ShutdownHook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// App manages the process lifecycle with graceful shutdown.
type App struct {
	logger          *zap.Logger
	shutdownTimeout time.Duration

	mu    sync.Mutex
	hooks []ShutdownHook
}

// New creates a new App.
func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		logger:          logger,
		shutdownTimeout: defaultShutdownTimeout,
	}
}

// AddShutdownHook registers fn under name. Hooks run in reverse order of registration.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, ShutdownHook{Name: name, Fn: fn})
}

// Run executes run until it returns or the process receives SIGINT or SIGTERM.
// Shutdown hooks are called in both cases so resources opened before run are released.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer shutdownCancel()
	return errors.Join(runErr, a.shutdown(shutdownCtx))
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var errs []error
	for i := len(a.hooks) - 1; i >= 0; i-- {
		hook := a.hooks[i]
		if err := hook.Fn(ctx); err != nil {
			a.logger.Error("shutdown hook failed", zap.String("hook", hook.Name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		a.logger.Debug("shutdown hook completed", zap.String("hook", hook.Name))
	}
	a.hooks = nil
	return errors.Join(errs...)
}
