package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/yanqian/cyclecare/internal/infra/config"
)

// Closers collects the shutdown hooks of pooled backends (postgres, valkey).
type Closers struct {
	mu    sync.Mutex
	names []string
	fns   []func() error
}

// NewClosers is used by Wire so providers can register cleanup.
func NewClosers() *Closers {
	return &Closers{}
}

// Add registers fn under name. Hooks run in reverse order.
func (c *Closers) Add(name string, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, name)
	c.fns = append(c.fns, fn)
}

// Close runs every registered hook and joins their errors.
func (c *Closers) Close(logger *slog.Logger) error {
	c.mu.Lock()
	names, fns := c.names, c.fns
	c.names, c.fns = nil, nil
	c.mu.Unlock()

	var errs []error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](); err != nil {
			logger.Error("close failed", "resource", names[i], "error", err)
			errs = append(errs, err)
			continue
		}
		logger.Info("closed", "resource", names[i])
	}
	return errors.Join(errs...)
}

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	closers *Closers
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, closers *Closers) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, closers: closers}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.closers != nil {
			_ = a.closers.Close(a.logger)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
