// Package app wires configuration, content, persistence, the core loop
// and the HTTP surface into a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emberhollow/server/content"
	"emberhollow/server/internal/config"
	"emberhollow/server/internal/core"
	servernet "emberhollow/server/internal/net"
	"emberhollow/server/internal/save"
	"emberhollow/server/logging"
	loggingSinks "emberhollow/server/logging/sinks"
)

func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, closeSinks, err := buildRouter(cfg)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(shutdownCtx); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
		closeSinks()
	}()

	reg := content.Default()

	store, err := save.Open(ctx, cfg.SavePath)
	if err != nil {
		return fmt.Errorf("open save store %q: %w", cfg.SavePath, err)
	}
	defer store.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	c := core.New(cfg, reg, store, router, rng, nil)
	if err := c.Load(ctx); err != nil {
		return fmt.Errorf("load save: %w", err)
	}
	go c.Run(ctx)

	handler := servernet.NewHTTPHandler(c, servernet.HTTPHandlerConfig{
		Logger: log.Default(),
		Router: router,
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	c.Save(shutdownCtx)
	return nil
}

func buildRouter(cfg config.Config) (*logging.Router, func(), error) {
	logCfg := logging.DefaultConfig()
	logCfg.MinimumSeverity = severityFromLevel(cfg.LogLevel)

	named := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsole(os.Stdout)},
	}
	cleanup := func() {}
	if cfg.LogJSONPath != "" {
		file, err := os.OpenFile(cfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open json log %q: %w", cfg.LogJSONPath, err)
		}
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSON(file, logCfg.JSON.FlushInterval),
		})
		logCfg.EnabledSinks = append(logCfg.EnabledSinks, "json")
		cleanup = func() { file.Close() }
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logCfg, named)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return router, cleanup, nil
}

func severityFromLevel(level string) logging.Severity {
	switch level {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}
