// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
langcat serves forum message catalogs over HTTP.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/forumlang/langcat/config"
	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/server/audit"
	"codeberg.org/forumlang/langcat/server/router"
	"codeberg.org/forumlang/langcat/source"
)

const (
	// Values for http.Server timeouts.
	// ref: gosec: G112
	readHeaderTimeout time.Duration = 15 * time.Second
	readTimeout       time.Duration = 15 * time.Second
	writeTimeout      time.Duration = 10 * time.Second
	idleTimeout       time.Duration = 30 * time.Second

	serverShutdownDeadline time.Duration = 5 * time.Second

	// reloadTimeout bounds a single catalog reload.
	reloadTimeout time.Duration = time.Minute
)

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run orchestrates the application startup and graceful shutdown.
func run() error {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(config.ParseCommandLineArgs()); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg := &config.Global

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := i18n.Setup(ctx, cfg.Loader())
	if err != nil {
		return fmt.Errorf("failed to load catalogs: %w", err)
	}

	resolver := i18n.New(store, i18n.Options{
		Context:         cfg.ForumContext(),
		DefaultLanguage: cfg.Catalog.DefaultLanguage,
		ReportMissing:   cfg.Internationalization.ReportMissingKeys,
	})

	log.Info().
		Strs("languages", resolver.Languages()).
		Str("default", resolver.DefaultLanguage()).
		Msg("Initialized catalogs")

	router := router.NewRouter()
	router.DefineRoutes(cfg)
	router.RegisterMiddleware(resolver, cfg)

	log.Debug().Strs("routes", router.Patterns()).Msg("Registered routes")

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		listener, err := chooseListener(ctx, cfg)
		if err != nil {
			serverErrors <- fmt.Errorf("failed to create listener: %w", err)

			return
		}

		serverErrors <- server.Serve(listener)
	}()

	go reloadLoop(ctx, store, cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case s := <-quit:
		log.Info().Str("signal", s.String()).Msg("Shutdown signal received")
		log.Info().Msg("Shutting down server...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverShutdownDeadline)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}

// reloadLoop reloads the catalogs on SIGHUP, every Catalog.ReloadInterval
// when set, and on file changes when Catalog.Watch is set. It returns when
// ctx is done.
func reloadLoop(ctx context.Context, store *i18n.Store, cfg *config.ServerConfig) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	defer signal.Stop(hup)

	var tick <-chan time.Time

	if cfg.Catalog.ReloadInterval > 0 {
		ticker := time.NewTicker(cfg.Catalog.ReloadInterval)
		defer ticker.Stop()

		tick = ticker.C
	}

	changed := make(chan struct{}, 1)

	if cfg.Catalog.Watch && cfg.Catalog.Dir != "" {
		go func() {
			err := source.Watch(ctx, cfg.Catalog.Dir, source.DefaultDebounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
			if err != nil {
				log.Error().Err(err).Msg("Catalog watcher stopped")
			}
		}()
	}

	for {
		var reason string

		select {
		case <-ctx.Done():
			return
		case <-hup:
			reason = "signal"
		case <-tick:
			reason = "interval"
		case <-changed:
			reason = "watch"
		}

		reloadCtx, cancel := context.WithTimeout(ctx, reloadTimeout)

		// Store.Reload logs failures and keeps the current catalogs.
		if set, err := store.Reload(reloadCtx); err == nil {
			log.Debug().
				Str("reason", reason).
				Uint64("generation", set.Generation()).
				Msg("Reloaded catalogs")
		}

		cancel()
	}
}

func chooseListener(ctx context.Context, cfg *config.ServerConfig) (net.Listener, error) {
	addr := net.JoinHostPort(cfg.Basic.Host, cfg.Basic.Port)

	tcpListener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener on %v: %w", addr, err)
	}

	addr = tcpListener.Addr().String()

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		_ = tcpListener.Close()

		return nil, fmt.Errorf("failed to parse listener address %q: %w", addr, err)
	}

	log.Info().
		Str("address", addr).
		Str("url", fmt.Sprintf("http://localhost:%v/languages", port)).
		Msg("Listening on address")

	return tcpListener, nil
}
