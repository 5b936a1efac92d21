// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/htmlindex"

	"codeberg.org/forumlang/langcat/server/utils"
)

// validation errors.
var (
	errInvalidPort            = errors.New("Basic.Port must be a number between 1 and 65535")
	errNoDefaultLanguage      = errors.New("Catalog.DefaultLanguage cannot be empty")
	errCatalogDirNotDirectory = errors.New("Catalog.Dir is not a directory")
	errUnknownCharset         = errors.New("unknown character set")
	errNegativeConcurrency    = errors.New("Catalog.LoadConcurrency cannot be negative")
	errNegativeReloadInterval = errors.New("Catalog.ReloadInterval cannot be negative")
	errInvalidWebmasterEmail  = errors.New("Forum.WebmasterEmail is not a valid email address")
	errInvalidLogLevel        = errors.New("invalid Log.Level")
	errInvalidLogFormat       = errors.New("invalid Log.Format")
	errInvalidLimiterRate     = errors.New("Limiter.Rate must be positive when the limiter is enabled")
	errInvalidLimiterBurst    = errors.New("Limiter.Burst must be positive when the limiter is enabled")
	errInvalidLimiterExpiry   = errors.New("Limiter.Expiry must be positive when the limiter is enabled")
)

const maxPort = 65535

// validateAndSet validates the server configuration and populates some fields.
func (cfg *ServerConfig) validateAndSet() error {
	if cfg.Basic.Host == "" {
		cfg.Basic.Host = "localhost"
		logDefault("host", cfg.Basic.Host)
	}

	if cfg.Basic.Port == "" {
		cfg.Basic.Port = "8383"
		logDefault("port", cfg.Basic.Port)
	}

	if port, err := strconv.Atoi(cfg.Basic.Port); err != nil || port < 1 || port > maxPort {
		return fmt.Errorf("%w: %q", errInvalidPort, cfg.Basic.Port)
	}

	if err := cfg.validateCatalog(); err != nil {
		return err
	}

	if err := cfg.validateForum(); err != nil {
		return err
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, cfg.Log.Format)
	}

	// Skip validating Limiter configuration if it's not enabled
	if !cfg.Limiter.Enabled {
		return nil
	}

	if cfg.Limiter.Rate <= 0 {
		return errInvalidLimiterRate
	}

	if cfg.Limiter.Burst <= 0 {
		return errInvalidLimiterBurst
	}

	if cfg.Limiter.Expiry <= 0 {
		return errInvalidLimiterExpiry
	}

	return nil
}

func (cfg *ServerConfig) validateCatalog() error {
	if cfg.Catalog.DefaultLanguage == "" {
		return errNoDefaultLanguage
	}

	if cfg.Catalog.Dir != "" {
		info, err := os.Stat(cfg.Catalog.Dir)
		if err != nil {
			return fmt.Errorf("invalid Catalog.Dir: %w", err)
		}

		if !info.IsDir() {
			return fmt.Errorf("%w: %s", errCatalogDirNotDirectory, cfg.Catalog.Dir)
		}
	}

	if _, err := htmlindex.Get(cfg.Catalog.DefaultCharset); err != nil {
		return fmt.Errorf("%w for Catalog.DefaultCharset: %q", errUnknownCharset, cfg.Catalog.DefaultCharset)
	}

	for language, charset := range cfg.Catalog.Charsets {
		if _, err := htmlindex.Get(charset); err != nil {
			return fmt.Errorf("%w for language %s in Catalog.Charsets: %q", errUnknownCharset, language, charset)
		}
	}

	if cfg.Catalog.LoadConcurrency < 0 {
		return errNegativeConcurrency
	}

	if cfg.Catalog.ReloadInterval < 0 {
		return errNegativeReloadInterval
	}

	return nil
}

func (cfg *ServerConfig) validateForum() error {
	if cfg.Forum.ScriptURL != "" {
		scriptURL, err := utils.ParseURL(cfg.Forum.ScriptURL, "Script")
		if err != nil {
			return fmt.Errorf("invalid script URL: %w", err)
		}

		cfg.Forum.ScriptURL = scriptURL.String()
	}

	if cfg.Forum.BoardURL != "" {
		boardURL, err := utils.ParseURL(cfg.Forum.BoardURL, "Board")
		if err != nil {
			return fmt.Errorf("invalid board URL: %w", err)
		}

		cfg.Forum.BoardURL = boardURL.String()
	}

	if cfg.Forum.WebmasterEmail != "" {
		if _, err := mail.ParseAddress(cfg.Forum.WebmasterEmail); err != nil {
			return fmt.Errorf("%w: %w", errInvalidWebmasterEmail, err)
		}
	}

	if cfg.Forum.Name == "" {
		log.Warn().
			Msg("Forum.Name is empty, templates referencing the forum name will fail to resolve")
	}

	return nil
}
