// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"codeberg.org/forumlang/langcat/config"
	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/server/middleware"
	"codeberg.org/forumlang/langcat/server/middleware/limiter"
)

// RegisterMiddleware installs the middleware chain. A nil cfg uses config.Global.
func (router *Router) RegisterMiddleware(resolver *i18n.Resolver, cfg *config.ServerConfig) {
	if cfg == nil {
		cfg = &config.Global
	}

	// the first middleware is the most outer / first executed one
	router.Use(middleware.ServerTiming(cfg.Basic.ServerTiming))
	router.Use(middleware.NormalizeURL)
	router.Use(middleware.WithRequestContext(resolver)) // needed for everything else
	router.Use(middleware.SetResponseHeaders)

	if cfg.Limiter.Enabled {
		l := limiter.New(limiter.Options{
			Rate:         cfg.Limiter.Rate,
			Burst:        cfg.Limiter.Burst,
			Expiry:       cfg.Limiter.Expiry,
			CheckHeaders: cfg.Limiter.CheckHeaders,
		})

		router.Use(l.Evaluate)
	}
}
