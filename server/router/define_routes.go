// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"net/http/pprof"

	"codeberg.org/forumlang/langcat/config"
	"codeberg.org/forumlang/langcat/server/middleware"
	"codeberg.org/forumlang/langcat/server/routes"
)

func route(pattern string, handler func(w http.ResponseWriter, r *http.Request) error) Route {
	return Route{Pattern: pattern, Handler: middleware.CatchError(handler)}
}

// Routes returns the route table of the service.
func Routes(cfg *config.ServerConfig) []Route {
	table := []Route{
		// Resolve routes
		route("GET /resolve/{language}/{domain}/{key}", routes.ResolveGET),
		route("POST /resolve", routes.ResolvePOST),

		// Language routes
		route("GET /languages", routes.LanguagesPage),
		route("GET /language", routes.LanguageGET),
		route("POST /language", routes.LanguagePOST),

		route("GET /healthz", routes.HealthPage),
	}

	if cfg.Development.InDevelopment {
		table = append(table,
			Route{Pattern: "GET /debug/pprof/", Handler: http.HandlerFunc(pprof.Index)},
			Route{Pattern: "GET /debug/pprof/profile", Handler: http.HandlerFunc(pprof.Profile)},
			Route{Pattern: "GET /debug/pprof/trace", Handler: http.HandlerFunc(pprof.Trace)},
		)
	}

	return append(table, route("/", routes.NotFound))
}

// DefineRoutes sets up all the routes for the application.
func (router *Router) DefineRoutes(cfg *config.ServerConfig) {
	if cfg == nil {
		cfg = &config.Global
	}

	router.Add(Routes(cfg)...)
}
