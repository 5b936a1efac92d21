// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"sync"

	"codeberg.org/forumlang/langcat/server/middleware"
)

// Route pairs a ServeMux pattern with its handler.
type Route struct {
	Pattern string
	Handler http.Handler
}

// Router wraps http.ServeMux and provides middleware chaining functionality.
//
// Middleware must be added before the first request is served; the chain
// is composed once.
type Router struct {
	*http.ServeMux

	routes      []Route
	middlewares []middleware.Middleware

	once    sync.Once
	handler http.Handler
}

// NewRouter creates a new Router instance.
func NewRouter() *Router {
	return &Router{
		ServeMux: http.NewServeMux(),
	}
}

// Add registers routes on the mux and records them in the route table.
func (router *Router) Add(routes ...Route) {
	for _, route := range routes {
		router.Handle(route.Pattern, route.Handler)
		router.routes = append(router.routes, route)
	}
}

// Patterns lists the registered route patterns in registration order.
func (router *Router) Patterns() []string {
	patterns := make([]string, len(router.routes))
	for i, route := range router.routes {
		patterns[i] = route.Pattern
	}

	return patterns
}

// Use adds a middleware to the router's chain.
func (router *Router) Use(middleware middleware.Middleware) {
	router.middlewares = append(router.middlewares, middleware)
}

// ServeHTTP runs the request through every middleware, the first added
// being the outermost, and then the mux.
func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.once.Do(func() {
		var h http.Handler = router.ServeMux
		for i := len(router.middlewares) - 1; i >= 0; i-- {
			h = middleware.Wrap(router.middlewares[i], h)
		}

		router.handler = h
	})

	router.handler.ServeHTTP(w, r)
}
