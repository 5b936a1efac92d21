// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"time"

	"codeberg.org/forumlang/langcat/config"
)

type healthResponse struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Revision   string    `json:"revision"`
	GoVersion  string    `json:"go_version,omitempty"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loaded_at"`
	Catalogs   int       `json:"catalogs"`
	Messages   int       `json:"messages"`
}

// HealthPage serves GET /healthz. It reports 503 until catalogs are installed.
func HealthPage(w http.ResponseWriter, r *http.Request) error {
	resolver, err := resolverFor(r)
	if err != nil {
		return err
	}

	set := resolver.Snapshot()

	resp := healthResponse{
		Status:     "ok",
		Version:    config.Global.Build.Version(),
		GoVersion:  config.Global.Build.GoVersion,
		Revision:   config.Global.Build.Revision(),
		Generation: set.Generation(),
		LoadedAt:   set.LoadedAt(),
		Catalogs:   set.Len(),
	}

	for _, c := range set.Catalogs() {
		resp.Messages += c.Len()
	}

	status := http.StatusOK
	if resp.Catalogs == 0 {
		resp.Status = "empty"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, resp)

	return nil
}
