// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	servertiming "github.com/mitchellh/go-server-timing"

	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/server/utils"
)

const (
	// maxResolveBody limits the size of a POST /resolve body.
	maxResolveBody = 64 << 10

	// autoLanguage in place of a language id selects the negotiated language.
	autoLanguage = "auto"

	argParam  = "arg"
	varPrefix = "var."
)

// resolveRequest is the body of POST /resolve.
type resolveRequest struct {
	Language string         `json:"language"`
	Domain   string         `json:"domain"`
	Key      string         `json:"key"`
	Args     []any          `json:"args"`
	Vars     map[string]any `json:"vars"`
}

type resolveResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Domain   string `json:"domain"`
	Key      string `json:"key"`
}

// ResolveGET serves GET /resolve/{language}/{domain}/{key}.
//
// Positional values are given as repeated "arg" query parameters in order,
// named values as "var.NAME" query parameters.
func ResolveGET(w http.ResponseWriter, r *http.Request) error {
	req := resolveRequest{
		Language: utils.GetPathVar(r, "language"),
		Domain:   utils.GetPathVar(r, "domain"),
		Key:      utils.GetPathVar(r, "key"),
	}

	query := r.URL.Query()

	for _, arg := range query[argParam] {
		req.Args = append(req.Args, arg)
	}

	for name, values := range query {
		if varName, ok := strings.CutPrefix(name, varPrefix); ok && len(values) > 0 {
			if varName == "" {
				return badRequest("empty variable name in query parameter %q", name)
			}

			if req.Vars == nil {
				req.Vars = make(map[string]any)
			}

			req.Vars[varName] = values[0]
		}
	}

	return resolve(w, r, req)
}

// ResolvePOST serves POST /resolve with a JSON body.
func ResolvePOST(w http.ResponseWriter, r *http.Request) error {
	var req resolveRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResolveBody))
	dec.DisallowUnknownFields()
	// Numbers stay json.Number so large integers keep every digit.
	dec.UseNumber()

	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}

		return badRequest("invalid JSON body: %v", err)
	}

	if req.Domain == "" || req.Key == "" {
		return badRequest("domain and key are required")
	}

	return resolve(w, r, req)
}

func resolve(w http.ResponseWriter, r *http.Request, req resolveRequest) error {
	resolver, err := resolverFor(r)
	if err != nil {
		return err
	}

	if req.Language == "" || req.Language == autoLanguage {
		req.Language = i18n.LanguageFrom(r.Context())
	}

	var metric *servertiming.Metric
	if timing := servertiming.FromContext(r.Context()); timing != nil {
		metric = timing.NewMetric("resolve").WithDesc(req.Domain + "." + req.Key).Start()
	}

	text, err := resolver.Resolve(req.Language, req.Domain, req.Key, i18n.Values{
		Args: i18n.Args(req.Args),
		Vars: i18n.Vars(req.Vars),
	})

	if metric != nil {
		metric.Stop()
	}

	if err != nil {
		return err
	}

	w.Header().Set("Content-Language", i18n.TagFor(req.Language).String())
	w.Header().Set("Cache-Control", "no-store")

	writeJSON(w, http.StatusOK, resolveResponse{
		Text:     text,
		Language: req.Language,
		Domain:   req.Domain,
		Key:      req.Key,
	})

	return nil
}
