// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ParseURL parses a URL string and returns a *url.URL.
//
// The URL must have both a scheme and a host. A trailing slash is removed
// from the path.
func ParseURL(urlStr, urlType string) (*url.URL, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s URL: %w", urlType, err)
	}

	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf(
			"%s URL is invalid: %s. Please specify a complete URL with scheme and host, e.g. https://example.com",
			urlType,
			urlStr)
	}

	parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/")

	return parsedURL, nil
}

// GetQueryParam retrieves the value of a query parameter by name.
//
// If the parameter is not present, it returns the provided default value or an empty string.
func GetQueryParam(r *http.Request, name string, defaultValue ...string) string {
	v := r.URL.Query().Get(name)
	if v != "" {
		return v
	}

	if len(defaultValue) > 0 {
		return defaultValue[0]
	}

	return ""
}

// GetFormValue retrieves the value of a form parameter by name.
func GetFormValue(r *http.Request, name string, defaultValue ...string) string {
	if err := r.ParseForm(); err == nil {
		if v := r.FormValue(name); v != "" {
			return v
		}
	}

	if len(defaultValue) > 0 {
		return defaultValue[0]
	}

	return ""
}

// GetPathVar retrieves the value of a path variable by name.
//
// If the variable is not present, it returns the provided default value or an empty string.
func GetPathVar(r *http.Request, name string, defaultValue ...string) string {
	v := r.PathValue(name)
	if v != "" {
		return v
	}

	if len(defaultValue) > 0 {
		return defaultValue[0]
	}

	return ""
}

// SanitizeReturnPath ensures that string s is a same-origin relative path (no scheme/host).
// Returns "" if the value is unsafe; callers should fallback to "/".
func SanitizeReturnPath(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/\\") {
		return ""
	}

	if !strings.HasPrefix(s, "/") {
		return ""
	}

	return s
}
