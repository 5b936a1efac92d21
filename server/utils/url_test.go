// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/forumlang/langcat/server/utils"
)

func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		expected string
	}{
		{"Valid URL", "https://example.com", false, "https://example.com"},
		{"Valid URL with path", "https://forum.example.org/index.php", false, "https://forum.example.org/index.php"},
		{"Missing scheme", "forum.example.org", true, ""},
		{"Missing host", "https://", true, ""},
		{"Trailing slash", "https://example.com/", false, "https://example.com"},
		{"Path with trailing slash", "https://example.com/forum/", false, "https://example.com/forum"},
		{"Empty URL", "", true, ""},
		{"URL with query params", "https://example.com/index.php?action=forum", false, "https://example.com/index.php?action=forum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := utils.ParseURL(tt.urlStr, "Test")
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestSanitizeReturnPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/index.php?action=profile": "/index.php?action=profile",
		"  /settings ":              "/settings",
		"https://evil.example":      "",
		"//evil.example":            "",
		"/\\evil.example":           "",
		"settings":                  "",
		"":                          "",
	}

	for in, want := range tests {
		assert.Equal(t, want, utils.SanitizeReturnPath(in), in)
	}
}

func TestIsConnectionSecure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remote string
		proto  string
		tls    bool
		want   bool
	}{
		{"plain", "203.0.113.9:1234", "", false, false},
		{"direct tls", "203.0.113.9:1234", "", true, true},
		{"private proxy", "10.0.0.2:1234", "https", false, true},
		{"loopback proxy", "127.0.0.1:1234", "https", false, true},
		{"public proxy header ignored", "203.0.113.9:1234", "https", false, false},
		{"bad remote", "nonsense", "https", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote

			if tt.proto != "" {
				r.Header.Set("X-Forwarded-Proto", tt.proto)
			}

			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			} else {
				r.TLS = nil
			}

			assert.Equal(t, tt.want, utils.IsConnectionSecure(r))
		})
	}
}
