// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"net"
	"net/http"
)

// IsConnectionSecure returns whether a connection is secure.
//
// Target environments are (containerized and bare metal):
//   - Internet -> reverse proxy -> application
//   - LAN -> reverse proxy -> application
//   - LAN -> application
//   - localhost -> application
//
// This function will incorrectly return false if the last reverse proxy
// in the chain has a public IP address.
func IsConnectionSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}

	parsedIP := net.ParseIP(host)
	if parsedIP == nil {
		return false
	}

	// Only trust X-Forwarded-Proto from private IPs
	return (parsedIP.IsPrivate() || parsedIP.IsLoopback()) && r.Header.Get("X-Forwarded-Proto") == "https"
}
