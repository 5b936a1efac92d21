// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net"
	"net/http"
	"strings"
)

// IPv4 and IPv6 address lengths as measured in bits.
const (
	ipv4BitLength = 32
	ipv6BitLength = 128

	ipv4Prefix = 32
	ipv6Prefix = 64
)

// getClientIP extracts the client's IP address from an HTTP request.
//
// When checkHeaders is set, X-Real-IP and X-Forwarded-For are used, but only
// for connections from private or loopback addresses.
func getClientIP(r *http.Request, checkHeaders bool) string {
	remoteIP := r.RemoteAddr
	if ip, _, err := net.SplitHostPort(remoteIP); err == nil {
		remoteIP = ip
	}

	if !checkHeaders {
		return remoteIP
	}

	fromTrustedSource := false
	if ip := net.ParseIP(remoteIP); ip != nil {
		fromTrustedSource = ip.IsPrivate() || ip.IsLoopback()
	}

	if !fromTrustedSource {
		return remoteIP
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	// The last entry of X-Forwarded-For was added by the closest proxy.
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		parts := strings.Split(xff, ",")

		return strings.TrimSpace(parts[len(parts)-1])
	}

	return remoteIP
}

// getNetwork masks rawIP to the network it is limited as.
func getNetwork(rawIP net.IP) *net.IPNet {
	var mask net.IPMask
	if rawIP.To4() != nil {
		mask = net.CIDRMask(ipv4Prefix, ipv4BitLength)
	} else {
		mask = net.CIDRMask(ipv6Prefix, ipv6BitLength)
	}

	return &net.IPNet{
		IP:   rawIP.Mask(mask),
		Mask: mask,
	}
}
