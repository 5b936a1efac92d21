// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package limiter is a middleware that enforces per-network rate limiting for HTTP requests.

Clients are grouped by their IP network (a /32 for IPv4, a /64 for IPv6) and
each network gets a token bucket. Buckets idle for longer than the expiry are
dropped.
*/
package limiter
