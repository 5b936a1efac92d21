// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"net/url"
	"time"

	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/server/utils"
)

// SameSite=Lax keeps the preference on top-level navigations from other sites.
const cookieSameSite = http.SameSiteLaxMode

// Cookies will expire in 30 days from when they are set.
const cookieMaxAge = 30 * 24 * time.Hour

// Clear a cookie by setting its expiration date to this
var cookieExpireDelete = time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)

func languageCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     i18n.LangCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   utils.IsConnectionSecure(r),
		HttpOnly: true,
		SameSite: cookieSameSite,
	}
}

// setLanguageCookie stores the preferred language, or clears it when value is empty.
func setLanguageCookie(w http.ResponseWriter, r *http.Request, value string) {
	if value == "" {
		http.SetCookie(w, languageCookie(r, "", cookieExpireDelete))

		return
	}

	http.SetCookie(w, languageCookie(r, url.QueryEscape(value), time.Now().Add(cookieMaxAge)))
}
