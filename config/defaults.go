// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	// Default limiter rate in requests per second.
	defaultLimiterRate = 20
	// Default limiter burst size.
	defaultLimiterBurst = 40
	// Default idle time after which a client's limiter is dropped, in minutes.
	defaultLimiterExpiryMinutes = 10
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	cfg.Basic.Host = "localhost"
	cfg.Basic.Port = "8383"
	cfg.Basic.ServerTiming = true

	cfg.Catalog.Dir = ""
	cfg.Catalog.DefaultLanguage = "english"
	cfg.Catalog.Charsets = map[string]string{"french": "ISO-8859-1"}
	cfg.Catalog.DefaultCharset = "ISO-8859-1"
	cfg.Catalog.LoadConcurrency = 0
	cfg.Catalog.ReloadInterval = 0
	cfg.Catalog.Watch = false

	cfg.Forum.Name = "My Community"
	cfg.Forum.ScriptURL = "http://localhost/index.php"
	cfg.Forum.BoardURL = "http://localhost"
	cfg.Forum.Regards = "Regards,\nThe My Community Team."
	cfg.Forum.WebmasterEmail = ""
	cfg.Forum.Version = ""

	cfg.Development.InDevelopment = false

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Limiter.Enabled = false
	cfg.Limiter.Rate = defaultLimiterRate
	cfg.Limiter.Burst = defaultLimiterBurst
	cfg.Limiter.Expiry = defaultLimiterExpiryMinutes * time.Minute
	cfg.Limiter.CheckHeaders = false

	cfg.Internationalization.ReportMissingKeys = true
}
