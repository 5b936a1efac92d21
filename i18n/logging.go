// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// reporter logs failed lookups once per (language, domain, key).
type reporter struct {
	enabled bool
	logger  zerolog.Logger
	seen    sync.Map // language+"\x00"+domain+"\x00"+key -> struct{}
}

func newReporter(enabled bool) *reporter {
	return &reporter{
		enabled: enabled,
		logger:  log.With().Str("sys", "i18n").Logger(),
	}
}

// Report logs err at WARN if it is a resolution failure that has not been
// reported before for the same language, domain and key. It does nothing
// unless reporting was enabled in [Options].
func (r *Resolver) Report(err error) {
	var e *Error
	if !r.reporter.enabled || !errors.As(err, &e) {
		return
	}

	id := e.Language + "\x00" + e.Domain + "\x00" + e.Key
	if _, loaded := r.reporter.seen.LoadOrStore(id, struct{}{}); loaded {
		return
	}

	ev := r.reporter.logger.Warn().
		Str("language", e.Language).
		Str("domain", e.Domain).
		Str("key", e.Key).
		Str("kind", Kind(e))

	if e.Placeholder != "" {
		ev = ev.Str("placeholder", e.Placeholder)
	}

	ev.Msg("Unresolved message")
}
