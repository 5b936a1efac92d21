// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package audit records the requests served by langcat.
package audit

import (
	"context"
	"fmt"
	"os"
	"runtime/trace"
	"strconv"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Span represents an HTTP request in flight.
type Span struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration
	metric   *servertiming.Metric

	RequestID  string
	Method     string
	URL        string
	Language   string
	StatusCode int
	Size       int
	Error      error
}

// SetDefaultLogger provides an ok log output format on startup if no config is set.
func SetDefaultLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// Begin starts timing the span and registers a Server-Timing metric when
// the request carries a timing header.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "http.request")
	if timing := servertiming.FromContext(ctx); timing != nil {
		span.metric = timing.NewMetric("app")
		span.metric.Desc = span.Method
		span.metric.Extra = map[string]string{
			"start": strconv.FormatFloat(float64(span.start.UnixNano())/float64(time.Millisecond), 'f', -1, 64),
		}
	}

	return ctx
}

// End stops the span. Calling it more than once has no effect.
func (span *Span) End() {
	if span.task == nil {
		return
	}

	span.duration = time.Since(span.start)
	span.task.End()

	if span.metric != nil {
		span.metric.Duration = span.duration
	}

	span.task = nil
}

// Duration reports how long the span ran.
func (span *Span) Duration() time.Duration {
	return span.duration
}

func (span Span) Log() {
	event := log.Debug()
	if span.StatusCode >= 500 {
		event = log.Error()
	}

	event.Str("sys", "http").
		Str("method", span.Method).
		Str("url", span.URL).
		Int("status_code", span.StatusCode).
		Str("len", humanizeSize(span.Size)).
		Dur("dur", span.duration).
		Str("request_id", span.RequestID)

	if span.Language != "" {
		event.Str("language", span.Language)
	}

	if span.Error != nil {
		event.Err(span.Error)
	}

	event.Send()
}

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * bytesInKB
	bytesInGB = bytesInMB * bytesInKB
)

func humanizeSize(x int) string {
	if x < bytesInKB {
		return strconv.Itoa(x)
	}

	if x < bytesInMB {
		return fmt.Sprintf("%.2fK", float64(x)/bytesInKB)
	}

	if x < bytesInGB {
		return fmt.Sprintf("%.2fM", float64(x)/bytesInMB)
	}

	return fmt.Sprintf("%.2fG", float64(x)/bytesInGB)
}
