// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Translatable is a value that can translate itself using a context.
// Types such as [Message] implement Translatable.
type Translatable interface {
	Tr(ctx context.Context) string
}

var _ templ.Component = Message{}

// Message names a template for rendering in pages.
//
// The language comes from [WithLanguage] and the resolver from
// [WithResolver]; without a language the resolver's default is used.
type Message struct {
	Domain string
	Key    string
	Params Params
}

// Tr resolves the message with [Resolver.Text]. Without a resolver in ctx
// the marked key is returned.
func (m Message) Tr(ctx context.Context) string {
	r := ResolverFrom(ctx)
	if r == nil {
		return markMissing(m.Domain, m.Key)
	}

	language := LanguageFrom(ctx)
	if language == "" {
		language = r.DefaultLanguage()
	}

	return r.Text(language, m.Domain, m.Key, m.Params)
}

// Render writes the resolved text unescaped; templates hold trusted HTML.
func (m Message) Render(ctx context.Context, w io.Writer) error {
	_, err := io.WriteString(w, m.Tr(ctx))

	return err
}

// UserError is an error whose message is a resolved template, intended to
// be shown directly to the end user.
type UserError struct {
	Message

	text string
}

// NewUserError resolves domain and key in the language of ctx.
func NewUserError(ctx context.Context, domain, key string, params Params) *UserError {
	m := Message{Domain: domain, Key: key, Params: params}

	return &UserError{Message: m, text: m.Tr(ctx)}
}

// Error returns the resolved message.
func (e *UserError) Error() string {
	return e.text
}
