// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/forumlang/langcat/i18n"
)

var errInvalidVar = errors.New("invalid --var, want NAME=VALUE")

type resolveOptions struct {
	vars []string
}

func newResolveCmd(a *app) *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve LANGUAGE DOMAIN KEY [ARG...]",
		Short: "Print a template with its placeholders substituted",
		Example: `  langcat resolve english Errors email_in_use bob@example.com
  langcat resolve french-utf8 EmailTemplates admin_notify_body --var USERNAME=bob --var PROFILELINK=https://example.org/u/2`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "value for a {NAME} placeholder, as NAME=VALUE (repeatable)")

	return cmd
}

func (a *app) runResolve(cmd *cobra.Command, args []string, opts resolveOptions) error {
	params, err := buildParams(args[3:], opts.vars)
	if err != nil {
		return err
	}

	r, err := a.resolver(cmd.Context())
	if err != nil {
		return err
	}

	text, err := r.Resolve(args[0], args[1], args[2], params)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)

	return err
}

func buildParams(args, vars []string) (i18n.Params, error) {
	values := i18n.Values{Vars: make(i18n.Vars, len(vars))}

	for _, arg := range args {
		values.Args = append(values.Args, arg)
	}

	for _, v := range vars {
		name, value, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidVar, v)
		}

		values.Vars[name] = value
	}

	return values, nil
}
