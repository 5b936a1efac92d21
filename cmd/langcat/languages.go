// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language/display"

	"codeberg.org/forumlang/langcat/i18n"
)

func newLanguagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List loaded languages and their domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.resolver(cmd.Context())
			if err != nil {
				return err
			}

			set := r.Snapshot()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LANGUAGE\tTAG\tNAME\tDOMAINS")

			for _, id := range set.Languages() {
				tag := i18n.TagFor(id)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, tag, display.Self.Name(tag), strings.Join(set.Domains(id), ","))
			}

			return w.Flush()
		},
	}
}
